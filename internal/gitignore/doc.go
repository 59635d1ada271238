// Package gitignore matches paths against .gitignore patterns.
//
// It implements the pattern syntax documented at
// https://git-scm.com/docs/gitignore: wildcards (*, ?, **, [...]), rooted
// patterns (/build), negation (!keep.txt), directory-only patterns (tmp/)
// and escaped leading characters.
//
// Patterns read from a nested .gitignore carry a base directory and only
// apply below it:
//
//	m := gitignore.New()
//	_ = m.AddFromFile("/repo/.gitignore", "")
//	_ = m.AddFromFile("/repo/src/.gitignore", "src")
//	if m.Match("src/gen/out.go", false) {
//	    // skip the file
//	}
//
// Matchers are safe for concurrent use.
package gitignore
