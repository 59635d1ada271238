package gitignore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Matcher holds compiled gitignore rules. Later rules win.
type Matcher struct {
	mu    sync.RWMutex
	rules []rule
}

// rule is a single compiled gitignore pattern.
type rule struct {
	pattern  string         // pattern as written, minus negation
	regex    *regexp.Regexp // anchored regex for the glob
	negation bool           // leading !
	dirOnly  bool           // trailing /
	anchored bool           // leading / or an interior /
	base     string         // slash-separated directory the rule is scoped to
}

// New creates a new empty Matcher.
func New() *Matcher {
	return &Matcher{}
}

// Len returns the number of rules loaded.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// AddPatternWithBase adds a pattern that only applies under base; an empty
// base applies it from the root. Blank lines and comments are ignored.
func (m *Matcher) AddPatternWithBase(pattern, base string) {
	r, ok := parseRule(pattern, filepath.ToSlash(base))
	if !ok {
		return
	}
	m.mu.Lock()
	m.rules = append(m.rules, r)
	m.mu.Unlock()
}

// AddFromFile reads patterns from a gitignore file.
func (m *Matcher) AddFromFile(path, base string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open gitignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return m.AddFromReader(f, base)
}

// AddFromReader reads newline-separated patterns from r.
func (m *Matcher) AddFromReader(r io.Reader, base string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m.AddPatternWithBase(scanner.Text(), base)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read gitignore patterns: %w", err)
	}
	return nil
}

// Match reports whether path (relative to the repository root) is ignored.
func (m *Matcher) Match(p string, isDir bool) bool {
	p = filepath.ToSlash(p)

	m.mu.RLock()
	defer m.mu.RUnlock()

	ignored := false
	for _, r := range m.rules {
		if r.matches(p, isDir) {
			ignored = !r.negation
		}
	}
	return ignored
}

// parseRule compiles one gitignore line. ok is false for blanks and comments.
func parseRule(line, base string) (rule, bool) {
	// "\ " at the end keeps a trailing space
	escapedSpace := strings.HasSuffix(line, `\ `)
	p := strings.TrimSpace(line)

	if p == "" || strings.HasPrefix(p, "#") {
		return rule{}, false
	}

	r := rule{base: base}

	switch {
	case strings.HasPrefix(p, `\#`), strings.HasPrefix(p, `\!`):
		p = p[1:]
	case strings.HasPrefix(p, "!"):
		r.negation = true
		p = p[1:]
	}

	if escapedSpace && strings.HasSuffix(p, `\`) {
		p = strings.TrimSuffix(p, `\`) + " "
	}

	if strings.HasSuffix(p, "/") {
		r.dirOnly = true
		p = strings.TrimSuffix(p, "/")
	}

	if strings.HasPrefix(p, "/") {
		r.anchored = true
		p = strings.TrimPrefix(p, "/")
	}

	// "doc/frotz" is relative to the .gitignore, but "**/x/y" and "*/x" float
	if strings.Contains(p, "/") && !strings.HasPrefix(p, "*") {
		r.anchored = true
	}

	r.pattern = p
	r.regex = regexp.MustCompile("^" + globToRegex(p) + "$")
	return r, true
}

// matches checks a single rule against a slash-separated path.
// Directory-only rules also match files beneath the directory.
func (r rule) matches(p string, isDir bool) bool {
	if r.base != "" {
		switch {
		case p == r.base:
			p = path.Base(p)
		case strings.HasPrefix(p, r.base+"/"):
			p = strings.TrimPrefix(p, r.base+"/")
		default:
			return false
		}
	}

	parts := strings.Split(p, "/")

	if r.anchored {
		if r.regex.MatchString(p) {
			return !r.dirOnly || isDir
		}
		if r.dirOnly {
			for i := 1; i < len(parts); i++ {
				if r.regex.MatchString(strings.Join(parts[:i], "/")) {
					return true
				}
			}
		}
		return false
	}

	if r.dirOnly {
		for i, part := range parts {
			if r.regex.MatchString(part) {
				// The last component must itself be a directory
				return i < len(parts)-1 || isDir
			}
		}
		return false
	}

	if r.regex.MatchString(p) {
		return true
	}
	for _, part := range parts {
		if r.regex.MatchString(part) {
			return true
		}
	}
	return false
}

// globToRegex converts a gitignore glob to an unanchored regex body.
func globToRegex(glob string) string {
	var sb strings.Builder

	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					// **/ spans zero or more directories
					sb.WriteString("(?:.*/)?")
					i += 2
					continue
				}
				if i == 0 || glob[i-1] == '/' {
					sb.WriteString(".*")
					i++
					continue
				}
			}
			sb.WriteString("[^/]*")

		case '?':
			sb.WriteString("[^/]")

		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				sb.WriteString(`\[`)
				continue
			}
			sb.WriteString(glob[i : i+end+2])
			i += end + 1

		case '\\':
			if i+1 < len(glob) {
				i++
				sb.WriteString(regexp.QuoteMeta(string(glob[i])))
			} else {
				sb.WriteString(`\\`)
			}

		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	return sb.String()
}
