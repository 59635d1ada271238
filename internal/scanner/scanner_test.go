package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantLang string
	}{
		{name: "go file", path: "main.go", wantLang: "go"},
		{name: "go in directory", path: "pkg/lib/utils.go", wantLang: "go"},
		{name: "jsx", path: "Component.jsx", wantLang: "javascript"},
		{name: "typescript", path: "app.ts", wantLang: "typescript"},
		{name: "python", path: "script.py", wantLang: "python"},
		{name: "upper-case extension", path: "SCRIPT.PY", wantLang: "python"},
		{name: "yaml", path: "config.yml", wantLang: "yaml"},
		{name: "markdown", path: "README.md", wantLang: "markdown"},
		{name: "Dockerfile", path: "Dockerfile", wantLang: "dockerfile"},
		{name: "Makefile in dir", path: "build/Makefile", wantLang: "makefile"},
		{name: "c header", path: "header.h", wantLang: "c"},
		{name: "perl module", path: "lib/Foo.pm", wantLang: "perl"},
		{name: "unknown extension", path: "file.xyz", wantLang: ""},
		{name: "no extension", path: "LICENSE", wantLang: ""},
		{name: "dotfile", path: ".bashrc", wantLang: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLang, DetectLanguage(tt.path))
		})
	}
}

// writeTree creates files under dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

// collect runs a scan and returns displayed paths relative to root plus errors.
func collect(t *testing.T, root string, opts *ScanOptions) ([]string, []error) {
	t.Helper()
	s, err := New()
	require.NoError(t, err)

	results, err := s.Scan(context.Background(), opts)
	require.NoError(t, err)

	var paths []string
	var errs []error
	for r := range results {
		if r.Error != nil {
			errs = append(errs, r.Error)
			continue
		}
		rel, err := filepath.Rel(root, r.File.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	return paths, errs
}

func TestScanner_Scan_WalksInLexicalOrder(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.go":     "package main\n",
		"pkg/lib.go":  "package pkg\n",
		"README.md":   "# Test\n",
		"b/z.txt":     "z\n",
		"b/a/deep.py": "pass\n",
	})

	paths, errs := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: true})

	assert.Empty(t, errs)
	assert.Equal(t, []string{"README.md", "b/a/deep.py", "b/z.txt", "main.go", "pkg/lib.go"}, paths)
}

func TestScanner_Scan_ArgumentsKeepOrder(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"z.go": "package z\n",
		"a.go": "package a\n",
	})

	paths, errs := collect(t, tmpDir, &ScanOptions{
		Paths: []string{filepath.Join(tmpDir, "z.go"), filepath.Join(tmpDir, "a.go")},
	})

	assert.Empty(t, errs)
	assert.Equal(t, []string{"z.go", "a.go"}, paths)
}

func TestScanner_Scan_FileMetadata(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
		"gen.go":  "// Code generated by stringer. DO NOT EDIT.\npackage main\n",
	})

	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(context.Background(), &ScanOptions{Paths: []string{tmpDir}, Recursive: true})
	require.NoError(t, err)

	byName := map[string]*FileInfo{}
	for r := range results {
		require.NoError(t, r.Error)
		byName[filepath.Base(r.File.Path)] = r.File
	}

	mainGo := byName["main.go"]
	require.NotNil(t, mainGo)
	assert.Equal(t, "go", mainGo.Language)
	assert.False(t, mainGo.IsGenerated)
	assert.True(t, filepath.IsAbs(mainGo.AbsPath))
	assert.EqualValues(t, len("package main\n\nfunc main() {}\n"), mainGo.Size)

	gen := byName["gen.go"]
	require.NotNil(t, gen)
	assert.True(t, gen.IsGenerated)
}

func TestScanner_Scan_SkipGenerated(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.go": "package main\n",
		"gen.go":  "// Code generated by protoc. DO NOT EDIT.\npackage main\n",
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: true, SkipGenerated: true})

	assert.Equal(t, []string{"main.go"}, paths)
}

func TestScanner_Scan_DefaultExclusions(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"index.js":                     "console.log('hello');\n",
		"node_modules/lodash/index.js": "module.exports = {};\n",
		"vendor/x/y.go":                "package y\n",
		".git/config":                  "[core]\n",
		"app.min.js":                   "var a=1;\n",
		"go.sum":                       "x v1 h1:abc\n",
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: true})

	assert.Equal(t, []string{"index.js"}, paths)
}

func TestScanner_Scan_CustomExcludeAndInclude(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"src/a.go":      "package a\n",
		"src/a_test.go": "package a\n",
		"docs/x.md":     "# x\n",
		"build/out.go":  "package out\n",
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{
		Paths:           []string{tmpDir},
		Recursive:       true,
		ExcludePatterns: []string{"*_test.go", "build/**"},
		IncludePatterns: []string{"*.go"},
	})

	assert.Equal(t, []string{"src/a.go"}, paths)
}

func TestScanner_Scan_LanguageFilter(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.go": "package a\n",
		"b.py": "pass\n",
		"c.md": "# c\n",
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{
		Paths:     []string{tmpDir},
		Recursive: true,
		Languages: []string{"Python", "markdown"},
	})

	assert.Equal(t, []string{"b.py", "c.md"}, paths)
}

func TestScanner_Scan_NonRecursive(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"top.go":     "package top\n",
		"sub/low.go": "package sub\n",
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: false})

	assert.Equal(t, []string{"top.go"}, paths)
}

func TestScanner_Scan_RespectsGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore":        "*.log\ntmp/\n",
		"main.go":           "package main\n",
		"debug.log":         "oops\n",
		"tmp/scratch.go":    "package tmp\n",
		"sub/.gitignore":    "local.txt\n",
		"sub/local.txt":     "x\n",
		"sub/kept.txt":      "y\n",
		"sub/nested/app.go": "package nested\n",
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: true, RespectGitignore: true})

	assert.Equal(t, []string{".gitignore", "main.go", "sub/.gitignore", "sub/kept.txt", "sub/nested/app.go"}, paths)
}

func TestScanner_Scan_GitignoreFromRepositoryRoot(t *testing.T) {
	// Given: a repository whose root .gitignore excludes *.gen.go
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".git"), 0o755))
	writeTree(t, tmpDir, map[string]string{
		".gitignore":   "*.gen.go\n",
		"pkg/a.go":     "package pkg\n",
		"pkg/a.gen.go": "package pkg\n",
	})

	// When: scanning only the pkg subdirectory
	pkgDir := filepath.Join(tmpDir, "pkg")
	paths, _ := collect(t, pkgDir, &ScanOptions{Paths: []string{pkgDir}, Recursive: true, RespectGitignore: true})

	// Then: the root .gitignore still applies
	assert.Equal(t, []string{"a.go"}, paths)
}

func TestScanner_Scan_RepositoryInfoExclude(t *testing.T) {
	// Given: a repository whose local excludes list *.tmp
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".git/info/exclude": "# local\n*.tmp\n",
		"main.go":           "package main\n",
		"notes.tmp":         "draft\n",
		"sub/cache.tmp":     "x\n",
	})

	// When: scanning with gitignore support
	paths, _ := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: true, RespectGitignore: true})

	// Then: the excluded files are skipped at every depth
	assert.Equal(t, []string{"main.go"}, paths)
}

func TestScanner_Scan_CommentOnlyGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore": "# nothing ignored yet\n\n",
		"debug.log":  "oops\n",
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: true, RespectGitignore: true})

	assert.Equal(t, []string{".gitignore", "debug.log"}, paths)
}

func TestScanner_Scan_GitignoreDisabled(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore": "*.log\n",
		"debug.log":  "oops\n",
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: true})

	assert.Equal(t, []string{".gitignore", "debug.log"}, paths)
}

func TestScanner_Scan_SkipsBinaryAndLargeFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"text.txt":  "hello\n",
		"blob.bin":  "abc\x00def",
		"large.txt": strings.Repeat("a", 2048),
	})

	paths, _ := collect(t, tmpDir, &ScanOptions{Paths: []string{tmpDir}, Recursive: true, MaxFileSize: 1024})

	assert.Equal(t, []string{"text.txt"}, paths)
}

func TestScanner_Scan_ExplicitFileBypassesPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"app.min.js": "var a = 1;\n",
	})

	paths, errs := collect(t, tmpDir, &ScanOptions{Paths: []string{filepath.Join(tmpDir, "app.min.js")}})

	assert.Empty(t, errs)
	assert.Equal(t, []string{"app.min.js"}, paths)
}

func TestScanner_Scan_ExplicitBinaryFileSkipped(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"blob.bin": "abc\x00def",
	})

	paths, errs := collect(t, tmpDir, &ScanOptions{Paths: []string{filepath.Join(tmpDir, "blob.bin")}})

	assert.Empty(t, errs)
	assert.Empty(t, paths)
}

func TestScanner_Scan_MissingPathReportsAndContinues(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"ok.go": "package ok\n",
	})

	paths, errs := collect(t, tmpDir, &ScanOptions{
		Paths: []string{filepath.Join(tmpDir, "missing.go"), filepath.Join(tmpDir, "ok.go")},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, ierrors.ErrCodeInvalidPath, ierrors.GetCode(errs[0]))
	assert.Equal(t, []string{"ok.go"}, paths)
}

func TestScanner_Scan_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 200; i++ {
		files[fmt.Sprintf("d%02d/f%03d.txt", i%10, i)] = "x\n"
	}
	writeTree(t, tmpDir, files)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := New()
	require.NoError(t, err)
	results, err := s.Scan(ctx, &ScanOptions{Paths: []string{tmpDir}, Recursive: true})
	require.NoError(t, err)

	// Read one result, then cancel; the channel must still close.
	<-results
	cancel()
	for range results {
	}
}

func TestMatchFilePattern(t *testing.T) {
	tests := []struct {
		name    string
		relPath string
		pattern string
		want    bool
	}{
		{name: "extension glob", relPath: "src/a.log", pattern: "*.log", want: true},
		{name: "extension glob miss", relPath: "src/a.go", pattern: "*.log", want: false},
		{name: "double star extension", relPath: "a/b/c.min.js", pattern: "**/*.min.js", want: true},
		{name: "file inside excluded dir", relPath: "a/node_modules/x.js", pattern: "**/node_modules/**", want: true},
		{name: "dir prefix", relPath: "build/x/y.go", pattern: "build/**", want: true},
		{name: "dir prefix miss", relPath: "src/build.go", pattern: "build/**", want: false},
		{name: "path glob", relPath: "docs/a.md", pattern: "docs/*.md", want: true},
		{name: "path glob other dir", relPath: "src/a.md", pattern: "docs/*.md", want: false},
		{name: "exact name", relPath: "x/go.sum", pattern: "go.sum", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchFilePattern(filepath.Base(tt.relPath), tt.relPath, tt.pattern))
		})
	}
}

func TestMatchDirPattern(t *testing.T) {
	assert.True(t, matchDirPattern("a/node_modules", "**/node_modules/**"))
	assert.True(t, matchDirPattern("node_modules", "**/node_modules/**"))
	assert.False(t, matchDirPattern("node_modules_x", "**/node_modules/**"))
	assert.True(t, matchDirPattern("build", "build/**"))
	assert.True(t, matchDirPattern("build/sub", "build"))
	assert.False(t, matchDirPattern("rebuild", "build"))
}
