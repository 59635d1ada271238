package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
	"github.com/Aman-CERP/indentstat/internal/gitignore"
)

// gitignoreCacheSize is the maximum number of gitignore matchers to cache.
const gitignoreCacheSize = 1000

// resultBuffer is the capacity of the result channel.
const resultBuffer = 64

// Scanner discovers text files under a set of path arguments.
type Scanner struct {
	// gitignoreCache caches parsed gitignore matchers by directory.
	// A nil entry records a directory without a .gitignore file.
	gitignoreCache *lru.Cache[string, *gitignore.Matcher]
	cacheMu        sync.RWMutex
}

// New creates a new Scanner instance.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitignore cache: %w", err)
	}
	return &Scanner{
		gitignoreCache: cache,
	}, nil
}

// walkRoot is one directory argument being walked.
type walkRoot struct {
	arg     string // argument as given
	abs     string // absolute directory path
	gitRoot string // directory gitignore paths are relative to
}

// Scan streams the files named by opts.Paths.
// Arguments are processed in order; directories are walked in lexical order.
// The channel is closed when scanning is complete. Problems with a single
// argument are delivered as a ScanResult with Error set and scanning continues.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) (<-chan ScanResult, error) {
	if opts == nil {
		opts = &ScanOptions{Recursive: true}
	}

	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	results := make(chan ScanResult, resultBuffer)

	go func() {
		defer close(results)
		for _, p := range paths {
			if ctx.Err() != nil {
				return
			}
			if err := s.scanArg(ctx, p, opts, maxFileSize, results); err != nil {
				if !send(ctx, results, ScanResult{Error: err}) {
					return
				}
			}
		}
	}()

	return results, nil
}

// scanArg emits the files for a single path argument.
func (s *Scanner) scanArg(ctx context.Context, arg string, opts *ScanOptions, maxFileSize int64, results chan<- ScanResult) error {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeInvalidPath, fmt.Sprintf("invalid path %s", arg), err).
			WithDetail("path", arg)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeInvalidPath, fmt.Sprintf("cannot access %s", arg), err).
			WithDetail("path", arg).
			WithSuggestion("Check that the path exists and is readable")
	}

	if !info.IsDir() {
		// Explicit files skip pattern filters
		fi, reason := s.inspectFile(abs, arg, info, opts, maxFileSize)
		if fi == nil {
			slog.Debug("skipping file argument", slog.String("path", arg), slog.String("reason", reason))
			return nil
		}
		send(ctx, results, ScanResult{File: fi})
		return nil
	}

	root := walkRoot{arg: arg, abs: abs, gitRoot: abs}
	if opts.RespectGitignore {
		root.gitRoot = findGitRoot(abs)
	}
	return s.walk(ctx, root, opts, maxFileSize, results)
}

// walk performs the directory traversal for one directory argument.
func (s *Scanner) walk(ctx context.Context, root walkRoot, opts *ScanOptions, maxFileSize int64, results chan<- ScanResult) error {
	err := filepath.WalkDir(root.abs, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			slog.Debug("skipping unreadable entry", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}

		relPath, err := filepath.Rel(root.abs, path)
		if err != nil {
			return nil
		}

		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if !opts.Recursive {
				return filepath.SkipDir
			}
			if s.shouldExcludeDir(relPath, opts) || s.isGitignored(path, root.gitRoot, true, opts) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}

		if s.shouldExcludeFile(relPath, opts) || s.isGitignored(path, root.gitRoot, false, opts) {
			return nil
		}

		if len(opts.IncludePatterns) > 0 && !matchesAnyPattern(relPath, opts.IncludePatterns) {
			return nil
		}

		language := DetectLanguage(relPath)
		if len(opts.Languages) > 0 && !containsFold(opts.Languages, language) {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil
		}

		fi, reason := s.inspectFile(path, filepath.Join(root.arg, relPath), info, opts, maxFileSize)
		if fi == nil {
			slog.Debug("skipping file", slog.String("path", relPath), slog.String("reason", reason))
			return nil
		}

		if !send(ctx, results, ScanResult{File: fi}) {
			return ctx.Err()
		}
		return nil
	})

	if err != nil && ctx.Err() == nil {
		return ierrors.New(ierrors.ErrCodeInvalidPath, fmt.Sprintf("error walking %s", root.arg), err).
			WithDetail("path", root.arg)
	}
	return nil
}

// inspectFile applies the content checks shared by file arguments and walked
// files. It returns nil and a reason when the file must be skipped.
func (s *Scanner) inspectFile(absPath, displayPath string, info os.FileInfo, opts *ScanOptions, maxFileSize int64) (*FileInfo, string) {
	if !info.Mode().IsRegular() {
		return nil, "not a regular file"
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Sprintf("too large (%s > %s)",
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(maxFileSize)))
	}
	if isBinaryFile(absPath) {
		return nil, "binary"
	}

	generated := isGeneratedFile(absPath)
	if generated && opts.SkipGenerated {
		return nil, "generated"
	}

	return &FileInfo{
		Path:        displayPath,
		AbsPath:     absPath,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Language:    DetectLanguage(absPath),
		IsGenerated: generated,
	}, ""
}

// send delivers r unless ctx is cancelled first.
func send(ctx context.Context, results chan<- ScanResult, r ScanResult) bool {
	select {
	case results <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// shouldExcludeDir checks if a directory should be excluded.
func (s *Scanner) shouldExcludeDir(relPath string, opts *ScanOptions) bool {
	for _, pattern := range defaultExcludeDirs {
		if matchDirPattern(relPath, pattern) {
			return true
		}
	}
	for _, pattern := range opts.ExcludePatterns {
		if matchDirPattern(relPath, pattern) {
			return true
		}
	}
	return false
}

// shouldExcludeFile checks if a file should be excluded.
func (s *Scanner) shouldExcludeFile(relPath string, opts *ScanOptions) bool {
	baseName := filepath.Base(relPath)

	for _, pattern := range defaultExcludeFiles {
		if matchFilePattern(baseName, relPath, pattern) {
			return true
		}
	}
	for _, pattern := range opts.ExcludePatterns {
		if matchFilePattern(baseName, relPath, pattern) {
			return true
		}
	}
	return false
}

// matchDirPattern checks if a directory path matches a pattern.
func matchDirPattern(relPath, pattern string) bool {
	relPath = filepath.ToSlash(relPath)

	// **/name/** matches name at any depth
	if strings.HasPrefix(pattern, "**/") {
		name := strings.TrimSuffix(strings.TrimPrefix(pattern, "**/"), "/**")
		for _, part := range strings.Split(relPath, "/") {
			if part == name {
				return true
			}
		}
		return false
	}

	// dir/** matches dir itself and everything below it
	prefix := strings.TrimSuffix(pattern, "/**")
	return relPath == prefix || strings.HasPrefix(relPath, prefix+"/")
}

// matchFilePattern checks if a file matches a pattern.
func matchFilePattern(baseName, relPath, pattern string) bool {
	relPath = filepath.ToSlash(relPath)

	switch {
	case strings.HasPrefix(pattern, "**/"):
		suffix := strings.TrimPrefix(pattern, "**/")
		if ok, _ := filepath.Match(suffix, baseName); ok {
			return true
		}
		// **/dir/** also excludes files inside dir
		return matchDirPattern(filepath.Dir(relPath), pattern)

	case strings.HasSuffix(pattern, "/**"):
		return strings.HasPrefix(relPath, strings.TrimSuffix(pattern, "/**")+"/")

	case strings.Contains(pattern, "/"):
		ok, _ := filepath.Match(pattern, relPath)
		return ok

	default:
		ok, _ := filepath.Match(pattern, baseName)
		return ok
	}
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(relPath string, patterns []string) bool {
	baseName := filepath.Base(relPath)
	for _, pattern := range patterns {
		if matchFilePattern(baseName, relPath, pattern) {
			return true
		}
	}
	return false
}

// containsFold reports whether list contains s, ignoring case.
func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// isBinaryFile checks if a file is binary by looking for null bytes.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return false
	}

	return bytes.IndexByte(buf[:n], 0) >= 0
}

// generatedMarkers identify generated files in their first kilobyte.
var generatedMarkers = []string{
	"Code generated",
	"DO NOT EDIT",
	"# Generated by",
	"// Generated by",
	"/* Generated by",
	"<!-- AUTO-GENERATED -->",
}

// isGeneratedFile checks if a file is auto-generated.
func isGeneratedFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 1024)
	n, err := f.Read(buf)
	if err != nil {
		return false
	}

	content := string(buf[:n])
	for _, marker := range generatedMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// findGitRoot walks up from dir to the nearest directory holding .git.
// Returns dir itself when there is none.
func findGitRoot(dir string) string {
	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// isGitignored checks path against every .gitignore between gitRoot and path.
func (s *Scanner) isGitignored(absPath, gitRoot string, isDir bool, opts *ScanOptions) bool {
	if !opts.RespectGitignore {
		return false
	}

	relPath, err := filepath.Rel(gitRoot, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	if m := s.getGitignoreMatcher(gitRoot, ""); m != nil && m.Match(relPath, isDir) {
		return true
	}

	dir := filepath.Dir(relPath)
	if dir == "." {
		return false
	}

	currentDir := gitRoot
	currentBase := ""
	for _, part := range strings.Split(dir, "/") {
		currentDir = filepath.Join(currentDir, part)
		if currentBase == "" {
			currentBase = part
		} else {
			currentBase = currentBase + "/" + part
		}

		if m := s.getGitignoreMatcher(currentDir, currentBase); m != nil && m.Match(relPath, isDir) {
			return true
		}
	}

	return false
}

// getGitignoreMatcher gets or creates a gitignore matcher for a directory.
// The repository root (empty base) also reads .git/info/exclude. Directories
// whose ignore files hold no rules cache a nil matcher.
func (s *Scanner) getGitignoreMatcher(dir, base string) *gitignore.Matcher {
	s.cacheMu.RLock()
	matcher, ok := s.gitignoreCache.Get(dir)
	s.cacheMu.RUnlock()
	if ok {
		return matcher
	}

	sources := []string{filepath.Join(dir, ".gitignore")}
	if base == "" {
		sources = append(sources, filepath.Join(dir, ".git", "info", "exclude"))
	}

	matcher = gitignore.New()
	for _, path := range sources {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := matcher.AddFromFile(path, base); err != nil {
			slog.Warn("ignoring unreadable ignore file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
	if matcher.Len() == 0 {
		matcher = nil
	} else {
		slog.Debug("loaded ignore rules", slog.String("dir", dir), slog.Int("rules", matcher.Len()))
	}

	s.cacheMu.Lock()
	s.gitignoreCache.Add(dir, matcher)
	s.cacheMu.Unlock()

	return matcher
}

// Default directories to exclude.
var defaultExcludeDirs = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/__pycache__/**",
	"**/.venv/**",
}

// Default files to exclude.
var defaultExcludeFiles = []string{
	"**/*.min.js",
	"**/*.min.css",
	"**/*.map",
	"**/package-lock.json",
	"**/yarn.lock",
	"**/pnpm-lock.yaml",
	"**/go.sum",
}
