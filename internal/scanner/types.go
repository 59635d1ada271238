// Package scanner discovers the text files indentstat analyses.
// It expands path arguments into a stream of files, honouring exclusion
// patterns, .gitignore rules, size limits and binary detection.
package scanner

import (
	"path/filepath"
	"strings"
	"time"
)

// FileInfo contains metadata about a discovered file.
type FileInfo struct {
	Path        string    // Path as it should be displayed (argument-relative)
	AbsPath     string    // Absolute path
	Size        int64     // File size in bytes
	ModTime     time.Time // Last modification time
	Language    string    // go, python, yaml, ... ("" when unknown)
	IsGenerated bool      // Detected as generated file
}

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// Paths are the files and directories to scan, in order. Empty means ".".
	Paths []string

	// IncludePatterns restricts directory walks to matching files (empty = all).
	IncludePatterns []string

	// ExcludePatterns specifies patterns to exclude.
	ExcludePatterns []string

	// RespectGitignore enables .gitignore parsing.
	RespectGitignore bool

	// Recursive descends into subdirectories of directory arguments.
	Recursive bool

	// MaxFileSize is the maximum file size to include in bytes (0 = 10MB default).
	MaxFileSize int64

	// FollowSymlinks enables following symbolic links (default: false).
	FollowSymlinks bool

	// SkipGenerated drops files carrying a generated-code marker.
	SkipGenerated bool

	// Languages restricts directory walks to these detected languages (empty = all).
	Languages []string
}

// ScanResult is returned from the scanner channel.
type ScanResult struct {
	File  *FileInfo
	Error error
}

// DefaultMaxFileSize is the default maximum file size (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// languageExtensions lists the extensions recognised for each language.
var languageExtensions = map[string][]string{
	"go":         {".go"},
	"javascript": {".js", ".jsx", ".mjs", ".cjs"},
	"typescript": {".ts", ".tsx"},
	"python":     {".py", ".pyw", ".pyi"},
	"ruby":       {".rb", ".rake"},
	"rust":       {".rs"},
	"java":       {".java"},
	"kotlin":     {".kt", ".kts"},
	"c":          {".c", ".h"},
	"cpp":        {".cpp", ".hpp", ".cc", ".cxx", ".hh"},
	"csharp":     {".cs"},
	"swift":      {".swift"},
	"php":        {".php"},
	"scala":      {".scala"},
	"elixir":     {".ex", ".exs"},
	"erlang":     {".erl"},
	"haskell":    {".hs"},
	"lua":        {".lua"},
	"perl":       {".pl", ".pm"},
	"r":          {".r", ".R"},
	"sql":        {".sql"},
	"shell":      {".sh", ".bash", ".zsh"},
	"html":       {".html", ".htm"},
	"css":        {".css", ".scss", ".sass", ".less"},
	"json":       {".json"},
	"yaml":       {".yaml", ".yml"},
	"toml":       {".toml"},
	"xml":        {".xml"},
	"ini":        {".ini", ".conf", ".cfg"},
	"markdown":   {".md", ".mdx", ".markdown"},
	"rst":        {".rst"},
	"text":       {".txt"},
	"proto":      {".proto"},
}

// languageFiles maps well-known extensionless file names to languages.
var languageFiles = map[string]string{
	"Dockerfile":  "dockerfile",
	"Makefile":    "makefile",
	"makefile":    "makefile",
	"GNUmakefile": "makefile",
}

var languageByExt = func() map[string]string {
	m := make(map[string]string)
	for lang, exts := range languageExtensions {
		for _, ext := range exts {
			m[ext] = lang
		}
	}
	return m
}()

// DetectLanguage detects the language of a file from its name.
func DetectLanguage(path string) string {
	base := filepath.Base(path)
	if lang, ok := languageFiles[base]; ok {
		return lang
	}
	if lang, ok := languageByExt[filepath.Ext(base)]; ok {
		return lang
	}
	// Case-insensitive fallback for extensions like .PY
	return languageByExt[strings.ToLower(filepath.Ext(base))]
}
