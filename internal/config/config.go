// Package config loads indentstat configuration.
//
// Configuration is layered in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/indentstat/config.yaml)
//  3. Project config (.indentstat.yaml in the project root)
//  4. INDENTSTAT_* keys from the project's .env file
//  5. INDENTSTAT_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
)

// ProjectConfigNames are the project config file names, in lookup order.
var ProjectConfigNames = []string{".indentstat.yaml", ".indentstat.yml"}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INDENTSTAT_"

// Config represents the complete indentstat configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Paths    PathsConfig    `yaml:"paths" json:"paths"`
	Scan     ScanConfig     `yaml:"scan" json:"scan"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// AnalysisConfig configures indentation classification.
type AnalysisConfig struct {
	// MaxDepth is the deepest width classified into a unit.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
}

// PathsConfig configures which paths to include and exclude.
type PathsConfig struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// ScanConfig configures file discovery.
type ScanConfig struct {
	Recursive        bool     `yaml:"recursive" json:"recursive"`
	RespectGitignore bool     `yaml:"respect_gitignore" json:"respect_gitignore"`
	FollowSymlinks   bool     `yaml:"follow_symlinks" json:"follow_symlinks"`
	SkipGenerated    bool     `yaml:"skip_generated" json:"skip_generated"`
	MaxFileSize      int64    `yaml:"max_file_size" json:"max_file_size"`
	Languages        []string `yaml:"languages" json:"languages"`
}

// OutputConfig configures the report.
type OutputConfig struct {
	Format    string `yaml:"format" json:"format"`
	Verbosity string `yaml:"verbosity" json:"verbosity"`
	Color     string `yaml:"color" json:"color"`
	// MaxWidth hides wider widths from the width histogram. 0 = no cap.
	MaxWidth int `yaml:"max_width" json:"max_width"`
}

// LoggingConfig configures diagnostics on stderr.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// defaultExcludePatterns are excluded unless a flag overrides them.
var defaultExcludePatterns = []string{
	"**/dist/**",
	"**/build/**",
}

var (
	validFormats    = []string{"lines", "inline", "table", "json"}
	validVerbosity  = []string{"quiet", "normal", "verbose"}
	validColorModes = []string{"auto", "always", "never"}
	validLevels     = []string{"debug", "info", "warn", "error"}
)

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Analysis: AnalysisConfig{
			MaxDepth: 24,
		},
		Paths: PathsConfig{
			Include: []string{},
			Exclude: append([]string(nil), defaultExcludePatterns...),
		},
		Scan: ScanConfig{
			Recursive:        true,
			RespectGitignore: true,
			MaxFileSize:      10 * 1024 * 1024,
			Languages:        []string{},
		},
		Output: OutputConfig{
			Format:    "lines",
			Verbosity: "normal",
			Color:     "auto",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/indentstat/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/indentstat/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "indentstat", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "indentstat", "config.yaml")
	}
	return filepath.Join(home, ".config", "indentstat", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
// .yaml takes precedence over .yml.
func ProjectConfigPath(dir string) string {
	for _, name := range ProjectConfigNames {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// Load loads configuration for the project rooted at dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	// Step 1: user/global config
	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	// Step 2: project config overrides user config
	if projectPath := ProjectConfigPath(dir); projectPath != "" {
		if err := cfg.loadYAML(projectPath); err != nil {
			return nil, err
		}
	}

	// Step 3: .env, then the process environment
	dotenv, err := readDotEnv(dir)
	if err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides(func(key string) (string, bool) {
		v, ok := dotenv[key]
		return v, ok
	})
	cfg.applyEnvOverrides(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile returns the defaults overlaid with the single YAML file at path,
// without user, project or environment layers.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML decodes a YAML file over c. Keys absent from the file keep their
// current value; exclude patterns are appended rather than replaced.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeConfigInvalid, fmt.Sprintf("failed to read config file %s", path), err).
			WithDetail("path", path)
	}

	exclude := c.Paths.Exclude
	c.Paths.Exclude = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		c.Paths.Exclude = exclude
		return ierrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax, or run 'indentstat config init --force' to regenerate it")
	}
	c.Paths.Exclude = appendUnique(exclude, c.Paths.Exclude...)
	return nil
}

func appendUnique(list []string, values ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			list = append(list, v)
		}
	}
	return list
}

// readDotEnv returns the INDENTSTAT_* keys of dir/.env. A missing file is
// not an error. Nothing is exported into the process environment.
func readDotEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, ".env")
	if !fileExists(path) {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, ierrors.ConfigError(fmt.Sprintf("failed to parse %s", path), err).
			WithDetail("path", path)
	}

	out := make(map[string]string)
	for k, v := range values {
		if strings.HasPrefix(k, EnvPrefix) {
			out[k] = v
		}
	}
	return out, nil
}

// applyEnvOverrides applies INDENTSTAT_* overrides read through lookup.
// Empty values and unparsable numbers are ignored.
func (c *Config) applyEnvOverrides(lookup func(string) (string, bool)) {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("MAX_DEPTH"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.MaxDepth = n
		}
	}
	if v, ok := get("FORMAT"); ok {
		c.Output.Format = strings.ToLower(v)
	}
	if v, ok := get("VERBOSITY"); ok {
		c.Output.Verbosity = strings.ToLower(v)
	}
	if v, ok := get("COLOR"); ok {
		c.Output.Color = strings.ToLower(v)
	}
	if v, ok := get("MAX_WIDTH"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Output.MaxWidth = n
		}
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Logging.Level = strings.ToLower(v)
	}
	if v, ok := get("RESPECT_GITIGNORE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Scan.RespectGitignore = b
		}
	}
}

// FindProjectRoot finds the project root directory.
// It looks for a .git directory or a project config file by walking up the
// directory tree, and falls back to startDir itself.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) || ProjectConfigPath(currentDir) != "" {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Analysis.MaxDepth < 0 {
		return invalid("analysis.max_depth must be non-negative, got %d", c.Analysis.MaxDepth)
	}
	if c.Output.MaxWidth < 0 {
		return invalid("output.max_width must be non-negative, got %d", c.Output.MaxWidth)
	}
	if c.Scan.MaxFileSize < 0 {
		return invalid("scan.max_file_size must be non-negative, got %d", c.Scan.MaxFileSize)
	}
	if !oneOf(c.Output.Format, validFormats) {
		return invalid("output.format must be one of %s, got %q", strings.Join(validFormats, ", "), c.Output.Format)
	}
	if !oneOf(c.Output.Verbosity, validVerbosity) {
		return invalid("output.verbosity must be one of %s, got %q", strings.Join(validVerbosity, ", "), c.Output.Verbosity)
	}
	if !oneOf(c.Output.Color, validColorModes) {
		return invalid("output.color must be one of %s, got %q", strings.Join(validColorModes, ", "), c.Output.Color)
	}
	if !oneOf(c.Logging.Level, validLevels) {
		return invalid("logging.level must be one of %s, got %q", strings.Join(validLevels, ", "), c.Logging.Level)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return ierrors.ConfigError(fmt.Sprintf(format, args...), nil)
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// WriteYAML writes the configuration to a YAML file, creating its directory.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeConfigWrite, "failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ierrors.New(ierrors.ErrCodeConfigWrite, "failed to create config directory", err).
			WithDetail("path", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ierrors.New(ierrors.ErrCodeConfigWrite, "failed to write config file", err).
			WithDetail("path", path)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
