package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/indentstat/configs"
	"github.com/Aman-CERP/indentstat/internal/config"
	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
	"github.com/Aman-CERP/indentstat/internal/output"
	"github.com/Aman-CERP/indentstat/internal/report"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Inspect and create indentstat configuration files.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/indentstat/config.yaml)
  3. Project config (.indentstat.yaml in the project root)
  4. .env in the project root (INDENTSTAT_* keys only)
  5. Environment variables (INDENTSTAT_*)
  6. Command-line flags`,
		Example: `  # Write the defaults to the user config
  indentstat config init

  # Show the effective configuration for this directory
  indentstat config show

  # Print the config file locations
  indentstat config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project, current bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with the defaults",
		Long: `Write a commented default configuration to the user config file, or
with --project to .indentstat.yaml in the project root. With --current the
effective configuration of the current directory is written instead.

An existing file is left alone unless --force is given; it is then backed
up next to the original before being replaced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetUserConfigPath()
			if project {
				root, err := currentProjectRoot()
				if err != nil {
					return err
				}
				path = filepath.Join(root, config.ProjectConfigNames[0])
			}
			return runConfigInit(cmd, path, force, current)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (a backup is kept)")
	cmd.Flags().BoolVar(&project, "project", false, "Write the project config instead of the user config")
	cmd.Flags().BoolVar(&current, "current", false, "Write the effective configuration instead of the template")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force, current bool) error {
	out := newOutput(cmd)

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("", "Location: %s", path)
			out.Status("", "Use --force to replace it with the defaults (a backup is kept)")
			return nil
		}

		backup, err := config.BackupFile(path)
		if err != nil {
			return err
		}
		out.Statusf("", "Backup: %s", backup)
	}

	if current {
		root, err := currentProjectRoot()
		if err != nil {
			return err
		}
		cfg, err := config.Load(root)
		if err != nil {
			return err
		}
		if err := cfg.WriteYAML(path); err != nil {
			return err
		}
		out.Successf("Wrote %s configuration", "effective")
	} else {
		if err := writeTemplate(path); err != nil {
			return err
		}
		out.Successf("Wrote %s configuration", "default")
	}
	out.Statusf("", "Location: %s", path)
	return nil
}

func writeTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ierrors.New(ierrors.ErrCodeConfigWrite, "failed to create config directory", err).
			WithDetail("path", path)
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return ierrors.New(ierrors.ErrCodeConfigWrite, "failed to write config file", err).
			WithDetail("path", path)
	}
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging every source, or a single source
with --source (merged, user, project, defaults).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, desc, err := loadConfigSource(source)
			if err != nil {
				return err
			}
			if cfg == nil {
				out := newOutput(cmd)
				out.Warningf("No %s configuration file found", source)
				out.Status("", "Run 'indentstat config init' to create one")
				return nil
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return ierrors.InternalError("failed to marshal config", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n%s", desc, data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

// loadConfigSource returns nil without error when the requested file does
// not exist.
func loadConfigSource(source string) (*config.Config, string, error) {
	switch source {
	case "defaults":
		return config.NewConfig(), "defaults", nil

	case "user":
		path := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			return nil, "", nil
		}
		cfg, err := config.LoadFile(path)
		return cfg, "user (" + path + ")", err

	case "project":
		root, err := currentProjectRoot()
		if err != nil {
			return nil, "", err
		}
		path := config.ProjectConfigPath(root)
		if path == "" {
			return nil, "", nil
		}
		cfg, err := config.LoadFile(path)
		return cfg, "project (" + path + ")", err

	case "merged":
		root, err := currentProjectRoot()
		if err != nil {
			return nil, "", err
		}
		cfg, err := config.Load(root)
		return cfg, "merged (defaults + user + project + env)", err
	}

	return nil, "", ierrors.ValidationError(fmt.Sprintf("invalid source %q", source), nil).
		WithSuggestion("Use one of: merged, user, project, defaults")
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := currentProjectRoot()
			if err != nil {
				return err
			}
			project := config.ProjectConfigPath(root)
			if project == "" {
				project = filepath.Join(root, config.ProjectConfigNames[0]) + " (not found)"
			}
			user := config.GetUserConfigPath()
			if !config.UserConfigExists() {
				user += " (not found)"
			}

			out := newOutput(cmd)
			out.KeyValue("user", user, len("project"))
			out.KeyValue("project", project, len("project"))
			return nil
		},
	}
}

func currentProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", ierrors.InternalError("failed to get current directory", err)
	}
	return config.FindProjectRoot(cwd)
}

func newOutput(cmd *cobra.Command) *output.Writer {
	w := cmd.OutOrStdout()
	return output.New(w, report.UseColor(report.ColorAuto, w))
}
