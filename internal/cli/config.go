package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/csheth/souljournal/internal/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Soul Journal configuration",
		Long: `Manage Soul Journal configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (SOULJOURNAL_*, e.g. SOULJOURNAL_ENDPOINT)
3. Config file (~/.souljournal/config.yaml)
4. Defaults`,
	}
	cmd.AddCommand(newConfigShowCommand(a), newConfigInitCommand())
	return cmd
}

func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			if cfg.OpenAI.APIKey != "" {
				cfg.OpenAI.APIKey = "********"
			}

			out := cmd.OutOrStdout()
			if used := a.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", used)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
			}

			yamlData, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			_, err = out.Write(yamlData)
			return err
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long:  `Create ~/.souljournal/config.yaml with every available option set to its default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := filepath.Join(config.Dir(), config.FileName)
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config file already exists: %s\nUse 'souljournal config show' to view it, or pass --force to overwrite", configPath)
			}
			if err := writeDefaultConfig(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	yamlData, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	header := "# Soul Journal configuration\n" +
		"#\n" +
		"# Configuration hierarchy (highest to lowest priority):\n" +
		"#   1. CLI flags\n" +
		"#   2. Environment variables (SOULJOURNAL_*)\n" +
		"#   3. This config file\n" +
		"#   4. Built-in defaults\n" +
		"#\n" +
		"# backend: http (endpoint below), ollama, or openai (set OPENAI_API_KEY)\n" +
		"# timeout: seconds per analysis request; 0 uses the backend default (http 30, ollama/openai 180)\n" +
		"# log.file: empty means souljournal.log inside storage.dir\n\n"

	body := append([]byte(header), yamlData...)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}
