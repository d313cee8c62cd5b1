package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syntaxai/cargo-syntax/pkg/config"
)

// defaultConfigFile is where config init writes without --output.
const defaultConfigFile = "cargo-syntax.toml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	// Subcommands load the file themselves so that validate can report
	// what is wrong with it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		applyColor()
		return startProfile()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Creates cargo-syntax.toml in the current directory with the default
settings. Use --output to choose another location.

Examples:
  cargo syntax config init
  cargo syntax config init -o .cargo-syntax/cargo-syntax.toml
  cargo syntax config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validates a cargo-syntax configuration file for syntax errors and invalid values.

Examples:
  cargo syntax config validate                        # Validates default config locations
  cargo syntax config validate -c cargo-syntax.toml   # Validates specific file`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the merged configuration from defaults and config file.

Examples:
  cargo syntax config show
  cargo syntax config show --yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite existing config file")
	configShowCmd.Flags().Bool("yaml", false, "Print as YAML instead of TOML")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func configLoadOptions() []config.LoadOption {
	if cfgFile != "" {
		return []config.LoadOption{config.WithPath(cfgFile)}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := outputFile
	if path == "" {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", path)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", path)
	fmt.Println("Edit this file to set ci thresholds, exclusions and the chat model.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# cargo-syntax configuration\n")
	buf.WriteString("# Documentation: https://github.com/syntaxai/cargo-syntax\n\n")
	buf.Write(content)
	return buf.String(), nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	result, err := config.LoadConfig(configLoadOptions()...)
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Printf("  - %s\n", err)
		return &exitError{code: 1}
	}

	if result.Source != "" {
		color.Green("Configuration valid: %s", result.Source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	result, err := config.LoadConfig(configLoadOptions()...)
	if err != nil {
		return err
	}

	if result.Source != "" {
		fmt.Printf("# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Println("# Default configuration (no config file found)")
	}

	var content []byte
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		content, err = yaml.Marshal(result.Config)
	} else {
		content, err = toml.Marshal(result.Config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(content))
	return nil
}
