package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/lint"
	"github.com/syntaxai/cargo-syntax/internal/templates"
)

// cargoRunner runs cargo for init.
var cargoRunner lint.Runner = lint.ExecRunner{}

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a new token-efficient Rust project",
	Long: `Runs cargo init for a new directory and adds strict clippy lints,
rustfmt, clippy and toolchain configs, a .gitignore and a CLAUDE.md with
token-efficient coding rules.

Examples:
  cargo syntax init my-crate`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var applyCmd = &cobra.Command{
	Use:   "apply [path]",
	Short: "Apply token-efficient configs to an existing project",
	Long: `Adds the clippy lints to Cargo.toml unless it already has a
[lints.clippy] table, writes the config files that are missing and makes
sure the build directory is ignored. Nothing is overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(applyCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	name := args[0]
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("directory '%s' already exists", name)
	}

	fmt.Printf("Creating project '%s'...\n", name)
	if err := cargoRunner.Stream(cmd.Context(), ".", os.Stdout, "cargo", "init", name); err != nil {
		return fmt.Errorf("cargo init failed: %w", err)
	}

	if _, err := templates.Scaffold(name); err != nil {
		return err
	}

	color.Green("Project '%s' created with token-efficient config.", name)
	fmt.Println()
	fmt.Printf("  cd %s\n", name)
	fmt.Println("  cargo syntax check")
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	actions, err := templates.Apply(getPath(args))
	if err != nil {
		return err
	}
	for _, a := range actions {
		fmt.Println(a)
	}
	fmt.Println()
	color.Green("Done! Run `cargo syntax check` to verify.")
	return nil
}
