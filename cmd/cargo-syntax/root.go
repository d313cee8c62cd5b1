package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/pkg/config"
)

var (
	cfgFile      string
	formatFlag   string
	outputFile   string
	noColor      bool
	verbose      bool
	pprofPrefix  string
	pprofCPUFile *os.File

	// cfg is the effective configuration, loaded before any command runs.
	cfg = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "cargo-syntax",
	Short: "Token efficiency analyzer for Rust projects",
	Long: `cargo-syntax measures how many LLM tokens a Rust crate costs, grades its
token density (tokens per line) and finds the code that inflates it.

Runs standalone or as a cargo subcommand:
  cargo syntax audit
  cargo syntax top 5
  cargo syntax ci --max-tokens 50000 --min-grade B`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return startProfile()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return stopProfile()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Output format: text, json, markdown, toon (default from config)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write output to file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print scan timing and totals to stderr")
	rootCmd.PersistentFlags().StringVar(&pprofPrefix, "pprof", "", "Enable pprof profiling (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)")
}

// loadConfig reads the config file named by --config, or the first one
// found in the working directory, and applies the global flags on top.
func loadConfig() error {
	var opts []config.LoadOption
	if cfgFile != "" {
		opts = append(opts, config.WithPath(cfgFile))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return err
	}
	cfg = result.Config
	if verbose {
		cfg.Output.Verbose = true
	}
	applyColor()
	return nil
}

func applyColor() {
	if noColor || !cfg.Output.Color {
		color.NoColor = true
	}
}

func startProfile() error {
	if pprofPrefix == "" {
		return nil
	}
	f, err := os.Create(pprofPrefix + ".cpu.pprof")
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	pprofCPUFile = f
	return nil
}

func stopProfile() error {
	if pprofPrefix == "" {
		return nil
	}
	pprof.StopCPUProfile()
	if pprofCPUFile != nil {
		pprofCPUFile.Close()
		color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
	}

	memFile, err := os.Create(pprofPrefix + ".mem.pprof")
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer memFile.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
	return nil
}
