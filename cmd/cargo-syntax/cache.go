package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/cache"
	"github.com/syntaxai/cargo-syntax/internal/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the token count cache",
	Long: `Token counts can be cached on disk, keyed by a hash of the file content and
the encoding. Enable it with cache.enabled = true in cargo-syntax.toml.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Show the number and size of cached entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [path]",
	Short: "Remove every cached entry",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openCache opens the configured cache with a relative directory resolved
// against the crate root.
func openCache(args []string) (*cache.Cache, error) {
	c, err := cache.FromConfig(cfg, getPath(args))
	if err != nil {
		return nil, err
	}
	if !c.Enabled() {
		return nil, fmt.Errorf("cache is disabled (set cache.enabled = true in %s)", defaultConfigFile)
	}
	return c, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache(args)
	if err != nil {
		return err
	}
	stats, err := c.GetStats()
	if err != nil {
		return err
	}

	if getFormat() != output.FormatText {
		formatter, err := newFormatter()
		if err != nil {
			return err
		}
		defer formatter.Close()
		return formatter.Output(stats)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Cache:   %s\n", c.Dir())
	fmt.Fprintf(w, "Entries: %d\n", stats.Entries)
	fmt.Fprintf(w, "Size:    %s\n", formatBytes(stats.TotalSize))
	if stats.Entries > 0 {
		fmt.Fprintf(w, "Oldest:  %s ago\n", stats.OldestAge.Round(time.Second))
		fmt.Fprintf(w, "Newest:  %s ago\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCache(args)
	if err != nil {
		return err
	}
	stats, err := c.GetStats()
	if err != nil {
		return err
	}
	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Removed %d cached entries from %s", stats.Entries, c.Dir()))
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
