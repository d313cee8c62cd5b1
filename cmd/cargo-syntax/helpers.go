package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"

	"github.com/syntaxai/cargo-syntax/internal/output"
	"github.com/syntaxai/cargo-syntax/internal/progress"
	"github.com/syntaxai/cargo-syntax/internal/remote"
	"github.com/syntaxai/cargo-syntax/internal/scanner"
	scannerSvc "github.com/syntaxai/cargo-syntax/internal/service/scanner"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
)

// stdin is shared by every prompt so buffered input is not lost between
// questions.
var stdin = bufio.NewReader(os.Stdin)

// getPath returns the crate root from the first argument, defaulting to the
// current directory.
func getPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// getCount parses an optional positional count.
func getCount(args []string, i, defaultValue int) (int, error) {
	if len(args) <= i {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid count %q: must be a positive integer", args[i])
	}
	return n, nil
}

// getFormat returns --format, falling back to the configured format.
func getFormat() output.Format {
	if formatFlag != "" {
		return output.ParseFormat(formatFlag)
	}
	return output.ParseFormat(cfg.Output.Format)
}

func newFormatter() (*output.Formatter, error) {
	return output.NewFormatter(getFormat(), outputFile, !color.NoColor)
}

// render writes r in the selected format to stdout or --output.
func render(r output.Renderable) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(r)
}

// skipLog counts files a scan could not read. Each one is reported on
// stderr with its path and reason as it happens.
type skipLog struct {
	count atomic.Int32
}

func (s *skipLog) warn(path string, err error) {
	s.count.Add(1)
	project.StderrWarn(path, err)
}

// report prints the number of skipped files after the scan.
func (s *skipLog) report(w io.Writer) {
	if n := s.count.Load(); n > 0 {
		fmt.Fprintln(w, color.YellowString("Skipped %d unreadable file(s)", n))
	}
}

func newScanService(skipped *skipLog) *scannerSvc.Service {
	return scannerSvc.New(
		scannerSvc.WithConfig(cfg),
		scannerSvc.WithWarn(skipped.warn),
	)
}

// scanCrate measures every source file under root with a progress bar on
// stderr. A root that names a remote repository (owner/repo@ref or a git
// URL) is shallow-cloned into a temp directory first.
func scanCrate(ctx context.Context, root string) (*project.ProjectStats, error) {
	src, err := remote.Parse(root)
	if err != nil {
		return nil, err
	}
	if src != nil {
		spinner := progress.NewSpinner(fmt.Sprintf("Cloning %s...", src.URL))
		if err := src.Clone(ctx, nil, true); err != nil {
			spinner.FinishError(err)
			return nil, err
		}
		spinner.FinishSuccess()
		defer func() { _ = src.Cleanup() }()
		root = src.CloneDir
	}

	if err := scanner.CheckRoot(root); err != nil {
		return nil, err
	}
	skipped := &skipLog{}
	svc := newScanService(skipped)
	start := time.Now()

	tracker := progress.NewTracker("Scanning...", 0)
	ps, err := svc.Scan(ctx, root, project.WithProgress(tracker.Analyzer()))
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()
	skipped.report(os.Stderr)
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Scanned %d files (%d lines, %d tokens) in %s\n",
			len(ps.Files), ps.TotalLines, ps.TotalTokens, time.Since(start).Round(time.Millisecond))
	}
	return ps, nil
}

// scanNonEmpty is scanCrate for commands that have nothing to say about
// an empty crate.
func scanNonEmpty(ctx context.Context, root string) (*project.ProjectStats, error) {
	ps, err := scanCrate(ctx, root)
	if err != nil {
		return nil, err
	}
	if len(ps.Files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", cfg.Scan.Extension, root)
	}
	return ps, nil
}

// ratiosByPath maps each scanned file to its T/L.
func ratiosByPath(ps *project.ProjectStats) map[string]float64 {
	ratios := make(map[string]float64, len(ps.Files))
	for _, f := range ps.Files {
		ratios[f.Path] = f.Ratio
	}
	return ratios
}

// ask prints question and reads one trimmed, lowercased line.
func ask(w io.Writer, question string) (string, error) {
	fmt.Fprint(w, question)
	line, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(w io.Writer, question string) (bool, error) {
	answer, err := ask(w, question)
	if err != nil {
		return false, err
	}
	return answer == "y" || answer == "yes", nil
}
