// Package lint drives cargo clippy and rustfmt and interprets clippy's
// JSON diagnostics.
package lint

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Runner executes external commands.
type Runner interface {
	// Output runs name and returns its stdout. A non-zero exit is returned
	// as an *exec.ExitError alongside whatever was written.
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	// Stream runs name with its output attached to out.
	Stream(ctx context.Context, dir string, out io.Writer, name string, args ...string) error
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	err := cmd.Run()
	return stdout.Bytes(), err
}

func (ExecRunner) Stream(ctx context.Context, dir string, out io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// exitedNonZero reports whether err is only a failing exit status, as
// opposed to the command not starting.
func exitedNonZero(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
