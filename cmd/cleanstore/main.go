// Command cleanstore removes .DS_Store files and other clutter from a
// directory tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"cleanstore/internal/config"
	"cleanstore/internal/exitcodes"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and maps the outcome to an exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "[!] %v\n", err)
		return exitCode(err)
	}
	return exitcodes.Success
}

// usageError marks bad flags or arguments
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var usage usageError
	switch {
	case err == nil:
		return exitcodes.Success
	case errors.As(err, &usage), errors.Is(err, errBadConfig), config.IsFatal(err):
		return exitcodes.InvalidConfig
	default:
		return exitcodes.RuntimeError
	}
}
