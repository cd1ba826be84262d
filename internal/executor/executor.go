package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result holds the outcome of a finished external command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner runs external commands and waits for them to exit.
type Runner interface {
	// Run executes name with args. A non-zero exit is reported through
	// Result.ExitCode with a nil error; an error is returned only when the
	// command could not be started or ctx ended first.
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

type execRunner struct{}

// New creates a Runner backed by os/exec
func New() Runner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("command '%s' interrupted: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("command '%s' failed to start: %w", name, err)
}

// Tail returns at most the last n bytes of s, for logging long stderr output.
func Tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
