// Package runner executes external programs with explicit argument lists.
// Commands never pass through a shell unless the caller names one as the
// program.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"rs-public-install/internal/logger"
)

// Command is a single external program invocation.
type Command struct {
	Name string   // Program name or path, resolved through PATH
	Args []string // Arguments, passed verbatim
	Dir  string   // Working directory; empty means the current one
}

// New builds a Command from a program name and its arguments.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// In returns a copy of c that runs inside dir.
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// String renders the command line as it would be typed in a shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"$`\\") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Runner executes commands.
type Runner interface {
	// Run executes cmd attached to the terminal and returns its exit code.
	// The error is non-nil only when the program could not be run at all.
	Run(ctx context.Context, cmd Command) (int, error)

	// Output executes cmd and returns its standard output. A non-zero exit
	// is reported as an error.
	Output(ctx context.Context, cmd Command) ([]byte, error)
}

// CommandError reports a command that exited non-zero where success was required.
type CommandError struct {
	Command Command
	Code    int
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command failed: '%s': %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command failed: '%s' (exit status %d)", e.Command, e.Code)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Must runs cmd and turns a non-zero exit into a *CommandError, logging the
// literal command line on failure.
func Must(ctx context.Context, r Runner, log *logger.Logger, cmd Command) error {
	code, err := r.Run(ctx, cmd)
	if err != nil || code != 0 {
		log.Error("Command failed: '%s'", cmd)
		return &CommandError{Command: cmd, Code: code, Err: err}
	}
	return nil
}

// Exec runs commands as real child processes.
type Exec struct {
	Log    *logger.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec attached to the process's standard streams.
func NewExec(log *logger.Logger) *Exec {
	return &Exec{
		Log:    log,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, c Command) (int, error) {
	e.Log.Info(">>> %s", c)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Output implements Runner.
func (e *Exec) Output(ctx context.Context, c Command) ([]byte, error) {
	e.Log.Debug("Running command: %s", c)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if stderr.Len() > 0 {
			return out, fmt.Errorf("%s: %w: %s", c, err, strings.TrimSpace(stderr.String()))
		}
		return out, fmt.Errorf("%s: %w", c, err)
	}
	return out, nil
}
