package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"rs-public-install/internal/runner"
)

// DelegationError reports that the second installer exited non-zero.
// Its exit status becomes the status of this process.
type DelegationError struct {
	Command runner.Command
	Code    int
	Err     error
}

func (e *DelegationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("installer '%s' could not run: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("installer '%s' exited with status %d", e.Command, e.Code)
}

func (e *DelegationError) Unwrap() error { return e.Err }

// DelegateCommand returns the invocation of the second installer:
// <interpreter> <top_dir>/<installer_script> <env> <top_dir> <version>.
// An empty version is passed through and means latest.
func (b *Bootstrapper) DelegateCommand() runner.Command {
	script := filepath.Join(b.opts.TopDir, b.settings.InstallerScript)
	return runner.New(b.settings.Interpreter, script, b.opts.Env, b.opts.TopDir, b.opts.Version).In(b.opts.TopDir)
}

// Delegate runs the second installer and waits for it.
func (b *Bootstrapper) Delegate(ctx context.Context) error {
	cmd := b.DelegateCommand()
	code, err := b.runner.Run(ctx, cmd)
	if err != nil || code != 0 {
		b.log.Error("Command failed: '%s'", cmd)
		return &DelegationError{Command: cmd, Code: code, Err: err}
	}
	return nil
}

// ExitCode maps the result of a run to a process exit status: 0 on
// success, the second installer's own status when it failed, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var delegated *DelegationError
	if errors.As(err, &delegated) && delegated.Code > 0 {
		return delegated.Code
	}
	return 1
}
