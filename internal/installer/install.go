package installer

import (
	"context"
	"os/exec" // PATH lookup for already installed binaries

	"rs-public-install/internal/logger"
	"rs-public-install/internal/runner"
)

// Installer makes sure named executables are available on PATH.
//
// It only converges on "binary present": a tool found on PATH is never
// upgraded or reinstalled, and a tool that is missing is installed by running
// the supplied command exactly once. There is no retry; a failing install
// command is logged with its literal command line and ends the bootstrap.
type Installer struct {
	runner   runner.Runner                // Executes install commands
	log      *logger.Logger               // Console and rs_install.log output
	lookPath func(string) (string, error) // exec.LookPath unless replaced
}

// New returns an Installer resolving binaries with exec.LookPath.
func New(r runner.Runner, log *logger.Logger) *Installer {
	return &Installer{runner: r, log: log, lookPath: exec.LookPath}
}

// WithLookPath replaces the PATH lookup, for hosts with a custom search.
func (i *Installer) WithLookPath(lookPath func(string) (string, error)) *Installer {
	i.lookPath = lookPath
	return i
}

// EnsureTool runs install once when binary is not on PATH. A binary that is
// already present causes no side effect.
func (i *Installer) EnsureTool(ctx context.Context, binary string, install runner.Command) error {
	// Skip when the binary already resolves on PATH
	if path, err := i.lookPath(binary); err == nil {
		i.log.Info("Checking for '%s' command: True", binary)
		i.log.Debug("Found %s at %s", binary, path) // Resolved location, debug only
		return nil
	}

	i.log.Info("Installing %s", binary)
	return runner.Must(ctx, i.runner, i.log, install) // Non-zero exit becomes *runner.CommandError
}
