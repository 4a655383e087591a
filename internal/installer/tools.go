package installer

import (
	"context"
	"fmt"

	"rs-public-install/internal/runner"
)

// HomebrewCommand returns the command that installs Homebrew from its
// official install script.
func HomebrewCommand(scriptURL string) runner.Command {
	return runner.New("/bin/bash", "-c", fmt.Sprintf(`/bin/bash -c "$(curl -fsSL %s)"`, scriptURL))
}

// GHCommand returns the command that installs the GitHub CLI through brew.
func GHCommand() runner.Command {
	return runner.New("brew", "install", "gh")
}

// EnsureHomebrew installs brew when missing.
func (i *Installer) EnsureHomebrew(ctx context.Context, scriptURL string) error {
	return i.EnsureTool(ctx, "brew", HomebrewCommand(scriptURL))
}

// EnsureGH installs gh when missing. It expects brew to be available.
func (i *Installer) EnsureGH(ctx context.Context) error {
	return i.EnsureTool(ctx, "gh", GHCommand())
}
