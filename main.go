package main

import (
	"os"

	"rs-public-install/cmd" // Import the cmd package which contains the CLI command and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which parses the command line, runs the bootstrap
// and returns the exit status the process should end with.
//
// rs-public-install is a workstation bootstrap for the R_S toolkit that:
//   - Classifies the host as macOS (Intel or Apple Silicon) or Linux and refuses anything else
//   - Installs Rosetta on Apple Silicon, and Homebrew plus the gh CLI on macOS, only when missing
//   - Makes sure gh holds a session with the hosting service before any repository work
//   - Clones the rs_install repository into top_dir, or updates an existing clean checkout
//     to its remote default branch, optionally pinning a version
//   - Hands off to the installer script inside rs_install and exits with its status
//
// Error handling strategy:
//   - Every failure is logged where it happens, to the console and to top_dir/rs_install.log
//   - There is no retry or rollback; the first failure ends the run with a non-zero status
//   - A failing second installer passes its own exit status through unchanged
//
// Re-running is safe: tools already on PATH are skipped and an existing checkout is
// only fast-forwarded when its working tree is clean.
func main() {
	os.Exit(cmd.Execute())
}
