package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rs-public-install/internal/bootstrap"
	"rs-public-install/internal/config"
	"rs-public-install/internal/logger"
	"rs-public-install/internal/runner"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// settingsPath is an optional YAML file overriding the organization settings.
var settingsPath string

// console receives colored log output.
var console io.Writer = os.Stdout

// newRunner builds the command runner used for every external program.
// Tests swap it for a scripted runner.
var newRunner = func(log *logger.Logger) runner.Runner {
	return runner.NewExec(log) // Real child processes attached to the terminal
}

// rootCmd is the single command of `rs-public-install`.
var rootCmd = &cobra.Command{
	Use:   "rs-public-install [env] [top_dir] [version]",
	Short: "Bootstrap the R_S toolkit on macOS or Linux",
	Long: `rs-public-install prepares a workstation for the R_S toolkit.

It checks the platform, installs brew and gh where needed, logs in to the
hosting service, clones or updates the rs_install repository under top_dir
and then runs its installer.

Defaults: env "rs", top_dir "./rs", version latest.`,
	// Argument count is checked in run so that the usage error is logged
	// like every other failure.
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// reportedError marks an error that has already been written to the log.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "config", "c", "", "Path to settings file (optional)")
}

// Execute runs the command line and returns the process exit status.
// SIGINT and SIGTERM cancel the running child process.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx) // The context reaches every child process through cmd.Context()
	if err == nil {
		return 0
	}

	// Errors raised inside run were logged already; only cobra's own are printed here
	var reported reportedError
	if !errors.As(err, &reported) {
		color.New(color.FgRed).Fprintf(os.Stderr, "[ERROR] %v\n", err)
	}
	return bootstrap.ExitCode(err)
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.New(console, debug) // Console logger; the log file is attached once top_dir exists
	defer log.Close()                 // Flush and release rs_install.log on every exit path

	// Resolve env, top_dir and version before touching the filesystem
	opts, err := config.ResolveArgs(args)
	if err != nil {
		log.Error("%v", err)
		return reportedError{err}
	}

	settings, err := config.LoadSettings(settingsPath) // Compiled-in defaults when --config is not given
	if err != nil {
		log.Error("%v", err)
		return reportedError{err}
	}

	// Create top_dir and start mirroring the log into it
	if err := bootstrap.PrepareTopDir(opts, settings, log); err != nil {
		log.Error("%v", err)
		return reportedError{err}
	}

	log.Info("Installing to env: %s", opts.Env)
	log.Info("Installing to top_dir: %s", opts.TopDir)
	if opts.Version == "" {
		log.Info("Defaulting to latest rs_install_version. To specify, use: %s", config.Usage)
	}

	// Platform checks, prerequisites, auth, repository sync and the hand-off
	b := bootstrap.New(opts, settings, newRunner(log), log)
	if err := b.Run(cmd.Context()); err != nil {
		// Each step logs its own failure where it happens
		return reportedError{fmt.Errorf("bootstrap: %w", err)}
	}
	return nil
}
