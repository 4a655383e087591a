// Package bootstrap runs the workstation bootstrap from platform checks to
// the hand-off to the second installer.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"rs-public-install/internal/auth"
	"rs-public-install/internal/config"
	"rs-public-install/internal/installer"
	"rs-public-install/internal/logger"
	"rs-public-install/internal/platform"
	"rs-public-install/internal/repo"
	"rs-public-install/internal/runner"
)

const banner = `

*** RS_PUBLIC_INSTALL ***

Install the R_S Toolkit on Ubuntu or Mac

R_S package directory: %s
Python conda environment: ` + "`%s`" + `
rs_install version: %s

`

// Bootstrapper holds everything one bootstrap run needs.
type Bootstrapper struct {
	opts     config.Options
	settings config.Settings
	runner   runner.Runner
	log      *logger.Logger
	goos     string
	lookPath func(string) (string, error)
}

// New returns a Bootstrapper for the current host.
func New(opts config.Options, settings config.Settings, r runner.Runner, log *logger.Logger) *Bootstrapper {
	return &Bootstrapper{
		opts:     opts,
		settings: settings,
		runner:   r,
		log:      log,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
	}
}

// PrepareTopDir creates the install directory and starts mirroring the log
// into it.
func PrepareTopDir(opts config.Options, settings config.Settings, log *logger.Logger) error {
	if err := os.MkdirAll(opts.TopDir, 0755); err != nil {
		return fmt.Errorf("create top_dir %s: %w", opts.TopDir, err)
	}
	return log.OpenFile(filepath.Join(opts.TopDir, settings.LogFile))
}

// Run performs the bootstrap steps in order and stops at the first failure.
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.log.Banner(fmt.Sprintf(banner, b.opts.TopDir, b.opts.Env, b.opts.VersionLabel()))

	b.log.Info("### System checks")
	host, err := platform.Detect(ctx, b.goos, b.runner, b.log)
	if err != nil {
		return err
	}
	b.log.Info("Platform: %s", host.Kind)

	if err := b.prerequisites(ctx, host); err != nil {
		return err
	}

	b.log.Info("######################################")
	b.log.Info("### R_S package: %s %s", b.settings.BootstrapRepo, b.opts.VersionLabel())
	syncer := repo.NewSynchronizer(b.runner, b.log, repo.Remote{
		Host:  b.settings.Host,
		Org:   b.settings.Org,
		UseGH: host.UsesGH(),
	}, b.opts.TopDir)
	if err := syncer.Sync(ctx, b.settings.BootstrapRepo, b.opts.Version); err != nil {
		return fmt.Errorf("sync %s: %w", b.settings.BootstrapRepo, err)
	}

	return b.Delegate(ctx)
}

func (b *Bootstrapper) prerequisites(ctx context.Context, host platform.Platform) error {
	inst := installer.New(b.runner, b.log).WithLookPath(b.lookPath)

	if host.IsMac() {
		if err := platform.EnsureRosetta(ctx, host, b.runner, b.log); err != nil {
			return err
		}
		if err := inst.EnsureHomebrew(ctx, b.settings.HomebrewInstallURL); err != nil {
			return err
		}
	}

	if host.UsesGH() {
		b.log.Info("### gh - %s authentication", b.settings.Host)
		if err := inst.EnsureGH(ctx); err != nil {
			return err
		}
		if err := auth.NewGate(b.runner, b.log, b.settings.Host).Ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}
