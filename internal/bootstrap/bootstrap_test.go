package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rs-public-install/internal/auth"
	"rs-public-install/internal/config"
	"rs-public-install/internal/logger"
	"rs-public-install/internal/platform"
	"rs-public-install/internal/repo"
	"rs-public-install/internal/runner"
	"rs-public-install/internal/runner/runnertest"
)

const remoteShow = "* remote origin\n  HEAD branch: main\n"

func allInstalled(name string) (string, error) { return "/usr/bin/" + name, nil }

func noneInstalled(string) (string, error) { return "", exec.ErrNotFound }

func newBootstrapper(t *testing.T, goos string, opts config.Options, fake *runnertest.Fake) (*Bootstrapper, *bytes.Buffer) {
	t.Helper()
	var console bytes.Buffer
	b := New(opts, config.DefaultSettings(), fake, logger.New(&console, false))
	b.goos = goos
	b.lookPath = allInstalled
	return b, &console
}

func linuxOpts(t *testing.T) config.Options {
	t.Helper()
	return config.Options{Env: "rs", TopDir: filepath.Join(t.TempDir(), "rs")}
}

func TestRunLinuxEndToEnd(t *testing.T) {
	opts := linuxOpts(t)
	fake := runnertest.New().On("git remote show origin", runnertest.Result{Stdout: remoteShow})
	b, console := newBootstrapper(t, "linux", opts, fake)

	require.NoError(t, b.Run(context.Background()))

	script := filepath.Join(opts.TopDir, "rs_install", "rs_install.py")
	assert.Equal(t, []string{
		"git clone git@github.com:RedesignScience/rs_install.git",
		"git remote show origin",
		"git checkout main",
		"git fetch",
		"python " + script + " rs " + opts.TopDir + " ''",
	}, fake.Lines())

	calls := fake.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, []string{script, "rs", opts.TopDir, ""}, last.Args)
	assert.Equal(t, opts.TopDir, last.Dir)

	assert.Contains(t, console.String(), "*** RS_PUBLIC_INSTALL ***")
	assert.Contains(t, console.String(), "Detected Linux")
	assert.Contains(t, console.String(), "Platform: Linux")
	assert.Contains(t, console.String(), "### R_S package: rs_install latest")
}

func TestRunLinuxEndToEndInstallerFails(t *testing.T) {
	opts := linuxOpts(t)
	script := filepath.Join(opts.TopDir, "rs_install", "rs_install.py")
	delegateLine := "python " + script + " rs " + opts.TopDir + " ''"
	fake := runnertest.New().
		On("git remote show origin", runnertest.Result{Stdout: remoteShow}).
		On(delegateLine, runnertest.Result{Code: 5})
	b, _ := newBootstrapper(t, "linux", opts, fake)

	err := b.Run(context.Background())

	var delegated *DelegationError
	require.True(t, errors.As(err, &delegated))
	assert.Equal(t, 5, ExitCode(err))
	assert.Equal(t, 1, fake.Count(delegateLine))
}

func TestRunMacAppleSiliconFromScratch(t *testing.T) {
	opts := config.Options{Env: "dev", TopDir: filepath.Join(t.TempDir(), "rs"), Version: "v2.1.0"}
	fake := runnertest.New().
		On("sysctl -n machdep.cpu.brand_string", runnertest.Result{Stdout: "Apple M1\n"}).
		On("pgrep oahd", runnertest.Result{Code: 1}).
		On("gh auth status", runnertest.Result{Code: 1}, runnertest.Result{Code: 0}).
		On("git remote show origin", runnertest.Result{Stdout: remoteShow})
	b, _ := newBootstrapper(t, "darwin", opts, fake)
	b.lookPath = noneInstalled

	require.NoError(t, b.Run(context.Background()))

	script := filepath.Join(opts.TopDir, "rs_install", "rs_install.py")
	assert.Equal(t, []string{
		"sysctl -n machdep.cpu.brand_string",
		"pgrep oahd",
		"softwareupdate --install-rosetta",
		`/bin/bash -c '/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"'`,
		"brew install gh",
		"gh auth status",
		"gh auth login -w -p ssh -h github.com",
		"gh auth status",
		"gh repo clone RedesignScience/rs_install",
		"git remote show origin",
		"git checkout main",
		"gh repo sync",
		"git checkout v2.1.0",
		"python " + script + " dev " + opts.TopDir + " v2.1.0",
	}, fake.Lines())
}

func TestRunMacIntelWithToolsPresent(t *testing.T) {
	opts := linuxOpts(t)
	fake := runnertest.New().
		On("sysctl -n machdep.cpu.brand_string", runnertest.Result{Stdout: "Intel(R) Core(TM) i7\n"}).
		On("git remote show origin", runnertest.Result{Stdout: remoteShow})
	b, _ := newBootstrapper(t, "darwin", opts, fake)

	require.NoError(t, b.Run(context.Background()))

	assert.Zero(t, fake.Count("pgrep oahd"))
	assert.Zero(t, fake.Count("brew install gh"))
	assert.Equal(t, 1, fake.Count("gh auth status"))
	assert.Equal(t, 1, fake.Count("gh repo sync"))
}

func TestRunUnsupportedPlatform(t *testing.T) {
	fake := runnertest.New()
	b, _ := newBootstrapper(t, "plan9", linuxOpts(t), fake)

	err := b.Run(context.Background())
	assert.ErrorIs(t, err, platform.ErrUnsupportedPlatform)
	assert.Empty(t, fake.Calls())
	assert.Equal(t, 1, ExitCode(err))
}

func TestRunStopsOnAuthAssertion(t *testing.T) {
	fake := runnertest.New().
		On("sysctl -n machdep.cpu.brand_string", runnertest.Result{Stdout: "Intel\n"}).
		On("gh auth status", runnertest.Result{Code: 1})
	b, _ := newBootstrapper(t, "darwin", linuxOpts(t), fake)

	err := b.Run(context.Background())
	assert.ErrorIs(t, err, auth.ErrSessionNotEstablished)
	assert.Zero(t, fake.Count("gh repo clone RedesignScience/rs_install"))
}

func TestRunStopsOnDirtyTree(t *testing.T) {
	opts := linuxOpts(t)
	require.NoError(t, os.MkdirAll(filepath.Join(opts.TopDir, "rs_install"), 0755))
	fake := runnertest.New().On("git diff --quiet HEAD --", runnertest.Result{Code: 1})
	b, _ := newBootstrapper(t, "linux", opts, fake)

	err := b.Run(context.Background())

	var dirty *repo.DirtyTreeError
	require.True(t, errors.As(err, &dirty))
	assert.Equal(t, []string{"git diff --quiet HEAD --"}, fake.Lines())
	assert.Equal(t, 1, ExitCode(err))
}

func TestDelegatePropagatesExitCode(t *testing.T) {
	opts := linuxOpts(t)
	b, console := newBootstrapper(t, "linux", opts, nil)
	line := b.DelegateCommand().String()
	fake := runnertest.New().On(line, runnertest.Result{Code: 3})
	b.runner = fake

	err := b.Delegate(context.Background())

	var delegated *DelegationError
	require.True(t, errors.As(err, &delegated))
	assert.Equal(t, 3, delegated.Code)
	assert.Equal(t, 3, ExitCode(err))
	assert.Contains(t, console.String(), "Command failed: '"+line+"'")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 1, ExitCode(&runner.CommandError{Code: 128}))
	assert.Equal(t, 1, ExitCode(&DelegationError{Code: -1, Err: exec.ErrNotFound}))
	assert.Equal(t, 42, ExitCode(&DelegationError{Code: 42}))
}

func TestPrepareTopDir(t *testing.T) {
	opts := config.Options{TopDir: filepath.Join(t.TempDir(), "nested", "rs")}
	log := logger.New(nil, false)

	require.NoError(t, PrepareTopDir(opts, config.DefaultSettings(), log))
	log.Info("Installing to top_dir: %s", opts.TopDir)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(filepath.Join(opts.TopDir, "rs_install.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Installing to top_dir: "+opts.TopDir)
}
