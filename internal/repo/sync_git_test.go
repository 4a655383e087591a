package repo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rs-public-install/internal/logger"
	"rs-public-install/internal/runner"
)

func execGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-c", "user.name=rs", "-c", "user.email=rs@example.com"}, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return string(out)
}

// setupRemote creates a bare repository with one commit and a tag on main,
// and a local clone of it named rs_install under the returned top directory.
func setupRemote(t *testing.T) (top string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	root := t.TempDir()
	remote := filepath.Join(root, "remote.git")
	seed := filepath.Join(root, "seed")
	top = filepath.Join(root, "top")
	require.NoError(t, os.MkdirAll(seed, 0755))
	require.NoError(t, os.MkdirAll(top, 0755))

	execGit(t, root, "init", "--bare", "-b", "main", remote)
	execGit(t, seed, "init", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(seed, "rs_install.py"), []byte("print('v1')\n"), 0644))
	execGit(t, seed, "add", ".")
	execGit(t, seed, "commit", "-m", "initial")
	execGit(t, seed, "tag", "v1")
	execGit(t, seed, "remote", "add", "origin", remote)
	execGit(t, seed, "push", "origin", "main", "--tags")

	execGit(t, top, "clone", remote, "rs_install")
	return top
}

func newExecSync(top string) *Synchronizer {
	var sink bytes.Buffer
	log := logger.New(&sink, false)
	r := &runner.Exec{Log: log, Stdin: strings.NewReader(""), Stdout: &sink, Stderr: &sink}
	return NewSynchronizer(r, log, Remote{Host: "github.com", Org: "RedesignScience"}, top)
}

func TestSyncAgainstRealGit(t *testing.T) {
	top := setupRemote(t)
	s := newExecSync(top)
	dir := s.Dir("rs_install")

	branch, err := s.DefaultBranch(context.Background(), "rs_install")
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	require.NoError(t, s.Sync(context.Background(), "rs_install", ""))
	assert.Equal(t, "main", strings.TrimSpace(execGit(t, dir, "branch", "--show-current")))

	require.NoError(t, s.Sync(context.Background(), "rs_install", "v1"))
	assert.Empty(t, strings.TrimSpace(execGit(t, dir, "branch", "--show-current")), "pinned ref leaves HEAD detached")
}

func TestSyncRejectsRealDirtyTree(t *testing.T) {
	top := setupRemote(t)
	s := newExecSync(top)
	dir := s.Dir("rs_install")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rs_install.py"), []byte("print('edited')\n"), 0644))

	err := s.Sync(context.Background(), "rs_install", "")
	var dirty *DirtyTreeError
	assert.True(t, errors.As(err, &dirty))
}

func TestSyncRefusesOptionLikeVersionAgainstRealGit(t *testing.T) {
	top := setupRemote(t)
	s := newExecSync(top)
	dir := s.Dir("rs_install")

	err := s.Sync(context.Background(), "rs_install", "--orphan=evil")

	var refErr *RefError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "main", strings.TrimSpace(execGit(t, dir, "branch", "--show-current")))
}
