// Package repo keeps checkouts of the organization's repositories in sync.
//
// A repository under the install directory moves through these states:
//
//	absent    -> cloned     clone from the hosting service
//	present   -> validated  working tree must match HEAD
//	validated -> synced     check out the remote default branch and update it
//	synced    -> pinned     optionally check out a requested ref
//
// Every git command runs with its own working directory, so the process
// working directory is never modified.
package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"rs-public-install/internal/logger"
	"rs-public-install/internal/runner"
)

// DirtyTreeError reports a checkout with uncommitted changes.
type DirtyTreeError struct {
	Repo string
	Dir  string
}

func (e *DirtyTreeError) Error() string {
	return fmt.Sprintf("Local changes in repo %q. Stash them before updating.", e.Repo)
}

// DefaultBranchError reports that the remote default branch could not be
// read from `git remote show origin`.
type DefaultBranchError struct {
	Repo string
	Dir  string
	Err  error
}

func (e *DefaultBranchError) Error() string {
	msg := fmt.Sprintf("Unable to determine default branch for package %s located at %s", e.Repo, e.Dir)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DefaultBranchError) Unwrap() error { return e.Err }

// RefError reports a branch or version that git would parse as an option.
type RefError struct {
	Repo string
	Ref  string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("invalid ref %q for repo %s: refs must not start with '-'", e.Ref, e.Repo)
}

// Remote identifies where repositories are cloned from.
// - Host: hosting service, e.g., github.com.
// - Org: owning organization.
// - UseGH: clone and sync through the gh CLI instead of raw git.
type Remote struct {
	Host  string
	Org   string
	UseGH bool
}

// Synchronizer clones and updates repositories below a top directory.
type Synchronizer struct {
	runner runner.Runner
	log    *logger.Logger
	remote Remote
	topDir string
}

// NewSynchronizer returns a Synchronizer managing checkouts in topDir.
func NewSynchronizer(r runner.Runner, log *logger.Logger, remote Remote, topDir string) *Synchronizer {
	return &Synchronizer{runner: r, log: log, remote: remote, topDir: topDir}
}

// Dir returns the checkout directory of name.
func (s *Synchronizer) Dir(name string) string {
	return filepath.Join(s.topDir, name)
}

// Sync brings the checkout of name to the tip of its remote default branch,
// then checks out version when it is not empty. A missing checkout is
// cloned first; an existing one must have a clean working tree.
func (s *Synchronizer) Sync(ctx context.Context, name, version string) error {
	dir := s.Dir(name)

	// Reject the pin before touching the checkout
	if version != "" {
		if err := s.checkRef(name, version); err != nil {
			return err
		}
	}

	present, err := exists(dir)
	if err != nil {
		s.log.Error("Unable to inspect %s: %v", dir, err)
		return fmt.Errorf("inspect %s: %w", dir, err)
	}
	if present {
		if err := s.ensureClean(ctx, name, dir); err != nil {
			return err
		}
	} else if err := s.clone(ctx, name); err != nil {
		return err
	}

	branch, err := s.DefaultBranch(ctx, name)
	if err != nil {
		return err
	}
	s.log.Debug("Default branch of %s is %s", name, branch)
	if err := s.checkRef(name, branch); err != nil {
		return err
	}

	if err := s.must(ctx, runner.New("git", "checkout", branch).In(dir)); err != nil {
		return err
	}
	if err := s.must(ctx, s.syncCmd().In(dir)); err != nil {
		return err
	}

	if version != "" {
		if err := s.must(ctx, runner.New("git", "checkout", version).In(dir)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) ensureClean(ctx context.Context, name, dir string) error {
	code, err := s.runner.Run(ctx, runner.New("git", "diff", "--quiet", "HEAD", "--").In(dir))
	if err != nil {
		s.log.Error("Unable to check working tree of %s: %v", name, err)
		return fmt.Errorf("check working tree of %s: %w", name, err)
	}
	if code != 0 {
		dirty := &DirtyTreeError{Repo: name, Dir: dir}
		s.log.Error("%s", dirty)
		return dirty
	}
	return nil
}

func (s *Synchronizer) clone(ctx context.Context, name string) error {
	var cmd runner.Command
	if s.remote.UseGH {
		cmd = runner.New("gh", "repo", "clone", s.remote.Org+"/"+name)
	} else {
		cmd = runner.New("git", "clone", fmt.Sprintf("git@%s:%s/%s.git", s.remote.Host, s.remote.Org, name))
	}
	return s.must(ctx, cmd.In(s.topDir))
}

func (s *Synchronizer) syncCmd() runner.Command {
	if s.remote.UseGH {
		return runner.New("gh", "repo", "sync")
	}
	return runner.New("git", "fetch")
}

// DefaultBranch asks the origin remote of name for its HEAD branch.
func (s *Synchronizer) DefaultBranch(ctx context.Context, name string) (string, error) {
	dir := s.Dir(name)
	out, err := s.runner.Output(ctx, runner.New("git", "remote", "show", "origin").In(dir))
	if err != nil {
		branchErr := &DefaultBranchError{Repo: name, Dir: dir, Err: err}
		s.log.Error("%s", branchErr)
		return "", branchErr
	}

	branch, ok := ParseDefaultBranch(string(out))
	if !ok {
		branchErr := &DefaultBranchError{Repo: name, Dir: dir}
		s.log.Error("%s", branchErr)
		return "", branchErr
	}
	return branch, nil
}

// checkRef refuses refs beginning with '-', which git checkout would read
// as options such as --orphan.
func (s *Synchronizer) checkRef(name, ref string) error {
	if !strings.HasPrefix(ref, "-") {
		return nil
	}
	refErr := &RefError{Repo: name, Ref: ref}
	s.log.Error("%s", refErr)
	return refErr
}

func (s *Synchronizer) must(ctx context.Context, cmd runner.Command) error {
	return runner.Must(ctx, s.runner, s.log, cmd)
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

var headBranchPattern = regexp.MustCompile(`HEAD branch:\s(\S+)`)

// ParseDefaultBranch extracts the branch name from the first
// "HEAD branch: <name>" line of `git remote show` output.
func ParseDefaultBranch(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if m := headBranchPattern.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}
