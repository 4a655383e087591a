// Package auth ensures the user holds a session with the hosting service CLI.
package auth

import (
	"context"
	"errors"
	"fmt"

	"rs-public-install/internal/logger"
	"rs-public-install/internal/runner"
)

// ErrSessionNotEstablished means the login flow finished but gh still
// reports no session. It is an internal fault rather than a user error.
var ErrSessionNotEstablished = errors.New("assertion failed: gh auth status still fails after login")

// Gate probes and, when needed, establishes a gh session for one host.
type Gate struct {
	runner runner.Runner
	log    *logger.Logger
	host   string
}

// NewGate returns a Gate for host (e.g., github.com).
func NewGate(r runner.Runner, log *logger.Logger, host string) *Gate {
	return &Gate{runner: r, log: log, host: host}
}

func (g *Gate) statusCmd() runner.Command {
	return runner.New("gh", "auth", "status")
}

func (g *Gate) loginCmd() runner.Command {
	return runner.New("gh", "auth", "login", "-w", "-p", "ssh", "-h", g.host)
}

// Ensure runs `gh auth status` and falls back to the interactive web login.
// gh auth status exits 0 when logged in and 1 otherwise.
func (g *Gate) Ensure(ctx context.Context) error {
	if g.authenticated(ctx) {
		g.log.Info("Login gh to %s: True", g.host)
		return nil
	}

	if err := runner.Must(ctx, g.runner, g.log, g.loginCmd()); err != nil {
		return fmt.Errorf("gh login to %s: %w", g.host, err)
	}
	if !g.authenticated(ctx) {
		g.log.Error("gh auth status still fails after login to %s", g.host)
		return ErrSessionNotEstablished
	}

	g.log.Info("Login gh to %s: True", g.host)
	return nil
}

func (g *Gate) authenticated(ctx context.Context) bool {
	code, err := g.runner.Run(ctx, g.statusCmd())
	return err == nil && code == 0
}
