package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultEnv is the environment name used when none is given.
	DefaultEnv = "rs"
	// DefaultTopDir is the install directory used when none is given,
	// relative to the current directory.
	DefaultTopDir = "rs"
	// MaxArgs is the number of accepted positional arguments.
	MaxArgs = 3
)

// Usage is the one-line usage string of the bootstrap command.
const Usage = "rs-public-install <optional: env> <optional: top_dir> <optional: rs_install_version>"

// UsageError reports malformed command-line arguments.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s\nUsage: %s", e.Reason, Usage)
}

// ResolveArgs applies the defaulting rules to the positional arguments
// [env] [top_dir] [version]. An empty version means latest.
func ResolveArgs(args []string) (Options, error) {
	if len(args) > MaxArgs {
		return Options{}, &UsageError{Reason: fmt.Sprintf("accepts at most %d arguments, received %d", MaxArgs, len(args))}
	}

	opts := Options{Env: DefaultEnv}
	if len(args) >= 1 {
		opts.Env = args[0]
	}

	topDir := DefaultTopDir
	if len(args) >= 2 {
		topDir = args[1]
	}
	abs, err := filepath.Abs(topDir)
	if err != nil {
		return Options{}, fmt.Errorf("resolve top_dir %s: %w", topDir, err)
	}
	opts.TopDir = abs

	if len(args) == MaxArgs {
		opts.Version = args[2]
	}
	if strings.HasPrefix(opts.Version, "-") {
		return Options{}, &UsageError{Reason: fmt.Sprintf("version %q must not start with '-'", opts.Version)}
	}
	return opts, nil
}
