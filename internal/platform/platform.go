// Package platform classifies the host the bootstrap runs on.
package platform

import (
	"context"
	"errors"
	"strings"

	"rs-public-install/internal/logger"
	"rs-public-install/internal/runner"
)

// ErrUnsupportedPlatform is returned for hosts other than macOS and Linux.
var ErrUnsupportedPlatform = errors.New("couldn't figure out the platform on your machine")

// Kind is one of the supported host variants.
type Kind int

const (
	MacIntel Kind = iota + 1
	MacAppleSilicon
	Linux
)

func (k Kind) String() string {
	switch k {
	case MacIntel:
		return "macOS (Intel)"
	case MacAppleSilicon:
		return "macOS (Apple Silicon)"
	case Linux:
		return "Linux"
	default:
		return "unknown"
	}
}

// Platform is the classified host. It is computed once and shared by every
// later step.
type Platform struct {
	Kind Kind
}

// IsMac reports whether the host runs macOS.
func (p Platform) IsMac() bool {
	return p.Kind == MacIntel || p.Kind == MacAppleSilicon
}

// UsesGH reports whether repository operations go through the authenticated
// gh CLI rather than raw git over SSH.
func (p Platform) UsesGH() bool {
	return p.IsMac()
}

var (
	cpuBrandCmd       = runner.New("sysctl", "-n", "machdep.cpu.brand_string")
	rosettaCmd        = runner.New("pgrep", "oahd")
	installRosettaCmd = runner.New("softwareupdate", "--install-rosetta")
)

// appleSiliconMarker prefixes the CPU brand string of Apple chips ("Apple M1", ...).
const appleSiliconMarker = "Apple M"

// Detect classifies the host from its GOOS value and, on macOS, the CPU
// brand string. A failing or unexpected CPU probe counts as Intel.
func Detect(ctx context.Context, goos string, r runner.Runner, log *logger.Logger) (Platform, error) {
	switch strings.ToLower(goos) {
	case "darwin":
		log.Info("Detected Mac")
		kind := MacIntel
		if isAppleSilicon(ctx, r, log) {
			kind = MacAppleSilicon
		}
		log.Info("Check Apple Silicon-chip: %t", kind == MacAppleSilicon)
		return Platform{Kind: kind}, nil
	case "linux":
		log.Info("Detected Linux")
		return Platform{Kind: Linux}, nil
	default:
		log.Error("Couldn't figure out the platform on your machine (%s)", goos)
		return Platform{}, ErrUnsupportedPlatform
	}
}

func isAppleSilicon(ctx context.Context, r runner.Runner, log *logger.Logger) bool {
	out, err := r.Output(ctx, cpuBrandCmd)
	if err != nil {
		log.Warn("Unable to read CPU brand, assuming Intel: %v", err)
		return false
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return strings.Contains(first, appleSiliconMarker)
}

// EnsureRosetta installs the x86-64 translation layer on Apple Silicon when
// its daemon is not running. Other platforms are left untouched.
func EnsureRosetta(ctx context.Context, p Platform, r runner.Runner, log *logger.Logger) error {
	if p.Kind != MacAppleSilicon {
		return nil
	}

	out, err := r.Output(ctx, rosettaCmd)
	active := err == nil && strings.TrimSpace(string(out)) != ""
	log.Info("Check Rosetta: %t", active)
	if active {
		return nil
	}

	log.Info("Installing Rosetta for Apple Silicon macs...")
	return runner.Must(ctx, r, log, installRosettaCmd)
}
