package config

// Options is the configuration resolved from the command line.
// It is built once at startup and passed by value afterwards.
// - Env: name of the environment the downstream installer creates.
// - TopDir: absolute directory holding the checkouts and the install log.
// - Version: ref of the bootstrap repository to pin; empty means latest.
type Options struct {
	Env     string
	TopDir  string
	Version string
}

// VersionLabel returns the version for display, "latest" when unpinned.
func (o Options) VersionLabel() string {
	if o.Version == "" {
		return "latest"
	}
	return o.Version
}

// Settings holds the organization-level constants of the bootstrap.
// - Host: source-control hosting service (e.g., github.com).
// - Org: owner of the bootstrap repository.
// - BootstrapRepo: repository that carries the second installer.
// - InstallerScript: path of the second installer, relative to TopDir.
// - Interpreter: program used to run InstallerScript.
// - LogFile: file name of the install log inside TopDir.
// - HomebrewInstallURL: script fetched to install brew on macOS.
type Settings struct {
	Host               string `yaml:"host"`
	Org                string `yaml:"org"`
	BootstrapRepo      string `yaml:"bootstrap_repo"`
	InstallerScript    string `yaml:"installer_script"`
	Interpreter        string `yaml:"interpreter"`
	LogFile            string `yaml:"log_file"`
	HomebrewInstallURL string `yaml:"homebrew_install_url"`
}

// DefaultSettings returns the settings used when no settings file is given.
func DefaultSettings() Settings {
	return Settings{
		Host:               "github.com",
		Org:                "RedesignScience",
		BootstrapRepo:      "rs_install",
		InstallerScript:    "rs_install/rs_install.py",
		Interpreter:        "python",
		LogFile:            "rs_install.log",
		HomebrewInstallURL: "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh",
	}
}
