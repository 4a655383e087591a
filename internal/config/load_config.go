package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSettings reads an optional settings YAML file of the form
//
//	bootstrap:
//	  org: RedesignScience
//	  bootstrap_repo: rs_install
//
// Keys that are absent keep their default value. An empty path returns the
// defaults unchanged.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	wrapper := struct {
		Bootstrap *Settings `yaml:"bootstrap"`
	}{Bootstrap: &settings}
	if err := yaml.Unmarshal(raw, &wrapper); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings file %s: %w", path, err)
	}

	if err := settings.validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return settings, nil
}

func (s Settings) validate() error {
	required := []struct {
		key, value string
	}{
		{"host", s.Host},
		{"org", s.Org},
		{"bootstrap_repo", s.BootstrapRepo},
		{"installer_script", s.InstallerScript},
		{"interpreter", s.Interpreter},
		{"log_file", s.LogFile},
		{"homebrew_install_url", s.HomebrewInstallURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s must not be empty", r.key)
		}
	}
	return nil
}
