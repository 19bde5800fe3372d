package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents defaults stored in ~/.config/bibfix/config.yml.
// Unset values leave the built-in defaults in place.
type GlobalConfig struct {
	MaxAuthors    *int   `yaml:"max_authors,omitempty"`
	Abbreviations string `yaml:"abbreviations,omitempty"` // Path to the abbreviation JSON file
	Manuscript    string `yaml:"manuscript,omitempty"`    // Path to the LaTeX manuscript
	Policy        string `yaml:"policy,omitempty"`        // Path to a required-field policy file
	Encoding      string `yaml:"encoding,omitempty"`      // Encoding of .bib files, e.g. latin1
	Abbreviate    bool   `yaml:"abbreviate,omitempty"`
	RecaseTitles  bool   `yaml:"recase_titles,omitempty"`
	FilterCited   bool   `yaml:"filter_cited,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bibfix"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibfix/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file at path.
// An empty path means GlobalConfigPath(). Returns an empty config (not an
// error) if the file doesn't exist.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	if path == "" {
		path = GlobalConfigPath()
	}
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.Abbreviations = ExpandPath(cfg.Abbreviations)
	cfg.Manuscript = ExpandPath(cfg.Manuscript)
	cfg.Policy = ExpandPath(cfg.Policy)

	return &cfg, nil
}
