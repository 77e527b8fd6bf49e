package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfigFile is looked up in the working directory first.
const LocalConfigFile = "wikigame.yaml"

// PageConfig controls the generated page.
type PageConfig struct {
	Title   string `yaml:"title"`
	RepoURL string `yaml:"repo_url"`
}

// FileConfig represents the structure of wikigame.yaml.
type FileConfig struct {
	Puzzles     string     `yaml:"puzzles"`
	Output      string     `yaml:"output"`
	Contributor string     `yaml:"contributor"`
	Page        PageConfig `yaml:"page"`
}

// UserConfigPath returns ~/.wikigame/config.yaml.
func UserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".wikigame", "config.yaml"), nil
}

// LoadConfigFile loads configuration from path. Returns nil if the file
// doesn't exist (not an error). Returns error if the file exists but cannot
// be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // File doesn't exist -- not an error
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Find loads the first config file that exists: explicit if given (it must
// exist), otherwise ./wikigame.yaml, then ~/.wikigame/config.yaml. Returns
// nil and an empty path when there is none.
func Find(explicit string) (*FileConfig, string, error) {
	if explicit != "" {
		cfg, err := LoadConfigFile(explicit)
		if err != nil {
			return nil, "", err
		}
		if cfg == nil {
			return nil, "", fmt.Errorf("config file %s does not exist", explicit)
		}
		return cfg, explicit, nil
	}

	candidates := []string{LocalConfigFile}
	if userPath, err := UserConfigPath(); err == nil {
		candidates = append(candidates, userPath)
	}

	for _, path := range candidates {
		cfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, "", err
		}
		if cfg != nil {
			return cfg, path, nil
		}
	}

	return nil, "", nil
}
