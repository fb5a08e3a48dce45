package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of config.yaml keys that must be readable
// directly from the file rather than through the viper singleton: before
// Initialize has run, or when the working directory has changed since.
//
// Proper YAML parsing handles comments, indentation, and special
// characters that regex scraping would miss.
type LocalConfig struct {
	Actor   string `yaml:"actor"`
	JSON    bool   `yaml:"json"`
	NoColor bool   `yaml:"no-color"`
}

// LoadLocalConfig reads config.yaml directly from the given project
// directory. Returns an empty LocalConfig (not nil) if the file is missing
// or unparseable.
func LoadLocalConfig(projectDir string) *LocalConfig {
	data, err := os.ReadFile(filepath.Join(projectDir, "config.yaml")) // #nosec G304 - path from project dir
	if err != nil {
		return &LocalConfig{}
	}
	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}
