// Package configfile reads and writes the project metadata file, which
// records where the feature collection lives.
package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const ConfigFileName = "metadata.json"

type Config struct {
	Collection string `json:"collection"`

	// ProjectName is an optional human-readable identifier.
	ProjectName string `json:"project_name,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Collection: "features.json",
	}
}

func ConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ConfigFileName)
}

// Load reads metadata.json from the project directory. Returns (nil, nil)
// if the file does not exist.
func Load(projectDir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(projectDir)) // #nosec G304 - controlled path from project dir
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Save(projectDir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(ConfigPath(projectDir), data, 0600); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// CollectionPath returns the absolute path of the feature collection file.
func (c *Config) CollectionPath(projectDir string) string {
	if c.Collection == "" {
		return filepath.Join(projectDir, "features.json")
	}
	return filepath.Join(projectDir, c.Collection)
}
