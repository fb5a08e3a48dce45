// Package config manages runtime configuration through a viper singleton.
//
// Configuration is layered: defaults, then .featrack/config.yaml in the
// project, then FT_* environment variables. Bootstrap keys that must be
// readable before viper is initialized go through LocalConfig instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProjectDirName is the per-project directory holding the collection,
// config, and lock files.
const ProjectDirName = ".featrack"

var v *viper.Viper

// Config keys
const (
	KeyActor         = "actor"
	KeyJSON          = "json"
	KeyNoColor       = "no-color"
	KeyRetryAttempts = "retry.max-attempts"
	KeyWatchDebounce = "watch.debounce"
	KeyHooksOnChange = "hooks.on-transition"
	KeyHooksTimeout  = "hooks.timeout"
	KeyRecentWindow  = "recent.default-window"
)

// Initialize sets up the viper singleton: defaults, project config.yaml
// (if a project directory is found), and FT_* environment overrides.
// Safe to call again after changing directories; it rebuilds the singleton.
func Initialize() error {
	v = viper.New()

	v.SetDefault(KeyActor, "")
	v.SetDefault(KeyJSON, false)
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyRetryAttempts, 3)
	v.SetDefault(KeyWatchDebounce, "250ms")
	v.SetDefault(KeyHooksOnChange, []string{})
	v.SetDefault(KeyHooksTimeout, "10s")
	v.SetDefault(KeyRecentWindow, "24h")

	v.SetEnvPrefix("FT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if dir, err := FindProjectDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("reading config.yaml: %w", err)
			}
		}
	}
	return nil
}

// FindProjectDir walks up from the working directory looking for a
// .featrack directory.
func FindProjectDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ProjectDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return "", fmt.Errorf("no %s directory found (run 'ft init' first)", ProjectDirName)
}

// GetString returns a string config value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool returns a boolean config value.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt returns an integer config value.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice returns a string slice config value.
func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	return v.GetStringSlice(key)
}

// GetTransitionHooks returns the shell commands to run after each
// successful transition.
func GetTransitionHooks() []string {
	return GetStringSlice(KeyHooksOnChange)
}
