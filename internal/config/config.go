// Package config resolves Gerrit connection settings from environment
// variables and a persisted config file, environment taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment variable names, checked per key before the config file.
const (
	EnvHost = "GERRIT_HOST"
	EnvPort = "GERRIT_PORT"
	EnvUser = "GERRIT_USER"
)

// ErrNotConfigured is returned when one or more connection settings cannot
// be resolved from either layer.
var ErrNotConfigured = errors.New(
	"no configuration found: run 'gerrit-review-parser setup' or set GERRIT_HOST, GERRIT_PORT and GERRIT_USER")

// Config holds the Gerrit SSH connection settings. Port stays a string
// because it is only ever passed through to the ssh command line.
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	User string `yaml:"user"`
}

// Source identifies which layer supplied a configuration value.
type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

// Sources maps each setting to the layer it was resolved from.
type Sources struct {
	Host Source
	Port Source
	User Source
}

// Any reports whether any value came from the given source.
func (s Sources) Any(src Source) bool {
	return s.Host == src || s.Port == src || s.User == src
}

// Path returns the config file location under the user config directory.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config.Path: %w", err)
	}
	return filepath.Join(dir, "gerrit-review-parser", "config.yaml"), nil
}

// Load resolves the effective configuration.
func Load() (Config, error) {
	cfg, _, err := LoadWithSources()
	return cfg, err
}

// LoadWithSources resolves the effective configuration and records where
// each value came from. Resolution is per key: an environment variable
// overrides only its own setting, the rest still come from the file.
func LoadWithSources() (Config, Sources, error) {
	path, err := Path()
	if err != nil {
		return Config{}, Sources{}, err
	}
	return loadWithSourcesAt(path)
}

func loadWithSourcesAt(path string) (Config, Sources, error) {
	file := loadFileAt(path)

	var cfg Config
	var src Sources
	var missing []string

	resolve := func(envKey string, fileVal string, out *string, outSrc *Source) {
		if v, ok := os.LookupEnv(envKey); ok && v != "" {
			*out = v
			*outSrc = SourceEnv
			return
		}
		if fileVal != "" {
			*out = fileVal
			*outSrc = SourceFile
			return
		}
		missing = append(missing, envKey)
	}

	resolve(EnvHost, file.Host, &cfg.Host, &src.Host)
	resolve(EnvPort, file.Port, &cfg.Port, &src.Port)
	resolve(EnvUser, file.User, &cfg.User, &src.User)

	if len(missing) > 0 {
		return Config{}, Sources{}, fmt.Errorf("%w (missing: %v)", ErrNotConfigured, missing)
	}
	return cfg, src, nil
}

// loadFileAt reads the config file layer. A missing, unreadable or
// incomplete file is not an error here; resolution just falls through to
// nothing for the affected keys.
func loadFileAt(path string) Config {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}
	}
	return Config{
		Host: v.GetString("host"),
		Port: v.GetString("port"),
		User: v.GetString("user"),
	}
}

// Save persists the configuration for future runs.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return saveAt(path, cfg)
}

func saveAt(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	return nil
}
