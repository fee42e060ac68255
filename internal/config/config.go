// Package config locates the database and log files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is read from config.yaml under the user's config directory.
type Config struct {
	DB  DBConfig  `yaml:"db"`
	Log LogConfig `yaml:"log"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Default stores everything under ~/.cache.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	cacheDir := filepath.Join(home, ".cache")
	return Config{
		DB: DBConfig{
			Path: filepath.Join(cacheDir, "pstimetrack.db"),
		},
		Log: LogConfig{
			Path:  filepath.Join(cacheDir, "pstimetrack.log"),
			Level: "info",
		},
	}, nil
}

// Load starts from Default, applies the config file if there is one, then
// environment overrides.
func Load() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	path, err := configPath()
	if err != nil {
		return Config{}, err
	}
	if err := loadFromFile(path, &cfg); err != nil {
		return Config{}, err
	}

	if dbPath := os.Getenv("PSTIMETRACK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PSTIMETRACK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// loadFromFile leaves cfg untouched when path does not exist.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func configPath() (string, error) {
	if path := os.Getenv("PSTIMETRACK_CONFIG"); path != "" {
		return path, nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "pstimetrack", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pstimetrack", "config.yaml"), nil
}
