package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the optional user config file (~/.config/m2remap/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	Workers        *int  `yaml:"workers"`
	CompressBackup *bool `yaml:"compress_backup"`
	NoBackup       *bool `yaml:"no_backup"`

	Report   string `yaml:"report"`
	LogLevel string `yaml:"log_level"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "m2remap", "config.yaml")
}

// loadConfig reads path, or the default location when path is empty. A
// missing file at the default location yields a zero Config; an explicitly
// given path must exist.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// apply fills in config file defaults for every flag the user did not set on
// the command line.
func (cfg Config) apply(c *cli.Command, workers *int, compressBackup, noBackup *bool, report, logLevel *string) {
	if cfg.Workers != nil && !c.IsSet("workers") {
		*workers = *cfg.Workers
	}
	if cfg.CompressBackup != nil && !c.IsSet("compress-backup") {
		*compressBackup = *cfg.CompressBackup
	}
	if cfg.NoBackup != nil && !c.IsSet("no-backup") {
		*noBackup = *cfg.NoBackup
	}
	if cfg.Report != "" && !c.IsSet("report") {
		*report = cfg.Report
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*logLevel = cfg.LogLevel
	}
}
