package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("ExplicitFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "workers: 8\ncompress_backup: true\nlog_level: debug\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Workers == nil || *cfg.Workers != 8 {
			t.Errorf("workers = %v, want 8", cfg.Workers)
		}
		if cfg.CompressBackup == nil || !*cfg.CompressBackup {
			t.Errorf("compress_backup = %v, want true", cfg.CompressBackup)
		}
		if cfg.NoBackup != nil {
			t.Errorf("no_backup = %v, want unset", cfg.NoBackup)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("log_level = %q", cfg.LogLevel)
		}
	})

	t.Run("ExplicitFileMissing", func(t *testing.T) {
		if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing explicit config")
		}
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("workers: [not an int"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := loadConfig(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}
