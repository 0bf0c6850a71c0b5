package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Read(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("missing config should be fine: %s", err)
	}
	if cfg.Output != "table" {
		t.Errorf("default output = %s, want table", cfg.Output)
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("output: json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "json" {
		t.Errorf("output = %s, want json", cfg.Output)
	}
}
