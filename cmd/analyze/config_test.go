package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileConfigMissingFileReturnsEmpty(t *testing.T) {
	cfg, err := loadFileConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("loadFileConfig: %v", err)
	}
	if cfg.Lang != "" || cfg.Graphs != "" || cfg.Format != "" {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadFileConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyze.yaml")
	contents := "lang: cpp\ngraphs: cfg,dfg\nformat: dot\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := loadFileConfig(path)
	if err != nil {
		t.Fatalf("loadFileConfig: %v", err)
	}
	if cfg.Lang != "cpp" || cfg.Graphs != "cfg,dfg" || cfg.Format != "dot" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestApplyDefaultsOnlyFillsUnsetFlags(t *testing.T) {
	orig := flagLang
	flagLang = ""
	flagGraphs = "cfg"
	flagFormat = "json"
	defer func() { flagLang = orig }()

	applyDefaults(&fileConfig{Lang: "c", Graphs: "cfg,combined", Format: "all"})
	if flagLang != "c" {
		t.Fatalf("flagLang = %q, want c", flagLang)
	}
	if flagGraphs != "cfg,combined" {
		t.Fatalf("flagGraphs = %q, want cfg,combined", flagGraphs)
	}
	if flagFormat != "all" {
		t.Fatalf("flagFormat = %q, want all", flagFormat)
	}

	flagLang = "cpp"
	applyDefaults(&fileConfig{Lang: "c"})
	if flagLang != "cpp" {
		t.Fatalf("explicit flagLang got overwritten: %q", flagLang)
	}
}
