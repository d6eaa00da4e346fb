package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the CLI flags so an analyze.yaml checked into a repo
// can supply defaults without exporting shell env vars, same role the
// teacher's config layer plays.
type fileConfig struct {
	Lang   string `yaml:"lang"`
	Graphs string `yaml:"graphs"`
	Format string `yaml:"format"`
}

// loadFileConfig reads path if it exists, applying its values as flag
// defaults that explicit CLI flags still override.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &fileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyDefaults fills flag values from cfg once flags are parsed. A flag
// still holding its default (empty --lang, --graphs cfg, --format json)
// counts as unset and takes the file's value, even when that default was
// passed explicitly; any other explicit flag value wins.
func applyDefaults(cfg *fileConfig) {
	if flagLang == "" {
		flagLang = cfg.Lang
	}
	if flagGraphs == "cfg" && cfg.Graphs != "" {
		flagGraphs = cfg.Graphs
	}
	if flagFormat == "json" && cfg.Format != "" {
		flagFormat = cfg.Format
	}
}
