package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "rusttypes.toml"

type projectConfig struct {
	Target targetConfig `toml:"target"`
	CABI   cabiConfig   `toml:"cabi"`
	Output outputConfig `toml:"output"`
	Run    runConfig    `toml:"run"`
	Cache  cacheConfig  `toml:"cache"`
}

type targetConfig struct {
	PointerSize uint64 `toml:"pointer_size"`
}

type cabiConfig struct {
	TagPrefix string `toml:"tag_prefix"`
}

type outputConfig struct {
	Color string `toml:"color"`
}

type runConfig struct {
	Jobs int `toml:"jobs"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	switch cfg.Target.PointerSize {
	case 0, 2, 4, 8:
	default:
		return projectConfig{}, fmt.Errorf("%s: [target].pointer_size must be 2, 4 or 8, got %d", path, cfg.Target.PointerSize)
	}
	if c := strings.ToLower(cfg.Output.Color); c != "" {
		if _, err := parseColorMode(c); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [output].color: %w", path, err)
		}
	}
	if cfg.Run.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [run].jobs must not be negative", path)
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

type colorMode uint8

const (
	colorAuto colorMode = iota
	colorOn
	colorOff
)

func parseColorMode(s string) (colorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return colorAuto, nil
	case "on", "always":
		return colorOn, nil
	case "off", "never":
		return colorOff, nil
	}
	return colorAuto, fmt.Errorf("invalid color mode %q (expected auto|on|off)", s)
}
