package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by FromEnv.
const (
	EnvName     = "GOPAIRS_NAME"
	EnvSize     = "GOPAIRS_SIZE"
	EnvDelay    = "GOPAIRS_DELAY"
	EnvSymbols  = "GOPAIRS_SYMBOLS"
	EnvScores   = "GOPAIRS_SCORES"
	EnvNoSave   = "GOPAIRS_NO_SAVE"
	EnvLog      = "GOPAIRS_LOG"
	EnvLogLevel = "GOPAIRS_LOG_LEVEL"
	EnvBackend  = "GOPAIRS_BACKEND"
)

// Score storage backends.
const (
	BackendFile  = "file"
	BackendGData = "gdata"
)

type Config struct {
	Player        string
	BoardSize     int
	FlipBackDelay time.Duration
	SymbolPaths   []string
	Backend       string
	ScoresPath    string // file backend only; empty uses the default location
	NoSave        bool
	LogPath       string // empty disables logging
	LogLevel      string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BoardSize:     16,
		FlipBackDelay: time.Second,
		Backend:       BackendFile,
		LogLevel:      "info",
	}
}

// FromEnv layers environment variables over the defaults. Values from the
// given dotenv files apply only where the process environment has no value.
// Missing dotenv files are skipped.
func FromEnv(envFiles ...string) (Config, error) {
	cfg := Default()

	fileVars := map[string]string{}
	for _, file := range envFiles {
		vars, err := godotenv.Read(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		for k, v := range vars {
			if _, ok := fileVars[k]; !ok {
				fileVars[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if v, ok := lookup(EnvName); ok {
		cfg.Player = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvSize); ok {
		size, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvSize, v, err)
		}
		cfg.BoardSize = size
	}
	if v, ok := lookup(EnvDelay); ok {
		d, err := ParseDelay(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvDelay, err)
		}
		cfg.FlipBackDelay = d
	}
	if v, ok := lookup(EnvSymbols); ok {
		cfg.SymbolPaths = SplitPaths(v)
	}
	if v, ok := lookup(EnvBackend); ok {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvScores); ok {
		cfg.ScoresPath = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvNoSave); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvNoSave, v, err)
		}
		cfg.NoSave = b
	}
	if v, ok := lookup(EnvLog); ok {
		cfg.LogPath = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.TrimSpace(v)
	}

	if err := cfg.ValidateBackend(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ValidateBackend rejects an unknown score storage backend.
func (c Config) ValidateBackend() error {
	switch c.Backend {
	case BackendFile, BackendGData:
		return nil
	}
	return fmt.Errorf("unknown score backend %q (use %s or %s)", c.Backend, BackendFile, BackendGData)
}

// ParseDelay accepts a Go duration ("1.5s", "800ms") or a plain number of
// milliseconds.
func ParseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.Atoi(s); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("delay must be positive: %s", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid delay format: %s (use '1s', '800ms' or milliseconds)", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("delay must be positive: %s", s)
	}
	return d, nil
}

// SplitPaths splits a list of paths on the OS list separator.
func SplitPaths(s string) []string {
	var paths []string
	for _, p := range filepath.SplitList(s) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
