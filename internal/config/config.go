// Package config reads runtime settings from the environment, after loading an
// optional .env file from the working directory.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/talgya/ljpw-harmony/internal/engine"
	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// Config holds process-wide settings. Physics parameters stay on engine.Config.
type Config struct {
	DBPath    string
	Steps     int
	Dt        float64
	Initial   ljpw.State
	SweepSize int
	SweepSeed int64
	Workers   int
	LogLevel  slog.Level
}

// DefaultInitial is the low-harmony starting state used when none is configured.
var DefaultInitial = ljpw.State{0.30, 0.65, 0.40, 0.35}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv reads settings from the environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		DBPath:    envOrDefault("HARMONY_DB_PATH", "harmony.db"),
		Steps:     envIntOrDefault("HARMONY_STEPS", engine.DefaultSteps),
		Dt:        envFloatOrDefault("HARMONY_DT", engine.DefaultDt),
		SweepSize: envIntOrDefault("HARMONY_SWEEP_SIZE", 64),
		SweepSeed: int64(envIntOrDefault("HARMONY_SWEEP_SEED", 0)),
		Workers:   envIntOrDefault("HARMONY_WORKERS", 4),
		Initial:   DefaultInitial,
	}

	if v := os.Getenv("HARMONY_INITIAL"); v != "" {
		s, err := ParseState(v)
		if err != nil {
			return Config{}, fmt.Errorf("HARMONY_INITIAL: %w", err)
		}
		cfg.Initial = s
	}

	level, err := parseLevel(envOrDefault("HARMONY_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if cfg.Steps < 1 {
		return Config{}, ljpw.Invalid("HARMONY_STEPS", "must be at least 1")
	}
	if cfg.SweepSize < 1 {
		return Config{}, ljpw.Invalid("HARMONY_SWEEP_SIZE", "must be at least 1")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// ParseState parses "L,J,P,W". Values are validated as finite but not clamped.
func ParseState(v string) (ljpw.State, error) {
	parts := strings.Split(v, ",")
	if len(parts) != ljpw.NumComponents {
		return ljpw.State{}, ljpw.Invalid("state", fmt.Sprintf("want %d comma-separated values, got %d", ljpw.NumComponents, len(parts)))
	}
	var s ljpw.State
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ljpw.State{}, ljpw.Invalid(ljpw.ComponentName(i), err.Error())
		}
		s[i] = f
	}
	if err := s.Validate("state"); err != nil {
		return ljpw.State{}, err
	}
	return s, nil
}

func parseLevel(v string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return 0, ljpw.Invalid("HARMONY_LOG_LEVEL", err.Error())
	}
	return level, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer setting, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envFloatOrDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid float setting, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}
