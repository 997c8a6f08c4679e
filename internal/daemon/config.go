// Package daemon wires the Rachamuffin services together and owns the
// configuration and the HTTP server lifecycle.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/rachamuffin/rachamuffin/internal/app/engagement"
)

// Config holds all daemon configuration.
type Config struct {
	Store      StoreConfig      `toml:"store"`
	API        APIConfig        `toml:"api"`
	Engagement EngagementConfig `toml:"engagement"`
	Logging    LoggingConfig    `toml:"logging"`
}

// StoreConfig controls where save data lives.
type StoreConfig struct {
	Dir       string `toml:"dir" env:"RACHAMUFFIN_DATA_DIR"`
	Namespace string `toml:"namespace" env:"RACHAMUFFIN_NAMESPACE"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host            string        `toml:"host" env:"RACHAMUFFIN_API_HOST"`
	Port            int           `toml:"port" env:"RACHAMUFFIN_API_PORT"`
	CORSOrigins     []string      `toml:"cors_origins" env:"RACHAMUFFIN_CORS_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"RACHAMUFFIN_SHUTDOWN_TIMEOUT"`
}

// EngagementConfig holds the game rules. DefaultConfig fills every field,
// so a key set to 0 in the file or env means 0: no reward, no break
// penalty, no exp, or every break counting as a comeback. Negative values
// fall back to the defaults. break_window and initial_exp_to_next must be
// positive and exp_growth at least 1; out-of-range values use the defaults.
type EngagementConfig struct {
	MissionReward     int           `toml:"mission_reward" env:"RACHAMUFFIN_MISSION_REWARD"`
	BreakPenalty      int           `toml:"break_penalty" env:"RACHAMUFFIN_BREAK_PENALTY"`
	BreakWindow       time.Duration `toml:"break_window" env:"RACHAMUFFIN_BREAK_WINDOW"`
	ExpPerMission     int           `toml:"exp_per_mission" env:"RACHAMUFFIN_EXP_PER_MISSION"`
	ExpGrowth         float64       `toml:"exp_growth" env:"RACHAMUFFIN_EXP_GROWTH"`
	InitialExpToNext  int           `toml:"initial_exp_to_next" env:"RACHAMUFFIN_INITIAL_EXP_TO_NEXT"`
	ComebackThreshold int           `toml:"comeback_threshold" env:"RACHAMUFFIN_COMEBACK_THRESHOLD"`
}

// Rules converts the config to engine rules.
func (c EngagementConfig) Rules() engagement.Rules {
	return engagement.Rules{
		MissionReward:     c.MissionReward,
		BreakPenalty:      c.BreakPenalty,
		BreakWindow:       c.BreakWindow,
		ExpPerMission:     c.ExpPerMission,
		ExpGrowth:         c.ExpGrowth,
		InitialExpToNext:  c.InitialExpToNext,
		ComebackThreshold: c.ComebackThreshold,
	}
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level" env:"RACHAMUFFIN_LOG_LEVEL"`
	Format string `toml:"format" env:"RACHAMUFFIN_LOG_FORMAT"` // "json" or "console"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	rules := engagement.DefaultRules()
	return Config{
		Store: StoreConfig{
			Dir:       Home(),
			Namespace: "rachamuffin_",
		},
		API: APIConfig{
			Host:            "127.0.0.1",
			Port:            8642,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 5 * time.Second,
		},
		Engagement: EngagementConfig{
			MissionReward:     rules.MissionReward,
			BreakPenalty:      rules.BreakPenalty,
			BreakWindow:       rules.BreakWindow,
			ExpPerMission:     rules.ExpPerMission,
			ExpGrowth:         rules.ExpGrowth,
			InitialExpToNext:  rules.InitialExpToNext,
			ComebackThreshold: rules.ComebackThreshold,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig builds the configuration from, in increasing precedence:
// defaults, $RACHAMUFFIN_HOME/config.toml, and RACHAMUFFIN_* environment
// variables (a .env file in the working directory is loaded first).
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()
	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $RACHAMUFFIN_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ConfigPath returns the config file location.
func ConfigPath() string {
	return filepath.Join(Home(), "config.toml")
}

// Home returns the Rachamuffin data directory.
func Home() string {
	if dir := os.Getenv("RACHAMUFFIN_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rachamuffin")
}
