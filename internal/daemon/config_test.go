package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("RACHAMUFFIN_HOME", "/tmp/rm-home")
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1", cfg.API.Host)
	assert.Equal(t, 8642, cfg.API.Port)
	assert.Equal(t, "/tmp/rm-home", cfg.Store.Dir)
	assert.Equal(t, "rachamuffin_", cfg.Store.Namespace)

	rules := cfg.Engagement.Rules()
	assert.Equal(t, 10, rules.MissionReward)
	assert.Equal(t, 20, rules.BreakPenalty)
	assert.Equal(t, 48*time.Hour, rules.BreakWindow)
	assert.Equal(t, 10, rules.ExpPerMission)
	assert.Equal(t, 1.2, rules.ExpGrowth)
	assert.Equal(t, 100, rules.InitialExpToNext)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RACHAMUFFIN_HOME", home)

	toml := `
[api]
port = 9000
host = "0.0.0.0"

[engagement]
break_penalty = 5
break_window = "72h"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(toml), 0600))
	t.Setenv("RACHAMUFFIN_API_PORT", "9100")
	t.Setenv("RACHAMUFFIN_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, 9100, cfg.API.Port, "env wins over file")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.CORSOrigins)
	assert.Equal(t, 5, cfg.Engagement.BreakPenalty)
	assert.Equal(t, 72*time.Hour, cfg.Engagement.BreakWindow)
	assert.Equal(t, 10, cfg.Engagement.MissionReward, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_ZeroRulesAreKept(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RACHAMUFFIN_HOME", home)
	toml := `
[engagement]
break_penalty = 0
comeback_threshold = 0
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(toml), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	rules := cfg.Engagement.Rules()
	assert.Equal(t, 0, rules.BreakPenalty)
	assert.Equal(t, 0, rules.ComebackThreshold)
	assert.Equal(t, 10, rules.MissionReward)
}

func TestLoadConfig_BadFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RACHAMUFFIN_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte("[api\nport="), 0600))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("RACHAMUFFIN_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 7777
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7777, loaded.API.Port)
	assert.Equal(t, cfg.Engagement.BreakWindow, loaded.Engagement.BreakWindow)
}
