package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, SourceEmbedded, cfg.Timetable.Source)
	assert.Empty(t, cfg.Timetable.RulesFile)
	assert.Equal(t, "Asia/Kolkata", cfg.Timetable.Timezone)
	assert.Equal(t, 30*time.Second, cfg.LiveBoard.Interval)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TIMETABLE_SOURCE", "./data/week.xlsx")
	t.Setenv("LIVE_BOARD_INTERVAL", "5s")
	t.Setenv("CACHE_BACKEND", " Redis ")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "./data/week.xlsx", cfg.Timetable.Source)
	assert.Equal(t, 5*time.Second, cfg.LiveBoard.Interval)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"Bindu", "Kusum"}, splitAndTrim(" Bindu ,Kusum,"))
}
