package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 2, cfg.Game.MinPlayers)
	assert.Equal(t, 8, cfg.Game.MaxPlayers)
	assert.Equal(t, 80*time.Second, cfg.Game.RoundDuration)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DEBUG", "true")
	t.Setenv("ROUND_DURATION", "45s")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 45*time.Second, cfg.Game.RoundDuration)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("DEBUG", "not-a-bool")
	t.Setenv("ROUND_DURATION", "eighty")

	cfg := Load()
	assert.False(t, cfg.Debug)
	assert.Equal(t, 80*time.Second, cfg.Game.RoundDuration)
}
