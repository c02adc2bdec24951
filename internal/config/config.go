package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port           string
	PostgresURL    string
	AllowedOrigins []string
	Debug          bool
	WordsFile      string

	Game GameConfig
}

// GameConfig carries the per-room tuning knobs. Every room created by the
// service shares one of these.
type GameConfig struct {
	MinPlayers    int
	MaxPlayers    int
	RoundDuration time.Duration
	RoundEndDelay time.Duration
	GameOverDelay time.Duration

	BaseGuessScore int
	DrawerBonus    int

	MaxNameLength int
	MaxChatLength int
	ChatHistoryMax int

	// Sliding-window rate limits, per player.
	MessageLimit      int
	StrokeLimit       int
	StrokeUpdateLimit int
	RateWindow        time.Duration

	// Persistence tuning.
	StrokeSaveDebounce time.Duration
	StoreRetryAttempts int
	StoreRetryBackoff  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "5000"),
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		AllowedOrigins: splitEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		Debug:          getBool("DEBUG", false),
		WordsFile:      getEnv("WORDS_FILE", "./words.txt"),
		Game:           DefaultGameConfig(),
	}
}

// DefaultGameConfig returns the stock room tuning.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		MinPlayers:    2,
		MaxPlayers:    8,
		RoundDuration: getDuration("ROUND_DURATION", 80*time.Second),
		RoundEndDelay: getDuration("ROUND_END_DELAY", 8*time.Second),
		GameOverDelay: getDuration("GAME_OVER_DELAY", 10*time.Second),

		BaseGuessScore: 100,
		DrawerBonus:    50,

		MaxNameLength:  24,
		MaxChatLength:  500,
		ChatHistoryMax: 100,

		MessageLimit:      10,
		StrokeLimit:       30,
		StrokeUpdateLimit: 180,
		RateWindow:        10 * time.Second,

		StrokeSaveDebounce: 400 * time.Millisecond,
		StoreRetryAttempts: 3,
		StoreRetryBackoff:  100 * time.Millisecond,
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
