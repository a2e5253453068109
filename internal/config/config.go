package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"wordgarden/internal/engine/match"
	"wordgarden/internal/engine/mastery"
	"wordgarden/internal/engine/reward"
	"wordgarden/internal/engine/selection"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// SessionSize is the number of items a practice queue targets.
	SessionSize int

	Engine EngineConfig
}

// EngineConfig carries the tuning knobs for the practice engine. Each
// component ships defaults; environment variables override the ones
// deployments most often tune.
type EngineConfig struct {
	Match     match.Config
	Mastery   mastery.Config
	Selection selection.Config
	Reward    reward.Config
}

// Load reads configuration from environment variables with sensible
// defaults. A local .env file is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./wordgarden.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		SessionSize:    getEnvInt("SESSION_SIZE", 10),
		Engine: EngineConfig{
			Match:     match.DefaultConfig(),
			Mastery:   mastery.DefaultConfig(),
			Selection: selection.DefaultConfig(),
			Reward:    reward.DefaultConfig(),
		},
	}

	cfg.Engine.Match.LongWordTolerance = getEnvInt("MATCH_LONG_WORD_TOLERANCE", cfg.Engine.Match.LongWordTolerance)
	cfg.Engine.Mastery.MinAttempts = getEnvInt("MASTERY_MIN_ATTEMPTS", cfg.Engine.Mastery.MinAttempts)
	cfg.Engine.Mastery.MasteredBestAccuracy = getEnvFloat("MASTERY_MASTERED_ACCURACY", cfg.Engine.Mastery.MasteredBestAccuracy)
	cfg.Engine.Selection.NeedsShare = getEnvFloat("SELECTION_NEEDS_SHARE", cfg.Engine.Selection.NeedsShare)
	cfg.Engine.Selection.MaintenanceShare = getEnvFloat("SELECTION_MAINTENANCE_SHARE", cfg.Engine.Selection.MaintenanceShare)
	cfg.Engine.Reward.BaseXPPerItem = getEnvInt("REWARD_BASE_XP", cfg.Engine.Reward.BaseXPPerItem)
	cfg.Engine.Reward.HappinessDecayPerDay = getEnvInt("COMPANION_DECAY_PER_DAY", cfg.Engine.Reward.HappinessDecayPerDay)

	return cfg
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable; a missing or
// malformed value falls back to the default.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvFloat reads a float environment variable; a missing or
// malformed value falls back to the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}
