package config

import (
	"errors"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	StorageBackend string // "postgres" or "sqlite"
	PostgresDSN    string
	SQLitePath     string

	AnthropicAPIKey  string
	ClaudeModel      string
	OpenAIAPIKey     string
	ElevenLabsAPIKey string

	FrontendURL string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:              getEnv("APP_ENV", "development"),
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			Port:             getEnv("PORT", "3000"),
			StorageBackend:   getEnv("STORAGE_BACKEND", "sqlite"),
			PostgresDSN:      getEnv("POSTGRES_DSN", ""),
			SQLitePath:       getEnv("SQLITE_PATH", "data/app.db"),
			AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			ClaudeModel:      getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			ElevenLabsAPIKey: getEnv("ELEVENLABS_API_KEY", ""),
			FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: postgres, sqlite")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
