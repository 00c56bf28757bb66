package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Roster   RosterConfig
	Cache    CacheConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	YouTube  YouTubeConfig
	Synopsis SynopsisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Addr string
}

type RosterConfig struct {
	CSVURL  string // published spreadsheet CSV export
	CSVFile string // local override, mostly for development
}

type CacheConfig struct {
	Backend  string // "memory" or "redis"
	Host     string
	Port     int
	Password string
	DB       int
}

type GeminiConfig struct {
	APIKey string
}

type OpenAIConfig struct {
	APIKey         string
	EnableFallback bool
}

type YouTubeConfig struct {
	APIKey string // optional Data API backup for discovery
}

type SynopsisConfig struct {
	Models         []string // generative model priority list, most capable first
	TranscriptLang string   // preferred caption language
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		Roster: RosterConfig{
			CSVURL:  getEnv("ROSTER_CSV_URL", ""),
			CSVFile: getEnv("ROSTER_CSV_FILE", ""),
		},
		Cache: CacheConfig{
			Backend:  getEnv("CACHE_BACKEND", "memory"),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Gemini: GeminiConfig{
			APIKey: lookupSecret("GEMINI_API_KEY"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         lookupSecret("OPENAI_API_KEY"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		YouTube: YouTubeConfig{
			APIKey: getEnv("YOUTUBE_API_KEY", ""),
		},
		Synopsis: SynopsisConfig{
			Models:         parseCommaSeparated(getEnv("SYNOPSIS_MODELS", "")),
			TranscriptLang: getEnv("TRANSCRIPT_LANG", "ko"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be \"memory\" or \"redis\", got %q", c.Cache.Backend)
	}
	// A missing Gemini key is not an error: the synopsis generator falls back
	// to the extractive strategy.
	return nil
}

// lookupSecret resolves a credential from the environment first, then from an
// optional secrets file (godotenv format, path in SECRETS_FILE). Absence of
// both just means the value is empty.
func lookupSecret(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	secretsFile := getEnv("SECRETS_FILE", "secrets.env")
	secrets, err := godotenv.Read(secretsFile)
	if err != nil {
		return ""
	}
	return secrets[key]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
