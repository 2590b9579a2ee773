package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally via a .env file) with defaults suited for
// local development.
type Config struct {
	ServerPort string

	// Spotify catalog API
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyAPIURL       string
	SpotifyAccountsURL  string
	SpotifyMarket       string

	// LLM enhancement service (OpenAI-compatible chat completions)
	LLMAPIKey      string
	LLMAPIBaseURL  string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	UseLLM         bool

	// MySQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogLevel string
	LogPath  string

	// Curated tracks override file. Empty means the embedded table only.
	CuratedDataPath string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerPort: getEnv("PORT", "5001"),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyAPIURL:       getEnv("SPOTIFY_API_URL", "https://api.spotify.com/v1"),
		SpotifyAccountsURL:  getEnv("SPOTIFY_ACCOUNTS_URL", "https://accounts.spotify.com"),
		SpotifyMarket:       getEnv("SPOTIFY_MARKET", "US"),

		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMAPIBaseURL:  getEnv("LLM_API_URL", "https://api.groq.com/openai/v1"),
		LLMModel:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 500),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
		UseLLM:         getEnvBool("USE_LLM", true),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for passwords
		DBName:     getEnv("DB_NAME", "tunescout"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),

		CuratedDataPath: getEnv("CURATED_DATA_PATH", ""),
	}
}

// LLMEnabled reports whether the LLM enhancement path is usable.
func (c *Config) LLMEnabled() bool {
	return c.UseLLM && c.LLMAPIKey != ""
}
