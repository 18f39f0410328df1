package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGeminiAPI = "gemini"
	BackendVertexAI  = "vertex"
)

type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Scoring ScoringConfig
	Upload  UploadConfig
	Email   EmailConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type GeminiConfig struct {
	APIKey      string
	Backend     string
	Project     string
	Location    string
	Model       string
	Temperature float32
}

// HasCredentials reports whether enough is configured to reach the model.
func (g GeminiConfig) HasCredentials() bool {
	if g.Backend == BackendVertexAI {
		return g.Project != ""
	}
	return g.APIKey != ""
}

type ScoringConfig struct {
	Timeout           time.Duration
	ScreenTimeout     time.Duration
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMultiplier   float64
	RetryMaxDelay     time.Duration
	MaxInFlight       int
	MaxResumeChars    int
	RatePerSecond     float64
}

type UploadConfig struct {
	MaxFileSize int64
	MaxFiles    int
}

type EmailConfig struct {
	UseAI           bool
	InviteThreshold int
	CompanyName     string
	SenderName      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "3000"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Backend:     strings.ToLower(getEnv("GEMINI_BACKEND", BackendGeminiAPI)),
			Project:     getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location:    getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature: float32(getEnvAsFloat("GEMINI_TEMPERATURE", 0)),
		},
		Scoring: ScoringConfig{
			Timeout:           getEnvAsDuration("SCORING_TIMEOUT", "30s"),
			ScreenTimeout:     getEnvAsDuration("SCREEN_TIMEOUT", "4m"),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
			RetryMultiplier:   getEnvAsFloat("RETRY_MULTIPLIER", 2),
			RetryMaxDelay:     getEnvAsDuration("RETRY_MAX_DELAY", "20s"),
			MaxInFlight:       getEnvAsInt("SCORING_MAX_IN_FLIGHT", 3),
			MaxResumeChars:    getEnvAsInt("MAX_RESUME_CHARS", 12000),
			RatePerSecond:     getEnvAsFloat("SCORING_RATE_PER_SECOND", 0),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MaxFiles:    getEnvAsInt("MAX_FILES", 50),
		},
		Email: EmailConfig{
			UseAI:           getEnvAsBool("EMAIL_USE_AI", true),
			InviteThreshold: getEnvAsInt("INVITE_THRESHOLD", 70),
			CompanyName:     getEnv("COMPANY_NAME", "our company"),
			SenderName:      getEnv("SENDER_NAME", "The Recruiting Team"),
		},
	}
}

// Validate rejects settings the pipeline cannot run with. Missing model
// credentials are not an error here: they are reported per request.
func (c *Config) Validate() error {
	var problems []string

	if c.Gemini.Backend != BackendGeminiAPI && c.Gemini.Backend != BackendVertexAI {
		problems = append(problems, fmt.Sprintf("GEMINI_BACKEND must be %q or %q", BackendGeminiAPI, BackendVertexAI))
	}
	if c.Scoring.Timeout <= 0 {
		problems = append(problems, "SCORING_TIMEOUT must be positive")
	}
	if c.Scoring.ScreenTimeout <= 0 {
		problems = append(problems, "SCREEN_TIMEOUT must be positive")
	}
	if c.Scoring.RetryMaxAttempts < 1 {
		problems = append(problems, "RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Scoring.RetryMultiplier < 1 {
		problems = append(problems, "RETRY_MULTIPLIER must be at least 1")
	}
	if c.Scoring.MaxInFlight < 1 {
		problems = append(problems, "SCORING_MAX_IN_FLIGHT must be at least 1")
	}
	if c.Scoring.MaxResumeChars < 1 {
		problems = append(problems, "MAX_RESUME_CHARS must be at least 1")
	}
	if c.Upload.MaxFileSize <= 0 {
		problems = append(problems, "MAX_FILE_SIZE must be positive")
	}
	if c.Email.InviteThreshold < 0 || c.Email.InviteThreshold > 100 {
		problems = append(problems, "INVITE_THRESHOLD must be within 0-100")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
