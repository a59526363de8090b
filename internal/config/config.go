package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisURL    string
	DebugMode   bool

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	FrontendCallbackURL string
	BaseURL             string

	GitHub OAuthConfig
	Google OAuthConfig

	OpenAI OpenAIConfig
	Repo   RepoConfig
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// RepoConfig controls where README content is fetched from.
type RepoConfig struct {
	RawBaseURL      string
	APIBaseURL      string
	Token           string
	ReadmeMaxChars  int
	OutboundTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error

	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"))
	if err != nil {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_EXPIRY: %w", err))
	}

	refreshExpiry, err := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"))
	if err != nil {
		errs = append(errs, fmt.Errorf("JWT_REFRESH_EXPIRY: %w", err))
	}

	temperature, err := strconv.ParseFloat(getEnv("OPENAI_TEMPERATURE", "0.2"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("OPENAI_TEMPERATURE: %w", err))
	}

	maxChars, err := strconv.Atoi(getEnv("README_MAX_CHARS", "4000"))
	if err != nil {
		errs = append(errs, fmt.Errorf("README_MAX_CHARS: %w", err))
	}

	timeout, err := time.ParseDuration(getEnv("OUTBOUND_TIMEOUT", "30s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("OUTBOUND_TIMEOUT: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	debug := getEnv("DEBUG_MODE", "")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		DebugMode:   debug == "true" || debug == "1",

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,

		FrontendCallbackURL: getEnv("FRONTEND_CALLBACK_URL", "http://localhost:3000/auth/callback"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:8080"),

		GitHub: OAuthConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GITHUB_REDIRECT_URL", ""),
		},
		Google: OAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},

		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			Temperature: temperature,
		},

		Repo: RepoConfig{
			RawBaseURL:      strings.TrimRight(getEnv("GITHUB_RAW_BASE_URL", "https://raw.githubusercontent.com"), "/"),
			APIBaseURL:      strings.TrimRight(getEnv("GITHUB_API_BASE_URL", "https://api.github.com"), "/"),
			Token:           getEnv("GITHUB_TOKEN", ""),
			ReadmeMaxChars:  maxChars,
			OutboundTimeout: timeout,
		},
	}, nil
}

// Validate reports every missing or out-of-range setting at once so the
// server refuses to start instead of failing on the first request.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.GitHub.ClientID == "" && c.Google.ClientID == "" {
		errs = append(errs, errors.New("at least one of GITHUB_CLIENT_ID or GOOGLE_CLIENT_ID is required"))
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2, got %v", c.OpenAI.Temperature))
	}
	if c.Repo.ReadmeMaxChars <= 0 {
		errs = append(errs, fmt.Errorf("README_MAX_CHARS must be positive, got %d", c.Repo.ReadmeMaxChars))
	}
	if c.Repo.OutboundTimeout <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOUND_TIMEOUT must be positive, got %s", c.Repo.OutboundTimeout))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
