// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/ats"
)

// LLM providers accepted by LLM_PROVIDER.
const (
	ProviderNone       = "none"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// placeholderAPIKey is the value shipped in sample .env files.
const placeholderAPIKey = "your_api_key_here"

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`
	// DBURL selects the Postgres role store; empty keeps roles in memory.
	DBURL           string        `env:"DB_URL"`
	DBAutoMigrate   bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	RedisURL        string        `env:"REDIS_URL"`
	KeywordCacheTTL time.Duration `env:"KEYWORD_CACHE_TTL" envDefault:"10m"`
	// TikaURL specifies the base URL for the Apache Tika server used for text extraction
	TikaURL         string `env:"TIKA_URL" envDefault:"http://tika:9998"`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ats-resume-analyzer"`

	LLMProvider        string        `env:"LLM_PROVIDER" envDefault:"none"`
	GeminiAPIKey       string        `env:"GEMINI_API_KEY"`
	GeminiModel        string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenRouterAPIKey   string        `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL  string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel    string        `env:"OPENROUTER_MODEL" envDefault:"meta-llama/llama-3.1-8b-instruct:free"`
	OpenRouterReferer  string        `env:"OPENROUTER_REFERER"`
	OpenRouterTitle    string        `env:"OPENROUTER_TITLE" envDefault:"ATS Resume Analyzer"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"20s"`
	LLMMaxPromptTokens int           `env:"LLM_MAX_PROMPT_TOKENS" envDefault:"6000"`
	LLMBreakerFailures int           `env:"LLM_BREAKER_FAILURES" envDefault:"5"`
	LLMBreakerCooldown time.Duration `env:"LLM_BREAKER_COOLDOWN" envDefault:"60s"`
	// LLMRatePerMin caps provider calls across replicas through Redis; 0 disables.
	LLMRatePerMin int `env:"LLM_RATE_PER_MIN" envDefault:"0"`
	// AI Backoff Configuration
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"15s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"500ms"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"5s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`

	// Scoring knobs. Weights must sum to 1 to keep blended scores in range.
	ScoreKeywordWeight float64 `env:"SCORE_KEYWORD_WEIGHT" envDefault:"0.4"`
	ScoreLLMWeight     float64 `env:"SCORE_LLM_WEIGHT" envDefault:"0.6"`
	MinTextLength      int     `env:"MIN_TEXT_LENGTH" envDefault:"50"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	// AdminPasswordHash is an argon2id hash from httpserver.HashPassword; it takes precedence over AdminPassword.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Provider() {
	case ProviderNone, ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.ScoreKeywordWeight < 0 || c.ScoreLLMWeight < 0 {
		return fmt.Errorf("score weights must not be negative")
	}
	if c.LLMRatePerMin < 0 {
		return fmt.Errorf("LLM_RATE_PER_MIN must not be negative")
	}
	if sum := c.ScoreKeywordWeight + c.ScoreLLMWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("score weights must sum to 1, got %.3f", sum)
	}
	return nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// AdminEnabled returns true when role mutations must be authenticated.
func (c Config) AdminEnabled() bool {
	return c.AdminUsername != "" && (c.AdminPassword != "" || c.AdminPasswordHash != "")
}

// Provider returns the normalized LLM provider name.
func (c Config) Provider() string {
	p := strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if p == "" {
		return ProviderNone
	}
	return p
}

// LLMAPIKey returns the key for the selected provider. The sample placeholder
// counts as unset.
func (c Config) LLMAPIKey() string {
	var key string
	switch c.Provider() {
	case ProviderGemini:
		key = c.GeminiAPIKey
	case ProviderOpenRouter:
		key = c.OpenRouterAPIKey
	}
	key = strings.TrimSpace(key)
	if key == placeholderAPIKey {
		return ""
	}
	return key
}

// LLMEnabled reports whether a provider is selected and has a usable key.
func (c Config) LLMEnabled() bool {
	return c.Provider() != ProviderNone && c.LLMAPIKey() != ""
}

// ScoringWeights returns the blend weights for keyword and model scores.
func (c Config) ScoringWeights() ats.BlendWeights {
	return ats.BlendWeights{Keyword: c.ScoreKeywordWeight, LLM: c.ScoreLLMWeight}
}

// GetAIBackoffConfig returns backoff configuration appropriate for the current environment.
// In test environments, uses much shorter timeouts for faster test execution.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 10 * time.Millisecond, 100 * time.Millisecond, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
