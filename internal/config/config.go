// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"grasshopper/internal/domain"
)

type RuntimeConfig struct {
	Dev bool
	// Warnings collected while loading; main logs them once the logger exists.
	Warnings []string
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`   // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"LOG_FORMAT"` // json|console
	Sampling bool   `yaml:"sampling"`                // enable sampling in prod
}

type AIConfig struct {
	Provider        string        `yaml:"provider" env:"AI_PROVIDER"` // openai | gemini | noop
	OpenAIKey       string        `yaml:"openai_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	GeminiKey       string        `yaml:"gemini_key" env:"GEMINI_API_KEY"`
	GeminiURL       string        `yaml:"gemini_url"`
	ImageModel      string        `yaml:"image_model"`
	ChatModel       string        `yaml:"chat_model"`
	Timeout         time.Duration `yaml:"timeout" env:"AI_TIMEOUT"` // per external call
	ConcurrentLimit int           `yaml:"concurrent_limit"`         // max concurrent AI calls
	CountTokens     bool          `yaml:"count_tokens"`             // observe prompt tokens before chat calls
}

type ChatConfig struct {
	SystemPrompt string `yaml:"system_prompt"`
	// ReplayOriginalRoles sends prior assistant turns under the assistant role
	// instead of replaying every history line as user content.
	ReplayOriginalRoles bool `yaml:"replay_original_roles"`
}

type SessionConfig struct {
	Secret        string        `yaml:"secret" env:"SESSION_SECRET"`
	CookieName    string        `yaml:"cookie_name"`
	CookieDomain  string        `yaml:"cookie_domain"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT"`
	Release     string `yaml:"release"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	AI      AIConfig      `yaml:"ai"`
	Chat    ChatConfig    `yaml:"chat"`
	Session SessionConfig `yaml:"session"`
	Sentry  SentryConfig  `yaml:"sentry"`
	Metrics MetricsConfig `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

const DefaultSystemPrompt = "You are a professional fashion stylist."

// LoadConfig reads the YAML file (optional), the .env file (optional) and the
// process environment, in increasing order of precedence.
func LoadConfig(configPath, envPath string, dev bool) (*Config, error) {
	var cfg Config
	cfg.Metrics.Enabled = true

	b, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		cfg.Runtime.Warnings = append(cfg.Runtime.Warnings,
			fmt.Sprintf("config file %s not found; using defaults and environment", configPath))
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			cfg.Runtime.Warnings = append(cfg.Runtime.Warnings,
				fmt.Sprintf(".env file %s not loaded: %v", envPath, err))
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8501
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.ImageModel == "" {
		cfg.AI.ImageModel = defaultImageModel(cfg.AI.Provider)
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = defaultChatModel(cfg.AI.Provider)
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 90 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if strings.TrimSpace(cfg.Chat.SystemPrompt) == "" {
		cfg.Chat.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "grasshopper_session"
	}
	cfg.Session.IdleTTL = normalizeTTL(cfg.Session.IdleTTL)
	if cfg.Session.SweepInterval <= 0 {
		cfg.Session.SweepInterval = 5 * time.Minute
	}
	if cfg.Sentry.Environment == "" {
		cfg.Sentry.Environment = "local"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// Validate checks the required credential for the selected provider.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "openai":
		if strings.TrimSpace(c.AI.OpenAIKey) == "" {
			return &domain.MissingConfigError{
				Key:  "OPENAI_API_KEY",
				Hint: "set it in your .env file or as ai.openai_key in the config file",
			}
		}
	case "gemini":
		if strings.TrimSpace(c.AI.GeminiKey) == "" {
			return &domain.MissingConfigError{
				Key:  "GEMINI_API_KEY",
				Hint: "set it in your .env file or as ai.gemini_key in the config file",
			}
		}
	case "noop":
		if !c.Runtime.Dev {
			return errors.New("ai.provider=noop is only allowed with -dev")
		}
	default:
		return fmt.Errorf("unknown ai.provider %q (want openai, gemini or noop)", c.AI.Provider)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func defaultImageModel(provider string) string {
	if provider == "gemini" {
		return "imagen-3.0-generate-002"
	}
	return "dall-e-3"
}

func defaultChatModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.0-flash"
	}
	return "gpt-4"
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 2 * time.Hour
	}
	return d
}
