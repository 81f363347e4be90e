// Package config loads service settings from defaults, an optional YAML file,
// an optional .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Google  GoogleConfig  `yaml:"google"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	Gmail   GmailConfig   `yaml:"gmail"`
	Mail    MailConfig    `yaml:"mail"`
	LLM     LLMConfig     `yaml:"llm"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
}

type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	FrontendURL    string   `yaml:"frontend_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Development bool `yaml:"development"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

type OAuthConfig struct {
	ValidateState   bool          `yaml:"validate_state"`
	StateTTL        time.Duration `yaml:"state_ttl"`
	ExchangeTimeout time.Duration `yaml:"exchange_timeout"`
}

type GmailConfig struct {
	MaxResults  int64         `yaml:"max_results"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

type MailConfig struct {
	HTMLFallback bool `yaml:"html_fallback"`
}

type LLMConfig struct {
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	Concurrency     int           `yaml:"concurrency"`
	CallTimeout     time.Duration `yaml:"call_timeout"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

type SessionConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:        "localhost:8000",
			FrontendURL: "http://localhost:5173/",
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
				"http://localhost:3000",
			},
		},
		Google: GoogleConfig{
			RedirectURI: "http://localhost:8000/oauth2callback",
		},
		OAuth: OAuthConfig{
			ValidateState:   true,
			StateTTL:        5 * time.Minute,
			ExchangeTimeout: 15 * time.Second,
		},
		Gmail: GmailConfig{
			MaxResults:  10,
			CallTimeout: 20 * time.Second,
		},
		LLM: LLMConfig{
			Model:           "gpt-3.5-turbo",
			Concurrency:     1,
			CallTimeout:     30 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Session: SessionConfig{
			Backend: SessionBackendMemory,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}
}

// Load builds the configuration. Both paths are optional.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile failed: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal failed: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	cfg.overrideFromEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) overrideFromEnv() {
	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Google.RedirectURI, "REDIRECT_URI")
	setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.Model, "OPENAI_MODEL")
	setString(&c.HTTP.FrontendURL, "FRONTEND_URL")
	setString(&c.HTTP.Addr, "HTTP_ADDR")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Session.Backend, "SESSION_BACKEND")

	if v := os.Getenv("LLM_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.Concurrency = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate rejects settings the service cannot start with. Missing Google or
// OpenAI credentials are allowed and reported by the health endpoint.
func (c Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	if c.LLM.Concurrency < 1 {
		return errors.New("llm.concurrency must be at least 1")
	}
	if c.HTTP.Addr == "" {
		return errors.New("http.addr must be set")
	}

	return nil
}

func (c Config) GoogleConfigured() bool {
	return c.Google.ClientID != ""
}

func (c Config) OpenAIConfigured() bool {
	return c.LLM.APIKey != ""
}
