// Package config loads runtime configuration from FITCOACH_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/carpenike/fitcoach/internal/profile"
)

// Prefix is prepended to every environment variable name.
const Prefix = "FITCOACH_"

// Config holds all application configuration.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080" validate:"required"`
	DBPath          string        `env:"DB_PATH" envDefault:"fitcoach.db" validate:"required"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"false"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"720h" validate:"min=1m"`

	NormTablePath     string `env:"NORM_TABLE_PATH" envDefault:"norm_table_202505_all_filtered.csv"`
	FacilityTablePath string `env:"FACILITY_TABLE_PATH" envDefault:"facilities.csv"`

	StatsWindowDays int    `env:"STATS_WINDOW_DAYS" envDefault:"30" validate:"min=1,max=365"`
	ProfilePolicy   string `env:"PROFILE_POLICY" envDefault:"overwrite" validate:"oneof=overwrite fill-empty"`

	LLM LLMConfig `envPrefix:"LLM_"`

	// OpenAIAPIKey is optional. Without it the coach runs in fallback mode.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	MaxHistory    int `env:"MAX_HISTORY" envDefault:"20" validate:"min=1,max=200"`
	HistoryBudget int `env:"HISTORY_BUDGET" envDefault:"8000" validate:"min=100"`

	Log LogConfig `envPrefix:"LOG_"`

	// ChatRetention is how long chat messages are kept. Zero keeps them
	// forever.
	ChatRetention       time.Duration `env:"CHAT_RETENTION" envDefault:"2160h" validate:"min=0"`
	MaintenanceInterval time.Duration `env:"MAINTENANCE_INTERVAL" envDefault:"6h" validate:"min=1m"`

	LoginRateLimit int `env:"LOGIN_RATE_LIMIT" envDefault:"10" validate:"min=1"`
	// ChatRateLimit is how many chat messages one user may send per minute.
	ChatRateLimit  int      `env:"CHAT_RATE_LIMIT" envDefault:"20" validate:"min=1"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// LLMConfig configures the chat provider.
type LLMConfig struct {
	Model       string        `env:"MODEL" envDefault:"gpt-4o-mini" validate:"required"`
	BaseURL     string        `env:"BASE_URL" validate:"omitempty,url"`
	MaxTokens   int           `env:"MAX_TOKENS" envDefault:"700" validate:"min=1,max=32768"`
	Temperature float64       `env:"TEMPERATURE" envDefault:"0.7" validate:"min=0,max=2"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s" validate:"min=1s,max=10m"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	Format string `env:"FORMAT" envDefault:"json" validate:"oneof=json console"`
	// File, when set, sends logs to a rotating file instead of stdout.
	File string `env:"FILE"`
}

// Policy returns the parsed profile merge policy.
func (c *Config) Policy() profile.Policy {
	p, err := profile.ParsePolicy(c.ProfilePolicy)
	if err != nil {
		return profile.PolicyOverwrite
	}
	return p
}

// LLMEnabled reports whether an API key is configured.
func (c *Config) LLMEnabled() bool { return c.OpenAIAPIKey != "" }

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{Prefix: Prefix})
}

// LoadFromMap reads the configuration from vars, which use full variable
// names including the prefix. The process environment is ignored.
func LoadFromMap(vars map[string]string) (*Config, error) {
	return load(env.Options{Prefix: Prefix, Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}
