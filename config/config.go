// Package config loads the daemon configuration.
//
// Sources, highest priority first: environment variables with the TRACKY_
// prefix, an optional tracky.yaml in the working directory or /etc/tracky,
// and built-in defaults. Validation is fail-fast at load time.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates the completion backend API key is unset.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrInvalidBackend indicates an unknown completion backend name.
	ErrInvalidBackend = errors.New("invalid completion backend")
	// ErrNoAllowedUsers indicates an empty user allowlist.
	ErrNoAllowedUsers = errors.New("no allowed users configured")
)

// Backend identifiers accepted in Config.Backend.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendGollm     = "gollm"
)

// Config stores the daemon configuration.
type Config struct {
	// Completion backend selection.
	Backend string `mapstructure:"backend"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`

	// Persistence.
	DBPath string `mapstructure:"db_path"`

	// HTTP gateway.
	ListenAddr     string  `mapstructure:"listen_addr"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids"`

	// Session behavior.
	MaxDecisionRetries int `mapstructure:"max_decision_retries"`

	// Logging.
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "text" or "json"
}

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("tracky")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/tracky")

	setDefaults(v)

	v.SetEnvPrefix("TRACKY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key, including empty-valued ones: viper
// only surfaces environment overrides for keys it already knows about.
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendOpenAI)
	v.SetDefault("model", "gpt-4o")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("allowed_user_ids", []int64{})
	v.SetDefault("db_path", "tracky.db")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("max_decision_retries", 8)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Validate checks the configuration and fails on the first problem.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI, BackendAnthropic, BackendGollm:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}
	if c.APIKey == "" && c.Backend != BackendGollm {
		return fmt.Errorf("%w for backend %s", ErrMissingAPIKey, c.Backend)
	}
	if len(c.AllowedUserIDs) == 0 {
		return ErrNoAllowedUsers
	}
	return nil
}
