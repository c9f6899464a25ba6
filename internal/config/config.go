package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/baditaflorin/go_subs_normalize/internal/core/rules"
)

// Config holds the complete application configuration.
type Config struct {
	Normalize NormalizeConfig `mapstructure:"normalize"`
	Workers   int             `mapstructure:"workers"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Watch     WatchConfig     `mapstructure:"watch"`
}

// NormalizeConfig holds the rule set configuration.
type NormalizeConfig struct {
	Threshold         int               `mapstructure:"threshold"`
	Placeholder       string            `mapstructure:"placeholder"`
	ReturnPlaceholder string            `mapstructure:"return_placeholder"`
	CountryMarker     string            `mapstructure:"country_marker"`
	NoiseMarker       string            `mapstructure:"noise_marker"`
	Dedup             bool              `mapstructure:"dedup"`
	SimplifyTokens    []string          `mapstructure:"simplify_tokens"`
	StripTokens       []string          `mapstructure:"strip_tokens"`
	ReturnTokens      []string          `mapstructure:"return_tokens"`
	Symbols           string            `mapstructure:"symbols"`
	Countries         []string          `mapstructure:"countries"`
	Repairs           map[string]string `mapstructure:"repairs"`
	VerifyYAML        bool              `mapstructure:"verify_yaml"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxRequestSize int           `mapstructure:"max_request_size"`
	WarmUp         bool          `mapstructure:"warm_up"`
}

// WatchConfig holds file watcher configuration.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	d := rules.DefaultOptions()
	v.SetDefault("normalize.threshold", d.Threshold)
	v.SetDefault("normalize.placeholder", d.Placeholder)
	v.SetDefault("normalize.return_placeholder", d.ReturnPlaceholder)
	v.SetDefault("normalize.country_marker", d.CountryMarker)
	v.SetDefault("normalize.noise_marker", d.NoiseMarker)
	v.SetDefault("normalize.dedup", d.Dedup)
	v.SetDefault("normalize.simplify_tokens", d.SimplifyTokens)
	v.SetDefault("normalize.strip_tokens", d.StripTokens)
	v.SetDefault("normalize.return_tokens", d.ReturnTokens)
	v.SetDefault("normalize.symbols", d.Symbols)
	v.SetDefault("normalize.countries", d.Countries)
	v.SetDefault("normalize.repairs", d.Repairs)
	v.SetDefault("normalize.verify_yaml", false)

	v.SetDefault("workers", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_request_size", 10*1024*1024)
	v.SetDefault("server.warm_up", true)

	v.SetDefault("watch.debounce", "100ms")
}

// New decodes and validates the configuration held by v.
func New(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Default returns the configuration produced by the defaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := New(v)
	if err != nil {
		panic(fmt.Errorf("default configuration is invalid: %w", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Normalize.RuleOptions().Validate(); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	if c.Server.MaxRequestSize < 1 {
		return errors.New("server.max_request_size must be positive")
	}
	if c.Watch.Debounce < 0 {
		return errors.New("watch.debounce must not be negative")
	}
	return nil
}

// RuleOptions converts the normalize section to rule options.
func (n NormalizeConfig) RuleOptions() rules.Options {
	return rules.Options{
		Threshold:         n.Threshold,
		Placeholder:       n.Placeholder,
		ReturnPlaceholder: n.ReturnPlaceholder,
		CountryMarker:     n.CountryMarker,
		NoiseMarker:       n.NoiseMarker,
		Dedup:             n.Dedup,
		SimplifyTokens:    n.SimplifyTokens,
		StripTokens:       n.StripTokens,
		ReturnTokens:      n.ReturnTokens,
		Symbols:           n.Symbols,
		Countries:         n.Countries,
		Repairs:           n.Repairs,
	}
}
