package model

import "time"

// Config is the complete rumorguard configuration.
// It is loaded from defaults, the config file, environment and flags (in that order).
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Intake    IntakeConfig    `yaml:"intake" mapstructure:"intake"`
	Simulator SimulatorConfig `yaml:"simulator" mapstructure:"simulator"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// PipelineConfig controls escalation
type PipelineConfig struct {
	// EscalationThreshold is compared with a strict ">" against the risk score
	EscalationThreshold float64 `yaml:"escalation_threshold" mapstructure:"escalation_threshold"`
}

// LLMConfig selects and configures the fact-check backend
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic, ollama
	Model      string `yaml:"model" mapstructure:"model"`
	ImageModel string `yaml:"image_model,omitempty" mapstructure:"image_model"`
	APIKey     string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"`       // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"` // 0 = provider default
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls verdict memoization
type CacheConfig struct {
	// VerdictTTL of zero disables the cache
	VerdictTTL      time.Duration `yaml:"verdict_ttl" mapstructure:"verdict_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// IntakeConfig controls per-client limits on the submit route
type IntakeConfig struct {
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second per client, 0 = unlimited
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// SimulatorConfig controls the synthetic claim generator
type SimulatorConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	TargetURL  string        `yaml:"target_url,omitempty" mapstructure:"target_url"`
	StartDelay time.Duration `yaml:"start_delay" mapstructure:"start_delay"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
	Loop       bool          `yaml:"loop" mapstructure:"loop"`
	ClaimsFile string        `yaml:"claims_file,omitempty" mapstructure:"claims_file"`
}

// LoggingConfig controls slog output
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           "127.0.0.1:8000",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		Pipeline: PipelineConfig{
			EscalationThreshold: 0.4,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Timeout:  30,
		},
		Cache: CacheConfig{
			VerdictTTL:      0,
			CleanupInterval: 10 * time.Minute,
		},
		Intake: IntakeConfig{
			RateLimit: 0,
			Burst:     5,
		},
		Simulator: SimulatorConfig{
			Enabled:    false,
			StartDelay: 5 * time.Second,
			Interval:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
