package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/rumorguard/internal/model"
)

func TestSubmitURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"127.0.0.1:8000", "http://127.0.0.1:8000/api/submit_claim"},
		{"0.0.0.0:8000", "http://127.0.0.1:8000/api/submit_claim"},
		{":9090", "http://127.0.0.1:9090/api/submit_claim"},
		{"[::]:8000", "http://127.0.0.1:8000/api/submit_claim"},
		{"example.org:80", "http://example.org:80/api/submit_claim"},
	}

	for _, tt := range tests {
		if got := submitURL(tt.addr); got != tt.want {
			t.Errorf("submitURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestMaskKey(t *testing.T) {
	if maskKey("") != "" {
		t.Error("empty key should stay empty")
	}
	if maskKey("abc") != "****" {
		t.Errorf("short key not fully masked: %q", maskKey("abc"))
	}
	if got := maskKey("AIzaSyEXAMPLE1234"); got != "****1234" {
		t.Errorf("expected ****1234, got %q", got)
	}
}

func TestApplyProviderEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":    "g",
		"OPENAI_API_KEY":    "o",
		"ANTHROPIC_API_KEY": "a",
		"OLLAMA_BASE_URL":   "http://ollama:11434",
	}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		provider string
		key      string
		wantKey  string
	}{
		{"gemini", "", "g"},
		{"openai", "", "o"},
		{"claude", "", "a"},
		{"gemini", "explicit", "explicit"},
		{"ollama", "", ""},
	}

	for _, tt := range tests {
		cfg := model.DefaultConfig()
		cfg.LLM.Provider = tt.provider
		cfg.LLM.APIKey = tt.key
		applyProviderEnv(cfg, getenv)
		if cfg.LLM.APIKey != tt.wantKey {
			t.Errorf("%s: expected key %q, got %q", tt.provider, tt.wantKey, cfg.LLM.APIKey)
		}
	}

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	applyProviderEnv(cfg, getenv)
	if cfg.LLM.BaseURL != "http://ollama:11434" {
		t.Errorf("expected ollama base url from env, got %q", cfg.LLM.BaseURL)
	}
}

func TestRegisterDefaults_RoundTrip(t *testing.T) {
	v := viper.New()
	registerDefaults(v, model.DefaultConfig())

	cfg := &model.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Server.Addr != want.Server.Addr || cfg.Server.ReadTimeout != want.Server.ReadTimeout {
		t.Errorf("server defaults lost: %+v", cfg.Server)
	}
	if cfg.Pipeline.EscalationThreshold != 0.4 {
		t.Errorf("expected threshold 0.4, got %v", cfg.Pipeline.EscalationThreshold)
	}
	if cfg.Simulator.Interval != want.Simulator.Interval {
		t.Errorf("expected interval %v, got %v", want.Simulator.Interval, cfg.Simulator.Interval)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
}

func TestRegisterDefaults_EnvOverride(t *testing.T) {
	t.Setenv("RGTEST_SERVER_ADDR", "0.0.0.0:9000")
	t.Setenv("RGTEST_LLM_API_KEY", "from-env")

	v := viper.New()
	registerDefaults(v, model.DefaultConfig())
	v.SetEnvPrefix("RGTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("expected env addr, got %q", cfg.Server.Addr)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("expected env key, got %q", cfg.LLM.APIKey)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Pipeline.EscalationThreshold != 0.4 || cfg.LLM.Provider != "gemini" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if strings.Contains(string(data), "api_key:") {
		t.Error("default config must not contain an api_key entry")
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}
