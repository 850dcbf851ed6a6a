package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/ppiankov/rumorguard/internal/cache"
	"github.com/ppiankov/rumorguard/internal/llm"
	"github.com/ppiankov/rumorguard/internal/logging"
	"github.com/ppiankov/rumorguard/internal/model"
	"github.com/ppiankov/rumorguard/internal/pipeline"
	"github.com/ppiankov/rumorguard/internal/verify"
)

// components are the collaborators shared by serve, check and batch
type components struct {
	provider  llm.Provider
	verifier  *verify.Verifier
	processor *pipeline.Processor
}

// buildComponents wires the provider, verifier and processor.
// A missing API key leaves the provider nil; verification then yields
// configuration_missing alerts instead of failing startup.
func buildComponents(cfg *model.Config) (*components, error) {
	logger := logging.New("wire")

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		logger.Warn("no API key configured, escalated claims will report a configuration error", "provider", cfg.LLM.Provider)
		provider = nil
	case err != nil:
		return nil, fmt.Errorf("create llm provider: %w", err)
	default:
		logger.Debug("llm provider ready", "provider", provider.Name())
	}

	opts := []verify.Option{verify.WithLogger(logging.New("verify"))}
	if cfg.Cache.VerdictTTL > 0 {
		opts = append(opts, verify.WithCache(cache.NewMemoryCache(cfg.Cache.VerdictTTL, cfg.Cache.CleanupInterval), cfg.Cache.VerdictTTL))
		logger.Debug("verdict cache enabled", "ttl", cfg.Cache.VerdictTTL)
	}

	verifier := verify.New(provider, opts...)

	processor := pipeline.NewProcessor(verifier,
		pipeline.WithThreshold(cfg.Pipeline.EscalationThreshold),
		pipeline.WithLogger(logging.New("pipeline")),
	)

	return &components{provider: provider, verifier: verifier, processor: processor}, nil
}

// submitURL derives the local intake URL for the listen address
func submitURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/api/submit_claim"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api/submit_claim"
}

// maskKey hides all but the last four characters of a credential
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func logStartup(logger *slog.Logger, cfg *model.Config, c *components) {
	provider := "none"
	if c.provider != nil {
		provider = c.provider.Name()
	}
	logger.Info("rumorguard starting",
		"addr", cfg.Server.Addr,
		"provider", provider,
		"threshold", cfg.Pipeline.EscalationThreshold,
		"verdict_cache", cfg.Cache.VerdictTTL > 0,
	)
}
