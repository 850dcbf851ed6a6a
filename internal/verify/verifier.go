// Package verify escalates high-risk claims to a generative model and
// turns the free-text reply into a coarse verdict.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/rumorguard/internal/cache"
	"github.com/ppiankov/rumorguard/internal/llm"
	"github.com/ppiankov/rumorguard/internal/model"
)

// PromptTemplate is the fixed fact-check instruction; %s is the claim text
const PromptTemplate = `Fact-check the following claim and provide a concise, clear explanation of whether it is true, false, or unverified. Claim: "%s"`

// MissingKeyExplanation is returned when no credential is configured
const MissingKeyExplanation = "Verification API key is not configured. Set GEMINI_API_KEY (or llm.api_key in the config file) to enable fact-checking."

// Verifier asks an LLM provider to fact-check claims.
// A nil provider means the credential is absent; Verify then never touches the network.
type Verifier struct {
	provider llm.Provider
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Option configures a Verifier
type Option func(*Verifier)

// WithCache memoizes successful verdicts by claim text for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(v *Verifier) {
		v.cache = c
		v.cacheTTL = ttl
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = l
	}
}

// New creates a verifier backed by provider (which may be nil)
func New(provider llm.Provider, opts ...Option) *Verifier {
	v := &Verifier{
		provider: provider,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Configured reports whether a credentialed provider is present
func (v *Verifier) Configured() bool {
	return v.provider != nil
}

// BuildPrompt embeds the claim into the fact-check template
func BuildPrompt(text string) string {
	return fmt.Sprintf(PromptTemplate, text)
}

// Classify maps a model explanation onto a status by substring.
// "true" is checked before "false", so a reply mentioning both is StatusTrue.
func Classify(explanation string) model.Status {
	lower := strings.ToLower(explanation)
	switch {
	case strings.Contains(lower, "true"):
		return model.StatusTrue
	case strings.Contains(lower, "false"):
		return model.StatusFalse
	default:
		return model.StatusUnverified
	}
}

// Verify fact-checks text with a single upstream call.
// It never returns an error: every failure becomes a StatusError verdict.
func (v *Verifier) Verify(ctx context.Context, text string) (verdict model.Verdict) {
	if v.provider == nil {
		v.logger.Warn("verification skipped, credential absent")
		return model.Verdict{
			Status:      model.StatusError,
			Explanation: MissingKeyExplanation,
			Failure:     model.FailureConfigurationMissing,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("verification panicked", "panic", r)
			verdict = model.Verdict{
				Status:      model.StatusError,
				Explanation: fmt.Sprintf("An unexpected error occurred: %v", r),
				Failure:     model.FailureUpstreamMalformed,
			}
		}
	}()

	if cached, ok := v.lookup(text); ok {
		v.logger.Debug("verdict cache hit", "status", cached.Status)
		return cached
	}

	start := time.Now()
	resp, err := v.provider.Generate(ctx, llm.GenerateRequest{Prompt: BuildPrompt(text)})
	if err != nil {
		verdict = failureVerdict(err)
		v.logger.Error("verification failed",
			"provider", v.provider.Name(),
			"failure", verdict.Failure,
			"error", err,
			"elapsed", time.Since(start))
		return verdict
	}

	verdict = model.Verdict{
		Status:      Classify(resp.Text),
		Explanation: resp.Text,
	}
	v.logger.Info("claim verified",
		"provider", v.provider.Name(),
		"model", resp.Model,
		"status", verdict.Status,
		"tokens", resp.TokensUsed,
		"elapsed", time.Since(start))

	v.store(text, verdict)
	return verdict
}

// failureVerdict normalizes provider errors into the three failure kinds
func failureVerdict(err error) model.Verdict {
	var apiErr *llm.APIError

	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		return model.Verdict{
			Status:      model.StatusError,
			Explanation: MissingKeyExplanation,
			Failure:     model.FailureConfigurationMissing,
		}
	case errors.Is(err, llm.ErrMalformedResponse):
		return model.Verdict{
			Status:      model.StatusError,
			Explanation: fmt.Sprintf("Unexpected response from the verification service: %v", err),
			Failure:     model.FailureUpstreamMalformed,
		}
	case errors.As(err, &apiErr):
		return model.Verdict{
			Status:      model.StatusError,
			Explanation: fmt.Sprintf("Error interacting with the verification service (HTTP %d): %s", apiErr.StatusCode, apiErr.Message),
			Failure:     model.FailureUpstreamTransport,
		}
	default:
		return model.Verdict{
			Status:      model.StatusError,
			Explanation: fmt.Sprintf("Error contacting the verification service: %v", err),
			Failure:     model.FailureUpstreamTransport,
		}
	}
}

func (v *Verifier) lookup(text string) (model.Verdict, bool) {
	if v.cache == nil {
		return model.Verdict{}, false
	}
	key := cache.VerdictKey(text)
	data, found := v.cache.Get(key)
	if !found {
		return model.Verdict{}, false
	}
	var verdict model.Verdict
	if err := json.Unmarshal(data, &verdict); err != nil || !verdict.Status.Valid() {
		v.logger.Warn("dropping unreadable cached verdict")
		_ = v.cache.Delete(key)
		return model.Verdict{}, false
	}
	return verdict, true
}

// store caches non-error verdicts only, so a failed call is retried next time
func (v *Verifier) store(text string, verdict model.Verdict) {
	if v.cache == nil || verdict.Status == model.StatusError {
		return
	}
	data, err := json.Marshal(verdict)
	if err != nil {
		return
	}
	if err := v.cache.Set(cache.VerdictKey(text), data, v.cacheTTL); err != nil {
		v.logger.Warn("verdict cache write failed", "error", err)
	}
}
