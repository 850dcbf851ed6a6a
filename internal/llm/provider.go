package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider defines the interface for generative text backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends a single prompt and returns the first generated text span
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest contains the input for one generation call
type GenerateRequest struct {
	// Prompt is the user text sent to the model
	Prompt string

	// System is an optional system instruction
	System string

	// Grounded asks the provider to enable web search where supported
	Grounded bool

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the model output
type GenerateResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// ImageGenerator is implemented by providers that can render an image from a prompt
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// ImageRequest contains the input for one image call
type ImageRequest struct {
	Prompt string
	Model  string
}

// ImageResponse carries one generated image, base64 encoded
type ImageResponse struct {
	Base64   string
	MIMEType string
	Model    string
}

// DataURL renders the image as a data: URL for direct use in an <img> tag
func (r *ImageResponse) DataURL() string {
	mime := r.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + r.Base64
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// ImageModel for providers implementing ImageGenerator
	ImageModel string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (tests, gateways, Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation; 0 leaves the provider default
	// (Anthropic requires a limit and falls back to 1000)
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Timeout:  30,
	}
}

// ErrMissingAPIKey is returned when a hosted provider has no credential
var ErrMissingAPIKey = errors.New("API key is not configured")

// ErrMalformedResponse is returned when the reply does not have the expected shape
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a non-2xx reply from the provider
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

func malformed(provider, detail string) error {
	return fmt.Errorf("%s: %w: %s", provider, ErrMalformedResponse, detail)
}

func resolveMaxTokens(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return 1000
}

func resolveModel(requested, configured, fallback string) string {
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	if m := strings.TrimSpace(configured); m != "" {
		return m
	}
	return fallback
}
