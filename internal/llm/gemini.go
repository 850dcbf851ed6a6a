package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel = "gemini-2.5-flash"
)

// NoExplanation is returned when a candidate carries no text, e.g. after a
// safety block or a MAX_TOKENS stop.
const NoExplanation = "No explanation provided."

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Gemini generateContent structures
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = geminiBaseURL
	}

	return &GeminiProvider{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(config, 30*time.Second),
		config:     config,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Generate calls the generateContent endpoint once and returns the first text part
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := resolveModel(req.Model, p.config.Model, geminiDefaultModel)

	apiReq := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: req.Prompt}},
			},
		},
	}
	// Thinking tokens count against maxOutputTokens, so only cap when asked to
	limit := req.MaxTokens
	if limit == 0 {
		limit = p.config.MaxTokens
	}
	if limit > 0 {
		apiReq.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: limit}
	}
	if strings.TrimSpace(req.System) != "" {
		apiReq.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if req.Grounded {
		apiReq.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	var resp geminiResponse
	url := fmt.Sprintf("%s/%s:generateContent", p.baseURL, modelPath(model))
	headers := map[string]string{"x-goog-api-key": p.apiKey}
	if err := postJSON(ctx, p.httpClient, p.Name(), url, headers, apiReq, &resp, geminiErrorMessage); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		return nil, malformed(p.Name(), "no candidates in response")
	}
	text := resp.firstText()
	if text == "" {
		text = NoExplanation
	}

	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}

	return &GenerateResponse{
		Text:       text,
		Model:      model,
		TokensUsed: resp.UsageMetadata.TotalTokenCount,
	}, nil
}

func (r geminiResponse) firstText() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Candidates[0].Content.Parts[0].Text)
}

func geminiErrorMessage(body []byte) string {
	var apiErr geminiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return ""
	}
	if apiErr.Error.Status != "" {
		return apiErr.Error.Status + " - " + apiErr.Error.Message
	}
	return apiErr.Error.Message
}

func modelPath(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
