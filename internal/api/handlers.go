package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/rumorguard/internal/llm"
	"github.com/ppiankov/rumorguard/internal/model"
	"github.com/ppiankov/rumorguard/internal/store"
)

// Alerts serves the alert feed
type Alerts struct {
	store *store.AlertStore
}

// NewAlerts creates the feed handler over s
func NewAlerts(s *store.AlertStore) Alerts {
	return Alerts{store: s}
}

// List returns the full feed in submission order
func (a Alerts) List(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.List())
}

// Intake accepts claims and appends non-error alerts to the store
type Intake struct {
	processor ClaimProcessor
	store     *store.AlertStore
	logger    *slog.Logger
}

// NewIntake creates the submit handler
func NewIntake(p ClaimProcessor, s *store.AlertStore, logger *slog.Logger) Intake {
	return Intake{processor: p, store: s, logger: logger}
}

type submitRequest struct {
	Claim  string `json:"claim" binding:"required"`
	Source string `json:"source" binding:"required"`
}

// Submit processes a claim. Error verdicts are reported as 500 and not stored.
func (h Intake) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	// Stored exactly as received; trimming only decides blankness
	claim := model.Claim{Text: req.Claim, Source: req.Source}
	if strings.TrimSpace(claim.Text) == "" || strings.TrimSpace(claim.Source) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "claim and source must not be blank"})
		return
	}

	alert := h.processor.Process(c.Request.Context(), claim)
	if alert.Status == model.StatusError {
		h.logger.Warn("claim rejected, verification failed",
			"source", claim.Source,
			"failure", alert.Failure)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": alert.Explanation})
		return
	}

	h.store.Append(alert)
	c.JSON(http.StatusOK, alert)
}

// Assist proxies free-form text and image prompts to the configured model
type Assist struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewAssist creates the proxy handler; p may be nil
func NewAssist(p llm.Provider, logger *slog.Logger) Assist {
	return Assist{provider: p, logger: logger}
}

type textRequest struct {
	Prompt            string `json:"prompt" binding:"required"`
	Grounded          bool   `json:"grounded"`
	SystemInstruction string `json:"system_instruction"`
}

// Text proxies a free-form prompt to the configured model for the dashboard
func (h Assist) Text(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "text": "Text API key is not configured."})
		return
	}

	resp, err := h.provider.Generate(c.Request.Context(), llmRequest(req))
	if err != nil {
		h.logger.Error("text proxy failed", "provider", h.provider.Name(), "error", err)
		c.JSON(statusFor(err), gin.H{"status": "error", "text": "Error calling text API: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "text": resp.Text})
}

type imageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Image renders a prompt with the provider's image model and returns it as a data URL.
// Every failure answers image_url null.
func (h Assist) Image(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "image_url": nil})
		return
	}
	images, ok := h.provider.(llm.ImageGenerator)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"status": "error", "image_url": nil})
		return
	}

	resp, err := images.GenerateImage(c.Request.Context(), llm.ImageRequest{Prompt: req.Prompt})
	if err != nil {
		h.logger.Error("image proxy failed", "provider", h.provider.Name(), "error", err)
		c.JSON(statusFor(err), gin.H{"status": "error", "image_url": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "image_url": resp.DataURL()})
}

func llmRequest(req textRequest) llm.GenerateRequest {
	return llm.GenerateRequest{
		Prompt:   req.Prompt,
		System:   req.SystemInstruction,
		Grounded: req.Grounded,
	}
}

func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// Health reports liveness and whether escalation can reach a model
func Health(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := ""
		if deps.Provider != nil {
			provider = deps.Provider.Name()
		}
		body := gin.H{
			"status":              "ok",
			"verifier_configured": deps.Provider != nil,
			"provider":            provider,
			"alerts":              deps.Store.Len(),
		}
		if last, ok := deps.Store.Last(); ok {
			body["last_alert_at"] = last.CreatedAt
		}
		c.JSON(http.StatusOK, body)
	}
}
