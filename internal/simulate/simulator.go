// Package simulate drives the intake route with synthetic claims.
package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/rumorguard/internal/model"
)

// DefaultClaims is the synthetic cyclone rumor set
var DefaultClaims = []model.Claim{
	{Text: "Cyclone has been upgraded to Category 4.", Source: "Messaging Apps"},
	{Text: "Evacuation centers are being set up in Colaba schools.", Source: "BMC Official"},
	{Text: "Government is hiding the real cyclone path!", Source: "Anonymous Forum"},
}

// Submitter delivers a claim to the intake boundary
type Submitter interface {
	Submit(ctx context.Context, claim model.Claim) error
}

// HTTPSubmitter posts claims to the public submit route
type HTTPSubmitter struct {
	url    string
	client *http.Client
}

// NewHTTPSubmitter creates a submitter for the intake URL (e.g. http://127.0.0.1:8000/api/submit_claim)
func NewHTTPSubmitter(url string, timeout time.Duration) *HTTPSubmitter {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &HTTPSubmitter{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Submit posts claim and waits for the full intake response
func (s *HTTPSubmitter) Submit(ctx context.Context, claim model.Claim) error {
	body, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("marshal claim: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit claim: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("intake returned %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	return nil
}

// Simulator periodically submits synthetic claims.
// Each submission completes before the interval starts, so pacing follows the pipeline.
type Simulator struct {
	submitter  Submitter
	claims     []model.Claim
	startDelay time.Duration
	interval   time.Duration
	loop       bool
	logger     *slog.Logger
}

// Config controls the schedule
type Config struct {
	StartDelay time.Duration
	Interval   time.Duration
	Loop       bool
}

// New creates a simulator. An empty claims list uses DefaultClaims.
func New(submitter Submitter, claims []model.Claim, cfg Config, logger *slog.Logger) *Simulator {
	if len(claims) == 0 {
		claims = DefaultClaims
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Simulator{
		submitter:  submitter,
		claims:     claims,
		startDelay: cfg.StartDelay,
		interval:   cfg.Interval,
		loop:       cfg.Loop,
		logger:     logger,
	}
}

// Run submits claims until the list is exhausted (or forever when looping)
// or ctx is cancelled. Submission failures are logged and skipped.
// It returns the number of successful submissions.
func (s *Simulator) Run(ctx context.Context) (int, error) {
	if err := sleep(ctx, s.startDelay); err != nil {
		return 0, err
	}

	submitted := 0
	for {
		for i, claim := range s.claims {
			if err := s.submitter.Submit(ctx, claim); err != nil {
				if ctx.Err() != nil {
					return submitted, ctx.Err()
				}
				s.logger.Warn("synthetic claim not accepted", "source", claim.Source, "error", err)
			} else {
				submitted++
				s.logger.Info("synthetic claim submitted", "source", claim.Source)
			}

			last := i == len(s.claims)-1 && !s.loop
			if last {
				break
			}
			if err := sleep(ctx, s.interval); err != nil {
				return submitted, err
			}
		}
		if !s.loop {
			return submitted, nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
