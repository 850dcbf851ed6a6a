package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/rumorguard/internal/model"
	"github.com/ppiankov/rumorguard/internal/score"
)

// DefaultThreshold is the risk a claim must strictly exceed to be escalated
const DefaultThreshold = 0.4

// LowRiskExplanation is attached to claims that are not escalated
const LowRiskExplanation = "Low probability of misinformation; monitoring..."

// RiskScorer maps claim text to a risk in [0,1]
type RiskScorer interface {
	Score(text string) model.RiskScore
}

// Verifier fact-checks a claim. Implementations report failures as StatusError verdicts.
type Verifier interface {
	Verify(ctx context.Context, text string) model.Verdict
}

// Processor turns a claim into an alert: score, escalate if risky, synthesize.
// It never persists the alert; that is the caller's job.
type Processor struct {
	scorer    RiskScorer
	verifier  Verifier
	threshold float64
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithThreshold overrides the escalation threshold
func WithThreshold(threshold float64) Option {
	return func(p *Processor) {
		p.threshold = threshold
	}
}

// WithScorer replaces the heuristic scorer
func WithScorer(s RiskScorer) Option {
	return func(p *Processor) {
		p.scorer = s
	}
}

// WithClock sets the time source used to stamp alerts
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// NewProcessor creates a processor that escalates to verifier
func NewProcessor(verifier Verifier, opts ...Option) *Processor {
	p := &Processor{
		scorer:    score.NewScorer(),
		verifier:  verifier,
		threshold: DefaultThreshold,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Threshold returns the escalation threshold in use
func (p *Processor) Threshold() float64 {
	return p.threshold
}

// Process scores claim and, when risk > threshold, asks the verifier.
// Verification failures come back as an alert with StatusError.
func (p *Processor) Process(ctx context.Context, claim model.Claim) model.Alert {
	risk := p.scorer.Score(claim.Text)
	logger := p.logger.With("source", claim.Source, "risk", risk.Float())

	alert := model.Alert{
		ID:          p.newID(),
		Claim:       claim.Text,
		Source:      claim.Source,
		Status:      model.StatusUnverified,
		Explanation: LowRiskExplanation,
		Risk:        risk,
	}

	if risk.Float() > p.threshold {
		logger.Info("high risk claim, escalating")
		verdict := p.verifier.Verify(ctx, claim.Text)
		alert.Status = verdict.Status
		alert.Explanation = verdict.Explanation
		alert.Failure = verdict.Failure
		alert.Escalated = true
	} else {
		logger.Info("low risk claim, monitoring")
	}

	if !alert.Status.Valid() {
		alert.Status = model.StatusError
		alert.Failure = model.FailureUpstreamMalformed
	}
	if alert.Explanation == "" {
		alert.Explanation = "No explanation provided."
	}

	alert.CreatedAt = p.now().UTC()
	return alert
}
