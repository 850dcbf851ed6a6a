package worker

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/rumorguard/internal/model"
)

// ClaimProcessor turns a claim into an alert
type ClaimProcessor interface {
	Process(ctx context.Context, claim model.Claim) model.Alert
}

// ClaimJob processes one claim from a batch
type ClaimJob struct {
	Index     int
	Claim     model.Claim
	Processor ClaimProcessor
	Limiter   *Limiter // optional, shared by all jobs of a batch
}

// limiterKey is the single bucket batch jobs draw from
const limiterKey = "batch"

// Execute runs the claim through the processor
func (j *ClaimJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ClaimResult{Index: j.Index, Claim: j.Claim, Error: err}
	}
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, limiterKey); err != nil {
			return &ClaimResult{Index: j.Index, Claim: j.Claim, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}
	alert := j.Processor.Process(ctx, j.Claim)
	return &ClaimResult{Index: j.Index, Claim: j.Claim, Alert: &alert}
}

// ClaimResult is the outcome of a ClaimJob.
// Error is set only when the job did not run; a failed verification is an
// alert with StatusError.
type ClaimResult struct {
	Index int
	Claim model.Claim
	Alert *model.Alert
	Error error
}

// GetError returns the error from the claim result
func (r *ClaimResult) GetError() error {
	return r.Error
}

// BatchProcessor processes many claims concurrently
type BatchProcessor struct {
	processor   ClaimProcessor
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor ClaimProcessor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// SetRateLimit caps how many claims per second start processing across all
// workers. A non-positive rate removes the cap.
func (b *BatchProcessor) SetRateLimit(requestsPerSecond float64, burst int) {
	if requestsPerSecond <= 0 {
		b.limiter = nil
		return
	}
	b.limiter = NewLimiter(requestsPerSecond, burst)
}

// ProcessClaims processes claims concurrently and returns results in input order
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []model.Claim) []*ClaimResult {
	if len(claims) == 0 {
		return []*ClaimResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	jobs := make([]Job, len(claims))
	for i, claim := range claims {
		jobs[i] = &ClaimJob{Index: i, Claim: claim, Processor: b.processor, Limiter: b.limiter}
	}

	results := make([]*ClaimResult, 0, len(claims))
	seen := make(map[int]bool, len(claims))

	for _, r := range pool.Run(jobs) {
		cr := r.(*ClaimResult)
		seen[cr.Index] = true
		results = append(results, cr)
	}

	// Jobs never submitted because the context ended
	for i, claim := range claims {
		if !seen[i] {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("claim not processed")
			}
			results = append(results, &ClaimResult{Index: i, Claim: claim, Error: err})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// ProcessFile reads claims from a YAML file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ClaimResult, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, claims), nil
}

// ReadClaimsFromFile reads a YAML list of {claim, source} entries.
// Entries with empty claim text are skipped; a missing source becomes "unknown".
func ReadClaimsFromFile(filePath string) ([]model.Claim, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return ParseClaims(data)
}

// ParseClaims decodes a YAML (or JSON) list of claims
func ParseClaims(data []byte) ([]model.Claim, error) {
	var raw []model.Claim
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	claims := make([]model.Claim, 0, len(raw))
	for _, c := range raw {
		c.Text = strings.TrimSpace(c.Text)
		c.Source = strings.TrimSpace(c.Source)
		if c.Text == "" {
			continue
		}
		if c.Source == "" {
			c.Source = "unknown"
		}
		claims = append(claims, c)
	}

	return claims, nil
}

// Summary counts batch outcomes
type Summary struct {
	Total     int
	Escalated int
	Skipped   int
	ByStatus  map[model.Status]int
}

// Summarize tallies results by alert status
func Summarize(results []*ClaimResult) Summary {
	s := Summary{Total: len(results), ByStatus: make(map[model.Status]int)}
	for _, r := range results {
		if r.Alert == nil {
			s.Skipped++
			continue
		}
		s.ByStatus[r.Alert.Status]++
		if r.Alert.Escalated {
			s.Escalated++
		}
	}
	return s
}
