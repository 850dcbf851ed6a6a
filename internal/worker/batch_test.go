package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/rumorguard/internal/model"
)

// mockProcessor implements ClaimProcessor
type mockProcessor struct {
	calls int32
}

func (m *mockProcessor) Process(ctx context.Context, claim model.Claim) model.Alert {
	atomic.AddInt32(&m.calls, 1)
	time.Sleep(5 * time.Millisecond)

	status := model.StatusUnverified
	escalated := false
	if claim.Source == "Anonymous Forum" {
		status = model.StatusFalse
		escalated = true
	}
	return model.Alert{Claim: claim.Text, Source: claim.Source, Status: status, Escalated: escalated, Explanation: "x"}
}

func TestBatchProcessor_ProcessClaims(t *testing.T) {
	proc := &mockProcessor{}
	batch := NewBatchProcessor(proc, 2)

	claims := []model.Claim{
		{Text: "Cyclone has been upgraded to Category 4.", Source: "Messaging Apps"},
		{Text: "Evacuation centers are being set up in Colaba schools.", Source: "BMC Official"},
		{Text: "Government is hiding the real cyclone path!", Source: "Anonymous Forum"},
	}

	results := batch.ProcessClaims(context.Background(), claims)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("expected results in input order, position %d has index %d", i, res.Index)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %q: %v", res.Claim.Text, res.Error)
		}
		if res.Alert == nil || res.Alert.Claim != claims[i].Text {
			t.Errorf("alert does not match claim %d: %+v", i, res.Alert)
		}
	}

	summary := Summarize(results)
	if summary.Total != 3 || summary.Escalated != 1 || summary.ByStatus[model.StatusFalse] != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestBatchProcessor_ManyClaims(t *testing.T) {
	proc := &mockProcessor{}
	batch := NewBatchProcessor(proc, 3)

	claims := make([]model.Claim, 40)
	for i := range claims {
		claims[i] = model.Claim{Text: "claim", Source: "s"}
	}

	results := batch.ProcessClaims(context.Background(), claims)
	if len(results) != 40 {
		t.Errorf("expected 40 results, got %d", len(results))
	}
	if atomic.LoadInt32(&proc.calls) != 40 {
		t.Errorf("expected 40 processed claims, got %d", proc.calls)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	results := NewBatchProcessor(&mockProcessor{}, 2).ProcessClaims(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	claims := []model.Claim{{Text: "a", Source: "s"}, {Text: "b", Source: "s"}}
	results := NewBatchProcessor(&mockProcessor{}, 1).ProcessClaims(ctx, claims)

	if len(results) != 2 {
		t.Fatalf("expected a result per claim, got %d", len(results))
	}
	if Summarize(results).Skipped == 0 {
		t.Error("expected skipped claims after cancellation")
	}
}

func TestBatchProcessor_RateLimit(t *testing.T) {
	proc := &mockProcessor{}
	batch := NewBatchProcessor(proc, 4)
	batch.SetRateLimit(20, 1)

	claims := make([]model.Claim, 5)
	for i := range claims {
		claims[i] = model.Claim{Text: "claim", Source: "s"}
	}

	start := time.Now()
	results := batch.ProcessClaims(context.Background(), claims)
	elapsed := time.Since(start)

	if s := Summarize(results); s.Skipped != 0 {
		t.Fatalf("expected all claims processed, got %+v", s)
	}
	// 5 claims at 20/s with burst 1 need at least 4 gaps of 50ms
	if elapsed < 180*time.Millisecond {
		t.Errorf("expected paced processing, finished in %v", elapsed)
	}
}

func TestBatchProcessor_RateLimitDeadline(t *testing.T) {
	batch := NewBatchProcessor(&mockProcessor{}, 2)
	batch.SetRateLimit(0.01, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	claims := []model.Claim{{Text: "a", Source: "s"}, {Text: "b", Source: "s"}}
	results := batch.ProcessClaims(ctx, claims)

	s := Summarize(results)
	if s.Total != 2 || s.Skipped != 1 {
		t.Errorf("expected one claim through and one held back, got %+v", s)
	}
}

func TestBatchProcessor_SetRateLimitDisable(t *testing.T) {
	batch := NewBatchProcessor(&mockProcessor{}, 1)
	batch.SetRateLimit(5, 1)
	batch.SetRateLimit(0, 1)
	if batch.limiter != nil {
		t.Error("expected non-positive rate to remove the limiter")
	}
}

func TestReadClaimsFromFile(t *testing.T) {
	content := `
- claim: "Cyclone has been upgraded to Category 4."
  source: Messaging Apps
- claim: "  "
  source: ignored
- claim: Bridge closed!
`
	path := filepath.Join(t.TempDir(), "claims.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	claims, err := ReadClaimsFromFile(path)
	if err != nil {
		t.Fatalf("ReadClaimsFromFile failed: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[1].Source != "unknown" {
		t.Errorf("expected default source, got %q", claims[1].Source)
	}
}

func TestParseClaims_JSON(t *testing.T) {
	claims, err := ParseClaims([]byte(`[{"claim": "Shelters full", "source": "Radio"}]`))
	if err != nil {
		t.Fatalf("ParseClaims failed: %v", err)
	}
	if len(claims) != 1 || claims[0].Text != "Shelters full" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestReadClaimsFromFile_Missing(t *testing.T) {
	if _, err := ReadClaimsFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
