package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/rumorguard/internal/cache"
	"github.com/ppiankov/rumorguard/internal/llm"
	"github.com/ppiankov/rumorguard/internal/model"
)

// fakeProvider implements llm.Provider
type fakeProvider struct {
	text  string
	err   error
	panic bool
	calls int32
	last  llm.GenerateRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	atomic.AddInt32(&p.calls, 1)
	p.last = req
	if p.panic {
		panic("boom")
	}
	if p.err != nil {
		return nil, p.err
	}
	return &llm.GenerateResponse{Text: p.text, Model: "fake-1"}, nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		explanation string
		want        model.Status
	}{
		{"This claim is TRUE.", model.StatusTrue},
		{"This is false because the IMD track shows otherwise.", model.StatusFalse},
		{"There is not enough information.", model.StatusUnverified},
		{"It is not true; the claim is false.", model.StatusTrue}, // true wins over false
		{"The statement is untrue.", model.StatusTrue},
		{"", model.StatusUnverified},
	}

	for _, tt := range tests {
		if got := Classify(tt.explanation); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.explanation, got, tt.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Cyclone has been upgraded to Category 4.")
	want := `Fact-check the following claim and provide a concise, clear explanation of whether it is true, false, or unverified. Claim: "Cyclone has been upgraded to Category 4."`
	if got != want {
		t.Errorf("unexpected prompt:\n%s", got)
	}
}

func TestVerifier_Verify_Success(t *testing.T) {
	provider := &fakeProvider{text: "This is false because the official track points north."}
	v := New(provider)

	verdict := v.Verify(context.Background(), "Government is hiding the real cyclone path!")

	if verdict.Status != model.StatusFalse {
		t.Errorf("expected false, got %s", verdict.Status)
	}
	if verdict.Explanation != provider.text {
		t.Errorf("expected explanation verbatim, got %q", verdict.Explanation)
	}
	if verdict.Failure != model.FailureNone {
		t.Errorf("expected no failure kind, got %s", verdict.Failure)
	}
	if !strings.Contains(provider.last.Prompt, `Claim: "Government is hiding the real cyclone path!"`) {
		t.Errorf("prompt does not embed claim: %s", provider.last.Prompt)
	}
}

func TestVerifier_Verify_NoProvider(t *testing.T) {
	v := New(nil)

	if v.Configured() {
		t.Error("expected verifier without provider to be unconfigured")
	}

	verdict := v.Verify(context.Background(), "anything")
	if verdict.Status != model.StatusError {
		t.Errorf("expected error, got %s", verdict.Status)
	}
	if verdict.Failure != model.FailureConfigurationMissing {
		t.Errorf("expected configuration failure, got %s", verdict.Failure)
	}
	if verdict.Explanation == "" {
		t.Error("expected non-empty explanation")
	}
}

func TestVerifier_Verify_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		failure model.FailureKind
		substr  string
	}{
		{"missing key", fmt.Errorf("gemini: %w", llm.ErrMissingAPIKey), model.FailureConfigurationMissing, "not configured"},
		{"malformed", fmt.Errorf("gemini: %w: no candidate", llm.ErrMalformedResponse), model.FailureUpstreamMalformed, "Unexpected response"},
		{"non-2xx", &llm.APIError{Provider: "gemini", StatusCode: 503, Message: "overloaded"}, model.FailureUpstreamTransport, "HTTP 503"},
		{"network", errors.New("dial tcp: connection refused"), model.FailureUpstreamTransport, "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(&fakeProvider{err: tt.err})
			verdict := v.Verify(context.Background(), "claim")

			if verdict.Status != model.StatusError {
				t.Errorf("expected error status, got %s", verdict.Status)
			}
			if verdict.Failure != tt.failure {
				t.Errorf("expected failure %s, got %s", tt.failure, verdict.Failure)
			}
			if !strings.Contains(verdict.Explanation, tt.substr) {
				t.Errorf("expected explanation to contain %q, got %q", tt.substr, verdict.Explanation)
			}
		})
	}
}

func TestVerifier_Verify_RecoversPanic(t *testing.T) {
	v := New(&fakeProvider{panic: true})

	verdict := v.Verify(context.Background(), "claim")
	if verdict.Status != model.StatusError || verdict.Explanation == "" {
		t.Errorf("expected error verdict with explanation, got %+v", verdict)
	}
}

func TestVerifier_Verify_NoRetry(t *testing.T) {
	provider := &fakeProvider{err: &llm.APIError{StatusCode: 500, Message: "internal"}}
	v := New(provider)

	v.Verify(context.Background(), "claim")
	if provider.calls != 1 {
		t.Errorf("expected exactly 1 upstream call, got %d", provider.calls)
	}
}

func TestVerifier_Verify_Cache(t *testing.T) {
	provider := &fakeProvider{text: "This is true."}
	v := New(provider, WithCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute))

	first := v.Verify(context.Background(), "Bridge closed!")
	second := v.Verify(context.Background(), "Bridge closed!")

	if provider.calls != 1 {
		t.Errorf("expected cached second call, got %d upstream calls", provider.calls)
	}
	if first != second {
		t.Errorf("expected identical verdicts, got %+v and %+v", first, second)
	}

	// Case variants are distinct claims
	v.Verify(context.Background(), "bridge closed!")
	if provider.calls != 2 {
		t.Errorf("expected case variant to miss the cache, got %d upstream calls", provider.calls)
	}
}

func TestVerifier_Verify_UnreadableCacheEntry(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set(cache.VerdictKey("Bridge closed!"), []byte("{not json"), 0)

	provider := &fakeProvider{text: "This is false."}
	v := New(provider, WithCache(c, time.Minute))

	if got := v.Verify(context.Background(), "Bridge closed!"); got.Status != model.StatusFalse {
		t.Errorf("expected fresh verdict, got %+v", got)
	}
	v.Verify(context.Background(), "Bridge closed!")
	if provider.calls != 1 {
		t.Errorf("expected bad entry replaced after one call, got %d calls", provider.calls)
	}
}

func TestVerifier_Verify_ErrorsNotCached(t *testing.T) {
	provider := &fakeProvider{err: errors.New("timeout")}
	v := New(provider, WithCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute))

	v.Verify(context.Background(), "claim")
	v.Verify(context.Background(), "claim")

	if provider.calls != 2 {
		t.Errorf("expected failed verdicts to bypass cache, got %d calls", provider.calls)
	}
}

func TestVerifier_Verify_GeminiEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "There is no evidence; this remains unverified."}]}}]}`))
	}))
	defer server.Close()

	provider, err := llm.NewGeminiProvider(llm.Config{APIKey: "k", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("provider: %v", err)
	}

	verdict := New(provider).Verify(context.Background(), "Shelters are full")
	if verdict.Status != model.StatusUnverified {
		t.Errorf("expected unverified, got %s (%s)", verdict.Status, verdict.Explanation)
	}
}

func TestVerifier_Verify_GeminiCandidateWithoutText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model"},"finishReason":"MAX_TOKENS"}]}`))
	}))
	defer server.Close()

	provider, _ := llm.NewGeminiProvider(llm.Config{APIKey: "k", BaseURL: server.URL, Timeout: 5})
	verdict := New(provider).Verify(context.Background(), "Government is hiding the real cyclone path!")

	want := model.Verdict{Status: model.StatusUnverified, Explanation: "No explanation provided.", Failure: model.FailureNone}
	if verdict != want {
		t.Errorf("expected %+v, got %+v", want, verdict)
	}
}

func TestVerifier_Verify_GeminiUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider, _ := llm.NewGeminiProvider(llm.Config{APIKey: "k", BaseURL: url, Timeout: 2})
	verdict := New(provider).Verify(context.Background(), "claim")

	if verdict.Failure != model.FailureUpstreamTransport {
		t.Errorf("expected transport failure, got %+v", verdict)
	}
}
