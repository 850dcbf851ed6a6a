package score

import (
	"strings"

	"github.com/ppiankov/rumorguard/internal/model"
)

// Risk is computed in integer tenths so boundary values such as 0.4 are exact.
const (
	baseTenths        = 1
	sensationalTenths = 3
	concealmentTenths = 4
	officialTenths    = -2
	maxTenths         = 10
)

// ConcealmentPhrases signal cover-up rhetoric
var ConcealmentPhrases = []string{
	"cover-up",
	"hiding",
	"secret",
	"they don't want you to know",
}

// OfficialMarkers signal attribution to an authoritative source
var OfficialMarkers = []string{
	"official",
	"confirmed",
}

// SignalType names a scoring rule
type SignalType string

const (
	SignalSensational SignalType = "sensational" // "!" or BREAKING
	SignalConcealment SignalType = "concealment" // cover-up rhetoric
	SignalOfficial    SignalType = "official"    // official/confirmed attribution
)

// Signal records a rule that fired and how it moved the score
type Signal struct {
	Type  SignalType `json:"type"`
	Delta float64    `json:"delta"`
	Match string     `json:"match"`
}

// Assessment is the transparent scoring breakdown for one claim
type Assessment struct {
	Risk    model.RiskScore `json:"risk"`
	Signals []Signal        `json:"signals,omitempty"`
}

// Scorer assigns heuristic misinformation risk to claim text
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the risk for text, clamped to [0,1]
func (s *Scorer) Score(text string) model.RiskScore {
	return s.Assess(text).Risk
}

// Assess scores text and reports every rule that fired.
// Rules are independent and additive.
func (s *Scorer) Assess(text string) Assessment {
	lower := strings.ToLower(text)
	tenths := baseTenths
	var signals []Signal

	if match := sensationalMatch(text); match != "" {
		tenths += sensationalTenths
		signals = append(signals, Signal{Type: SignalSensational, Delta: toRisk(sensationalTenths), Match: match})
	}

	if match := firstContained(lower, ConcealmentPhrases); match != "" {
		tenths += concealmentTenths
		signals = append(signals, Signal{Type: SignalConcealment, Delta: toRisk(concealmentTenths), Match: match})
	}

	if match := firstContained(lower, OfficialMarkers); match != "" {
		tenths += officialTenths
		signals = append(signals, Signal{Type: SignalOfficial, Delta: toRisk(officialTenths), Match: match})
	}

	return Assessment{
		Risk:    model.RiskScore(toRisk(clamp(tenths))),
		Signals: signals,
	}
}

func sensationalMatch(text string) string {
	if strings.Contains(text, "!") {
		return "!"
	}
	if strings.Contains(strings.ToUpper(text), "BREAKING") {
		return "BREAKING"
	}
	return ""
}

func firstContained(lower string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

func clamp(tenths int) int {
	if tenths < 0 {
		return 0
	}
	if tenths > maxTenths {
		return maxTenths
	}
	return tenths
}

func toRisk(tenths int) float64 {
	return float64(tenths) / 10
}
