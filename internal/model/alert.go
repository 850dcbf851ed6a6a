package model

import "time"

// Status is the classified outcome of processing a claim
type Status string

const (
	StatusTrue       Status = "true"
	StatusFalse      Status = "false"
	StatusUnverified Status = "unverified"
	StatusError      Status = "error"
)

// Valid reports whether s is one of the four known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusTrue, StatusFalse, StatusUnverified, StatusError:
		return true
	default:
		return false
	}
}

// FailureKind classifies why a verification ended in StatusError
type FailureKind string

const (
	FailureNone                 FailureKind = ""
	FailureConfigurationMissing FailureKind = "configuration_missing" // No credential for the AI service
	FailureUpstreamTransport    FailureKind = "upstream_transport"    // Network error or non-2xx
	FailureUpstreamMalformed    FailureKind = "upstream_malformed"    // Unexpected payload shape
)

// Verdict is the result of escalating a claim to the AI service
type Verdict struct {
	Status      Status      `json:"status"`
	Explanation string      `json:"explanation"`
	Failure     FailureKind `json:"failure,omitempty"`
}

// Alert is the immutable record of a fully processed claim.
// JSON keys follow the alert feed format consumed by the dashboard.
type Alert struct {
	ID          string      `json:"id"`
	Claim       string      `json:"claim"`
	Source      string      `json:"source"`
	Status      Status      `json:"status"`
	Explanation string      `json:"truth"`
	Risk        RiskScore   `json:"risk"`
	Escalated   bool        `json:"escalated"`
	Failure     FailureKind `json:"failure,omitempty"`
	CreatedAt   time.Time   `json:"timestamp"`
}
