package model

// Claim is an unverified statement submitted for risk assessment
type Claim struct {
	Text   string `json:"claim" yaml:"claim"`   // The claim text itself
	Source string `json:"source" yaml:"source"` // Where the claim was seen (e.g., "Anonymous Forum")
}

// RiskScore is a heuristic misinformation risk in the closed interval [0,1]
type RiskScore float64

// Float returns the score as a plain float64
func (r RiskScore) Float() float64 {
	return float64(r)
}
