// Package store holds the in-memory alert feed.
package store

import (
	"sync"

	"github.com/ppiankov/rumorguard/internal/model"
)

// AlertStore is an ordered, append-only sequence of alerts.
// It is safe for concurrent use. There is no update or delete.
type AlertStore struct {
	mu     sync.RWMutex
	alerts []model.Alert
}

// NewAlertStore creates an empty store
func NewAlertStore() *AlertStore {
	return &AlertStore{
		alerts: make([]model.Alert, 0),
	}
}

// Append adds an alert to the end of the feed
func (s *AlertStore) Append(alert model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
}

// List returns a snapshot of all alerts in insertion order
func (s *AlertStore) List() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Len returns the number of stored alerts
func (s *AlertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Last returns the most recent alert, if any
func (s *AlertStore) Last() (model.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.alerts) == 0 {
		return model.Alert{}, false
	}
	return s.alerts[len(s.alerts)-1], true
}
