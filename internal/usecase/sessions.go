package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionEntry tracks one flow and when it was last touched.
type sessionEntry struct {
	flow     *Flow
	lastSeen time.Time
}

// SessionManager is a thread-safe registry of per-client flows with
// idle expiry, so abandoned browser sessions do not accumulate.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	newFlow  func() *Flow
}

// NewSessionManager creates a registry whose sessions expire after ttl
// of inactivity. newFlow constructs the flow for each new session.
func NewSessionManager(ttl time.Duration, newFlow func() *Flow) *SessionManager {
	m := &SessionManager{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		newFlow:  newFlow,
	}

	// Remove expired sessions every minute
	go m.cleanupExpired()

	return m
}

// Create registers a new flow and returns its session ID.
func (m *SessionManager) Create() (string, *Flow) {
	id := uuid.NewString()
	flow := m.newFlow()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &sessionEntry{flow: flow, lastSeen: time.Now()}
	return id, flow
}

// Get returns the flow for a session ID, refreshing its idle timer.
func (m *SessionManager) Get(id string) (*Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.sessions[id]
	if !exists {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry.flow, true
}

// Size returns the current number of live sessions.
func (m *SessionManager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// cleanupExpired removes idle sessions periodically.
func (m *SessionManager) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.expireIdle(time.Now())
	}
}

// expireIdle removes sessions idle longer than ttl; split out so tests
// can trigger a sweep without waiting on the ticker.
func (m *SessionManager) expireIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.sessions {
		if now.Sub(entry.lastSeen) > m.ttl {
			delete(m.sessions, id)
		}
	}
}
