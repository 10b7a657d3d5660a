package server

import (
	"errors"
	"sync"
	"time"

	"github.com/sammcj/mcp-sheets/internal/telemetry"
	"github.com/sirupsen/logrus"
)

var errUnknownSession = errors.New("unknown session ID")

// SessionManager issues streamable HTTP session ids and expires sessions that
// have been idle for longer than the timeout.
type SessionManager struct {
	timeout time.Duration
	logger  *logrus.Logger
	now     func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewSessionManager returns a manager expiring sessions idle for timeout.
func NewSessionManager(timeout time.Duration, logger *logrus.Logger) *SessionManager {
	return &SessionManager{
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
}

func (m *SessionManager) Generate() string {
	id := telemetry.GenerateSessionID()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	m.lastSeen[id] = m.now()
	m.logger.Debugf("Session created: %s", id)
	return id
}

// Validate reports expired sessions as terminated and refreshes live ones.
func (m *SessionManager) Validate(sessionID string) (bool, error) {
	if sessionID == "" {
		return false, errors.New("empty session ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen, ok := m.lastSeen[sessionID]
	if !ok {
		return false, errUnknownSession
	}
	if m.timeout > 0 && m.now().Sub(seen) > m.timeout {
		delete(m.lastSeen, sessionID)
		m.logger.Debugf("Session expired: %s", sessionID)
		return true, nil
	}
	m.lastSeen[sessionID] = m.now()
	return false, nil
}

func (m *SessionManager) Terminate(sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastSeen, sessionID)
	m.logger.Debugf("Session terminated: %s", sessionID)
	return false, nil
}

// Active returns the number of tracked sessions.
func (m *SessionManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lastSeen)
}

func (m *SessionManager) pruneLocked() {
	if m.timeout <= 0 {
		return
	}
	now := m.now()
	for id, seen := range m.lastSeen {
		if now.Sub(seen) > m.timeout {
			delete(m.lastSeen, id)
		}
	}
}
