package session

import (
	"fmt"
	"time"

	"github.com/openletters/carta/internal/logger"
)

// Session is the identity derived from the stored token. It is optimistic:
// no server round trip happens here, the API rejects the token later if the
// server disagrees.
type Session struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Manager owns the stored token and hands out the current session. It is the
// one piece of state shared across views; it is read-mostly and only mutated
// by login, logout and decode failures.
type Manager struct {
	storage Storage
	now     func() time.Time
}

// NewManager creates a session manager over the given storage
func NewManager(storage Storage) *Manager {
	return &Manager{storage: storage, now: time.Now}
}

// SetToken persists the raw token for future sessions
func (m *Manager) SetToken(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty token")
	}
	return m.storage.Write(raw)
}

// Raw returns the stored token string without decoding it. The transport
// layer uses this to attach the Authorization header to every request.
func (m *Manager) Raw() (string, bool) {
	raw, err := m.storage.Read()
	if err != nil || raw == "" {
		return "", false
	}
	return raw, true
}

// Current reads the stored token and decodes it into a session. A token that
// fails to decode, or whose expiry has elapsed, is purged from storage so the
// failure is not hit again on the next read. Callers never see an error, only
// the absence of a session.
func (m *Manager) Current() (*Session, bool) {
	raw, err := m.storage.Read()
	if err != nil {
		logger.Warn("Failed to read stored token", logger.F("error", err))
		return nil, false
	}
	if raw == "" {
		return nil, false
	}

	claims, err := Decode(raw)
	if err != nil {
		logger.Debug("Purging undecodable token", logger.F("error", err))
		_ = m.storage.Clear()
		return nil, false
	}

	if exp := claims.Expiry(); !exp.IsZero() && m.now().After(exp) {
		logger.Debug("Purging expired token", logger.F("email", claims.Email))
		_ = m.storage.Clear()
		return nil, false
	}

	return &Session{Email: claims.Email, Token: raw, ExpiresAt: claims.Expiry()}, true
}

// Clear removes the stored token. Safe to call when no token exists.
func (m *Manager) Clear() error {
	return m.storage.Clear()
}

// IsAuthenticated reports whether a valid session is present
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Current()
	return ok
}
