// Package session manages capability tokens for authenticated users.
// A token is issued at login, resolves to a user id on every gated
// request, and is revoked at logout. There is no process-global current
// user: the token is the only handle on the session.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
)

// tokenBytes is the entropy of an issued token.
const tokenBytes = 32

// Manager tracks live sessions. Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	byToken map[string]string // token → user id
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{byToken: make(map[string]string)}
}

// Issue creates a fresh random token bound to the given user id.
func (m *Manager) Issue(userID string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[token] = userID
	return token, nil
}

// Resolve returns the user id bound to the token, if the session is live.
func (m *Manager) Resolve(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.byToken[token]
	return userID, ok
}

// Revoke ends the session unconditionally. Revoking an unknown token is
// a no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byToken, token)
}
