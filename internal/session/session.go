// Package session holds the console's authentication state. It is created
// once at startup and is the only place route access is decided from.
package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyToken is returned by Issue for a blank token.
var ErrEmptyToken = errors.New("session token is empty")

// Store persists the token across runs.
type Store interface {
	SaveToken(token string) error
}

// Session is the signed-in state. A nil Store keeps the session in memory.
type Session struct {
	token string
	store Store
}

// New restores a session from a previously stored token.
func New(token string, store Store) *Session {
	return &Session{token: strings.TrimSpace(token), store: store}
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s != nil && s.token != ""
}

// Token returns the bearer token, or "".
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// Issue starts a session with token, e.g. after login.
func (s *Session) Issue(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if s.store != nil {
		if err := s.store.SaveToken(token); err != nil {
			return fmt.Errorf("store session: %w", err)
		}
	}
	s.token = token
	return nil
}

// Clear ends the session on logout or expiry. The in-memory state is cleared
// even if persisting fails.
func (s *Session) Clear() error {
	if s.token == "" {
		return nil
	}
	s.token = ""
	if s.store != nil {
		if err := s.store.SaveToken(""); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}
