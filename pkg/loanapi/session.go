package loanapi

import (
	"context"
	"sync"
)

// Session is the source of the bearer token attached to API requests.
// Clear is called when the backend answers 401.
type Session interface {
	Token() string
	Clear()
}

// MemorySession keeps the token in memory. It is safe for concurrent use.
type MemorySession struct {
	mu    sync.RWMutex
	token string
}

// NewMemorySession seeds a session with token, which may be empty.
func NewMemorySession(token string) *MemorySession {
	return &MemorySession{token: token}
}

func (s *MemorySession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the stored token.
func (s *MemorySession) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *MemorySession) Clear() {
	s.SetToken("")
}

type anonymousSession struct{}

func (anonymousSession) Token() string { return "" }
func (anonymousSession) Clear()        {}

type sessionKey struct{}

// ContextWithSession binds a request-scoped session. The HTTP client prefers
// it over the session it was built with.
func ContextWithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session bound by ContextWithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(Session)
	return session, ok && session != nil
}
