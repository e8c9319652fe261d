package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/goliatone/go-loan-dashboard/pkg/loanapi"
)

// AuthCookie holds the bearer token forwarded to the loan API.
const AuthCookie = "authToken"

// DefaultLoginPath receives browsers whose token the backend rejected.
const DefaultLoginPath = "/login"

// RequestSession carries the caller's token for one request and remembers
// whether the backend rejected it.
type RequestSession struct {
	token   string
	expired atomic.Bool
}

var _ loanapi.Session = (*RequestSession)(nil)

// NewRequestSession wraps an already resolved token.
func NewRequestSession(token string) *RequestSession {
	return &RequestSession{token: token}
}

// SessionFromRequest reads the token from the Authorization header or the auth cookie.
func SessionFromRequest(r *http.Request) *RequestSession {
	return NewRequestSession(ResolveToken("", r.Header.Get("Authorization"), r.Header.Get("Cookie")))
}

func (s *RequestSession) Token() string {
	if s.expired.Load() {
		return ""
	}
	return s.token
}

func (s *RequestSession) Clear() { s.expired.Store(true) }

// Expired reports whether the backend answered 401 during the request.
func (s *RequestSession) Expired() bool { return s.expired.Load() }

// Bind attaches the session to ctx so the loan API client uses it.
func (s *RequestSession) Bind(ctx context.Context) context.Context {
	return loanapi.ContextWithSession(ctx, s)
}

// ResolveToken prefers a token set by upstream middleware, then an explicit
// bearer header, then the auth cookie.
func ResolveToken(local, authorization, cookieHeader string) string {
	if token := strings.TrimSpace(local); token != "" {
		return token
	}
	if scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	return tokenFromCookieHeader(cookieHeader)
}

func tokenFromCookieHeader(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, cookie := range cookies {
		if cookie.Name == AuthCookie {
			return cookie.Value
		}
	}
	return ""
}

// ExpiredCookie returns the Set-Cookie value that removes the auth cookie.
func ExpiredCookie() string {
	return (&http.Cookie{Name: AuthCookie, Value: "", Path: "/", MaxAge: -1}).String()
}

// SessionExpiredBody is the JSON body sent along with the login redirect.
func SessionExpiredBody(login string) map[string]string {
	return map[string]string{
		"error":    "session expired",
		"redirect": login,
	}
}

// RejectSession drops the auth cookie and sends the browser to login with a 303.
func RejectSession(w http.ResponseWriter, login string) {
	w.Header().Set("Set-Cookie", ExpiredCookie())
	w.Header().Set("Location", login)
	writeJSON(w, http.StatusSeeOther, SessionExpiredBody(login))
}
