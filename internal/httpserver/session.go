// internal/httpserver/session.go
//
// Session tokens for round endpoints.
// A learner's session id travels in an HS256 JWT ("sid" claim), either in an
// HttpOnly cookie or an "Authorization: Bearer" header. The token only names
// the session; round state stays in the store.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pierridotite/QGISGame/internal/store"
)

// SessionConfig controls token signing and the session cookie.
type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
	Cookie string
	Secure bool // Secure + SameSite=None cookies, for cross-site deployments
}

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenHeader carries a re-issued token for clients using bearer auth.
const TokenHeader = "X-Session-Token"

var errNoToken = errors.New("no session token")

// signSession creates a token for sid valid for TTL.
func (c SessionConfig) signSession(sid string, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.TTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	ss, err := t.SignedString(c.Secret)
	return ss, exp, err
}

// parseSession verifies a token and returns its claims.
func (c SessionConfig) parseSession(tok string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return c.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !t.Valid || claims.SID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (c SessionConfig) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if c.Secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header or the session cookie.
func (c SessionConfig) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if ck, err := r.Cookie(c.Cookie); err == nil {
		return ck.Value
	}
	return ""
}

// ctxSessionKey is the context key type for the resolved *store.Session.
type ctxSessionKey struct{}

func sessionFrom(ctx context.Context) *store.Session {
	s, _ := ctx.Value(ctxSessionKey{}).(*store.Session)
	return s
}

// lookupSession resolves the request's token to a live session.
func (s *Server) lookupSession(r *http.Request) (*store.Session, *sessionClaims, error) {
	tok := s.session.bearerOrCookie(r)
	if tok == "" {
		return nil, nil, errNoToken
	}
	claims, err := s.session.parseSession(tok)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.store.Get(r.Context(), claims.SID)
	if err != nil {
		return nil, nil, err
	}
	return sess, claims, nil
}

// requireSession enforces a valid token naming a live session and injects
// the session into the request context. Tokens past half their lifetime
// are re-issued, as a cookie and in TokenHeader, so an active learner keeps
// playing.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, claims, err := s.lookupSession(r)
			switch {
			case errors.Is(err, errNoToken):
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			case errors.Is(err, store.ErrNotFound):
				writeError(w, http.StatusUnauthorized, "session_expired")
				return
			case err != nil:
				writeError(w, http.StatusUnauthorized, "invalid_session")
				return
			}

			now := s.now()
			if claims.IssuedAt != nil && now.Sub(claims.IssuedAt.Time) > s.session.TTL/2 {
				if tok, exp, err := s.session.signSession(sess.ID, now); err == nil {
					s.session.setSessionCookie(w, tok, exp)
					w.Header().Set(TokenHeader, tok)
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess)))
		})
	}
}
