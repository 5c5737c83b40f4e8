package web

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"grasshopper/internal/domain/model"
	"grasshopper/internal/infra/logging"
	"grasshopper/internal/usecase"
)

// ===== Session/JWT primitives =====

const sessionTokenHeader = "X-Session-Token"

type SessionCookieConfig struct {
	HMACSecret   []byte
	CookieName   string
	CookieDomain string
	SecureCookie bool
	TTL          time.Duration
}

// SessionManager signs the session id into a cookie so ids cannot be guessed or forged.
type SessionManager struct{ cfg SessionCookieConfig }

// NewSessionManager falls back to a random per-process secret; sessions die with the process anyway.
func NewSessionManager(secret, cookieName, domain string, secure bool, ttl time.Duration) (*SessionManager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	if cookieName == "" {
		cookieName = "grasshopper_session"
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionManager{cfg: SessionCookieConfig{
		HMACSecret:   key,
		CookieName:   cookieName,
		CookieDomain: domain, // "" keeps a host-only cookie
		SecureCookie: secure,
		TTL:          ttl,
	}}, nil
}

type SessionClaims struct {
	jwt.RegisteredClaims
}

func (m *SessionManager) Mint(w http.ResponseWriter, sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
			Subject:   sessionID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Domain:   m.cfg.CookieDomain,
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(sessionTokenHeader, signed)
	return signed, nil
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return m.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	// Cookie
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		return m.parse(c.Value)
	}
	return nil, errors.New("missing token")
}

func (m *SessionManager) parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return m.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// needsRefresh reports whether a still-valid token is past half its lifetime.
func (m *SessionManager) needsRefresh(c *SessionClaims) bool {
	if c == nil || c.IssuedAt == nil {
		return true
	}
	return time.Since(c.IssuedAt.Time) > m.cfg.TTL/2
}

type sessionCtxKey struct{}

func withSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

func sessionFrom(ctx context.Context) *model.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*model.Session)
	return s
}

// Sessions resolves the caller's session, starting a new one for missing or invalid tokens.
func Sessions(sm *SessionManager, sessions usecase.SessionUseCase) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var id string
			claims, err := sm.ParseFromRequest(r)
			if err == nil {
				id = claims.Subject
			}

			sess, created, err := sessions.Open(ctx, id)
			if err != nil {
				writeInternal(w, r)
				return
			}
			if created || sess.ID != id || sm.needsRefresh(claims) {
				if _, err := sm.Mint(w, sess.ID); err != nil {
					writeInternal(w, r)
					return
				}
			}

			ctx = logging.WithSessID(withSession(ctx, sess), sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
