// Package auth issues and verifies the signed session credential carried in
// a cookie. The credential is stateless: every request decodes it with the
// server-held secret, nothing is looked up server-side.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v4"

	"sitecms/internal/storage"
)

const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is the decoded content of a session credential.
type SessionClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Manager signs and verifies session tokens and owns the cookie they ride in.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(secret, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		now:        time.Now,
	}
}

// Issue creates a signed token for the given user.
func (m *Manager) Issue(user *storage.User) (string, error) {
	now := m.now()

	claims := &SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.Must(uuid.NewV4()).String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Decode verifies a token and returns its claims. Malformed, expired and
// mis-signed tokens all come back as ErrInvalidToken; callers treat any
// failure as "not authenticated", never as a fault.
func (m *Manager) Decode(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	return claims, nil
}

// FromRequest resolves the session carried by the request, or nil when the
// cookie is absent or does not verify.
func (m *Manager) FromRequest(r *http.Request) *SessionClaims {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil
	}

	claims, err := m.Decode(cookie.Value)
	if err != nil {
		return nil
	}
	return claims
}

// Cookie wraps a signed token for the response.
func (m *Manager) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	}
}

// ClearCookie expires the session cookie immediately.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	}
}
