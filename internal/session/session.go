// Package session implements server-side sessions. The cookie carries a
// signed token, but the token alone is not enough: the server-side record in
// Redis must still name the token's session id, so logout revokes instantly
// regardless of token expiry. Records are keyed per user, one live session
// each; issuing a new session replaces the previous record.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"bakeshop/internal/domain"
)

// CookieName is the session cookie issued at login.
const CookieName = "sid"

// ErrRevoked means the token verified but its server-side record is gone.
var ErrRevoked = errors.New("session revoked or expired")

// Claims carried inside the session token
type Claims struct {
	UserID               uint        `json:"user_id"`    // Authenticated user
	Role                 domain.Role `json:"role"`       // Role resolved at login
	SessionID            string      `json:"session_id"` // Server-side record key
	jwt.RegisteredClaims             // Standard claims
}

// SignToken creates a signed session token for the given user.
func SignToken(userID uint, role domain.Role, sessionID, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)), // Token lifetime
			IssuedAt:  jwt.NewNumericDate(time.Now()),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign with the shared secret
}

// ParseToken validates a session token string and returns its claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Secret for signature validation
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// Manager issues, verifies and revokes sessions against Redis.
type Manager struct {
	secret string
	rdb    *redis.Client
	ttl    time.Duration
}

// NewManager builds a session manager.
func NewManager(secret string, rdb *redis.Client, ttl time.Duration) *Manager {
	return &Manager{secret: secret, rdb: rdb, ttl: ttl}
}

func userKey(userID uint) string {
	return "session:user:" + strconv.Itoa(int(userID))
}

// Issue creates the user's server-side session record and returns the cookie
// token. Any previous record for the user is replaced, which revokes the
// session it belonged to.
func (m *Manager) Issue(ctx context.Context, userID uint, role domain.Role) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	sessionID := hex.EncodeToString(buf)
	// The Redis record is authoritative; deleting it kills the session.
	if err := m.rdb.Set(ctx, userKey(userID), sessionID, m.ttl).Err(); err != nil {
		return "", err
	}
	token, err := SignToken(userID, role, sessionID, m.secret, m.ttl)
	if err != nil {
		_ = m.rdb.Del(ctx, userKey(userID)).Err()
		return "", err
	}
	return token, nil
}

// Verify parses the cookie token and checks the user's session record still
// names the token's session id. A token superseded by a newer login fails.
func (m *Manager) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := ParseToken(tokenStr, m.secret)
	if err != nil {
		return nil, err
	}
	current, err := m.rdb.Get(ctx, userKey(claims.UserID)).Result()
	if err == redis.Nil {
		return nil, ErrRevoked
	}
	if err != nil {
		return nil, err
	}
	if current != claims.SessionID {
		return nil, ErrRevoked
	}
	return claims, nil
}

// HasLive reports whether the user has a live server-side session record.
// A false result with the database flag still set means the record expired
// on its own, without a logout.
func (m *Manager) HasLive(ctx context.Context, userID uint) (bool, error) {
	n, err := m.rdb.Exists(ctx, userKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke deletes the user's server-side session record.
func (m *Manager) Revoke(ctx context.Context, userID uint) error {
	return m.rdb.Del(ctx, userKey(userID)).Err()
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
