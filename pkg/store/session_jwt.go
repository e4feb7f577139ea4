package store

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"facultyportal/pkg/domain"
)

const jwtIssuer = "faculty-portal"

// JWTSessionStore issues and validates HS256 JWT session tokens.
// Stateless: DeleteSession cannot revoke an issued token, it only
// satisfies the idempotent sign-out contract. Prefer the Redis store
// when revocation matters.
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTSessionStore builds a stateless JWT session store.
func NewJWTSessionStore(secret string, ttl time.Duration) *JWTSessionStore {
	return &JWTSessionStore{secret: []byte(secret), ttl: ttl}
}

// NewSession creates a signed JWT carrying the full identity.
func (s *JWTSessionStore) NewSession(sess domain.Session) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Email: sess.Email,
		Role:  sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.ID,
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// SessionByToken validates a JWT and rebuilds the identity from claims.
func (s *JWTSessionStore) SessionByToken(token string) (domain.Session, bool, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return domain.Session{}, false, nil
	}
	return domain.Session{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, true, nil
}

// DeleteSession is a no-op for stateless JWT; provided for interface parity.
func (s *JWTSessionStore) DeleteSession(_ string) error {
	return nil
}
