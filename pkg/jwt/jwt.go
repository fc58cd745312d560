package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMissingSecret is returned by Issue when no signing secret is configured.
var ErrMissingSecret = errors.New("jwt: signing secret is not configured")

// Config carries the signing secret and token lifetime.
type Config struct {
	Secret string
	TTL    time.Duration
}

// Subject is the identity a token is issued for.
type Subject struct {
	ID       uuid.UUID
	Role     string
	Username string
}

// Claims is the payload of a session token.
type Claims struct {
	UserID   string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 session tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec creates a Codec from cfg.
func NewCodec(cfg Config) *Codec {
	return &Codec{secret: []byte(cfg.Secret), ttl: cfg.TTL, now: time.Now}
}

// Issue creates a signed token for s.
// Every token carries a fresh ID so two logins never produce the same string.
func (c *Codec) Issue(s Subject) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := c.now()
	claims := Claims{
		UserID:   s.ID.String(),
		Role:     s.Role,
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses token and returns its claims. It reports false for any bad signature,
// unexpected algorithm, expired token or malformed payload.
func (c *Codec) Verify(token string) (*Claims, bool) {
	if len(c.secret) == 0 || token == "" {
		return nil, false
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, false
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, false
	}
	return claims, true
}

// SubjectID returns the user id carried by the claims.
func (c *Claims) SubjectID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}
