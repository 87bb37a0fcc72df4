package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errBadToken = errors.New("invalid session token")

type claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and parses HS256 session tokens.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewCodec(key string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Codec{key: []byte(key), ttl: ttl, now: time.Now}
}

// TTL is the fixed lifetime of every issued session.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Sign creates a new session for the user with a fresh token id.
func (c *Codec) Sign(userID, role string) (*Issued, error) {
	now := c.now().UTC().Truncate(time.Second)
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UID:  userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	tok, err := jt.SignedString(c.key)
	if err != nil {
		return nil, err
	}
	return &Issued{Token: tok, Session: s}, nil
}

// Parse verifies the signature and expiry of raw and returns its session.
func (c *Codec) Parse(raw string) (*Session, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadToken, err)
	}
	if cl.UID == "" || cl.ID == "" {
		return nil, fmt.Errorf("%w: missing uid or jti", errBadToken)
	}
	s := &Session{ID: cl.ID, UserID: cl.UID, Role: cl.Role, ExpiresAt: cl.ExpiresAt.Time}
	if cl.IssuedAt != nil {
		s.IssuedAt = cl.IssuedAt.Time
	}
	return s, nil
}
