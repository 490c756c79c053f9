package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stewardhq/steward/internal/shared"
)

// TokenCodec signs and verifies session tokens with a process-wide secret.
// Issued tokens are self-contained; there is no server-side session table and
// no revocation before expiry.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec constructs a codec. The secret must be externally supplied;
// config refuses to start without one.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates a signed token embedding the account id and role label,
// expiring one TTL from now.
func (c *TokenCodec) Issue(accountID int64, role string) (*Token, error) {
	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, err
	}
	return &Token{Raw: raw, Role: role, ExpiresAt: expiresAt}, nil
}

// Verify validates signature and expiry. Absence maps to ErrMissingToken;
// every other failure collapses into ErrInvalidToken so callers cannot tell
// a forged token from an expired one.
func (c *TokenCodec) Verify(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, shared.ErrMissingToken
	}
	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, shared.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return Claims{}, shared.ErrInvalidToken
	}
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Claims{}, shared.ErrInvalidToken
	}
	out := Claims{AccountID: accountID, Role: claims.Role}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
