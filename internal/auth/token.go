package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validation error taxonomy. These stay internal to the service boundary; the
// gate collapses all of them into a single client-visible rejection so callers
// cannot distinguish a forged token from an expired one.
var (
	ErrTokenMalformed = errors.New("identity token malformed")
	ErrTokenSignature = errors.New("identity token signature invalid")
	ErrTokenExpired   = errors.New("identity token expired")
)

// Claims are the verified contents of an identity token.
type Claims struct {
	jwt.RegisteredClaims
}

// SubjectEmail returns the token's subject email.
func (c *Claims) SubjectEmail() string {
	return c.RegisteredClaims.Subject
}

// TokenService issues and validates signed identity tokens. It is stateless:
// issuing a token creates no session row, and there is no revocation list, so
// a token stays valid until expiry even after logout (documented limitation).
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service signing with the given symmetric
// secret. The secret is process-wide configuration loaded once at startup and
// never derivable from client input.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue produces a signed token asserting the subject email, valid from now
// until now+TTL.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a presented token. Tokens are checked strictly
// against wall clock; no skew compensation.
func (s *TokenService) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		// Prevent algorithm confusion attacks - only the symmetric scheme we issue
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
