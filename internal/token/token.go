// Package token issues and validates the signed session tokens returned by a
// successful login. Tokens are stateless: expiry is the only lifecycle they
// have, and any holder of the signing key can verify them.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"task-manager-api/internal/model"
)

// MinKeyLen is the minimum signing key length in bytes. A shorter key is a
// configuration fault that must stop the process before it serves traffic.
const MinKeyLen = 32

// DefaultExpiryHours applies when no expiry is configured.
const DefaultExpiryHours = 1

var ErrKeyTooShort = errors.New("token: signing key must be at least 32 bytes")

// Claims carries the identity of an authenticated user inside the token.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Issuer builds signed HS256 session tokens. It is immutable after
// construction and safe for concurrent use.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	expiry   time.Duration
}

func NewIssuer(secret string, issuer string, audience string, expiryHours int) (*Issuer, error) {
	if len(secret) < MinKeyLen {
		return nil, ErrKeyTooShort
	}
	if expiryHours <= 0 {
		expiryHours = DefaultExpiryHours
	}

	return &Issuer{
		key:      []byte(secret),
		issuer:   issuer,
		audience: audience,
		expiry:   time.Duration(expiryHours) * time.Hour,
	}, nil
}

// Issue signs a fresh token for the user. Expiry is issued-at plus the
// configured hours.
func (i *Issuer) Issue(user model.User) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
		Username: user.Username,
		Email:    user.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validator checks token signatures and claims on protected requests.
//
// In strict mode the issuer and audience must match and no clock skew is
// tolerated. In relaxed (development) mode issuer/audience checks are off and
// a small leeway absorbs clock drift between services.
type Validator struct {
	key  []byte
	opts []jwt.ParserOption
}

func NewValidator(secret string, issuer string, audience string, strict bool) (*Validator, error) {
	if len(secret) < MinKeyLen {
		return nil, ErrKeyTooShort
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if strict {
		opts = append(opts, jwt.WithIssuer(issuer), jwt.WithAudience(audience))
	} else {
		opts = append(opts, jwt.WithLeeway(2*time.Minute))
	}

	return &Validator{key: []byte(secret), opts: opts}, nil
}

// Validate parses the token and returns its claims, or ErrUnauthorized when
// the signature, expiry, issuer or audience does not hold up.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, v.opts...)
	if err != nil || !parsed.Valid {
		return nil, model.ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, model.ErrUnauthorized
	}

	return claims, nil
}
