package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired reports a structurally valid token past its expiry.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrMalformed reports a token that could not be parsed at all.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrInvalidSig covers signature mismatches, algorithm confusion and any
	// other validation failure. No partial trust: a failed verification never
	// yields claims.
	ErrInvalidSig = errors.New("jwtx: invalid signature")
)

// Codec signs and verifies HMAC tokens under a shared secret. The algorithm
// is selected by name (HS256, HS384, HS512) so it can come straight from
// configuration.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

// NewCodec builds a Codec for the named HMAC algorithm. Unknown algorithm
// names fall back to HS256.
func NewCodec(secret, algorithm string) *Codec {
	method := jwt.SigningMethodHS256
	switch algorithm {
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	}
	return &Codec{secret: []byte(secret), method: method}
}

// Alg returns the signing algorithm name.
func (c *Codec) Alg() string { return c.method.Alg() }

// Issue signs a token string carrying the given claims.
func (c *Codec) Issue(claims Claims) (string, error) {
	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// IssueFor is a convenience that stamps issued-at/expiry before signing.
func (c *Codec) IssueFor(userID int64, username string, roleID int64, roleName string, superuser bool, ttl time.Duration, now time.Time) (string, error) {
	return c.Issue(NewClaims(userID, username, roleID, roleName, superuser, ttl, now))
}

// Verify parses and validates a token, returning its claims on success.
// Expired tokens yield ErrExpired; every other failure (bad signature,
// unexpected algorithm, truncated payload) yields ErrInvalidSig or
// ErrMalformed with zero claims.
func (c *Codec) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrInvalidSig
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrInvalidSig
		}
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}
	return claims, nil
}
