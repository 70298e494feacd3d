// Package token signs and verifies the bearer tokens issued by the service.
//
// Tokens are standard HS256 JWTs so that any off-the-shelf bearer-token
// verifier holding the shared secret can validate them. Verification is
// stateless: validity is decided entirely from the token contents, the
// secret, and the clock.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformed indicates a token that is not a structurally valid JWT or
	// is missing required claims.
	ErrMalformed = errors.New("malformed token")
	// ErrBadSignature indicates the signature does not match the payload.
	ErrBadSignature = errors.New("bad token signature")
	// ErrExpired indicates a well-signed token whose expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrIssuerMismatch indicates a well-signed token minted by a different
	// issuer than the one this codec is configured for.
	ErrIssuerMismatch = errors.New("token issuer mismatch")
)

// Claims is the set of facts embedded in a signed token.
type Claims struct {
	Issuer    string
	Subject   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	Scopes    string
}

// NewClaims builds the claim set for a freshly authenticated user. Timestamps
// are truncated to whole seconds, matching the JWT wire form.
func NewClaims(issuer string, userID uuid.UUID, scopes string, now time.Time, ttl time.Duration) Claims {
	iat := time.Unix(now.Unix(), 0)
	return Claims{
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  iat,
		ExpiresAt: iat.Add(ttl),
		Scopes:    scopes,
	}
}

// wireClaims is the JSON shape of the payload segment.
type wireClaims struct {
	jwt.RegisteredClaims
	Scopes string `json:"scopes"`
}

// Codec signs claim sets into token strings and verifies them back. It is
// stateless and safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewCodec returns a codec signing and verifying with the given shared
// secret and expecting the given issuer on every verified token.
func NewCodec(secret []byte, issuer string) *Codec {
	return &Codec{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}
}

// Sign encodes claims into a signed token string.
func (c *Codec) Sign(claims Claims) (string, error) {
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		return "", fmt.Errorf("claims expire at %v, before issue time %v", claims.ExpiresAt, claims.IssuedAt)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    claims.Issuer,
			Subject:   hexID(claims.Subject),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Scopes: claims.Scopes,
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry, and issuer of a token string and
// returns the embedded claims. The signature is checked before anything in
// the payload is trusted; expiry and issuer checks run only on tokens whose
// signature already passed. A token is expired once the current time reaches
// its expiry second.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	var wire wireClaims
	_, err := jwt.ParseWithClaims(tokenString, &wire,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if wire.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: missing iat claim", ErrMalformed)
	}
	sub, err := uuid.Parse(wire.Subject)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: subject is not a user id", ErrMalformed)
	}

	return Claims{
		Issuer:    wire.Issuer,
		Subject:   sub,
		IssuedAt:  wire.IssuedAt.Time,
		ExpiresAt: wire.ExpiresAt.Time,
		Scopes:    wire.Scopes,
	}, nil
}

// mapParseError folds the jwt library's error tree into this package's
// sentinel errors. Signature failures win over claim failures so that a
// tampered token never reports as merely expired.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrIssuerMismatch, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// hexID renders a user id in the canonical 32-character hex form used for
// the sub claim.
func hexID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}
