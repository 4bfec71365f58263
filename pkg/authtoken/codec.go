package authtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const signingMethod = "HS256"

// Codec signs and verifies the dual-token credential. Access and refresh
// tokens use distinct secrets so one token class can never be verified as
// the other. The codec is pure: no I/O, no state beyond its configuration.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// New creates a Codec. Both secrets are required and must differ; a shared
// secret would let a refresh token pass as an access token.
func New(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if string(accessSecret) == string(refreshSecret) {
		return nil, ErrSameSecret
	}

	return &Codec{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// WithClock overrides the codec's time source. Intended for tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs an access token for the given identity claims. Timing
// claims are stamped by the codec; identity fields must be complete or the
// call fails with ErrMissingField / ErrInvalidRole.
func (c *Codec) IssueAccess(claims AccessClaims) (string, error) {
	if err := claims.validate(); err != nil {
		return "", err
	}

	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.accessTTL))

	return c.sign(claims, c.accessSecret)
}

// IssueRefresh signs a refresh token carrying only the subject identifier.
// Each token gets a unique ID so two tokens minted within the same second
// are still distinct, which rotation depends on.
func (c *Codec) IssueRefresh(subjectID string) (string, error) {
	now := c.now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}
	if err := claims.validate(); err != nil {
		return "", err
	}

	return c.sign(claims, c.refreshSecret)
}

// VerifyAccess checks signature and expiry of an access token and returns
// its claims. A token signed with the refresh secret fails with
// ErrKeyMismatch.
func (c *Codec) VerifyAccess(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := c.parse(token, &claims, c.accessSecret); err != nil {
		return AccessClaims{}, err
	}
	if err := claims.validate(); err != nil {
		return AccessClaims{}, errors.Join(ErrMalformedToken, err)
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry of a refresh token.
func (c *Codec) VerifyRefresh(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := c.parse(token, &claims, c.refreshSecret); err != nil {
		return RefreshClaims{}, err
	}
	if err := claims.validate(); err != nil {
		return RefreshClaims{}, errors.Join(ErrMalformedToken, err)
	}
	return claims, nil
}

func (c *Codec) sign(claims jwt.Claims, secret []byte) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Join(ErrMalformedToken, err)
	}
	return token, nil
}

func (c *Codec) parse(token string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrKeyMismatch, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	default:
		return errors.Join(ErrMalformedToken, err)
	}
}
