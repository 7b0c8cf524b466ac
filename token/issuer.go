// Package token creates and validates the signed bearer credentials that
// bind a tenant identity to an expiry. Tokens are self-contained, so no
// server-side session table is needed for validation.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const DefaultTTL = 8 * time.Hour

// Issuer creates signed bearer tokens for authenticated tenants.
type Issuer struct {
	signer Signer
	issuer string
	ttl    time.Duration
}

type IssuerOption func(*Issuer)

// WithTTL overrides the default token lifetime.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.ttl = ttl
	}
}

// NewIssuer creates a new token issuer. issuer is the value of the "iss" claim.
func NewIssuer(signer Signer, issuer string, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer: signer,
		issuer: issuer,
		ttl:    DefaultTTL,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue creates a signed bearer token for the tenant, expiring at now + TTL.
func (i *Issuer) Issue(tenantID string) (string, time.Time, error) {
	now := NowTimeFunc()
	expiresAt := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"iss": i.issuer,
		"sub": tenantID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"jti": uuid.New().String(), // Unique token ID for revocation
	}

	signedToken, err := i.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "[Issuer.Issue] sign claims")
	}
	return signedToken, expiresAt, nil
}
