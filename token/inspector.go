package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Introspection represents the verified metadata of a bearer token.
// The Active field indicates the state of the token - if it is false,
// the other fields may not be populated.
type Introspection struct {
	Active   bool   `json:"active"`
	TenantID string `json:"tenant_id,omitempty"` // sub claim
	Iss      string `json:"iss,omitempty"`
	Iat      int64  `json:"iat,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
	JTI      string `json:"jti,omitempty"`
}

// RevokedChecker reports whether a token id has been revoked.
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector verifies bearer tokens. Verification is deterministic and
// side-effect-free; it runs on every protected request.
type Inspector struct {
	signer         Signer
	revokedChecker RevokedChecker
}

// NewInspector creates a new inspector. revokedChecker may be nil when
// revocation is not in use.
func NewInspector(signer Signer, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		signer:         signer,
		revokedChecker: revokedChecker,
	}
}

// Introspect parses and verifies a raw token. A malformed or badly signed
// token yields an inactive introspection along with the parse error.
func (i *Inspector) Introspect(rawToken string) (*Introspection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &Introspection{Active: false}, nil
	}

	parsed, err := jwt.ParseWithClaims(rawToken, jwt.MapClaims{}, i.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(func() time.Time { return NowTimeFunc() }))
	if err != nil || !parsed.Valid {
		return &Introspection{Active: false}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return &Introspection{Active: false}, errors.New("error extracting claims from token")
	}

	sub, _ := claims["sub"].(string)
	iss, _ := claims["iss"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)
	jti, _ := claims["jti"].(string)

	active := true
	if NowTimeFunc().Unix() >= int64(exp) {
		active = false
	}
	if jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(jti) {
		active = false
	}

	return &Introspection{
		Active:   active,
		TenantID: sub,
		Iss:      iss,
		Iat:      int64(iat),
		Exp:      int64(exp),
		JTI:      jti,
	}, nil
}
