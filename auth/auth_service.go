// Package auth validates tenant credentials and issues the signed bearer
// tokens presented on every protected request.
package auth

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/voxgate/recordings-gateway/tenants"
	"github.com/voxgate/recordings-gateway/token"
)

// Credential is the result of a successful login.
type Credential struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // Unix seconds
}

// Service authenticates tenants and resolves bearer tokens back to a live
// tenant record.
type Service struct {
	tenantRepo  tenants.Repo
	issuer      *token.Issuer
	inspector   *token.Inspector
	revocations token.RevokedTokenCache
	log         zerolog.Logger
}

// NewService initializes the auth service with its required dependencies.
func NewService(tenantRepo tenants.Repo, issuer *token.Issuer, inspector *token.Inspector, revocations token.RevokedTokenCache, log zerolog.Logger) (*Service, error) {
	if tenantRepo == nil {
		return nil, errors.New("[auth.NewService] tenant repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[auth.NewService] token issuer is required")
	}
	if inspector == nil {
		return nil, errors.New("[auth.NewService] token inspector is required")
	}
	if revocations == nil {
		return nil, errors.New("[auth.NewService] revocation cache is required")
	}

	return &Service{
		tenantRepo:  tenantRepo,
		issuer:      issuer,
		inspector:   inspector,
		revocations: revocations,
		log:         log.With().Str("component", "auth").Logger(),
	}, nil
}

// Authenticate checks the tenant's secret and issues a signed bearer token.
// Unknown tenant and wrong secret both return ErrAuthentication.
func (s *Service) Authenticate(username, secret string) (*Credential, error) {
	tenant, err := s.tenantRepo.Get(username)
	if err != nil {
		// Still burn a bcrypt comparison so response timing does not
		// distinguish unknown tenants from wrong secrets.
		tenants.CheckSecret(secret, dummyHash)
		return nil, ErrAuthentication
	}

	if !tenants.CheckSecret(secret, tenant.SecretHash) {
		s.log.Warn().Str("tenant", username).Msg("failed login attempt")
		return nil, ErrAuthentication
	}

	signedToken, expiresAt, err := s.issuer.Issue(tenant.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Authenticate] issue token")
	}

	s.log.Info().Str("tenant", tenant.ID).Time("expires_at", expiresAt).Msg("issued bearer token")
	return &Credential{Token: signedToken, ExpiresAt: expiresAt.Unix()}, nil
}

// Resolve verifies a raw bearer token and returns the tenant it belongs to.
// Any verification failure yields ErrInvalidCredential.
func (s *Service) Resolve(rawToken string) (*tenants.Tenant, error) {
	introspection, err := s.inspector.Introspect(rawToken)
	if err != nil || !introspection.Active {
		return nil, ErrInvalidCredential
	}

	tenant, err := s.tenantRepo.Get(introspection.TenantID)
	if err != nil {
		// Token verified but the tenant no longer exists.
		return nil, ErrInvalidCredential
	}
	return tenant, nil
}

// Logout revokes the token's id until its natural expiry. Invalid tokens
// return ErrInvalidCredential.
func (s *Service) Logout(rawToken string) error {
	introspection, err := s.inspector.Introspect(rawToken)
	if err != nil || !introspection.Active {
		return ErrInvalidCredential
	}
	if introspection.JTI == "" {
		return ErrInvalidCredential
	}

	if err := s.revocations.Add(introspection.JTI, unixTime(introspection.Exp)); err != nil {
		return errors.Wrap(err, "[Service.Logout] revoke token")
	}
	s.log.Info().Str("tenant", introspection.TenantID).Msg("tenant logged out")
	return nil
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0)
}

// dummyHash is a valid bcrypt digest of a random throwaway value, used only
// to equalize timing on unknown-tenant logins.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
