package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/voxgate/recordings-gateway/tenants"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey int

const (
	tenantContextKey contextKey = iota
	tokenContextKey
)

// TenantFromContext retrieves the authenticated tenant injected by RequireAuth.
func TenantFromContext(ctx context.Context) *tenants.Tenant {
	if t, ok := ctx.Value(tenantContextKey).(*tenants.Tenant); ok {
		return t
	}
	return nil
}

// TokenFromContext retrieves the raw bearer token injected by RequireAuth.
func TokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tokenContextKey).(string); ok {
		return t
	}
	return ""
}

// RequireAuth validates the Bearer credential on every protected request and
// injects the resolved tenant into the request context. Missing, malformed,
// expired, and revoked credentials are indistinguishable to the caller.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken := bearerToken(r)
		if rawToken == "" {
			writeError(w, s.log, http.StatusUnauthorized, "missing bearer credential")
			return
		}

		tenant, err := s.services.Auth.Resolve(rawToken)
		if err != nil {
			writeError(w, s.log, http.StatusUnauthorized, "invalid or expired credential")
			return
		}

		ctx := context.WithValue(r.Context(), tenantContextKey, tenant)
		ctx = context.WithValue(ctx, tokenContextKey, rawToken)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
