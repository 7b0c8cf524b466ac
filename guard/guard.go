// Package guard mediates every object-store operation. A request for a key
// is allowed iff the key begins with the requesting tenant's prefix, compared
// byte-wise with no normalization. Denials are logged as candidate IDOR
// attempts and surface as ErrAuthorization, never as a silent empty result.
package guard

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/voxgate/recordings-gateway/tenants"
)

// ErrAuthorization indicates a valid credential asked for a key outside its
// tenant's prefix.
var ErrAuthorization = errors.New("key outside tenant namespace")

type Guard struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Guard {
	return &Guard{
		log: log.With().Str("component", "guard").Logger(),
	}
}

// Check decides whether the tenant may act on key. Empty keys and keys
// containing ".." segments are denied outright; the comparison is an exact
// byte-wise prefix match with no case folding or path cleaning, so there is
// no normalization step an attacker could exploit.
func (g *Guard) Check(tenant *tenants.Tenant, key string) error {
	if key == "" || hasTraversal(key) || !strings.HasPrefix(key, tenant.Prefix) {
		g.log.Warn().
			Str("tenant", tenant.ID).
			Str("key", key).
			Msg("denied object access outside tenant prefix")
		return ErrAuthorization
	}
	return nil
}

// ScopedPrefix returns the store-level prefix a listing for the tenant must
// use. With no requested narrowing it is the tenant's own prefix; a requested
// prefix must itself pass Check. The store is therefore never asked to
// enumerate another tenant's keys, regardless of what the catalog does with
// the result.
func (g *Guard) ScopedPrefix(tenant *tenants.Tenant, requestedPrefix string) (string, error) {
	if requestedPrefix == "" {
		return tenant.Prefix, nil
	}
	if err := g.Check(tenant, requestedPrefix); err != nil {
		return "", err
	}
	return requestedPrefix, nil
}

func hasTraversal(key string) bool {
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}
