// Package configrepo loads the fixed tenant set from a YAML file at startup.
// The repository is read-only after construction, so concurrent reads need no
// synchronization.
package configrepo

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/voxgate/recordings-gateway/tenants"
)

var _ tenants.Repo = (*Repo)(nil)

// file is the on-disk layout of the tenants file.
type file struct {
	Tenants []*tenants.Tenant `yaml:"tenants"`
}

type Repo struct {
	byID  map[string]*tenants.Tenant
	order []*tenants.Tenant
}

// Load reads and validates the tenant set from path.
func Load(path string) (*Repo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[configrepo.Load] read tenants file")
	}
	return Parse(data)
}

// Parse builds a repo from raw YAML. Validation enforces the prefix
// invariants: every tenant needs a non-empty, unique prefix, and no prefix
// may contain another tenant's prefix as its own leading bytes (overlapping
// prefixes would let one tenant enumerate part of another's namespace).
func Parse(data []byte) (*Repo, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "[configrepo.Parse] unmarshal tenants file")
	}
	if len(f.Tenants) == 0 {
		return nil, errors.New("[configrepo.Parse] no tenants configured")
	}

	byID := make(map[string]*tenants.Tenant, len(f.Tenants))
	for _, t := range f.Tenants {
		if t.ID == "" {
			return nil, errors.New("[configrepo.Parse] tenant with empty id")
		}
		if t.SecretHash == "" {
			return nil, errors.Errorf("[configrepo.Parse] tenant %q has no secret hash", t.ID)
		}
		if t.Prefix == "" {
			return nil, errors.Errorf("[configrepo.Parse] tenant %q has an empty prefix", t.ID)
		}
		if _, exists := byID[t.ID]; exists {
			return nil, errors.Errorf("[configrepo.Parse] duplicate tenant id %q", t.ID)
		}
		byID[t.ID] = t
	}

	for _, a := range f.Tenants {
		for _, b := range f.Tenants {
			if a.ID != b.ID && strings.HasPrefix(a.Prefix, b.Prefix) {
				return nil, errors.Errorf("[configrepo.Parse] tenant %q prefix %q overlaps tenant %q prefix %q",
					a.ID, a.Prefix, b.ID, b.Prefix)
			}
		}
	}

	return &Repo{byID: byID, order: f.Tenants}, nil
}

func (r *Repo) Get(tenantID string) (*tenants.Tenant, error) {
	t, ok := r.byID[tenantID]
	if !ok {
		return nil, tenants.ErrTenantNotFound
	}
	return t, nil
}

func (r *Repo) List() []*tenants.Tenant {
	return r.order
}
