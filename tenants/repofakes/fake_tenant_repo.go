package repofakes

import (
	"sync"

	"github.com/voxgate/recordings-gateway/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	tenants map[string]*tenants.Tenant
	order   []*tenants.Tenant
	lock    sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{
		tenants: make(map[string]*tenants.Tenant),
	}
}

func (tr *FakeTenantRepo) Upsert(t *tenants.Tenant) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, exists := tr.tenants[t.ID]; !exists {
		tr.order = append(tr.order, t)
	}
	tr.tenants[t.ID] = t
}

func (tr *FakeTenantRepo) Get(tenantID string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	t, ok := tr.tenants[tenantID]
	if !ok {
		return nil, tenants.ErrTenantNotFound
	}
	return t, nil
}

func (tr *FakeTenantRepo) List() []*tenants.Tenant {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	return tr.order
}
