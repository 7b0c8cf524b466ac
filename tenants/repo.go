package tenants

import "errors"

var ErrTenantNotFound = errors.New("tenant not found")

type Repo interface {
	Get(tenantID string) (*Tenant, error)
	List() []*Tenant
}
