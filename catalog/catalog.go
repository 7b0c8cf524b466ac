// Package catalog lists a tenant's recordings from the object store and
// answers filter queries over the metadata encoded in key names.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/voxgate/recordings-gateway/guard"
	"github.com/voxgate/recordings-gateway/objectstore"
	"github.com/voxgate/recordings-gateway/tenants"
)

const (
	defaultMaxPages    = 100
	defaultPageTimeout = 10 * time.Second
	defaultMaxRetries  = 2
)

// Filters are conjunctive predicates over the extracted metadata. Absent
// filters pass everything. Prefix optionally narrows the listing below the
// tenant's namespace; it must still lie inside it.
type Filters struct {
	Date   string
	Agent  string
	Prefix string
}

// Service is the recording catalog for all tenants. Every enumeration it
// issues is scoped to the requesting tenant's prefix at the store level.
type Service struct {
	store       objectstore.Store
	guard       *guard.Guard
	schema      Schema
	maxPages    int
	pageTimeout time.Duration
	maxRetries  uint64
	log         zerolog.Logger
}

type ServiceOption func(*Service)

// WithSchema overrides the default key-naming convention.
func WithSchema(schema Schema) ServiceOption {
	return func(s *Service) {
		s.schema = schema
	}
}

// WithPageLimits bounds the enumeration loop: at most maxPages pages, each
// fetched within pageTimeout.
func WithPageLimits(maxPages int, pageTimeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.maxPages = maxPages
		s.pageTimeout = pageTimeout
	}
}

// WithMaxRetries sets how many times a failed page fetch is retried with
// exponential backoff before giving up.
func WithMaxRetries(maxRetries uint64) ServiceOption {
	return func(s *Service) {
		s.maxRetries = maxRetries
	}
}

func NewService(store objectstore.Store, g *guard.Guard, log zerolog.Logger, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("[catalog.NewService] store is required")
	}
	if g == nil {
		return nil, errors.New("[catalog.NewService] guard is required")
	}

	s := &Service{
		store:       store,
		guard:       g,
		schema:      DefaultSchema(),
		maxPages:    defaultMaxPages,
		pageTimeout: defaultPageTimeout,
		maxRetries:  defaultMaxRetries,
		log:         log.With().Str("component", "catalog").Logger(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// List enumerates the tenant's complete recording set, fully paginating the
// store, and applies the filters. Results keep the store's enumeration
// order. An enumeration failure propagates as ErrUpstream - never a silently
// truncated list.
func (s *Service) List(ctx context.Context, tenant *tenants.Tenant, filters Filters) ([]Recording, error) {
	prefix, err := s.guard.ScopedPrefix(tenant, filters.Prefix)
	if err != nil {
		return nil, err
	}

	recordings := make([]Recording, 0)
	continuation := ""
	for pageNum := 0; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pageNum >= s.maxPages {
			s.log.Error().Str("tenant", tenant.ID).Int("max_pages", s.maxPages).Msg("listing exceeded page cap")
			return nil, errors.Wrapf(objectstore.ErrUpstream, "[Service.List] enumeration exceeded %d pages", s.maxPages)
		}

		page, err := s.fetchPage(ctx, prefix, continuation)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Objects {
			rec := s.schema.ParseKey(tenant.Prefix, obj.Key)
			rec.Size = obj.Size
			rec.LastModified = obj.LastModified
			if !matches(rec, filters) {
				continue
			}
			recordings = append(recordings, rec)
		}

		if page.NextContinuationToken == "" {
			return recordings, nil
		}
		continuation = page.NextContinuationToken
	}
}

// fetchPage fetches one page within the per-page timeout, retrying upstream
// failures with exponential backoff. Listing is idempotent, so retries are
// safe.
func (s *Service) fetchPage(ctx context.Context, prefix, continuation string) (*objectstore.Page, error) {
	pageCtx, cancel := context.WithTimeout(ctx, s.pageTimeout)
	defer cancel()

	var page *objectstore.Page
	operation := func() error {
		p, err := s.store.ListPage(pageCtx, prefix, continuation)
		if err != nil {
			if errors.Is(err, objectstore.ErrUpstream) {
				return err
			}
			return backoff.Permanent(err)
		}
		page = p
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), pageCtx)
	if err := backoff.Retry(operation, policy); err != nil {
		// Caller cancellation is not an upstream failure. A per-page
		// deadline expiring on its own still is.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, objectstore.ErrUpstream) {
			return nil, err
		}
		return nil, errors.Wrapf(objectstore.ErrUpstream, "[Service.fetchPage] %v", err)
	}
	return page, nil
}

// matches applies the conjunctive filter predicates. A record whose relevant
// field could not be parsed never matches a non-empty filter.
func matches(rec Recording, filters Filters) bool {
	if filters.Date != "" {
		if rec.Date == nil || !strings.HasPrefix(*rec.Date, filters.Date) {
			return false
		}
	}
	if filters.Agent != "" {
		if rec.Agent == nil || *rec.Agent != filters.Agent {
			return false
		}
	}
	return true
}
