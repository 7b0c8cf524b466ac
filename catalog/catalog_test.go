package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/voxgate/recordings-gateway/catalog"
	"github.com/voxgate/recordings-gateway/guard"
	"github.com/voxgate/recordings-gateway/objectstore"
	"github.com/voxgate/recordings-gateway/objectstore/storefakes"
	"github.com/voxgate/recordings-gateway/tenants"
)

var (
	tenantA = &tenants.Tenant{ID: "clientA", Prefix: "clientA/"}
	tenantB = &tenants.Tenant{ID: "clientB", Prefix: "clientB/"}
)

func newCatalog(t *testing.T, store *storefakes.FakeStore, options ...catalog.ServiceOption) *catalog.Service {
	t.Helper()

	options = append([]catalog.ServiceOption{catalog.WithMaxRetries(0)}, options...)
	service, err := catalog.NewService(store, guard.New(zerolog.Nop()), zerolog.Nop(), options...)
	require.NoError(t, err)
	return service
}

func seedScenario(store *storefakes.FakeStore) {
	store.Put("clientA/2024-05-01_agent_42_x.mp3", "audio/mpeg", []byte("a1"))
	store.Put("clientA/2024-05-02_agent_7_x.mp3", "audio/mpeg", []byte("a2"))
	store.Put("clientB/2024-05-01_agent_42_x.mp3", "audio/mpeg", []byte("b1"))
}

func keys(recordings []catalog.Recording) []string {
	out := make([]string, 0, len(recordings))
	for _, rec := range recordings {
		out = append(out, rec.Key)
	}
	return out
}

func TestListIsScopedToTenantPrefix(t *testing.T) {
	store := storefakes.NewFakeStore()
	seedScenario(store)
	service := newCatalog(t, store)

	recordings, err := service.List(context.Background(), tenantA, catalog.Filters{})
	require.NoError(t, err)
	require.Equal(t, []string{
		"clientA/2024-05-01_agent_42_x.mp3",
		"clientA/2024-05-02_agent_7_x.mp3",
	}, keys(recordings))

	recordings, err = service.List(context.Background(), tenantB, catalog.Filters{})
	require.NoError(t, err)
	require.Equal(t, []string{"clientB/2024-05-01_agent_42_x.mp3"}, keys(recordings))
}

func TestListAgentFilterScenario(t *testing.T) {
	store := storefakes.NewFakeStore()
	seedScenario(store)
	service := newCatalog(t, store)

	recordings, err := service.List(context.Background(), tenantA, catalog.Filters{Agent: "42"})
	require.NoError(t, err)
	require.Equal(t, []string{"clientA/2024-05-01_agent_42_x.mp3"}, keys(recordings))
}

func TestListDateFilterMatchesByPrefix(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.Put("clientA/2024-05-01_agent_1_x.mp3", "audio/mpeg", []byte("x"))
	store.Put("clientA/2024-05-14_agent_1_x.mp3", "audio/mpeg", []byte("x"))
	store.Put("clientA/2024-06-01_agent_1_x.mp3", "audio/mpeg", []byte("x"))
	service := newCatalog(t, store)

	recordings, err := service.List(context.Background(), tenantA, catalog.Filters{Date: "2024-05"})
	require.NoError(t, err)
	require.Equal(t, []string{
		"clientA/2024-05-01_agent_1_x.mp3",
		"clientA/2024-05-14_agent_1_x.mp3",
	}, keys(recordings))
}

// Records with unparseable fields never match a non-empty filter; with no
// filter they are still listed with nil metadata.
func TestListFailsClosedOnUnparseableMetadata(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.Put("clientA/2024-05-01_agent_42_x.mp3", "audio/mpeg", []byte("x"))
	store.Put("clientA/weird name.mp3", "audio/mpeg", []byte("x"))
	service := newCatalog(t, store)

	recordings, err := service.List(context.Background(), tenantA, catalog.Filters{})
	require.NoError(t, err)
	require.Len(t, recordings, 2)

	recordings, err = service.List(context.Background(), tenantA, catalog.Filters{Agent: "42"})
	require.NoError(t, err)
	require.Equal(t, []string{"clientA/2024-05-01_agent_42_x.mp3"}, keys(recordings))

	recordings, err = service.List(context.Background(), tenantA, catalog.Filters{Date: "2024"})
	require.NoError(t, err)
	require.Equal(t, []string{"clientA/2024-05-01_agent_42_x.mp3"}, keys(recordings))
}

// Listing completeness: a tenant with more objects than one page still sees
// its complete set, in store enumeration order.
func TestListPaginatesFully(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.PageSize = 2
	expected := []string{
		"clientA/2024-05-01_agent_1_100.mp3",
		"clientA/2024-05-02_agent_2_100.mp3",
		"clientA/2024-05-03_agent_3_100.mp3",
		"clientA/2024-05-04_agent_4_100.mp3",
		"clientA/2024-05-05_agent_5_100.mp3",
	}
	for _, key := range expected {
		store.Put(key, "audio/mpeg", []byte("x"))
	}
	service := newCatalog(t, store)

	recordings, err := service.List(context.Background(), tenantA, catalog.Filters{})
	require.NoError(t, err)
	require.Equal(t, expected, keys(recordings))
	require.Equal(t, 3, store.ListCalls)
}

func TestListStopsAtPageCap(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.PageSize = 1
	for _, key := range []string{"clientA/a.mp3", "clientA/b.mp3", "clientA/c.mp3"} {
		store.Put(key, "audio/mpeg", []byte("x"))
	}
	service := newCatalog(t, store, catalog.WithPageLimits(2, time.Second))

	_, err := service.List(context.Background(), tenantA, catalog.Filters{})
	require.ErrorIs(t, err, objectstore.ErrUpstream)
}

// cancelAfterFirstPage cancels the caller's context as soon as the first
// page has been served, simulating a client that goes away mid-enumeration.
type cancelAfterFirstPage struct {
	*storefakes.FakeStore
	cancel context.CancelFunc
}

func (s *cancelAfterFirstPage) ListPage(ctx context.Context, prefix, continuationToken string) (*objectstore.Page, error) {
	defer s.cancel()
	return s.FakeStore.ListPage(ctx, prefix, continuationToken)
}

func TestListStopsWhenContextCancelled(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.PageSize = 1
	for _, key := range []string{"clientA/a.mp3", "clientA/b.mp3", "clientA/c.mp3"} {
		store.Put(key, "audio/mpeg", []byte("x"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service, err := catalog.NewService(&cancelAfterFirstPage{FakeStore: store, cancel: cancel},
		guard.New(zerolog.Nop()), zerolog.Nop(), catalog.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = service.List(ctx, tenantA, catalog.Filters{})
	require.ErrorIs(t, err, context.Canceled)
	// The enumeration stopped after the page that observed the cancellation.
	require.Equal(t, 1, store.ListCalls)
}

func TestListPropagatesUpstreamError(t *testing.T) {
	store := storefakes.NewFakeStore()
	seedScenario(store)
	store.ListErr = objectstore.ErrUpstream
	service := newCatalog(t, store)

	_, err := service.List(context.Background(), tenantA, catalog.Filters{})
	require.ErrorIs(t, err, objectstore.ErrUpstream)
}

// A denied listing never reaches the store.
func TestListDeniedPrefixMakesNoStoreCall(t *testing.T) {
	store := storefakes.NewFakeStore()
	seedScenario(store)
	service := newCatalog(t, store)

	_, err := service.List(context.Background(), tenantA, catalog.Filters{Prefix: "clientB/"})
	require.ErrorIs(t, err, guard.ErrAuthorization)
	require.Equal(t, 0, store.ListCalls)
}

func TestListNarrowingPrefix(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.Put("clientA/2024-05/2024-05-01_agent_1_100.mp3", "audio/mpeg", []byte("x"))
	store.Put("clientA/2024-06/2024-06-01_agent_1_100.mp3", "audio/mpeg", []byte("x"))
	service := newCatalog(t, store)

	recordings, err := service.List(context.Background(), tenantA, catalog.Filters{Prefix: "clientA/2024-05/"})
	require.NoError(t, err)
	require.Equal(t, []string{"clientA/2024-05/2024-05-01_agent_1_100.mp3"}, keys(recordings))
}

func TestListMetadataFromStore(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.Put("clientA/2024-05-01_agent_42_300.mp3", "audio/mpeg", []byte("payload"))
	service := newCatalog(t, store)

	recordings, err := service.List(context.Background(), tenantA, catalog.Filters{})
	require.NoError(t, err)
	require.Len(t, recordings, 1)

	rec := recordings[0]
	require.Equal(t, int64(len("payload")), rec.Size)
	require.NotNil(t, rec.LastModified)
	require.Equal(t, "mp3", rec.Extension)
	require.NotNil(t, rec.DurationSeconds)
	require.Equal(t, 300, *rec.DurationSeconds)
}
