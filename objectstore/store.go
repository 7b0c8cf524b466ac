// Package objectstore defines the boundary to the external object store.
// The store is consumed only through list/get/presign operations; its
// internal replication and consistency are not this service's concern.
package objectstore

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound indicates the key does not exist in the store.
	ErrNotFound = errors.New("object not found")

	// ErrUpstream indicates the store was unreachable, denied the request at
	// the infrastructure level, or returned a malformed response.
	ErrUpstream = errors.New("object store request failed")
)

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Page is one page of a prefix enumeration. NextContinuationToken is empty
// when the enumeration is complete.
type Page struct {
	Objects               []ObjectInfo
	NextContinuationToken string
}

// Object is an open byte stream for a single key. The caller owns Body and
// must close it on every exit path.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// SignedURL is a time-boxed, store-issued URL granting direct access to one
// object. The URL is itself a bearer credential for its lifetime.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store is the set of operations consumed from the external object store.
type Store interface {
	// ListPage enumerates one page of keys under prefix, resuming from
	// continuationToken when non-empty.
	ListPage(ctx context.Context, prefix, continuationToken string) (*Page, error)

	// Get opens a byte stream for key.
	Get(ctx context.Context, key string) (*Object, error)

	// PresignGet asks the store for a pre-signed URL scoped to exactly key.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (*SignedURL, error)

	// HealthCheck probes store reachability.
	HealthCheck(ctx context.Context) error
}
