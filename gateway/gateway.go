// Package gateway resolves a single guard-approved key to either a proxied
// byte stream or a short-lived signed URL. The guard check runs before any
// store call, so no network round-trip is spent on a request that is already
// known to be unauthorized.
package gateway

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/voxgate/recordings-gateway/guard"
	"github.com/voxgate/recordings-gateway/objectstore"
	"github.com/voxgate/recordings-gateway/tenants"
)

const (
	// DefaultSignedURLTTL applies when the caller does not request one.
	DefaultSignedURLTTL = 5 * time.Minute

	// MaxSignedURLTTL caps requested lifetimes. A signed URL is a bearer
	// credential with no further authorization check once issued, so it must
	// stay short.
	MaxSignedURLTTL = 15 * time.Minute
)

// Stream is an open pass-through byte stream for one recording. The caller
// owns Body and must close it on every exit path.
type Stream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

type Service struct {
	store objectstore.Store
	guard *guard.Guard
	log   zerolog.Logger
}

func NewService(store objectstore.Store, g *guard.Guard, log zerolog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("[gateway.NewService] store is required")
	}
	if g == nil {
		return nil, errors.New("[gateway.NewService] guard is required")
	}

	return &Service{
		store: store,
		guard: g,
		log:   log.With().Str("component", "gateway").Logger(),
	}, nil
}

// OpenStream opens the object's byte stream for proxying. The object is not
// buffered; the caller copies Body through to its own writer.
func (s *Service) OpenStream(ctx context.Context, tenant *tenants.Tenant, key string) (*Stream, error) {
	if err := s.guard.Check(tenant, key); err != nil {
		return nil, err
	}

	obj, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	contentType := obj.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := contentTypeForKey(key); byExt != "" {
			contentType = byExt
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Stream{
		Body:          obj.Body,
		ContentType:   contentType,
		ContentLength: obj.ContentLength,
	}, nil
}

// SignedURL asks the store for a pre-signed URL scoped to exactly key. The
// requested TTL is clamped to [0, MaxSignedURLTTL]; zero means the default.
func (s *Service) SignedURL(ctx context.Context, tenant *tenants.Tenant, key string, ttl time.Duration) (*objectstore.SignedURL, error) {
	if err := s.guard.Check(tenant, key); err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	if ttl > MaxSignedURLTTL {
		ttl = MaxSignedURLTTL
	}

	signed, err := s.store.PresignGet(ctx, key, ttl)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("tenant", tenant.ID).Str("key", key).Dur("ttl", ttl).Msg("issued signed url")
	return signed, nil
}

// audioContentTypes covers the recording formats the store holds. The mime
// package's builtin table has no audio entries, so these come first.
var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

func contentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := audioContentTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}
