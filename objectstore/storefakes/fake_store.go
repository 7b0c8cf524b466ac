package storefakes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/voxgate/recordings-gateway/objectstore"
)

var _ objectstore.Store = (*FakeStore)(nil)

type fakeObject struct {
	data        []byte
	contentType string
}

// FakeStore is an in-memory object store. It records call counts so tests
// can assert that denied requests never reach the store, and supports error
// injection and small page sizes to exercise pagination.
type FakeStore struct {
	objects  map[string]fakeObject
	PageSize int // objects per list page; 0 means everything in one page

	ListErr    error // returned by ListPage when set
	GetErr     error // returned by Get when set
	PresignErr error // returned by PresignGet when set
	HealthErr  error // returned by HealthCheck when set

	ListCalls    int
	GetCalls     int
	PresignCalls int

	lock sync.Mutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		objects: make(map[string]fakeObject),
	}
}

func (fs *FakeStore) Put(key, contentType string, data []byte) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.objects[key] = fakeObject{data: data, contentType: contentType}
}

func (fs *FakeStore) ListPage(ctx context.Context, prefix, continuationToken string) (*objectstore.Page, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.ListCalls++
	if fs.ListErr != nil {
		return nil, fs.ListErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fs.objects))
	for key := range fs.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys) // S3 enumerates in lexicographic key order

	offset := 0
	if continuationToken != "" {
		var err error
		offset, err = strconv.Atoi(continuationToken)
		if err != nil {
			return nil, fmt.Errorf("bad continuation token %q", continuationToken)
		}
	}

	end := len(keys)
	next := ""
	if fs.PageSize > 0 && offset+fs.PageSize < len(keys) {
		end = offset + fs.PageSize
		next = strconv.Itoa(end)
	}

	page := &objectstore.Page{NextContinuationToken: next}
	now := time.Now()
	for _, key := range keys[offset:end] {
		page.Objects = append(page.Objects, objectstore.ObjectInfo{
			Key:          key,
			Size:         int64(len(fs.objects[key].data)),
			LastModified: &now,
		})
	}
	return page, nil
}

func (fs *FakeStore) Get(_ context.Context, key string) (*objectstore.Object, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.GetCalls++
	if fs.GetErr != nil {
		return nil, fs.GetErr
	}

	obj, ok := fs.objects[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	return &objectstore.Object{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   obj.contentType,
		ContentLength: int64(len(obj.data)),
	}, nil
}

func (fs *FakeStore) PresignGet(_ context.Context, key string, ttl time.Duration) (*objectstore.SignedURL, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.PresignCalls++
	if fs.PresignErr != nil {
		return nil, fs.PresignErr
	}

	if _, ok := fs.objects[key]; !ok {
		return nil, objectstore.ErrNotFound
	}
	return &objectstore.SignedURL{
		URL:       "https://fake-store.example.com/" + key + "?signed=1",
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (fs *FakeStore) HealthCheck(context.Context) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	return fs.HealthErr
}
