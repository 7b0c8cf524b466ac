package config

import (
	"strconv"
	"time"
)

type StoreConfig interface {
	GetStoreRegion() string
	GetStoreBucket() string
	GetStoreEndpoint() string
	GetStoreAccessKeyID() string
	GetStoreSecretAccessKey() string
	GetMaxListPages() int
	GetPageTimeout() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreRegion() string {
	return GetEnv("AWS_REGION", "us-east-1")
}

func (Store) GetStoreBucket() string {
	return GetEnv("S3_BUCKET_NAME", "")
}

// GetStoreEndpoint returns a custom endpoint for S3-compatible stores.
// Empty means AWS proper.
func (Store) GetStoreEndpoint() string {
	return GetEnv("S3_ENDPOINT", "")
}

func (Store) GetStoreAccessKeyID() string {
	return GetEnv("AWS_ACCESS_KEY_ID", "")
}

func (Store) GetStoreSecretAccessKey() string {
	return GetEnv("AWS_SECRET_ACCESS_KEY", "")
}

func (Store) GetMaxListPages() int {
	if raw := GetEnv("MAX_LIST_PAGES", ""); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 100
}

func (Store) GetPageTimeout() time.Duration {
	if raw := GetEnv("PAGE_TIMEOUT", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 10 * time.Second
}
