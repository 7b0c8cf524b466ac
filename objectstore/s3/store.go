// Package s3 implements the object store boundary on top of AWS S3 or any
// S3-compatible endpoint.
package s3

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/voxgate/recordings-gateway/objectstore"
)

var _ objectstore.Store = (*Store)(nil)

// Config holds the S3 connection settings.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional, for S3-compatible stores (MinIO etc.)
	AccessKeyID     string // optional, falls back to the default chain
	SecretAccessKey string
}

type Store struct {
	client  *awss3.Client
	presign *awss3.PresignClient
	bucket  string
}

// New builds an S3-backed store. When no static credentials are configured
// the SDK's default credential chain is used.
func New(ctx context.Context, cfg Config) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "[s3.New] load aws config")
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:  client,
		presign: awss3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (s *Store) ListPage(ctx context.Context, prefix, continuationToken string) (*objectstore.Page, error) {
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, errors.Wrapf(objectstore.ErrUpstream, "[Store.ListPage] list objects: %v", err)
	}

	page := &objectstore.Page{
		Objects: make([]objectstore.ObjectInfo, 0, len(out.Contents)),
	}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, objectstore.ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: obj.LastModified,
		})
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextContinuationToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

func (s *Store) Get(ctx context.Context, key string) (*objectstore.Object, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, objectstore.ErrNotFound
		}
		return nil, errors.Wrapf(objectstore.ErrUpstream, "[Store.Get] get object: %v", err)
	}

	return &objectstore.Object{
		Body:          out.Body,
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: aws.ToInt64(out.ContentLength),
	}, nil
}

func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (*objectstore.SignedURL, error) {
	req, err := s.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return nil, errors.Wrapf(objectstore.ErrUpstream, "[Store.PresignGet] presign: %v", err)
	}

	return &objectstore.SignedURL{
		URL:       req.URL,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return errors.Wrapf(objectstore.ErrUpstream, "[Store.HealthCheck] head bucket: %v", err)
	}
	return nil
}
