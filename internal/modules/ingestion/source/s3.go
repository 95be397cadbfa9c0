package source

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type s3Source struct {
	log    *logger.Logger
	client *minio.Client
	bucket string
	prefix string
}

func newS3(ctx context.Context, bucket, prefix string, cfg config.ObjectStoreConfig, log *logger.Logger) (Source, error) {
	endpoint := strings.TrimSpace(cfg.S3Endpoint)
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3Secure,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("source: create s3 client: %w", err)
	}
	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("source: check bucket %s: %w", bucket, err)
	}
	if !ok {
		return nil, fmt.Errorf("source: bucket %s does not exist", bucket)
	}
	return &s3Source{
		log:    log.With("source", "S3", "bucket", bucket),
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *s3Source) Location() string { return "s3://" + s.bucket + "/" + s.prefix }

func (s *s3Source) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("source: list s3://%s/%s: %w", s.bucket, s.prefix, obj.Err)
		}
		if rel, ok := relative(s.prefix, obj.Key); ok {
			names = append(names, rel)
		}
	}
	sort.Strings(names)
	s.log.Debug("listed documents", "count", len(names))
	return names, nil
}

func (s *s3Source) Read(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("source: get s3://%s/%s%s: %w", s.bucket, s.prefix, name, err)
	}
	defer obj.Close()
	b, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
		}
		return nil, fmt.Errorf("source: read s3://%s/%s%s: %w", s.bucket, s.prefix, name, err)
	}
	return b, nil
}

func (s *s3Source) Close() error { return nil }
