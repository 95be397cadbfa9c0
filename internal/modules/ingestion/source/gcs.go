package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/coursetree/internal/clients/gcp"
	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

type gcsSource struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
}

func newGCS(ctx context.Context, bucket, prefix string, cfg config.ObjectStoreConfig, log *logger.Logger) (Source, error) {
	opts := gcp.ClientOptions(cfg.GCSCredentialsFile)
	opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("source: create storage client: %w", err)
	}
	return &gcsSource{
		log:    log.With("source", "GCS", "bucket", bucket),
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (g *gcsSource) Location() string { return "gs://" + g.bucket + "/" + g.prefix }

func (g *gcsSource) List(ctx context.Context) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: g.prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: list gs://%s/%s: %w", g.bucket, g.prefix, err)
		}
		if rel, ok := relative(g.prefix, attrs.Name); ok {
			names = append(names, rel)
		}
	}
	sort.Strings(names)
	g.log.Debug("listed documents", "count", len(names))
	return names, nil
}

func (g *gcsSource) Read(ctx context.Context, name string) ([]byte, error) {
	rc, err := g.client.Bucket(g.bucket).Object(g.prefix + name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
	}
	if err != nil {
		return nil, fmt.Errorf("source: open gs://%s/%s%s: %w", g.bucket, g.prefix, name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (g *gcsSource) Close() error { return g.client.Close() }
