package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

// ErrNotExist is returned by Read for names absent from the source.
var ErrNotExist = errors.New("source: document does not exist")

// Source is a read-only view of one document set. Names are slash separated
// and relative to the set root.
type Source interface {
	Location() string
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Close() error
}

// Open picks a Source by scheme: gs:// (Cloud Storage), s3:// (S3 compatible
// object storage) or a local path (optionally file://).
func Open(ctx context.Context, location string, cfg config.ObjectStoreConfig, log *logger.Logger) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("source: empty location")
	}
	scheme, bucket, prefix, err := parseLocation(location)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case "gs":
		return newGCS(ctx, bucket, prefix, cfg, log)
	case "s3":
		return newS3(ctx, bucket, prefix, cfg, log)
	default:
		return newLocal(prefix)
	}
}

// parseLocation splits location into scheme, bucket and prefix. Local paths
// come back with scheme "" and the path in prefix.
func parseLocation(location string) (scheme, bucket, prefix string, err error) {
	if !strings.Contains(location, "://") {
		return "", "", location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", "", "", fmt.Errorf("source: parse %q: %w", location, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		p := u.Path
		if u.Host != "" {
			p = u.Host + p
		}
		return "", "", p, nil
	case "gs", "s3":
		if u.Host == "" {
			return "", "", "", fmt.Errorf("source: %q has no bucket", location)
		}
		prefix = strings.Trim(u.Path, "/")
		if prefix != "" {
			prefix += "/"
		}
		return strings.ToLower(u.Scheme), u.Host, prefix, nil
	default:
		return "", "", "", fmt.Errorf("source: unsupported scheme %q", u.Scheme)
	}
}

// relative strips prefix from an object key; ok is false for keys outside it
// and for directory placeholders.
func relative(prefix, key string) (string, bool) {
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(key, prefix)
	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", false
	}
	return rel, true
}
