package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in                     string
		scheme, bucket, prefix string
		wantErr                bool
	}{
		{in: "./docs", prefix: "./docs"},
		{in: "file:///srv/docs", prefix: "/srv/docs"},
		{in: "gs://courses/go-basics", scheme: "gs", bucket: "courses", prefix: "go-basics/"},
		{in: "s3://courses/", scheme: "s3", bucket: "courses", prefix: ""},
		{in: "S3://courses/a/b/", scheme: "s3", bucket: "courses", prefix: "a/b/"},
		{in: "gs:///nobucket", wantErr: true},
		{in: "ftp://host/x", wantErr: true},
	}
	for _, tc := range cases {
		scheme, bucket, prefix, err := parseLocation(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if scheme != tc.scheme || bucket != tc.bucket || prefix != tc.prefix {
			t.Fatalf("%q: got (%q,%q,%q)", tc.in, scheme, bucket, prefix)
		}
	}
}

func TestRelative(t *testing.T) {
	if rel, ok := relative("a/", "a/chapters/01/chapter.yaml"); !ok || rel != "chapters/01/chapter.yaml" {
		t.Fatalf("got %q %v", rel, ok)
	}
	if _, ok := relative("a/", "b/outline.yaml"); ok {
		t.Fatalf("key outside prefix accepted")
	}
	if _, ok := relative("a/", "a/chapters/"); ok {
		t.Fatalf("directory placeholder accepted")
	}
}

func TestLocalSource(t *testing.T) {
	root := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("outline.yaml", "title: x")
	write("chapters/02-b/chapter.yaml", "ix: 2")
	write("chapters/01-a/chapter.yaml", "ix: 1")

	ctx := context.Background()
	src, err := Open(ctx, root, config.ObjectStoreConfig{}, logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	names, err := src.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"chapters/01-a/chapter.yaml", "chapters/02-b/chapter.yaml", "outline.yaml"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	b, err := src.Read(ctx, "chapters/01-a/chapter.yaml")
	if err != nil || string(b) != "ix: 1" {
		t.Fatalf("Read: %q %v", b, err)
	}
	if _, err := src.Read(ctx, "metadata.yaml"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if _, err := src.Read(ctx, "../escape"); err == nil {
		t.Fatalf("expected escape rejection")
	}
}

func TestOpen_MissingLocalDir(t *testing.T) {
	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope"), config.ObjectStoreConfig{}, logger.Nop()); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Open(context.Background(), "  ", config.ObjectStoreConfig{}, logger.Nop()); err == nil {
		t.Fatalf("expected error for empty location")
	}
}
