package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS stores blobs in a Google Cloud Storage bucket. Credentials come from
// Application Default Credentials.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs blob store: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: cleanPrefix(prefix)}, nil
}

func (g *GCS) Close() error { return g.client.Close() }

func (g *GCS) Put(ctx context.Context, name string, data []byte) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, name)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(g.prefix + name).NewWriter(ctx)
	w.ContentType = contentType(data)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write to gcs object %s: %w", g.prefix+name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return name, nil
}

func (g *GCS) Delete(ctx context.Context, ref string) error {
	if !validName(ref) {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	err := g.client.Bucket(g.bucket).Object(g.prefix + ref).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs object %s: %w", g.prefix+ref, err)
	}
	return nil
}

func (g *GCS) List(ctx context.Context) ([]Object, error) {
	var out []Object
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: g.prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gcs bucket %s: %w", g.bucket, err)
		}
		ref := strings.TrimPrefix(attrs.Name, g.prefix)
		if !validName(ref) {
			continue
		}
		out = append(out, Object{Ref: ref, Size: attrs.Size, ModTime: attrs.Updated})
	}
	return out, nil
}

// Ping checks that the bucket exists and is reachable.
func (g *GCS) Ping(ctx context.Context) error {
	if _, err := g.client.Bucket(g.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("bucket %s attrs: %w", g.bucket, err)
	}
	return nil
}
