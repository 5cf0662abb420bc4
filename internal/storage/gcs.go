package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/andresuchdata/invclose/backend-go/internal/source"
)

// GCSClient implements ObjectStore for a Google Cloud Storage bucket using
// application default credentials.
type GCSClient struct {
	client *storage.Client
	bucket string
}

// NewGCSClient opens a client for bucket.
func NewGCSClient(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket must be provided")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSClient{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (c *GCSClient) Close() error {
	return c.client.Close()
}

// ListObjects lists all objects for a given prefix.
func (c *GCSClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	it := c.client.Bucket(c.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, source.UpstreamError("gcs", prefix, err)
		}
		results = append(results, ObjectInfo{Key: attrs.Name, Size: attrs.Size})
	}
	return results, nil
}

// Fetch downloads the object stored under key.
func (c *GCSClient) Fetch(ctx context.Context, key string) (source.File, error) {
	r, err := c.client.Bucket(c.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return source.File{}, source.UpstreamError("gcs", key, fmt.Errorf("open GCS object reader: %w", err))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return source.File{}, source.UpstreamError("gcs", key, fmt.Errorf("read GCS object: %w", err))
	}
	return source.File{Name: path.Base(key), Data: data}, nil
}

var _ ObjectStore = (*GCSClient)(nil)
