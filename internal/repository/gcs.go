package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStoreConfig selects the bucket used as an off-site slot backend.
type GCSStoreConfig struct {
	Bucket string
	Prefix string
	// CredentialsJSON overrides application default credentials when set.
	CredentialsJSON string
}

// GCSStore keeps slots as objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// NewGCSStore creates a client and checks that the bucket is reachable.
func NewGCSStore(ctx context.Context, cfg GCSStoreConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	bucket := client.Bucket(cfg.Bucket)
	if _, err := bucket.Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %w", cfg.Bucket, err)
	}
	return &GCSStore{client: client, bucket: bucket, prefix: cfg.Prefix}, nil
}

func (g *GCSStore) object(key string) *storage.ObjectHandle {
	return g.bucket.Object(path.Join(g.prefix, key+".json"))
}

// Kind implements BlobStore.
func (g *GCSStore) Kind() string { return "gcs" }

// Get downloads the slot object.
func (g *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := g.object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open slot %s: %w", key, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Put uploads data as the slot object.
func (g *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	wc := g.object(key).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to upload slot %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finalize slot %s: %w", key, err)
	}
	return nil
}

// Delete removes the slot object.
func (g *GCSStore) Delete(ctx context.Context, key string) error {
	err := g.object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

// Close closes the GCS client.
func (g *GCSStore) Close() error {
	return g.client.Close()
}

var _ BlobStore = (*GCSStore)(nil)
