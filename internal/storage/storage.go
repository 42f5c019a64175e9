// Package storage stores post cover images in an object store and maps
// public URLs back to the keys it manages.
package storage

import (
	"context"
	"fmt"

	"cecilia/internal/config"
)

// CacheControl is set on every uploaded object.
const CacheControl = "public, max-age=31536000"

// KeyPrefix is the folder all post images live under.
const KeyPrefix = "blog/"

// Store is an object store holding public post images.
type Store interface {
	// Upload writes data under key and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// KeyFromURL returns the key for a URL this store issued. Any other
	// URL, such as the placeholder cover, reports false.
	KeyFromURL(rawURL string) (string, bool)
}

// New builds the store selected by STORAGE_DRIVER, wrapped with tracing and
// latency metrics.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "gcs":
		s, err := NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		return Instrument(s, "gcs"), nil
	case "local", "":
		return Instrument(NewLocalStore(cfg.LocalStorageDir, cfg.LocalStoragePublicURL), "local"), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
