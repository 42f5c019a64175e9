package storage

import (
	"context"

	"cecilia/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

type instrumented struct {
	Store
	driver string
}

// Instrument wraps s so that uploads and deletes emit a span and a latency
// sample labelled with driver.
func Instrument(s Store, driver string) Store {
	return &instrumented{Store: s, driver: driver}
}

func (i *instrumented) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	defer observability.TrackStorage(i.driver, "upload")()
	span, ctx := observability.NewSpan(ctx, "storage.upload",
		attribute.String("storage.driver", i.driver),
		attribute.String("storage.key", key),
		attribute.Int("storage.size", len(data)),
	)
	defer span.End()

	url, err := i.Store.Upload(ctx, key, data, contentType)
	span.SetError(err)
	return url, err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	defer observability.TrackStorage(i.driver, "delete")()
	span, ctx := observability.NewSpan(ctx, "storage.delete",
		attribute.String("storage.driver", i.driver),
		attribute.String("storage.key", key),
	)
	defer span.End()

	err := i.Store.Delete(ctx, key)
	span.SetError(err)
	return err
}

// Unwrap returns the store underneath any instrumentation.
func Unwrap(s Store) Store {
	if i, ok := s.(*instrumented); ok {
		return i.Store
	}
	return s
}
