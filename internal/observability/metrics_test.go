package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBestEffortFailureIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(BestEffortFailures.WithLabelValues("test_cleanup"))

	BestEffortFailure(context.Background(), "test_cleanup", errors.New("boom"))
	BestEffortFailure(context.Background(), "test_cleanup", errors.New("boom again"))

	after := testutil.ToFloat64(BestEffortFailures.WithLabelValues("test_cleanup"))
	assert.InDelta(t, 2, after-before, 0.0001)
}

func TestTrackStorageObservesLatency(t *testing.T) {
	done := TrackStorage("test", "upload")
	done()

	assert.Equal(t, 1, testutil.CollectAndCount(StorageLatency, "cecilia_storage_latency_seconds"))
}

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "cecilia-test"})
	assert.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "noop")
	span.SetError(errors.New("ignored"))
	span.End()
	assert.NotNil(t, ctx)
}
