package metrics

import (
	"testing"

	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var _ usecase.Metrics = (*Metrics)(nil)

func TestMetricsCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObjectUploaded("icon")
	m.ObjectUploaded("icon")
	m.ObjectUploaded("screenshots")
	m.ObjectsDeleted("superseded", 3)
	m.ObjectsDeleted("superseded", 0)
	m.ObjectsOrphaned("superseded", 1)
	m.PersistenceFailed("app_asset")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Uploaded.WithLabelValues("icon")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploaded.WithLabelValues("screenshots")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Deleted.WithLabelValues("superseded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Orphaned.WithLabelValues("superseded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("app_asset")))
}

func TestZeroCountsCreateNoSeries(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObjectsDeleted("aborted_upload", 0)
	m.ObjectsOrphaned("aborted_upload", 0)

	assert.Equal(t, 0, testutil.CollectAndCount(m.Deleted))
	assert.Equal(t, 0, testutil.CollectAndCount(m.Orphaned))
}
