package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for asset reconciliation.
type Metrics struct {
	Uploaded            *prometheus.CounterVec // appshelf_objects_uploaded_total{slot}
	Deleted             *prometheus.CounterVec // appshelf_objects_deleted_total{reason}
	Orphaned            *prometheus.CounterVec // appshelf_objects_orphaned_total{reason}
	PersistenceFailures *prometheus.CounterVec // appshelf_persistence_failures_total{kind}
}

// New registers the collectors on registry, or the default registerer when nil.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	f := promauto.With(registry)
	return &Metrics{
		Uploaded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "appshelf_objects_uploaded_total",
			Help: "Objects written to the object store by slot",
		}, []string{"slot"}),

		Deleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "appshelf_objects_deleted_total",
			Help: "Objects removed from the object store by reason",
		}, []string{"reason"}),

		Orphaned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "appshelf_objects_orphaned_total",
			Help: "Objects whose deletion failed and were left behind",
		}, []string{"reason"}),

		PersistenceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "appshelf_persistence_failures_total",
			Help: "Record saves that failed after objects were uploaded",
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObjectUploaded(slot string) {
	m.Uploaded.WithLabelValues(slot).Inc()
}

func (m *Metrics) ObjectsDeleted(reason string, n int) {
	if n > 0 {
		m.Deleted.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) ObjectsOrphaned(reason string, n int) {
	if n > 0 {
		m.Orphaned.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) PersistenceFailed(kind string) {
	m.PersistenceFailures.WithLabelValues(kind).Inc()
}
