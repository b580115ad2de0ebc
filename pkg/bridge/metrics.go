package bridge

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

func newCallCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	return promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "camera_preview",
		Subsystem: "bridge",
		Name:      "calls_total",
		Help:      "Adapter method calls by method and result code",
	}, []string{"method", "code"})
}

// DegradationMetrics counts best-effort steps that did not apply. It
// satisfies preview.Observer.
type DegradationMetrics struct {
	counter *prometheus.CounterVec
}

func NewDegradationMetrics(reg prometheus.Registerer) *DegradationMetrics {
	return &DegradationMetrics{
		counter: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "camera_preview",
			Subsystem: "adapter",
			Name:      "degraded_total",
			Help:      "Best-effort camera steps that did not apply",
		}, []string{"op"}),
	}
}

func (d *DegradationMetrics) Degraded(_ context.Context, op string, _ error) {
	d.counter.WithLabelValues(op).Inc()
}

var _ preview.Observer = (*DegradationMetrics)(nil)
