package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports request and storage telemetry to Prometheus.
type Metrics struct {
	requests          *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	uploadBytes       prometheus.Counter
}

// New registers the collectors on reg, reusing collectors that are already
// registered under the same name.
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "blobmanager"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Data requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Data requests refused before reaching storage, by reason.",
		}, []string{"reason"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of failed storage operations.",
		}, []string{"operation"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size successfully uploaded.",
		}),
	}

	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.rejections, err = register(reg, m.rejections); err != nil {
		return nil, err
	}
	if m.operationDuration, err = register(reg, m.operationDuration); err != nil {
		return nil, err
	}
	if m.operationErrors, err = register(reg, m.operationErrors); err != nil {
		return nil, err
	}
	if m.uploadBytes, err = register(reg, m.uploadBytes); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// RecordRequest counts a finished data request.
func (m *Metrics) RecordRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcome).Inc()
}

// RecordRejection counts a request refused before dispatch.
func (m *Metrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// RecordOperation tracks storage latency, failures and uploaded bytes.
func (m *Metrics) RecordOperation(operation string, duration time.Duration, sizeBytes int, err error) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.operationErrors.WithLabelValues(operation).Inc()
		return
	}
	if sizeBytes > 0 {
		m.uploadBytes.Add(float64(sizeBytes))
	}
}
