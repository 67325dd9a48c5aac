// Package metrics implements [domain.StatisticsRegistry] with Prometheus
// histograms.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andreybell91/ignite/internal/domain"
)

// DefaultBuckets spans sub-millisecond calls up to ten seconds.
var DefaultBuckets = prometheus.ExponentialBuckets(0.0005, 2, 15)

// Statistics keeps one method-duration histogram series per service and
// method. Observations for a service are accepted only while it is
// registered.
type Statistics struct {
	mu         sync.RWMutex
	registered map[domain.ServiceName]struct{}
	durations  *prometheus.HistogramVec
}

// NewStatistics creates the histogram vector and registers it with reg.
func NewStatistics(reg prometheus.Registerer, buckets []float64) (*Statistics, error) {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "servicegrid",
		Subsystem: "service",
		Name:      "method_duration_seconds",
		Help:      "Duration of service method invocations.",
		Buckets:   buckets,
	}, []string{"service", "method"})
	if err := reg.Register(durations); err != nil {
		return nil, fmt.Errorf("register method duration histogram: %w", err)
	}
	return &Statistics{
		registered: make(map[domain.ServiceName]struct{}),
		durations:  durations,
	}, nil
}

// Register enables collection for name. Registering twice is a no-op.
func (s *Statistics) Register(name domain.ServiceName) error {
	if name == "" {
		return fmt.Errorf("%w: service name is required", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[name] = struct{}{}
	return nil
}

// Unregister disables collection for name and drops its series.
func (s *Statistics) Unregister(name domain.ServiceName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registered, name)
	s.durations.DeletePartialMatch(prometheus.Labels{"service": string(name)})
}

// Registered reports whether collection is enabled for name.
func (s *Statistics) Registered(name domain.ServiceName) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registered[name]
	return ok
}

// ObserveInvocation records one call of method on the named service.
func (s *Statistics) ObserveInvocation(name domain.ServiceName, method string, d time.Duration) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.registered[name]; !ok {
		return fmt.Errorf("statistics for service %q: %w", name, domain.ErrNotFound)
	}
	s.durations.WithLabelValues(string(name), method).Observe(d.Seconds())
	return nil
}
