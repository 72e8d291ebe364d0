package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagespeed"

// Failure reasons used as label values
const (
	ReasonPoll    = "poll"
	ReasonExtract = "extract"
)

type samplingMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	faults    prometheus.Counter
}

// NewSamplingMetrics creates the sampling counters and registers them on the provided registerer
func NewSamplingMetrics(registerer prometheus.Registerer) (*samplingMetrics, error) {
	if registerer == nil {
		return nil, errors.New("nil prometheus registerer")
	}

	sm := &samplingMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Measurement requests issued, by device.",
		}, []string{"device"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Measurements that produced a usable metric record, by device.",
		}, []string{"device"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_attempts_total",
			Help:      "Measurements that were dropped, by device and reason.",
		}, []string{"device", "reason"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of a single measurement request.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8),
		}, []string{"device"}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_faults_total",
			Help:      "Work items aborted by an unexpected fault.",
		}),
	}

	collectors := []prometheus.Collector{sm.attempts, sm.successes, sm.failures, sm.latency, sm.faults}
	for _, c := range collectors {
		err := registerer.Register(c)
		if err != nil {
			return nil, err
		}
	}

	return sm, nil
}

// AttemptDone records one finished measurement request
func (sm *samplingMetrics) AttemptDone(device string, duration time.Duration) {
	sm.attempts.WithLabelValues(device).Inc()
	sm.latency.WithLabelValues(device).Observe(duration.Seconds())
}

// SampleAccepted records a usable measurement
func (sm *samplingMetrics) SampleAccepted(device string) {
	sm.successes.WithLabelValues(device).Inc()
}

// SampleDropped records a dropped measurement
func (sm *samplingMetrics) SampleDropped(device string, reason string) {
	sm.failures.WithLabelValues(device, reason).Inc()
}

// DispatchFault records a work item aborted by an unexpected fault
func (sm *samplingMetrics) DispatchFault() {
	sm.faults.Inc()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (sm *samplingMetrics) IsInterfaceNil() bool {
	return sm == nil
}
