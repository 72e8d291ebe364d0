package sampler

import (
	"context"
	"time"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// Poller defines the interface for issuing one measurement request
type Poller interface {
	// Poll performs one request for the work item and returns the raw response body.
	// Network errors and non-2xx responses are returned as errors.
	Poll(ctx context.Context, item common.WorkItem) ([]byte, error)

	IsInterfaceNil() bool
}

// Extractor defines the interface for reading a metric record out of a raw response
type Extractor interface {
	Extract(body []byte) (*common.MetricRecord, error)
	IsInterfaceNil() bool
}

// MetricsHandler defines the sampling counters
type MetricsHandler interface {
	AttemptDone(device string, duration time.Duration)
	SampleAccepted(device string)
	SampleDropped(device string, reason string)
	IsInterfaceNil() bool
}
