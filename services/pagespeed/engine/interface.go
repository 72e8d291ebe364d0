package engine

import (
	"context"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// Sampler defines the interface for measuring one work item repeatedly
type Sampler interface {
	// Sample returns the successful measurements of the work item. It never fails, the worst case being an empty set.
	Sample(ctx context.Context, item common.WorkItem) common.SampleSet

	IsInterfaceNil() bool
}

// Aggregator defines the interface for reducing a sample set into one averaged record
type Aggregator interface {
	Average(samples common.SampleSet) (*common.AveragedRecord, bool)
	IsInterfaceNil() bool
}

// FaultRecorder counts the work items aborted by an unexpected fault
type FaultRecorder interface {
	DispatchFault()
	IsInterfaceNil() bool
}

// Dispatcher defines the interface for running all the work items of a list of sites
type Dispatcher interface {
	Dispatch(ctx context.Context, sites []string) common.DispatchResult
	IsInterfaceNil() bool
}

// SitesProvider defines the source of the sites to be measured
type SitesProvider interface {
	Sites() ([]string, error)
	IsInterfaceNil() bool
}

// Reporter defines the interface for a sink of the run results
type Reporter interface {
	// Report persists or renders the run report. A failing reporter does not affect the other reporters.
	Report(ctx context.Context, report *common.RunReport) error

	IsInterfaceNil() bool
}
