package common

import (
	"sort"
	"time"
)

// Device is the client profile the measurement API simulates
type Device string

const (
	// Desktop simulates a desktop browser
	Desktop Device = "desktop"
	// Mobile simulates a mobile browser
	Mobile Device = "mobile"
)

// Devices returns all the supported device profiles
func Devices() []Device {
	return []Device{Desktop, Mobile}
}

// IsValid returns true if the device is one of the supported profiles
func (d Device) IsValid() bool {
	return d == Desktop || d == Mobile
}

// WorkItem is one (site, device) unit of measurement work
type WorkItem struct {
	Site   string `json:"site"`
	Device Device `json:"device"`
}

// MetricRecord holds the metrics extracted from a single measurement. A nil field means the metric is absent.
type MetricRecord struct {
	Score *int     `json:"score"`
	FCP   *float64 `json:"fcp"`
	LCP   *float64 `json:"lcp"`
	SI    *float64 `json:"si"`
	TBT   *int     `json:"tbt"`
	CLS   *float64 `json:"cls"`
	TTFB  *float64 `json:"ttfb"`
	INP   *float64 `json:"inp"`
}

// AveragedRecord has the same shape as MetricRecord but each field is the mean across a SampleSet
type AveragedRecord MetricRecord

// SampleSet is the ordered collection of successful measurements for one WorkItem
type SampleSet []MetricRecord

// TaggedSample is a raw measurement tagged with its work item
type TaggedSample struct {
	WorkItem
	Record MetricRecord `json:"record"`
}

// TaggedAverage is an averaged record tagged with its work item
type TaggedAverage struct {
	WorkItem
	Record     AveragedRecord `json:"record"`
	NumSamples int            `json:"numSamples"`
}

// DispatchFault describes an unexpected failure while processing a work item
type DispatchFault struct {
	WorkItem
	Err string `json:"error"`
}

// DispatchResult holds the collections produced by a dispatch, in no particular order
type DispatchResult struct {
	Raw      []TaggedSample
	Averaged []TaggedAverage
	Faults   []DispatchFault
}

// RunReport is the outcome of one pass over all the configured sites
type RunReport struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Raw        []TaggedSample  `json:"raw"`
	Averaged   []TaggedAverage `json:"averaged"`
	Faults     []DispatchFault `json:"faults"`
}

// SortReport orders the report collections by site and then by device. Raw samples of the same work item keep their
// relative order.
func SortReport(report *RunReport) {
	if report == nil {
		return
	}

	sort.SliceStable(report.Raw, func(i, j int) bool {
		return lessWorkItem(report.Raw[i].WorkItem, report.Raw[j].WorkItem)
	})
	sort.SliceStable(report.Averaged, func(i, j int) bool {
		return lessWorkItem(report.Averaged[i].WorkItem, report.Averaged[j].WorkItem)
	})
	sort.SliceStable(report.Faults, func(i, j int) bool {
		return lessWorkItem(report.Faults[i].WorkItem, report.Faults[j].WorkItem)
	})
}

func lessWorkItem(a, b WorkItem) bool {
	if a.Site != b.Site {
		return a.Site < b.Site
	}

	return a.Device < b.Device
}

// RunSummary describes a stored run without its records
type RunSummary struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	NumSamples  int       `json:"numSamples"`
	NumAveraged int       `json:"numAveraged"`
	NumFaults   int       `json:"numFaults"`
}

// ReportPayload is the JSON body exchanged on the report endpoint
type ReportPayload struct {
	Source string     `json:"source"`
	Report *RunReport `json:"report"`
}
