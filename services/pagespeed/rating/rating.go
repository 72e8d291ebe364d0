package rating

import "github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"

// Rating is the classification of a metric value against the web vitals thresholds
type Rating string

// Possible ratings
const (
	Good             Rating = "good"
	NeedsImprovement Rating = "needs-improvement"
	Poor             Rating = "poor"
	Unknown          Rating = "unknown"
)

// thresholds holds the upper bound of the good and the needs-improvement bands
type thresholds struct {
	good             float64
	needsImprovement float64
}

var lowerIsBetter = map[string]thresholds{
	common.MetricFCP:  {good: 1.8, needsImprovement: 3.0},
	common.MetricLCP:  {good: 2.5, needsImprovement: 4.0},
	common.MetricSI:   {good: 3.4, needsImprovement: 5.8},
	common.MetricTBT:  {good: 200, needsImprovement: 600},
	common.MetricCLS:  {good: 0.1, needsImprovement: 0.25},
	common.MetricTTFB: {good: 0.8, needsImprovement: 1.8},
	common.MetricINP:  {good: 200, needsImprovement: 500},
}

const (
	scoreGood             = 90
	scoreNeedsImprovement = 50
)

// Classify rates the metric value. Unknown metric names are rated Unknown.
func Classify(metric string, value float64) Rating {
	if metric == common.MetricScore {
		switch {
		case value >= scoreGood:
			return Good
		case value >= scoreNeedsImprovement:
			return NeedsImprovement
		default:
			return Poor
		}
	}

	th, ok := lowerIsBetter[metric]
	if !ok {
		return Unknown
	}

	switch {
	case value <= th.good:
		return Good
	case value <= th.needsImprovement:
		return NeedsImprovement
	default:
		return Poor
	}
}

// Color returns the RGB fill color used in reports for the rating, or an empty string
func (r Rating) Color() string {
	switch r {
	case Good:
		return "C6EFCE"
	case NeedsImprovement:
		return "FFEB9C"
	case Poor:
		return "F2DCDB"
	default:
		return ""
	}
}
