package common

// Metric names, in report column order
const (
	MetricScore = "Score"
	MetricFCP   = "FCP"
	MetricLCP   = "LCP"
	MetricSI    = "SI"
	MetricTBT   = "TBT"
	MetricCLS   = "CLS"
	MetricTTFB  = "TTFB"
	MetricINP   = "INP"
)

// NamedValue is one metric of a record. Value is nil when the metric is absent.
type NamedValue struct {
	Name  string
	Value *float64
}

// NamedValues returns the record metrics in report column order
func (r MetricRecord) NamedValues() []NamedValue {
	return []NamedValue{
		{Name: MetricScore, Value: intToFloat(r.Score)},
		{Name: MetricFCP, Value: r.FCP},
		{Name: MetricLCP, Value: r.LCP},
		{Name: MetricSI, Value: r.SI},
		{Name: MetricTBT, Value: intToFloat(r.TBT)},
		{Name: MetricCLS, Value: r.CLS},
		{Name: MetricTTFB, Value: r.TTFB},
		{Name: MetricINP, Value: r.INP},
	}
}

// NamedValues returns the averaged metrics in report column order
func (r AveragedRecord) NamedValues() []NamedValue {
	return MetricRecord(r).NamedValues()
}

func intToFloat(value *int) *float64 {
	if value == nil {
		return nil
	}

	return FloatPtr(float64(*value))
}
