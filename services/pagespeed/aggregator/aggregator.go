package aggregator

import (
	"math"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

type meanAggregator struct {
}

// NewMeanAggregator creates an aggregator that averages every metric independently
func NewMeanAggregator() *meanAggregator {
	return &meanAggregator{}
}

// Average reduces the sample set into one averaged record. Every field is the mean of the samples that have it,
// or absent if none has it. Returns false on an empty sample set.
func (agg *meanAggregator) Average(samples common.SampleSet) (*common.AveragedRecord, bool) {
	if len(samples) == 0 {
		return nil, false
	}

	return &common.AveragedRecord{
		Score: roundedIntMean(samples, func(r common.MetricRecord) *float64 { return intAsFloat(r.Score) }),
		FCP:   roundedMean(samples, 1, func(r common.MetricRecord) *float64 { return r.FCP }),
		LCP:   roundedMean(samples, 1, func(r common.MetricRecord) *float64 { return r.LCP }),
		SI:    roundedMean(samples, 1, func(r common.MetricRecord) *float64 { return r.SI }),
		TBT:   roundedIntMean(samples, func(r common.MetricRecord) *float64 { return intAsFloat(r.TBT) }),
		CLS:   roundedMean(samples, 3, func(r common.MetricRecord) *float64 { return r.CLS }),
		TTFB:  roundedMean(samples, 1, func(r common.MetricRecord) *float64 { return r.TTFB }),
		INP:   mean(samples, func(r common.MetricRecord) *float64 { return r.INP }),
	}, true
}

// mean returns nil when no sample holds the field
func mean(samples common.SampleSet, field func(r common.MetricRecord) *float64) *float64 {
	sum := float64(0)
	count := 0
	for _, s := range samples {
		value := field(s)
		if value == nil {
			continue
		}

		sum += *value
		count++
	}

	if count == 0 {
		return nil
	}

	result := sum / float64(count)
	return &result
}

func roundedMean(samples common.SampleSet, decimals int, field func(r common.MetricRecord) *float64) *float64 {
	m := mean(samples, field)
	if m == nil {
		return nil
	}

	return common.FloatPtr(common.RoundTo(*m, decimals))
}

func roundedIntMean(samples common.SampleSet, field func(r common.MetricRecord) *float64) *int {
	m := mean(samples, field)
	if m == nil {
		return nil
	}

	return common.IntPtr(int(math.Round(*m)))
}

func intAsFloat(value *int) *float64 {
	if value == nil {
		return nil
	}

	return common.FloatPtr(float64(*value))
}

// IsInterfaceNil returns true if the value under the interface is nil
func (agg *meanAggregator) IsInterfaceNil() bool {
	return agg == nil
}
