package aggregator

import (
	"testing"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRecord(score int, fcp float64, tbt int, cls float64, inp *float64) common.MetricRecord {
	return common.MetricRecord{
		Score: common.IntPtr(score),
		FCP:   common.FloatPtr(fcp),
		LCP:   common.FloatPtr(fcp * 2),
		SI:    common.FloatPtr(fcp * 3),
		TBT:   common.IntPtr(tbt),
		CLS:   common.FloatPtr(cls),
		TTFB:  common.FloatPtr(0.4),
		INP:   inp,
	}
}

func TestMeanAggregator_Average(t *testing.T) {
	t.Parallel()

	agg := NewMeanAggregator()
	require.False(t, agg.IsInterfaceNil())

	t.Run("empty sample set should return false", func(t *testing.T) {
		t.Parallel()

		avg, ok := agg.Average(nil)
		assert.Nil(t, avg)
		assert.False(t, ok)

		avg, ok = agg.Average(common.SampleSet{})
		assert.Nil(t, avg)
		assert.False(t, ok)
	})
	t.Run("sparse records should average only the present fields", func(t *testing.T) {
		t.Parallel()

		samples := common.SampleSet{
			{Score: common.IntPtr(90), FCP: common.FloatPtr(1.0)},
			{Score: common.IntPtr(80), FCP: common.FloatPtr(2.0)},
		}

		avg, ok := agg.Average(samples)
		require.True(t, ok)
		assert.Equal(t, &common.AveragedRecord{
			Score: common.IntPtr(85),
			FCP:   common.FloatPtr(1.5),
		}, avg)
	})
	t.Run("missing INP everywhere should keep the other fields", func(t *testing.T) {
		t.Parallel()

		samples := common.SampleSet{
			fullRecord(91, 1.1, 100, 0.1, nil),
			fullRecord(92, 1.2, 200, 0.2, nil),
			fullRecord(94, 1.4, 301, 0.301, nil),
		}

		avg, ok := agg.Average(samples)
		require.True(t, ok)
		assert.Nil(t, avg.INP)
		assert.Equal(t, 92, *avg.Score)
		assert.Equal(t, 1.2, *avg.FCP)
		assert.Equal(t, 2.5, *avg.LCP)
		assert.Equal(t, 3.7, *avg.SI)
		assert.Equal(t, 200, *avg.TBT)
		assert.Equal(t, 0.2, *avg.CLS)
		assert.Equal(t, 0.4, *avg.TTFB)
	})
	t.Run("INP should be the raw mean of the present values", func(t *testing.T) {
		t.Parallel()

		samples := common.SampleSet{
			fullRecord(50, 1, 10, 0, common.FloatPtr(100)),
			fullRecord(50, 1, 10, 0, nil),
			fullRecord(50, 1, 10, 0, common.FloatPtr(151)),
			fullRecord(50, 1, 10, 0, common.FloatPtr(150)),
		}

		avg, ok := agg.Average(samples)
		require.True(t, ok)
		require.NotNil(t, avg.INP)
		assert.InDelta(t, 133.6666666, *avg.INP, 0.0001)
	})
	t.Run("integer fields should round to the nearest integer", func(t *testing.T) {
		t.Parallel()

		samples := common.SampleSet{
			{Score: common.IntPtr(90), TBT: common.IntPtr(100)},
			{Score: common.IntPtr(91), TBT: common.IntPtr(101)},
		}

		avg, ok := agg.Average(samples)
		require.True(t, ok)
		assert.Equal(t, 91, *avg.Score)
		assert.Equal(t, 101, *avg.TBT)
		assert.Nil(t, avg.CLS)
	})
	t.Run("fractional fields should keep their precision", func(t *testing.T) {
		t.Parallel()

		samples := common.SampleSet{
			{CLS: common.FloatPtr(0.001), TTFB: common.FloatPtr(0.1)},
			{CLS: common.FloatPtr(0.002), TTFB: common.FloatPtr(0.2)},
			{CLS: common.FloatPtr(0.002), TTFB: common.FloatPtr(0.2)},
		}

		avg, ok := agg.Average(samples)
		require.True(t, ok)
		assert.Equal(t, 0.002, *avg.CLS)
		assert.Equal(t, 0.2, *avg.TTFB)
	})
}
