package rating

import (
	"testing"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		metric   string
		value    float64
		expected Rating
	}{
		{common.MetricScore, 100, Good},
		{common.MetricScore, 90, Good},
		{common.MetricScore, 89, NeedsImprovement},
		{common.MetricScore, 50, NeedsImprovement},
		{common.MetricScore, 49, Poor},
		{common.MetricFCP, 1.8, Good},
		{common.MetricFCP, 3.0, NeedsImprovement},
		{common.MetricFCP, 3.1, Poor},
		{common.MetricLCP, 2.5, Good},
		{common.MetricLCP, 4.0, NeedsImprovement},
		{common.MetricLCP, 4.1, Poor},
		{common.MetricSI, 3.4, Good},
		{common.MetricSI, 5.8, NeedsImprovement},
		{common.MetricSI, 5.9, Poor},
		{common.MetricTBT, 200, Good},
		{common.MetricTBT, 201, NeedsImprovement},
		{common.MetricTBT, 601, Poor},
		{common.MetricCLS, 0.1, Good},
		{common.MetricCLS, 0.25, NeedsImprovement},
		{common.MetricCLS, 0.251, Poor},
		{common.MetricTTFB, 0.8, Good},
		{common.MetricTTFB, 1.8, NeedsImprovement},
		{common.MetricTTFB, 1.9, Poor},
		{common.MetricINP, 200, Good},
		{common.MetricINP, 500, NeedsImprovement},
		{common.MetricINP, 500.5, Poor},
		{"FID", 10, Unknown},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Classify(tc.metric, tc.value), "%s=%v", tc.metric, tc.value)
	}
}

func TestRating_Color(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "C6EFCE", Good.Color())
	assert.Equal(t, "FFEB9C", NeedsImprovement.Color())
	assert.Equal(t, "F2DCDB", Poor.Color())
	assert.Equal(t, "", Unknown.Color())
}
