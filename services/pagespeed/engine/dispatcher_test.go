package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/aggregator"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/testsCommon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockDispatcherArgs() ArgsDispatcher {
	return ArgsDispatcher{
		Sampler:       &testsCommon.SamplerStub{},
		Aggregator:    &testsCommon.AggregatorStub{},
		FaultRecorder: &testsCommon.SamplingMetricsStub{},
		NumWorkers:    10,
	}
}

func TestNewDispatcher(t *testing.T) {
	t.Parallel()

	t.Run("nil sampler should error", func(t *testing.T) {
		args := createMockDispatcherArgs()
		args.Sampler = nil
		d, err := NewDispatcher(args)

		assert.Nil(t, d)
		assert.True(t, d.IsInterfaceNil())
		assert.Contains(t, err.Error(), "nil sampler")
	})
	t.Run("nil aggregator should error", func(t *testing.T) {
		args := createMockDispatcherArgs()
		args.Aggregator = nil
		d, err := NewDispatcher(args)

		assert.Nil(t, d)
		assert.Contains(t, err.Error(), "nil aggregator")
	})
	t.Run("nil fault recorder should error", func(t *testing.T) {
		args := createMockDispatcherArgs()
		args.FaultRecorder = nil
		d, err := NewDispatcher(args)

		assert.Nil(t, d)
		assert.Contains(t, err.Error(), "nil fault recorder")
	})
	t.Run("zero workers should error", func(t *testing.T) {
		args := createMockDispatcherArgs()
		args.NumWorkers = 0
		d, err := NewDispatcher(args)

		assert.Nil(t, d)
		assert.Contains(t, err.Error(), "number of workers should be positive")
	})
	t.Run("should work", func(t *testing.T) {
		d, err := NewDispatcher(createMockDispatcherArgs())

		assert.NotNil(t, d)
		assert.False(t, d.IsInterfaceNil())
		assert.Nil(t, err)
	})
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("empty sites list should return empty collections", func(t *testing.T) {
		t.Parallel()

		d, _ := NewDispatcher(createMockDispatcherArgs())
		result := d.Dispatch(context.Background(), []string{"", "   "})

		assert.Empty(t, result.Raw)
		assert.Empty(t, result.Averaged)
		assert.Empty(t, result.Faults)
	})
	t.Run("totally failing work items should be left out", func(t *testing.T) {
		t.Parallel()

		failing := map[common.WorkItem]bool{
			{Site: "https://b.example.com", Device: common.Mobile}:  true,
			{Site: "https://c.example.com", Device: common.Desktop}: true,
		}

		var mut sync.Mutex
		sampled := make(map[common.WorkItem]int)
		args := createMockDispatcherArgs()
		args.Aggregator = aggregator.NewMeanAggregator()
		args.Sampler = &testsCommon.SamplerStub{
			SampleHandler: func(ctx context.Context, item common.WorkItem) common.SampleSet {
				mut.Lock()
				sampled[item]++
				mut.Unlock()

				if failing[item] {
					return common.SampleSet{}
				}

				return common.SampleSet{
					{Score: common.IntPtr(90), FCP: common.FloatPtr(1.0)},
					{Score: common.IntPtr(80), FCP: common.FloatPtr(2.0)},
				}
			},
		}
		d, _ := NewDispatcher(args)

		result := d.Dispatch(context.Background(), []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"})

		assert.Len(t, sampled, 6)
		for item, count := range sampled {
			assert.Equal(t, 1, count, "work item %v", item)
			assert.True(t, item.Device.IsValid())
		}

		require.Len(t, result.Averaged, 4)
		require.Len(t, result.Raw, 8)
		assert.Empty(t, result.Faults)
		for _, avg := range result.Averaged {
			assert.False(t, failing[avg.WorkItem])
			assert.Equal(t, 85, *avg.Record.Score)
			assert.Equal(t, 1.5, *avg.Record.FCP)
			assert.Nil(t, avg.Record.INP)
			assert.Equal(t, 2, avg.NumSamples)
		}
		for _, raw := range result.Raw {
			assert.False(t, failing[raw.WorkItem])
		}
	})
	t.Run("should not exceed the concurrency ceiling", func(t *testing.T) {
		t.Parallel()

		inFlight := int32(0)
		maxInFlight := int32(0)
		args := createMockDispatcherArgs()
		args.NumWorkers = 3
		args.Sampler = &testsCommon.SamplerStub{
			SampleHandler: func(ctx context.Context, item common.WorkItem) common.SampleSet {
				current := atomic.AddInt32(&inFlight, 1)
				for {
					prev := atomic.LoadInt32(&maxInFlight)
					if current <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, current) {
						break
					}
				}

				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)

				return common.SampleSet{{Score: common.IntPtr(1)}}
			},
		}
		d, _ := NewDispatcher(args)

		sites := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
		result := d.Dispatch(context.Background(), sites)

		assert.Len(t, result.Averaged, 16)
		assert.Len(t, result.Raw, 16)
		assert.Equal(t, int32(3), atomic.LoadInt32(&maxInFlight))
	})
	t.Run("a panicking work item should not abort the others", func(t *testing.T) {
		t.Parallel()

		numFaults := uint32(0)
		args := createMockDispatcherArgs()
		args.FaultRecorder = &testsCommon.SamplingMetricsStub{
			DispatchFaultHandler: func() {
				atomic.AddUint32(&numFaults, 1)
			},
		}
		args.Sampler = &testsCommon.SamplerStub{
			SampleHandler: func(ctx context.Context, item common.WorkItem) common.SampleSet {
				if item.Site == "https://bad.example.com" && item.Device == common.Desktop {
					panic("unexpected fault")
				}

				return common.SampleSet{{Score: common.IntPtr(50)}}
			},
		}
		d, _ := NewDispatcher(args)

		result := d.Dispatch(context.Background(), []string{"https://bad.example.com", "https://good.example.com"})

		assert.Len(t, result.Averaged, 3)
		assert.Len(t, result.Raw, 3)
		require.Len(t, result.Faults, 1)
		assert.Equal(t, common.WorkItem{Site: "https://bad.example.com", Device: common.Desktop}, result.Faults[0].WorkItem)
		assert.Equal(t, "unexpected fault", result.Faults[0].Err)
		assert.Equal(t, uint32(1), atomic.LoadUint32(&numFaults))
	})
	t.Run("aggregator refusing the samples should only emit raw records", func(t *testing.T) {
		t.Parallel()

		args := createMockDispatcherArgs()
		args.Sampler = &testsCommon.SamplerStub{
			SampleHandler: func(ctx context.Context, item common.WorkItem) common.SampleSet {
				return common.SampleSet{{Score: common.IntPtr(50)}}
			},
		}
		args.Aggregator = &testsCommon.AggregatorStub{
			AverageHandler: func(samples common.SampleSet) (*common.AveragedRecord, bool) {
				return nil, false
			},
		}
		d, _ := NewDispatcher(args)

		result := d.Dispatch(context.Background(), []string{"https://a.example.com"})
		assert.Len(t, result.Raw, 2)
		assert.Empty(t, result.Averaged)
	})
}

func TestBuildWorkItems(t *testing.T) {
	t.Parallel()

	items := buildWorkItems([]string{" https://a.example.com ", "", "https://b.example.com"})
	assert.Equal(t, []common.WorkItem{
		{Site: "https://a.example.com", Device: common.Desktop},
		{Site: "https://a.example.com", Device: common.Mobile},
		{Site: "https://b.example.com", Device: common.Desktop},
		{Site: "https://b.example.com", Device: common.Mobile},
	}, items)
}
