package testsCommon

import (
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// AggregatorStub -
type AggregatorStub struct {
	AverageHandler func(samples common.SampleSet) (*common.AveragedRecord, bool)
}

// Average -
func (stub *AggregatorStub) Average(samples common.SampleSet) (*common.AveragedRecord, bool) {
	if stub.AverageHandler != nil {
		return stub.AverageHandler(samples)
	}

	if len(samples) == 0 {
		return nil, false
	}

	return &common.AveragedRecord{}, true
}

// IsInterfaceNil -
func (stub *AggregatorStub) IsInterfaceNil() bool {
	return stub == nil
}
