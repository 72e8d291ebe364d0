package testsCommon

import (
	"context"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// SamplerStub -
type SamplerStub struct {
	SampleHandler func(ctx context.Context, item common.WorkItem) common.SampleSet
}

// Sample -
func (stub *SamplerStub) Sample(ctx context.Context, item common.WorkItem) common.SampleSet {
	if stub.SampleHandler != nil {
		return stub.SampleHandler(ctx, item)
	}

	return make(common.SampleSet, 0)
}

// IsInterfaceNil -
func (stub *SamplerStub) IsInterfaceNil() bool {
	return stub == nil
}
