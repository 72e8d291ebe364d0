package testsCommon

import (
	"context"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// DispatcherStub -
type DispatcherStub struct {
	DispatchHandler func(ctx context.Context, sites []string) common.DispatchResult
}

// Dispatch -
func (stub *DispatcherStub) Dispatch(ctx context.Context, sites []string) common.DispatchResult {
	if stub.DispatchHandler != nil {
		return stub.DispatchHandler(ctx, sites)
	}

	return common.DispatchResult{}
}

// IsInterfaceNil -
func (stub *DispatcherStub) IsInterfaceNil() bool {
	return stub == nil
}
