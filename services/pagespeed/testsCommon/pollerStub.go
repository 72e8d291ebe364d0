package testsCommon

import (
	"context"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// PollerStub -
type PollerStub struct {
	PollHandler func(ctx context.Context, item common.WorkItem) ([]byte, error)
}

// Poll -
func (stub *PollerStub) Poll(ctx context.Context, item common.WorkItem) ([]byte, error) {
	if stub.PollHandler != nil {
		return stub.PollHandler(ctx, item)
	}

	return []byte("{}"), nil
}

// IsInterfaceNil -
func (stub *PollerStub) IsInterfaceNil() bool {
	return stub == nil
}
