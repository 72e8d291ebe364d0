package testsCommon

import (
	"context"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// ReporterStub -
type ReporterStub struct {
	ReportHandler func(ctx context.Context, report *common.RunReport) error
}

// Report -
func (stub *ReporterStub) Report(ctx context.Context, report *common.RunReport) error {
	if stub.ReportHandler != nil {
		return stub.ReportHandler(ctx, report)
	}

	return nil
}

// IsInterfaceNil -
func (stub *ReporterStub) IsInterfaceNil() bool {
	return stub == nil
}
