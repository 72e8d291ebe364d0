package testsCommon

import (
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// ExtractorStub -
type ExtractorStub struct {
	ExtractHandler func(body []byte) (*common.MetricRecord, error)
}

// Extract -
func (stub *ExtractorStub) Extract(body []byte) (*common.MetricRecord, error) {
	if stub.ExtractHandler != nil {
		return stub.ExtractHandler(body)
	}

	return &common.MetricRecord{}, nil
}

// IsInterfaceNil -
func (stub *ExtractorStub) IsInterfaceNil() bool {
	return stub == nil
}
