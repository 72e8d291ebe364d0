package testsCommon

import "time"

// SamplingMetricsStub -
type SamplingMetricsStub struct {
	AttemptDoneHandler    func(device string, duration time.Duration)
	SampleAcceptedHandler func(device string)
	SampleDroppedHandler  func(device string, reason string)
	DispatchFaultHandler  func()
}

// AttemptDone -
func (stub *SamplingMetricsStub) AttemptDone(device string, duration time.Duration) {
	if stub.AttemptDoneHandler != nil {
		stub.AttemptDoneHandler(device, duration)
	}
}

// SampleAccepted -
func (stub *SamplingMetricsStub) SampleAccepted(device string) {
	if stub.SampleAcceptedHandler != nil {
		stub.SampleAcceptedHandler(device)
	}
}

// SampleDropped -
func (stub *SamplingMetricsStub) SampleDropped(device string, reason string) {
	if stub.SampleDroppedHandler != nil {
		stub.SampleDroppedHandler(device, reason)
	}
}

// DispatchFault -
func (stub *SamplingMetricsStub) DispatchFault() {
	if stub.DispatchFaultHandler != nil {
		stub.DispatchFaultHandler()
	}
}

// IsInterfaceNil -
func (stub *SamplingMetricsStub) IsInterfaceNil() bool {
	return stub == nil
}
