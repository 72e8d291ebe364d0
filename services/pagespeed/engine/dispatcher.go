package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

// ArgsDispatcher defines the arguments needed to create a dispatcher
type ArgsDispatcher struct {
	Sampler       Sampler
	Aggregator    Aggregator
	FaultRecorder FaultRecorder
	NumWorkers    int
}

type itemOutcome struct {
	item    common.WorkItem
	samples common.SampleSet
	average *common.AveragedRecord
	fault   error
}

type dispatcher struct {
	sampler       Sampler
	aggregator    Aggregator
	faultRecorder FaultRecorder
	numWorkers    int
}

// NewDispatcher creates a dispatcher running at most NumWorkers work items at the same time
func NewDispatcher(args ArgsDispatcher) (*dispatcher, error) {
	if check.IfNil(args.Sampler) {
		return nil, errors.New("nil sampler")
	}
	if check.IfNil(args.Aggregator) {
		return nil, errors.New("nil aggregator")
	}
	if check.IfNil(args.FaultRecorder) {
		return nil, errors.New("nil fault recorder")
	}
	if args.NumWorkers <= 0 {
		return nil, errors.New("number of workers should be positive")
	}

	return &dispatcher{
		sampler:       args.Sampler,
		aggregator:    args.Aggregator,
		faultRecorder: args.FaultRecorder,
		numWorkers:    args.NumWorkers,
	}, nil
}

// Dispatch measures every (site, device) pair and collects the raw and averaged records. Work items that produced
// no sample are left out of both collections.
func (d *dispatcher) Dispatch(ctx context.Context, sites []string) common.DispatchResult {
	items := buildWorkItems(sites)
	result := common.DispatchResult{
		Raw:      make([]common.TaggedSample, 0),
		Averaged: make([]common.TaggedAverage, 0),
		Faults:   make([]common.DispatchFault, 0),
	}
	if len(items) == 0 {
		return result
	}

	numWorkers := d.numWorkers
	if numWorkers > len(items) {
		numWorkers = len(items)
	}

	jobs := make(chan common.WorkItem, numWorkers)
	outcomes := make(chan itemOutcome, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()

			for item := range jobs {
				outcomes <- d.process(ctx, item)
			}
		}()
	}

	go func() {
		for _, item := range items {
			jobs <- item
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		d.collect(&result, outcome)
	}

	log.Debug("dispatch finished", "work items", len(items), "averaged", len(result.Averaged),
		"samples", len(result.Raw), "faults", len(result.Faults))

	return result
}

func (d *dispatcher) process(ctx context.Context, item common.WorkItem) (outcome itemOutcome) {
	outcome.item = item
	defer func() {
		r := recover()
		if r != nil {
			outcome.samples = nil
			outcome.average = nil
			outcome.fault = fmt.Errorf("%v", r)
		}
	}()

	outcome.samples = d.sampler.Sample(ctx, item)
	if len(outcome.samples) == 0 {
		return outcome
	}

	average, ok := d.aggregator.Average(outcome.samples)
	if ok {
		outcome.average = average
	}

	return outcome
}

func (d *dispatcher) collect(result *common.DispatchResult, outcome itemOutcome) {
	if outcome.fault != nil {
		log.Error("failed processing work item", "site", outcome.item.Site, "device", outcome.item.Device,
			"error", outcome.fault)
		d.faultRecorder.DispatchFault()
		result.Faults = append(result.Faults, common.DispatchFault{
			WorkItem: outcome.item,
			Err:      outcome.fault.Error(),
		})
		return
	}

	if len(outcome.samples) == 0 {
		log.Warn("no usable measurement", "site", outcome.item.Site, "device", outcome.item.Device)
		return
	}

	for _, record := range outcome.samples {
		result.Raw = append(result.Raw, common.TaggedSample{
			WorkItem: outcome.item,
			Record:   record,
		})
	}

	if outcome.average != nil {
		result.Averaged = append(result.Averaged, common.TaggedAverage{
			WorkItem:   outcome.item,
			Record:     *outcome.average,
			NumSamples: len(outcome.samples),
		})
	}
}

func buildWorkItems(sites []string) []common.WorkItem {
	devices := common.Devices()
	items := make([]common.WorkItem, 0, len(sites)*len(devices))
	for _, site := range sites {
		site = strings.TrimSpace(site)
		if len(site) == 0 {
			continue
		}

		for _, device := range devices {
			items = append(items, common.WorkItem{
				Site:   site,
				Device: device,
			})
		}
	}

	return items
}

// IsInterfaceNil returns true if the value under the interface is nil
func (d *dispatcher) IsInterfaceNil() bool {
	return d == nil
}
