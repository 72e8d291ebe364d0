package sampler

import (
	"context"
	"errors"
	"time"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/metrics"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"golang.org/x/time/rate"
)

var log = logger.GetOrCreate("sampler")

var errEmptyRecord = errors.New("extractor returned an empty metric record")

// ArgsSampler defines the arguments needed to create a sampler
type ArgsSampler struct {
	Poller               Poller
	Extractor            Extractor
	Metrics              MetricsHandler
	Limiter              *rate.Limiter
	Attempts             int
	DelayBetweenAttempts time.Duration
}

type sampler struct {
	poller    Poller
	extractor Extractor
	metrics   MetricsHandler
	limiter   *rate.Limiter
	attempts  int
	delay     time.Duration
}

// NewSampler creates a new sampler. The limiter is optional and, when set, is shared by all the samplers.
func NewSampler(args ArgsSampler) (*sampler, error) {
	if check.IfNil(args.Poller) {
		return nil, errors.New("nil poller")
	}
	if check.IfNil(args.Extractor) {
		return nil, errors.New("nil extractor")
	}
	if check.IfNil(args.Metrics) {
		return nil, errors.New("nil metrics handler")
	}
	if args.Attempts <= 0 {
		return nil, errors.New("attempts should be positive")
	}
	if args.DelayBetweenAttempts < 0 {
		return nil, errors.New("negative delay between attempts")
	}

	return &sampler{
		poller:    args.Poller,
		extractor: args.Extractor,
		metrics:   args.Metrics,
		limiter:   args.Limiter,
		attempts:  args.Attempts,
		delay:     args.DelayBetweenAttempts,
	}, nil
}

// Sample measures the work item up to the configured number of attempts and returns the successful records.
// Failed attempts are dropped. The delay is taken after every attempt, failed or not.
func (s *sampler) Sample(ctx context.Context, item common.WorkItem) common.SampleSet {
	samples := make(common.SampleSet, 0, s.attempts)
	for i := 0; i < s.attempts; i++ {
		record, err := s.attempt(ctx, item)
		if err != nil {
			log.Debug("measurement dropped", "site", item.Site, "device", item.Device,
				"attempt", i+1, "error", err)
		} else {
			samples = append(samples, *record)
		}

		if !s.wait(ctx) {
			log.Debug("sampling interrupted", "site", item.Site, "device", item.Device, "attempts", i+1)
			break
		}
	}

	log.Debug("sampling finished", "site", item.Site, "device", item.Device,
		"samples", len(samples), "attempts", s.attempts)

	return samples
}

func (s *sampler) attempt(ctx context.Context, item common.WorkItem) (*common.MetricRecord, error) {
	device := string(item.Device)
	if s.limiter != nil {
		err := s.limiter.Wait(ctx)
		if err != nil {
			s.metrics.SampleDropped(device, metrics.ReasonPoll)
			return nil, err
		}
	}

	start := time.Now()
	body, err := s.poller.Poll(ctx, item)
	s.metrics.AttemptDone(device, time.Since(start))
	if err != nil {
		s.metrics.SampleDropped(device, metrics.ReasonPoll)
		return nil, err
	}

	record, err := s.extractor.Extract(body)
	if err == nil && record == nil {
		err = errEmptyRecord
	}
	if err != nil {
		s.metrics.SampleDropped(device, metrics.ReasonExtract)
		return nil, err
	}

	s.metrics.SampleAccepted(device)

	return record, nil
}

func (s *sampler) wait(ctx context.Context) bool {
	if s.delay == 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sampler) IsInterfaceNil() bool {
	return s == nil
}
