package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("engine")

// ArgsEngine defines the arguments needed to create an engine
type ArgsEngine struct {
	SitesProvider SitesProvider
	Dispatcher    Dispatcher
	Reporters     []Reporter
}

// samplingEngine orchestrates one pass: read the sites, dispatch the work items, report the results
type samplingEngine struct {
	sitesProvider SitesProvider
	dispatcher    Dispatcher
	reporters     []Reporter

	mutReport  sync.RWMutex
	lastReport *common.RunReport
}

// NewSamplingEngine creates a new engine instance
func NewSamplingEngine(args ArgsEngine) (*samplingEngine, error) {
	if check.IfNil(args.SitesProvider) {
		return nil, errors.New("nil sites provider")
	}
	if check.IfNil(args.Dispatcher) {
		return nil, errors.New("nil dispatcher")
	}
	for i, r := range args.Reporters {
		if check.IfNil(r) {
			return nil, fmt.Errorf("nil reporter at index %d", i)
		}
	}

	return &samplingEngine{
		sitesProvider: args.SitesProvider,
		dispatcher:    args.Dispatcher,
		reporters:     args.Reporters,
	}, nil
}

// Process runs one pass and logs the outcome. It is meant to be called periodically.
func (e *samplingEngine) Process(ctx context.Context) {
	_, err := e.Run(ctx)
	if err != nil {
		log.Error("sampling run failed", "error", err)
	}
}

// Run performs one pass over all the sites and hands the report to every reporter. Only the failure to obtain the
// sites list is returned as an error; reporter failures are logged.
func (e *samplingEngine) Run(ctx context.Context) (*common.RunReport, error) {
	sites, err := e.sitesProvider.Sites()
	if err != nil {
		return nil, fmt.Errorf("failed to read the sites list: %w", err)
	}

	report := &common.RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	log.Info("sampling run started", "run", report.ID, "sites", len(sites))

	result := e.dispatcher.Dispatch(ctx, sites)
	report.FinishedAt = time.Now()
	report.Raw = result.Raw
	report.Averaged = result.Averaged
	report.Faults = result.Faults
	common.SortReport(report)

	log.Info("sampling run finished", "run", report.ID, "averaged", len(report.Averaged),
		"samples", len(report.Raw), "faults", len(report.Faults),
		"duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Second))

	for _, r := range e.reporters {
		errReport := r.Report(ctx, report)
		if errReport != nil {
			log.Warn("failed to report run results", "run", report.ID, "reporter", fmt.Sprintf("%T", r),
				"error", errReport)
		}
	}

	e.mutReport.Lock()
	e.lastReport = report
	e.mutReport.Unlock()

	return report, nil
}

// LastReport returns the report of the most recent finished run, or nil
func (e *samplingEngine) LastReport() *common.RunReport {
	e.mutReport.RLock()
	defer e.mutReport.RUnlock()

	return e.lastReport
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *samplingEngine) IsInterfaceNil() bool {
	return e == nil
}
