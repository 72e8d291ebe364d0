package api

import (
	"context"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// Storage defines the interface for persisting and querying run reports
type Storage interface {
	// SaveReport stores a run report with all its records
	SaveReport(ctx context.Context, report *common.RunReport) error

	// GetRuns returns all stored runs, newest first
	GetRuns(ctx context.Context) ([]common.RunSummary, error)

	// GetLatestRun returns the newest stored run
	GetLatestRun(ctx context.Context) (*common.RunSummary, error)

	// GetRun returns one stored run
	GetRun(ctx context.Context, id string) (*common.RunSummary, error)

	// GetRunAverages returns the averaged records of a run
	GetRunAverages(ctx context.Context, id string) ([]common.TaggedAverage, error)

	// GetRunSamples returns the raw samples of a run
	GetRunSamples(ctx context.Context, id string) ([]common.TaggedSample, error)

	// DeleteRun removes a run and its records
	DeleteRun(ctx context.Context, id string) error

	// Close shuts down the database connection
	Close() error

	IsInterfaceNil() bool
}
