package factory

import (
	"context"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
)

// Engine defines the sampling engine operations
type Engine interface {
	Process(ctx context.Context)
	Run(ctx context.Context) (*common.RunReport, error)
	LastReport() *common.RunReport
	IsInterfaceNil() bool
}

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start()
	Address() string
	Close() error
}

// ComponentsHandler defines the operations of the service assembled from the configuration
type ComponentsHandler interface {
	RunOnce(ctx context.Context) (*common.RunReport, error)
	Start()
	Close()
}
