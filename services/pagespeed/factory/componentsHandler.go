package factory

import (
	"context"
	"errors"
	"sync"

	"github.com/iulianpascalau/pagespeed-monitoring/commonGo"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/aggregator"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/api"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/config"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/engine"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/extractor"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/metrics"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/poller"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/reporter"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/sampler"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/sites"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/storage"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

var log = logger.GetOrCreate("factory")

// ArgsComponentsHandler holds the settings and the secrets needed to build the service
type ArgsComponentsHandler struct {
	Config        config.Config
	APIKey        string
	ServiceKeyApi string
}

type componentsHandler struct {
	registry  *prometheus.Registry
	reporters []engine.Reporter
	store     api.Storage
	server    Server
	engine    Engine
	mutCancel sync.Mutex
	cancel    func()
	cfg       config.Config
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(args ArgsComponentsHandler) (*componentsHandler, error) {
	cfg := args.Config
	cfg.ApplyDefaults()

	ch := &componentsHandler{
		registry: prometheus.NewRegistry(),
		cfg:      cfg,
	}
	ch.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	err := ch.createComponents(args)
	if err != nil {
		ch.Close()
		return nil, err
	}

	return ch, nil
}

func (ch *componentsHandler) createComponents(args ArgsComponentsHandler) error {
	cfg := ch.cfg

	poll, err := poller.NewHTTPPoller(poller.ArgsHTTPPoller{
		APIURL:  cfg.APIURL,
		APIKey:  args.APIKey,
		Timeout: cfg.RequestTimeout(),
	})
	if err != nil {
		return err
	}

	samplingMetrics, err := metrics.NewSamplingMetrics(ch.registry)
	if err != nil {
		return err
	}

	var limiter *rate.Limiter
	if cfg.MaxRequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), 1)
	}

	samp, err := sampler.NewSampler(sampler.ArgsSampler{
		Poller:               poll,
		Extractor:            extractor.NewLighthouseExtractor(),
		Metrics:              samplingMetrics,
		Limiter:              limiter,
		Attempts:             cfg.Attempts,
		DelayBetweenAttempts: cfg.DelayBetweenAttempts(),
	})
	if err != nil {
		return err
	}

	disp, err := engine.NewDispatcher(engine.ArgsDispatcher{
		Sampler:       samp,
		Aggregator:    aggregator.NewMeanAggregator(),
		FaultRecorder: samplingMetrics,
		NumWorkers:    cfg.NumWorkers,
	})
	if err != nil {
		return err
	}

	err = ch.createReporters(args)
	if err != nil {
		return err
	}

	provider, err := sites.NewFileProvider(cfg.SitesFile)
	if err != nil {
		return err
	}

	ch.engine, err = engine.NewSamplingEngine(engine.ArgsEngine{
		SitesProvider: provider,
		Dispatcher:    disp,
		Reporters:     ch.reporters,
	})
	if err != nil {
		return err
	}

	return ch.createServer(args)
}

func (ch *componentsHandler) createReporters(args ArgsComponentsHandler) error {
	cfg := ch.cfg.Report

	if len(cfg.ExcelFile) > 0 {
		excel, err := reporter.NewExcelReporter(cfg.ExcelFile)
		if err != nil {
			return err
		}
		ch.reporters = append(ch.reporters, excel)
	}

	if len(cfg.SQLitePath) > 0 {
		store, err := storage.NewSQLiteStorage(cfg.SQLitePath, cfg.MaxStoredRuns)
		if err != nil {
			return err
		}
		ch.store = store
		ch.reporters = append(ch.reporters, store)
	}

	if len(cfg.Endpoint) > 0 {
		httpRep, err := reporter.NewHTTPReporter(cfg.Endpoint, args.ServiceKeyApi, cfg.Source, cfg.Timeout())
		if err != nil {
			return err
		}
		ch.reporters = append(ch.reporters, httpRep)
	}

	if len(ch.reporters) == 0 {
		log.Warn("no reporter configured, the run results will only be logged")
	}

	return nil
}

func (ch *componentsHandler) createServer(args ArgsComponentsHandler) error {
	if len(ch.cfg.API.ListenAddress) == 0 {
		return nil
	}
	if ch.store == nil {
		return errors.New("the results API requires the SQLite storage to be configured")
	}

	server, err := api.NewServer(api.ArgsWebServer{
		ServiceKeyApi:  args.ServiceKeyApi,
		ListenAddress:  ch.cfg.API.ListenAddress,
		Storage:        ch.store,
		Gatherer:       ch.registry,
		GeneralHandler: api.CORSMiddleware,
	})
	if err != nil {
		return err
	}

	ch.server = server

	return nil
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// GetStore returns the storage component, nil if not configured
func (ch *componentsHandler) GetStore() api.Storage {
	return ch.store
}

// GetServer returns the server component, nil if not configured
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// GetReporters returns the configured reporters
func (ch *componentsHandler) GetReporters() []engine.Reporter {
	return ch.reporters
}

// GetRegistry returns the prometheus registry holding the service metrics
func (ch *componentsHandler) GetRegistry() *prometheus.Registry {
	return ch.registry
}

// RunOnce performs a single sampling run on the calling goroutine
func (ch *componentsHandler) RunOnce(ctx context.Context) (*common.RunReport, error) {
	return ch.engine.Run(ctx)
}

// Start starts the results server, if configured, and the periodic sampling runs when an interval is set
func (ch *componentsHandler) Start() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return
	}

	var ctx context.Context
	ctx, ch.cancel = context.WithCancel(context.Background())

	if ch.server != nil {
		ch.server.Start()
	}

	interval := ch.cfg.RunInterval()
	if interval > 0 {
		log.Info("starting periodic sampling runs", "interval", interval)
		commonGo.CronJobStarter(ctx, ch.engine.Process, interval)
	}
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}

	if ch.server != nil {
		err := ch.server.Close()
		if err != nil {
			log.Warn("failed to close the results server", "error", err)
		}
	}

	if ch.store != nil {
		err := ch.store.Close()
		if err != nil {
			log.Warn("failed to close the storage", "error", err)
		}
	}
}
