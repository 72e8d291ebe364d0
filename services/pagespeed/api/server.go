package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/rating"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/storage"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	storage        Storage
	serviceKey     string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// RatedMetric is one averaged metric with its classification
type RatedMetric struct {
	Name   string        `json:"name"`
	Value  *float64      `json:"value"`
	Rating rating.Rating `json:"rating,omitempty"`
}

// RatedAverage is an averaged record as returned by the API
type RatedAverage struct {
	common.WorkItem
	NumSamples int           `json:"numSamples"`
	Metrics    []RatedMetric `json:"metrics"`
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKeyApi  string
	ListenAddress  string
	Storage        Storage
	Gatherer       prometheus.Gatherer
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Storage) {
		return nil, errors.New("storage is required")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}
	if args.Gatherer == nil {
		return nil, errors.New("nil prometheus gatherer")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		storage:        args.Storage,
		serviceKey:     args.ServiceKeyApi,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}

	s.setupRoutes(args.Gatherer)
	return s, nil
}

func (s *server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	api.Use(s.authAPIKey())
	{
		api.POST("/report", s.handleReport)
		api.GET("/runs", s.handleGetRuns)
		api.GET("/runs/latest", s.handleGetLatestRun)
		api.GET("/runs/:id", s.handleGetRun)
		api.GET("/runs/:id/averages", s.handleGetRunAverages)
		api.GET("/runs/:id/samples", s.handleGetRunSamples)
		api.DELETE("/runs/:id", s.handleDeleteRun)
	}
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()

	return nil
}

// --- Middlewares ---

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if len(s.serviceKey) == 0 || key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// --- Handlers ---

func (s *server) handleReport(c *gin.Context) {
	var payload common.ReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Report == nil || len(payload.Report.ID) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	log.Debug("received report", "sender", c.Request.RemoteAddr, "source", payload.Source,
		"run", payload.Report.ID, "averaged", len(payload.Report.Averaged))

	err := s.storage.SaveReport(c.Request.Context(), payload.Report)
	if err != nil {
		log.Warn("failed to save report", "run", payload.Report.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleGetRuns(c *gin.Context) {
	runs, err := s.storage.GetRuns(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *server) handleGetLatestRun(c *gin.Context) {
	run, err := s.storage.GetLatestRun(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeRun(c, run)
}

func (s *server) handleGetRun(c *gin.Context) {
	run, err := s.storage.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeRun(c, run)
}

func (s *server) writeRun(c *gin.Context, run *common.RunSummary) {
	averages, err := s.storage.GetRunAverages(c.Request.Context(), run.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":      run,
		"averages": rateAverages(averages),
	})
}

func (s *server) handleGetRunAverages(c *gin.Context) {
	averages, err := s.storage.GetRunAverages(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"averages": rateAverages(averages)})
}

func (s *server) handleGetRunSamples(c *gin.Context) {
	samples, err := s.storage.GetRunSamples(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

func (s *server) handleDeleteRun(c *gin.Context) {
	err := s.storage.DeleteRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) writeError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func rateAverages(averages []common.TaggedAverage) []RatedAverage {
	out := make([]RatedAverage, 0, len(averages))
	for _, avg := range averages {
		values := avg.Record.NamedValues()
		metrics := make([]RatedMetric, 0, len(values))
		for _, v := range values {
			rm := RatedMetric{
				Name:  v.Name,
				Value: v.Value,
			}
			if v.Value != nil {
				rm.Rating = rating.Classify(v.Name, *v.Value)
			}

			metrics = append(metrics, rm)
		}

		out = append(out, RatedAverage{
			WorkItem:   avg.WorkItem,
			NumSamples: avg.NumSamples,
			Metrics:    metrics,
		})
	}

	return out
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *server) IsInterfaceNil() bool {
	return s == nil
}
