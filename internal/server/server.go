// Package server exposes the load runner over HTTP together with a small set
// of sample routes that the default endpoint list can exercise.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/torosent/selfload/internal/config"
	"github.com/torosent/selfload/internal/httpclient"
	"github.com/torosent/selfload/internal/logging"
	"github.com/torosent/selfload/internal/output"
	"github.com/torosent/selfload/internal/runner"
	"github.com/torosent/selfload/internal/tracing"
)

// RunIDHeader carries the identifier of the run behind a /admin/load response.
const RunIDHeader = "X-Run-Id"

const shutdownTimeout = 10 * time.Second

// Deps are the shared collaborators of a Server. Zero values are usable.
type Deps struct {
	Client  *http.Client
	Tracing *tracing.Provider
	Logger  *logrus.Logger
}

// Server serves the trigger endpoint and sample routes.
type Server struct {
	base    config.Config
	client  *http.Client
	tracing *tracing.Provider
	log     *logrus.Logger
	engine  *gin.Engine
	store   *sampleStore

	active    atomic.Int64
	completed atomic.Int64
	mu        sync.Mutex
	lastRunID string
}

// New builds a Server whose load runs start from base.
func New(base config.Config, deps Deps) *Server {
	base.Normalize()
	s := &Server{
		base:    base,
		client:  deps.Client,
		tracing: deps.Tracing,
		log:     deps.Logger,
		store:   newSampleStore(),
	}
	if s.client == nil {
		s.client = httpclient.NewClient(base.EffectiveConcurrency())
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/", s.index)
	r.GET("/healthz", s.healthz)
	r.GET("/ready", s.ready)

	admin := r.Group("/admin")
	admin.GET("/status", s.adminStatus)
	admin.GET("/config", s.adminConfig)
	admin.POST("/action", s.adminAction)
	admin.POST("/load", s.load)

	r.GET("/items", s.listItems)
	r.GET("/items/:id", s.getItem)
	r.POST("/items", s.createItem)
	r.GET("/persons/all", s.listPersons)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("listen", addr).Info("serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start)) / float64(time.Millisecond),
		}).Debug("request")
	}
}

func (s *Server) index(c *gin.Context) {
	c.String(http.StatusOK, "selfload\n")
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

func (s *Server) adminStatus(c *gin.Context) {
	s.mu.Lock()
	last := s.lastRunID
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"admin":         "ok",
		"activeRuns":    s.active.Load(),
		"completedRuns": s.completed.Load(),
		"lastRunId":     last,
	})
}

func (s *Server) adminConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"config": gin.H{
		"mode":        gin.Mode(),
		"requests":    s.base.Requests,
		"concurrency": s.base.Concurrency,
		"timeout":     s.base.Timeout.Milliseconds(),
		"endpoints":   s.base.Endpoints,
		"host":        s.base.Host,
		"method":      s.base.Method,
		"rate":        s.base.Rate,
	}})
}

// adminAction echoes the JSON object it receives.
func (s *Server) adminAction(c *gin.Context) {
	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		body = map[string]interface{}{}
	}
	c.JSON(http.StatusOK, gin.H{"actionReceived": body})
}

func (s *Server) load(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := config.ParsePayload(s.base, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cfg.Host == "" {
		cfg.Host = requestOrigin(c.Request)
	}

	targets, err := runner.BuildTargets(cfg.Host, cfg.Endpoints, cfg.Requests)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issuer, err := httpclient.NewIssuer(s.client, httpclient.IssuerOptions{
		Method:    cfg.Method,
		Headers:   cfg.Headers,
		Tracer:    s.tracing.Tracer(),
		Propagate: s.tracing.ShouldPropagate(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var iss runner.Issuer = issuer
	if cfg.LogErrors {
		iss = runner.WithLogging(iss, logging.NewFailureLogger(s.log))
	}

	s.active.Add(1)
	defer s.active.Add(-1)

	result, err := runner.New(runner.Options{
		Targets:       targets,
		Concurrency:   cfg.Concurrency,
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.Rate,
		Issuer:        iss,
	}).Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.completed.Add(1)
	s.mu.Lock()
	s.lastRunID = result.RunID
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"run_id":    result.RunID,
		"requests":  cfg.Requests,
		"workers":   result.Workers,
		"completed": result.Summary.TotalCompleted,
		"elapsed":   result.Duration.Round(time.Millisecond).String(),
	}).Info("load run finished")

	c.Header(RunIDHeader, result.RunID)
	c.JSON(http.StatusOK, output.NewReport(*cfg, result))
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
