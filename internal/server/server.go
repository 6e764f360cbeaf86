package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thinkscotty/fakenews/internal/config"
	"github.com/thinkscotty/fakenews/internal/models"
	"github.com/thinkscotty/fakenews/internal/pipeline"
)

// Runner executes a full pipeline run. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, pageURL string) (*pipeline.Result, error)
}

// History exposes the run ledger. *database.DB satisfies it.
type History interface {
	RecentRuns(limit int) ([]models.Run, error)
	GetRun(id string) (models.Run, error)
	ListModelCalls(runID string) ([]models.ModelCall, error)
	UsageStats() (models.UsageStats, error)
}

// Deps are the components the API serves. History may be nil.
type Deps struct {
	Extractor       pipeline.Extractor
	Writer          pipeline.Writer
	Runner          Runner
	History         History
	Model           string
	StructuredModel string
}

type Server struct {
	cfg       config.ServerConfig
	deps      Deps
	version   string
	buildTime string
	engine    *gin.Engine
	httpSrv   *http.Server
}

func New(cfg config.ServerConfig, deps Deps, version, buildTime string) *Server {
	s := &Server{
		cfg:       cfg,
		deps:      deps,
		version:   version,
		buildTime: buildTime,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
	}

	slog.Info("Starting server", "addr", addr, "auth", s.cfg.APIKey != "" || s.cfg.APIKeyHash != "")
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(recoveryMiddleware(), loggingMiddleware())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api/v1", s.requireAPIKey())
	api.POST("/extract", s.handleExtract)
	api.POST("/summary", s.handleSummary)
	api.POST("/summary/structured", s.handleStructuredSummary)
	api.POST("/fakenews", s.handleFakeNews)
	api.POST("/run", s.handleRun)

	api.GET("/runs", s.handleRuns)
	api.GET("/runs/:id", s.handleRunByID)
	api.GET("/runs/:id/calls", s.handleRunCalls)
	api.GET("/stats", s.handleStats)

	return r
}
