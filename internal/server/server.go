package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/kinlink/internal/core"
	"github.com/agenthands/kinlink/internal/core/audit"
)

// Runner is the part of the engine the server drives.
type Runner interface {
	RunWithID(ctx context.Context, runID, population string, limit int) (*audit.Summary, error)
}

type RunStatus string

const (
	StatusRunning  RunStatus = "running"
	StatusFinished RunStatus = "finished"
)

type run struct {
	Status  RunStatus      `json:"status"`
	Summary *audit.Summary `json:"summary,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type Server struct {
	Runner   Runner
	Gatherer prometheus.Gatherer
	NewID    func() string

	mu   sync.RWMutex
	runs map[string]*run
	wg   sync.WaitGroup
}

func NewServer(runner Runner, gatherer prometheus.Gatherer, newID func() string) *Server {
	return &Server{
		Runner:   runner,
		Gatherer: gatherer,
		NewID:    newID,
		runs:     make(map[string]*run),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/runs", s.StartRun)
	r.GET("/runs/:id", s.GetRun)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))

	return r
}

type StartRunRequest struct {
	Population string `json:"population" binding:"required"`
	Limit      string `json:"limit"`
}

// StartRun launches a run in the background and answers with its ID.
func (s *Server) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Limit == "" {
		req.Limit = core.Everything
	}
	limit, err := core.ParseLimit(req.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := s.NewID()
	s.mu.Lock()
	s.runs[id] = &run{Status: StatusRunning}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		summary, err := s.Runner.RunWithID(context.Background(), id, req.Population, limit)
		finished := &run{Status: StatusFinished, Summary: summary}
		if err != nil {
			slog.Warn("run finished with errors", "run_id", id, "error", err)
			finished.Error = err.Error()
		}
		s.mu.Lock()
		s.runs[id] = finished
		s.mu.Unlock()
	}()

	c.JSON(http.StatusAccepted, gin.H{"id": id, "status": StatusRunning})
}

func (s *Server) GetRun(c *gin.Context) {
	s.mu.RLock()
	r, ok := s.runs[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// Wait blocks until every started run has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}
