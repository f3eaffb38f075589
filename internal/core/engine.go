package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/agenthands/kinlink/internal/config"
	"github.com/agenthands/kinlink/internal/core/audit"
	"github.com/agenthands/kinlink/internal/core/detect"
	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/core/msed"
	"github.com/agenthands/kinlink/internal/core/predicate"
	"github.com/agenthands/kinlink/internal/core/record"
	"github.com/agenthands/kinlink/internal/core/scheduler"
	"github.com/agenthands/kinlink/internal/core/sink"
	"github.com/agenthands/kinlink/internal/core/strdist"
	"github.com/agenthands/kinlink/internal/driver"
	"github.com/agenthands/kinlink/internal/metrics"
)

// Everything is the limit argument that lifts the apex cap.
const Everything = "EVERYTHING"

// Engine resolves the open triangles of a population: it detects them for
// every configured pattern, schedules their resolution and summarises the
// graph before and after.
type Engine struct {
	Driver    driver.GraphDriver
	Store     record.Store
	Patterns  []model.Pattern
	Detector  *detect.Detector
	Scheduler *scheduler.Scheduler
	Auditor   *audit.Auditor
	Metrics   *metrics.Metrics

	UUIDGenerator func() string
}

func NewEngine(d driver.GraphDriver, store record.Store, cfg *config.Config, m *metrics.Metrics) (*Engine, error) {
	patterns, err := cfg.Patterns()
	if err != nil {
		return nil, err
	}
	deadline, err := cfg.Deadline()
	if err != nil {
		return nil, err
	}

	return &Engine{
		Driver:   d,
		Store:    store,
		Patterns: patterns,
		Detector: detect.NewDetector(d, cfg.Detection.MaxChains),
		Scheduler: &scheduler.Scheduler{
			Store:      store,
			MSED:       msed.NewClusterer(strdist.MSED{}),
			Predicates: predicate.NewCascade(strdist.Levenshtein{}),
			Workers:    cfg.Scheduler.Workers,
			Deadline:   deadline,
			Metrics:    m,
		},
		Auditor:       audit.NewAuditor(d),
		Metrics:       m,
		UUIDGenerator: func() string { return uuid.New().String() },
	}, nil
}

func (e *Engine) BuildIndices(ctx context.Context) error {
	return e.Driver.BuildIndices(ctx)
}

// ParseLimit reads the record-count argument: EVERYTHING or a positive
// count of apexes per pattern. EVERYTHING maps to 0.
func ParseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, Everything) {
		return 0, nil
	}
	n, err := cast.ToIntE(strings.TrimLeft(s, "0"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be %s or a positive count, got %q", Everything, s)
	}
	return n, nil
}

// Run resolves population under a fresh run ID.
func (e *Engine) Run(ctx context.Context, population string, limit int) (*audit.Summary, error) {
	return e.RunWithID(ctx, e.UUIDGenerator(), population, limit)
}

// RunWithID resolves population and stamps every edge it writes with
// runID. The summary is always returned. Detection and resolution
// failures are noted on it and also returned joined together; they never
// stop the rest of the population from being processed.
func (e *Engine) RunWithID(ctx context.Context, runID, population string, limit int) (*audit.Summary, error) {
	slog.Info("starting run", "run_id", runID, "population", population, "limit", limit)
	summary := e.Auditor.Start(ctx, runID, population)
	var errs []error

	var clusters []model.Cluster
	for _, p := range e.Patterns {
		found, err := e.Detector.Detect(ctx, p, population, limit)
		if err != nil {
			err = fmt.Errorf("detect %s: %w", p.Name, err)
			summary.Fail(err)
			errs = append(errs, err)
		}
		clusters = append(clusters, found...)
	}

	report, err := e.Scheduler.Run(ctx, clusters, sink.New(e.Driver, runID, e.Metrics))
	summary.Clusters = report.Clusters
	summary.Failed = report.Failed
	summary.Outcomes = report.Outcomes
	if err != nil {
		err = fmt.Errorf("resolve: %w", err)
		summary.Fail(err)
		errs = append(errs, err)
	}

	e.Auditor.Summarise(ctx, summary)

	if len(errs) > 0 {
		e.Metrics.Run("partial")
		return summary, errors.Join(errs...)
	}
	e.Metrics.Run("ok")
	return summary, nil
}
