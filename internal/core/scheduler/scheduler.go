// Package scheduler fans clusters out to a bounded worker pool and applies
// each cluster's MSED and predicate decisions.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"devt.de/krotik/common/errorutil"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/core/msed"
	"github.com/agenthands/kinlink/internal/core/predicate"
	"github.com/agenthands/kinlink/internal/core/record"
	"github.com/agenthands/kinlink/internal/core/stats"
	"github.com/agenthands/kinlink/internal/metrics"
)

const DefaultDeadline = 12 * time.Hour

var ErrDeadlineExceeded = errors.New("scheduler deadline exceeded")

// Sink receives every edge decision.
type Sink interface {
	Apply(ctx context.Context, o model.Outcome) error
}

type Scheduler struct {
	Store      record.Store
	MSED       *msed.Clusterer
	Predicates *predicate.Cascade
	Workers    int
	Deadline   time.Duration
	Metrics    *metrics.Metrics
}

// Report counts what a run got through. Fields are updated atomically by
// workers and may still move after a deadline return.
type Report struct {
	Clusters  int64
	Resolved  int64
	Failed    int64
	Abandoned int64
	Outcomes  int64
}

func (r *Report) snapshot() Report {
	return Report{
		Clusters:  atomic.LoadInt64(&r.Clusters),
		Resolved:  atomic.LoadInt64(&r.Resolved),
		Failed:    atomic.LoadInt64(&r.Failed),
		Abandoned: atomic.LoadInt64(&r.Abandoned),
		Outcomes:  atomic.LoadInt64(&r.Outcomes),
	}
}

// Run resolves every cluster and waits for them up to the deadline. A
// failing cluster never stops the others; all failures come back together
// as one composite error. When the deadline passes, clusters not yet
// started are dropped, running ones are left to finish in the background,
// and ErrDeadlineExceeded is returned joined with any failures collected so
// far. Report.Clusters counts only clusters that actually started.
func (s *Scheduler) Run(ctx context.Context, clusters []model.Cluster, sink Sink) (Report, error) {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	deadline := s.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	var (
		g      errgroup.Group
		closed atomic.Bool
		report Report
		mu     sync.Mutex
		ce     = errorutil.NewCompositeError()
	)
	g.SetLimit(workers)

	fail := func(c model.Cluster, err error) {
		mu.Lock()
		ce.Add(fmt.Errorf("cluster %s/%s: %w", c.Pattern.Name, c.Apex, err))
		mu.Unlock()
		atomic.AddInt64(&report.Failed, 1)
		s.Metrics.Cluster("failed")
		slog.Error("cluster failed", "pattern", c.Pattern.Name, "apex", c.Apex, "error", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, c := range clusters {
			if closed.Load() {
				atomic.AddInt64(&report.Abandoned, 1)
				continue
			}
			c := c
			g.Go(func() error {
				if closed.Load() {
					atomic.AddInt64(&report.Abandoned, 1)
					return nil
				}
				atomic.AddInt64(&report.Clusters, 1)
				n, err := s.resolve(ctx, c, sink)
				atomic.AddInt64(&report.Outcomes, int64(n))
				if err != nil {
					fail(c, err)
					return nil
				}
				atomic.AddInt64(&report.Resolved, 1)
				s.Metrics.Cluster("resolved")
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-time.After(deadline):
		closed.Store(true)
		slog.Warn("scheduler deadline exceeded, abandoning remaining clusters", "deadline", deadline)
		mu.Lock()
		defer mu.Unlock()
		if ce.HasErrors() {
			// Running clusters may still fail; the caller gets the failures so far.
			return report.snapshot(), errors.Join(ErrDeadlineExceeded, errors.New(ce.Error()))
		}
		return report.snapshot(), ErrDeadlineExceeded
	}

	final := report.snapshot()
	slog.Info("scheduler finished",
		"clusters", final.Clusters, "resolved", final.Resolved,
		"failed", final.Failed, "outcomes", final.Outcomes)

	mu.Lock()
	defer mu.Unlock()
	if ce.HasErrors() {
		return final, ce
	}
	return final, nil
}

// resolve runs both passes over one cluster and returns how many outcomes
// it applied.
func (s *Scheduler) resolve(ctx context.Context, c model.Cluster, sink Sink) (applied int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	triples, err := s.load(ctx, c)
	if err != nil {
		return 0, err
	}
	n := stats.NewNeighbourhood(c, triples)
	n.Statistics()

	if s.MSED != nil {
		res := s.MSED.Resolve(n)
		for _, o := range res.Outcomes {
			if err := sink.Apply(ctx, o); err != nil {
				return applied, err
			}
			applied++
		}
	}
	if s.Predicates != nil {
		for _, o := range s.Predicates.Resolve(n) {
			if err := sink.Apply(ctx, o); err != nil {
				return applied, err
			}
			applied++
		}
	}
	return applied, nil
}

// load fetches the records of every chain in detection order. The apex
// and far side use the pattern's apex kind, the middle its middle kind.
func (s *Scheduler) load(ctx context.Context, c model.Cluster) ([]model.Triple, error) {
	x, err := s.Store.Get(ctx, c.Pattern.ApexKind, c.Apex)
	if err != nil {
		return nil, fmt.Errorf("failed to load apex: %w", err)
	}
	triples := make([]model.Triple, 0, len(c.Chains))
	for _, chain := range c.Chains {
		y, err := s.Store.Get(ctx, c.Pattern.MiddleKind, chain.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to load middle record: %w", err)
		}
		z, err := s.Store.Get(ctx, c.Pattern.ApexKind, chain.Z)
		if err != nil {
			return nil, fmt.Errorf("failed to load far record: %w", err)
		}
		triples = append(triples, model.Triple{X: x, Y: y, Z: z})
	}
	return triples, nil
}
