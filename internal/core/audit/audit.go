// Package audit counts the graph around a run and reports how each rule's
// edges compare with the ground-truth overlay.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cast"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/driver"
)

type Counts struct {
	SiblingEdges  int64 `json:"sibling_edges"`
	Tombstones    int64 `json:"tombstones"`
	OpenTriangles int64 `json:"open_triangles"`
}

// RuleEfficacy scores the edges one rule wrote in a run. A created edge is
// a true positive when the overlay links the pair; a tombstone is a true
// positive when it does not.
type RuleEfficacy struct {
	Rule          string `json:"rule"`
	Relation      string `json:"relation"`
	Total         int64  `json:"total"`
	TruePositive  int64  `json:"true_positive"`
	FalsePositive int64  `json:"false_positive"`
}

type Summary struct {
	RunID      string         `json:"run_id"`
	Population string         `json:"population"`
	Started    time.Time      `json:"started"`
	Finished   time.Time      `json:"finished"`
	Clusters   int64          `json:"clusters"`
	Failed     int64          `json:"failed_clusters"`
	Outcomes   int64          `json:"outcomes"`
	Before     Counts         `json:"before"`
	After      Counts         `json:"after"`
	Rules      []RuleEfficacy `json:"rules"`
	Errors     []string       `json:"errors,omitempty"`
}

// Fail records err without failing the summary.
func (s *Summary) Fail(err error) {
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
	}
}

type Auditor struct {
	Driver driver.GraphDriver
}

func NewAuditor(d driver.GraphDriver) *Auditor {
	return &Auditor{Driver: d}
}

// Start opens a summary for runID with the counts taken before it.
func (a *Auditor) Start(ctx context.Context, runID, population string) *Summary {
	s := &Summary{RunID: runID, Population: population, Started: time.Now().UTC()}
	s.Before = a.Count(ctx, population, s)
	return s
}

// Summarise completes s with the counts after the run and the per-rule
// efficacy of the run's edges. Query failures end up in s.Errors.
func (a *Auditor) Summarise(ctx context.Context, s *Summary) {
	s.After = a.Count(ctx, s.Population, s)
	rules, err := a.Efficacy(ctx, s.RunID)
	s.Fail(err)
	s.Rules = rules
	s.Finished = time.Now().UTC()
	slog.Info("run summary",
		"run_id", s.RunID,
		"siblings_before", s.Before.SiblingEdges, "siblings_after", s.After.SiblingEdges,
		"open_before", s.Before.OpenTriangles, "open_after", s.After.OpenTriangles,
		"errors", len(s.Errors))
}

// Count takes every count it can; failed ones stay zero and are noted on s.
func (a *Auditor) Count(ctx context.Context, population string, s *Summary) Counts {
	var c Counts
	var err error
	c.SiblingEdges, err = a.scalar(ctx, driver.CountEdgesQuery, map[string]interface{}{
		"population": population, "relation": model.RelationSibling,
	})
	s.Fail(err)
	c.Tombstones, err = a.scalar(ctx, driver.CountEdgesQuery, map[string]interface{}{
		"population": population, "relation": model.RelationDeleted,
	})
	s.Fail(err)
	c.OpenTriangles, err = a.scalar(ctx, driver.CountOpenTrianglesQuery, map[string]interface{}{
		"population": population,
	})
	s.Fail(err)
	return c
}

// Efficacy reports, per rule, the edges stamped with actor.
func (a *Auditor) Efficacy(ctx context.Context, actor string) ([]RuleEfficacy, error) {
	res, err := a.Driver.ExecuteQuery(ctx, driver.RuleEfficacyQuery, map[string]interface{}{"actor": actor})
	if err != nil {
		return nil, fmt.Errorf("failed to query rule efficacy: %w", err)
	}

	var rules []RuleEfficacy
	for _, rec := range res.Records {
		r, err := decodeEfficacy(rec)
		if err != nil {
			return rules, err
		}
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Rule != rules[j].Rule {
			return rules[i].Rule < rules[j].Rule
		}
		return rules[i].Relation < rules[j].Relation
	})
	return rules, nil
}

func decodeEfficacy(rec *neo4j.Record) (RuleEfficacy, error) {
	m := rec.AsMap()
	rule, err := cast.ToStringE(m["rule"])
	if err != nil {
		return RuleEfficacy{}, fmt.Errorf("bad rule column: %w", err)
	}
	relation, err := cast.ToStringE(m["relation"])
	if err != nil {
		return RuleEfficacy{}, fmt.Errorf("bad relation column: %w", err)
	}
	total, err := cast.ToInt64E(m["total"])
	if err != nil {
		return RuleEfficacy{}, fmt.Errorf("bad total column: %w", err)
	}
	truth, err := cast.ToInt64E(m["truth"])
	if err != nil {
		return RuleEfficacy{}, fmt.Errorf("bad truth column: %w", err)
	}

	r := RuleEfficacy{Rule: rule, Relation: relation, Total: total}
	if relation == model.RelationDeleted {
		r.TruePositive, r.FalsePositive = total-truth, truth
	} else {
		r.TruePositive, r.FalsePositive = truth, total-truth
	}
	return r, nil
}

func (a *Auditor) scalar(ctx context.Context, query string, params map[string]interface{}) (int64, error) {
	res, err := a.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	v, _ := res.Records[0].Get("n")
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("count returned %v: %w", v, err)
	}
	return n, nil
}
