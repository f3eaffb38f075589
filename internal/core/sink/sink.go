// Package sink writes edge decisions back to the graph.
package sink

import (
	"context"
	"fmt"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/driver"
	"github.com/agenthands/kinlink/internal/metrics"
)

// Sink applies outcomes as idempotent MERGE statements. Every edge it
// touches carries the deciding rule as provenance and the run ID as actor.
type Sink struct {
	Driver  driver.GraphDriver
	Actor   string
	Metrics *metrics.Metrics
}

func New(d driver.GraphDriver, actor string, m *metrics.Metrics) *Sink {
	return &Sink{Driver: d, Actor: actor, Metrics: m}
}

// CreateEdge links from and to with a SIBLING edge.
func (s *Sink) CreateEdge(ctx context.Context, from, to model.Endpoint, rule model.Rule) error {
	return s.merge(ctx, from, to, model.RelationSibling, rule, model.ActionCreate)
}

// RejectEdge tombstones the link between from and to with a DELETED edge.
// The SIBLING edge itself is left in place for the audit.
func (s *Sink) RejectEdge(ctx context.Context, from, to model.Endpoint, rule model.Rule) error {
	return s.merge(ctx, from, to, model.RelationDeleted, rule, model.ActionReject)
}

func (s *Sink) Apply(ctx context.Context, o model.Outcome) error {
	switch o.Action {
	case model.ActionCreate:
		return s.CreateEdge(ctx, o.From, o.To, o.Rule)
	case model.ActionReject:
		return s.RejectEdge(ctx, o.From, o.To, o.Rule)
	}
	return fmt.Errorf("unknown action %q", o.Action)
}

func (s *Sink) merge(ctx context.Context, from, to model.Endpoint, relation string, rule model.Rule, action model.Action) error {
	query := driver.MergeEdgeQuery(string(from.Kind), string(to.Kind), relation)
	params := map[string]interface{}{
		"from":       from.ID,
		"to":         to.ID,
		"provenance": string(rule),
		"actor":      s.Actor,
	}
	if _, err := s.Driver.ExecuteQuery(ctx, query, params); err != nil {
		return fmt.Errorf("failed to %s %s edge %s-%s: %w", action, relation, from.ID, to.ID, err)
	}
	s.Metrics.Edge(string(rule), string(action))
	return nil
}
