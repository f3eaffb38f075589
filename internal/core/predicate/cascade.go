// Package predicate resolves open triangles with an ordered cascade of
// rules. The first rule that fires for a chain decides it.
package predicate

import (
	"math"
	"strings"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/core/stats"
	"github.com/agenthands/kinlink/internal/core/strdist"
)

// Rule inspects one triple and returns at most one edge decision.
type Rule struct {
	Name model.Rule
	Eval func(c *Cascade, p model.Policy, s *stats.Statistics, t model.Triple) (model.Outcome, bool)
}

type Cascade struct {
	Metric strdist.Metric
	Rules  []Rule
}

// NewCascade returns the reference cascade: age range, birth interval,
// birthplace mode, then date match.
func NewCascade(metric strdist.Metric) *Cascade {
	return &Cascade{
		Metric: metric,
		Rules: []Rule{
			{Name: model.RuleMaxAgeRange, Eval: maxAgeRange},
			{Name: model.RuleMinBirthInterval, Eval: minBirthInterval},
			{Name: model.RuleBirthplaceMode, Eval: birthplaceMode},
			{Name: model.RuleDateMatchCreate, Eval: dateMatch},
		},
	}
}

// Evaluate runs the rules in order and stops at the first that fires.
func (c *Cascade) Evaluate(p model.Policy, s *stats.Statistics, t model.Triple) (model.Outcome, bool) {
	for _, r := range c.Rules {
		if o, ok := r.Eval(c, p, s, t); ok {
			return o, true
		}
	}
	return model.Outcome{}, false
}

// Resolve evaluates every chain of n in detection order.
func (c *Cascade) Resolve(n *stats.Neighbourhood) []model.Outcome {
	s := n.Statistics()
	p := n.Policy()
	var out []model.Outcome
	for _, t := range n.Triples {
		if o, ok := c.Evaluate(p, s, t); ok {
			out = append(out, o)
		}
	}
	return out
}

func birthYear(r model.Record) (float64, bool) {
	d := r.BirthDate()
	return float64(d.Year), d.HasYear()
}

func maxAgeRange(_ *Cascade, p model.Policy, s *stats.Statistics, t model.Triple) (model.Outcome, bool) {
	if s.YearCount == 0 {
		return model.Outcome{}, false
	}
	limit := float64(p.MaxAgeDifference)
	median := s.YearMedian
	x, okX := birthYear(t.X)
	y, okY := birthYear(t.Y)
	z, okZ := birthYear(t.Z)
	far := func(a, b float64) bool {
		return math.Abs(a-median) > limit && math.Abs(a-b) > limit
	}

	switch {
	case okX && okY && far(x, y):
		return model.Reject(t.X, t.Y, model.RuleMaxAgeRange), true
	case okZ && okY && far(z, y):
		return model.Reject(t.Y, t.Z, model.RuleMaxAgeRange), true
	case okY && okX && far(y, x):
		return model.Reject(t.X, t.Y, model.RuleMaxAgeRange), true
	case okY && okZ && far(y, z):
		return model.Reject(t.Y, t.Z, model.RuleMaxAgeRange), true
	}
	return model.Outcome{}, false
}

// minBirthInterval treats two births closer than a gestation period, but
// further apart than a same-day tolerance, as evidence against siblinghood.
func minBirthInterval(_ *Cascade, p model.Policy, s *stats.Statistics, t model.Triple) (model.Outcome, bool) {
	middle, ok := s.BirthDates[t.Y.ID()]
	if !ok {
		return model.Outcome{}, false
	}
	tooClose := func(end model.Record) bool {
		d, ok := s.BirthDates[end.ID()]
		if !ok {
			return false
		}
		days, ok := model.DaysBetween(d, middle)
		return ok && days > p.SameDayTolerance && days < p.MinBirthInterval
	}

	if tooClose(t.X) {
		return model.Reject(t.X, t.Y, model.RuleMinBirthInterval), true
	}
	if tooClose(t.Z) {
		return model.Reject(t.Y, t.Z, model.RuleMinBirthInterval), true
	}
	return model.Outcome{}, false
}

func birthplaceMode(_ *Cascade, p model.Policy, s *stats.Statistics, t model.Triple) (model.Outcome, bool) {
	if s.Children() <= p.MinFamilySize || s.ModePlace == "" {
		return model.Outcome{}, false
	}
	middle := strings.TrimSpace(t.Y.Place())
	if model.IsMissing(middle) {
		return model.Outcome{}, false
	}
	odd := func(end model.Record) bool {
		place := strings.TrimSpace(end.Place())
		return !model.IsMissing(place) && place != middle && place != s.ModePlace
	}

	if odd(t.X) {
		return model.Reject(t.X, t.Y, model.RuleBirthplaceMode), true
	}
	if odd(t.Z) {
		return model.Reject(t.Y, t.Z, model.RuleBirthplaceMode), true
	}
	return model.Outcome{}, false
}

// dateMatch closes the triangle when apex and far side agree on their
// identity fields, otherwise rejects an edge whose ends clearly disagree.
func dateMatch(c *Cascade, p model.Policy, _ *stats.Statistics, t model.Triple) (model.Outcome, bool) {
	x, y, z := t.X.IdentityFields(), t.Y.IdentityFields(), t.Z.IdentityFields()
	known := func(a, b []string) bool {
		return model.AllKnown(a) && model.AllKnown(b)
	}

	if known(x, z) && c.Metric.Distance(x, z) < p.DateMatchCreate {
		return model.Create(t.X, t.Z, model.RuleDateMatchCreate), true
	}
	if known(x, y) && c.Metric.Distance(x, y) > p.DateMatchReject {
		return model.Reject(t.X, t.Y, model.RuleDateMatchReject), true
	}
	if known(y, z) && c.Metric.Distance(y, z) > p.DateMatchReject {
		return model.Reject(t.Y, t.Z, model.RuleDateMatchReject), true
	}
	return model.Outcome{}, false
}
