// Package msed groups the records of a cluster into families by their
// multiset string distance and rejects the edges that cross families.
package msed

import (
	"sort"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/core/names"
	"github.com/agenthands/kinlink/internal/core/stats"
	"github.com/agenthands/kinlink/internal/core/strdist"
)

// Scored is a chain together with its whole-triple distance. Triple holds
// the normalised copies of the chain's records.
type Scored struct {
	Chain    int
	Triple   model.Triple
	Distance float64
}

type Result struct {
	Families []*FamilySet
	Accepted []Scored
	Rejected []Scored
	Outcomes []model.Outcome
}

type Clusterer struct {
	Metric     strdist.MultisetMetric
	Normalizer *names.Normalizer
}

func NewClusterer(metric strdist.MultisetMetric) *Clusterer {
	return &Clusterer{
		Metric:     metric,
		Normalizer: names.New(),
	}
}

// Distance scores a group of records by their concatenated linkage fields.
func (c *Clusterer) Distance(records ...model.Record) float64 {
	values := make([]string, len(records))
	for i, r := range records {
		values[i] = strdist.Concat(r.LinkageFields())
	}
	return c.Metric.Distance(values)
}

// Resolve runs the family pass over every chain of n, in detection order.
func (c *Clusterer) Resolve(n *stats.Neighbourhood) Result {
	policy := n.Policy()
	var res Result

	for i, original := range n.Triples {
		t := original.Clone()
		c.Normalizer.NormaliseTriple(t)

		d := c.Distance(t.X, t.Y, t.Z)
		scored := Scored{Chain: i, Triple: t, Distance: d}
		if d < policy.TripleThreshold {
			res.Families = merge(res.Families, t.X, t.Y, t.Z)
			res.Accepted = append(res.Accepted, scored)
			continue
		}
		res.Rejected = append(res.Rejected, scored)

		dxy := c.Distance(t.X, t.Y)
		dyz := c.Distance(t.Y, t.Z)
		switch {
		case dxy < policy.PairThreshold && dxy <= dyz:
			res.Families = merge(res.Families, t.X, t.Y)
		case dyz < policy.PairThreshold:
			res.Families = merge(res.Families, t.Y, t.Z)
		}
	}

	var partitioned []*FamilySet
	for _, f := range res.Families {
		if f.Len() < 3 {
			partitioned = append(partitioned, f)
			continue
		}
		partitioned = append(partitioned, c.Repartition(f, policy)...)
	}
	res.Families = partitioned
	res.Outcomes = outcomes(res)
	return res
}

// merge adds records to the first family that already holds one of them,
// or starts a new family.
func merge(families []*FamilySet, records ...model.Record) []*FamilySet {
	for _, f := range families {
		if f.ContainsAny(records...) {
			f.Add(records...)
			return families
		}
	}
	return append(families, NewFamilySet(records...))
}

type rankedTriple struct {
	members  [3]model.Record
	distance float64
}

// Repartition splits a family by ranking all of its 3-combinations by
// distance. The lowest triple seeds the first sub-family; later triples
// join a sub-family they overlap or seed a new one. The scan stops at the
// first triple whose distance exceeds policy.RepartitionMax or grows by
// more than policy.RepartitionGrowth over its predecessor. After a zero
// distance only another zero passes the growth gate.
func (c *Clusterer) Repartition(f *FamilySet, policy model.Policy) []*FamilySet {
	members := f.Members()
	var ranked []rankedTriple
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			for k := j + 1; k < len(members); k++ {
				ranked = append(ranked, rankedTriple{
					members:  [3]model.Record{members[i], members[j], members[k]},
					distance: c.Distance(members[i], members[j], members[k]),
				})
			}
		}
	}
	if len(ranked) == 0 {
		return []*FamilySet{f}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})

	subs := []*FamilySet{NewFamilySet(ranked[0].members[:]...)}
	prev := ranked[0].distance
	for _, rt := range ranked[1:] {
		if rt.distance > policy.RepartitionMax {
			break
		}
		if rt.distance > prev*(1+policy.RepartitionGrowth) {
			break
		}
		subs = merge(subs, rt.members[:]...)
		prev = rt.distance
	}
	return subs
}

// outcomes creates the apex to far-side edge for chains whose records all
// ended in one family, and for each rejected chain with exactly two of its
// records in a family rejects the edge to the record left out.
func outcomes(res Result) []model.Outcome {
	var out []model.Outcome
	seen := make(map[string]struct{})
	add := func(o model.Outcome) {
		if _, ok := seen[o.Key()]; ok {
			return
		}
		seen[o.Key()] = struct{}{}
		out = append(out, o)
	}

	for _, s := range res.Accepted {
		for _, f := range res.Families {
			if f.Contains(s.Triple.X.ID()) && f.Contains(s.Triple.Y.ID()) && f.Contains(s.Triple.Z.ID()) {
				add(model.Create(s.Triple.X, s.Triple.Z, model.RuleMSEDCreate))
				break
			}
		}
	}

	for _, s := range res.Rejected {
		t := s.Triple
		for _, f := range res.Families {
			inX, inY, inZ := f.Contains(t.X.ID()), f.Contains(t.Y.ID()), f.Contains(t.Z.ID())
			switch {
			case !inX && inY && inZ:
				add(model.Reject(t.X, t.Y, model.RuleMSEDReject))
			case inX && inY && !inZ:
				add(model.Reject(t.Y, t.Z, model.RuleMSEDReject))
			}
		}
	}
	return out
}
