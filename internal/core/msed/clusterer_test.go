package msed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/core/stats"
)

// distinctMetric scores a group by how many distinct values it holds.
type distinctMetric struct{ step float64 }

func (m distinctMetric) Distance(values []string) float64 {
	distinct := make(map[string]struct{})
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	return float64(len(distinct)-1) * m.step
}

type fixedMetric float64

func (m fixedMetric) Distance(values []string) float64 { return float64(m) }

func birth(id, mother string) *model.Birth {
	return &model.Birth{
		RecordID: id,
		StdID:    "std-" + id,
		Name:     model.Names{model.MotherForename: mother},
	}
}

func neighbourhood(pattern string, triples ...model.Triple) *stats.Neighbourhood {
	p, _ := model.PatternByName(pattern)
	return stats.NewNeighbourhood(model.Cluster{Pattern: p, Apex: triples[0].X.ID()}, triples)
}

func TestResolve_ClosePairOnly(t *testing.T) {
	x, y, z := birth("x", "anna"), birth("y", "anna"), birth("z", "brita")
	c := NewClusterer(distinctMetric{step: 0.2})

	res := c.Resolve(neighbourhood("birth-birth", model.Triple{X: x, Y: y, Z: z}))

	require.Len(t, res.Families, 1)
	assert.Equal(t, []string{"x", "y"}, res.Families[0].IDs())
	require.Len(t, res.Rejected, 1)
	assert.InDelta(t, 0.2, res.Rejected[0].Distance, 1e-9)
	assert.Equal(t, []model.Outcome{{
		Action: model.ActionReject,
		From:   model.Endpoint{Kind: model.KindBirth, ID: "std-y"},
		To:     model.Endpoint{Kind: model.KindBirth, ID: "std-z"},
		Rule:   model.RuleMSEDReject,
	}}, res.Outcomes)
}

func TestResolve_AcceptedTripleClosesTriangle(t *testing.T) {
	x, y, z := birth("x", "anna"), birth("y", "anna"), birth("z", "anna")
	c := NewClusterer(distinctMetric{step: 0.2})

	res := c.Resolve(neighbourhood("birth-birth", model.Triple{X: x, Y: y, Z: z}))

	require.Len(t, res.Families, 1)
	assert.Equal(t, []string{"x", "y", "z"}, res.Families[0].IDs())
	assert.Empty(t, res.Rejected)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, model.ActionCreate, res.Outcomes[0].Action)
	assert.Equal(t, "std-x", res.Outcomes[0].From.ID)
	assert.Equal(t, "std-z", res.Outcomes[0].To.ID)
}

func TestResolve_ThresholdMonotonicity(t *testing.T) {
	triple := model.Triple{X: birth("x", "a"), Y: birth("y", "b"), Z: birth("z", "c")}

	below := NewClusterer(fixedMetric(0.039)).Resolve(neighbourhood("birth-birth", triple))
	assert.Len(t, below.Accepted, 1)
	assert.Empty(t, below.Rejected)

	above := NewClusterer(fixedMetric(0.041)).Resolve(neighbourhood("birth-birth", triple))
	assert.Empty(t, above.Accepted)
	assert.Len(t, above.Rejected, 1)

	// Deaths use the tighter threshold.
	deaths := NewClusterer(fixedMetric(0.035)).Resolve(neighbourhood("death-death", triple))
	assert.Len(t, deaths.Rejected, 1)
}

func TestResolve_NamesAreNormalisedOnCopies(t *testing.T) {
	x, y, z := birth("x", "Anna"), birth("y", "A."), birth("z", "Anna")
	c := NewClusterer(distinctMetric{step: 0.2})

	res := c.Resolve(neighbourhood("birth-birth", model.Triple{X: x, Y: y, Z: z}))

	assert.Len(t, res.Accepted, 1)
	assert.Equal(t, "A.", y.Name[model.MotherForename])
}

func TestResolve_RejectedChainAgainstOtherFamilies(t *testing.T) {
	x := birth("x", "anna")
	y := birth("y", "anna")
	w := birth("w", "anna")
	z := birth("z", "karin")
	c := NewClusterer(distinctMetric{step: 0.2})

	res := c.Resolve(neighbourhood("birth-birth",
		model.Triple{X: x, Y: y, Z: w},
		model.Triple{X: x, Y: z, Z: w},
	))

	require.Len(t, res.Families, 1)
	assert.Equal(t, []string{"x", "y", "w"}, res.Families[0].IDs())
	require.Len(t, res.Rejected, 1)

	// x and w share the family, z is the middle record: no edge is singled out.
	for _, o := range res.Outcomes {
		assert.NotEqual(t, model.ActionReject, o.Action)
	}
}

func TestRepartition_StopsAtAbsoluteGate(t *testing.T) {
	c := NewClusterer(distinctMetric{step: 0.1})
	f := NewFamilySet(birth("1", "a"), birth("2", "a"), birth("3", "a"), birth("4", "c"))
	p, _ := model.PatternByName("birth-birth")

	subs := c.Repartition(f, p.Policy)

	require.Len(t, subs, 1)
	assert.Equal(t, []string{"1", "2", "3"}, subs[0].IDs())
}

func TestRepartition_MergesOverlappingTriples(t *testing.T) {
	c := NewClusterer(distinctMetric{step: 0.1})
	f := NewFamilySet(birth("1", "a"), birth("2", "a"), birth("3", "a"), birth("4", "a"))
	p, _ := model.PatternByName("birth-birth")

	subs := c.Repartition(f, p.Policy)

	require.Len(t, subs, 1)
	assert.ElementsMatch(t, []string{"1", "2", "3", "4"}, subs[0].IDs())
}

func TestRepartition_RelativeGrowthGate(t *testing.T) {
	distances := map[string]float64{"1|2|3": 0.002, "1|2|4": 0.0025, "1|3|4": 0.009, "2|3|4": 0.009}
	c := &Clusterer{Metric: lookup{d: distances}}
	f := NewFamilySet(birth("1", "1"), birth("2", "2"), birth("3", "3"), birth("4", "4"))
	p, _ := model.PatternByName("birth-birth")

	subs := c.Repartition(f, p.Policy)

	// 0.0025 is within 50% of 0.002; 0.009 is not and ends the scan.
	require.Len(t, subs, 1)
	assert.Equal(t, []string{"1", "2", "3", "4"}, subs[0].IDs())

	distances["1|2|4"] = 0.004
	subs = c.Repartition(f, p.Policy)
	require.Len(t, subs, 1)
	assert.Equal(t, []string{"1", "2", "3"}, subs[0].IDs())
}

func TestRepartition_GrowthFromZeroStops(t *testing.T) {
	distances := map[string]float64{"1|2|3": 0, "1|2|4": 0.009}
	c := &Clusterer{Metric: lookup{d: distances}}
	f := NewFamilySet(birth("1", "1"), birth("2", "2"), birth("3", "3"), birth("4", "4"))
	p, _ := model.PatternByName("birth-birth")

	subs := c.Repartition(f, p.Policy)

	require.Len(t, subs, 1)
	assert.Equal(t, []string{"1", "2", "3"}, subs[0].IDs())

	distances["1|2|4"] = 0
	subs = c.Repartition(f, p.Policy)
	require.Len(t, subs, 1)
	assert.Equal(t, []string{"1", "2", "3", "4"}, subs[0].IDs())
}

type lookup struct{ d map[string]float64 }

func (l lookup) Distance(values []string) float64 {
	key := ""
	for i, v := range values {
		if i > 0 {
			key += "|"
		}
		key += firstToken(v)
	}
	if d, ok := l.d[key]; ok {
		return d
	}
	return 1
}

func firstToken(s string) string {
	for i := range s {
		if s[i] == ' ' {
			return s[:i]
		}
	}
	return s
}

func TestFamilySet(t *testing.T) {
	f := NewFamilySet(birth("1", "a"), birth("1", "b"), birth("2", "c"))
	assert.Equal(t, 2, f.Len())
	assert.True(t, f.Contains("1"))
	assert.False(t, f.ContainsAny(birth("3", "a")))
	assert.Equal(t, "a", f.Members()[0].Names()[model.MotherForename])
}
