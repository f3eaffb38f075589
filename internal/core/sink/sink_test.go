package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/driver"
	"github.com/agenthands/kinlink/internal/metrics"
)

var (
	x = model.Endpoint{Kind: model.KindBirth, ID: "sx"}
	z = model.Endpoint{Kind: model.KindDeath, ID: "sz"}
)

func TestSink_CreateEdge(t *testing.T) {
	mockDriver := &driver.MockDriver{}
	m := metrics.NewMetrics(nil)
	s := New(mockDriver, "run-1", m)

	require.NoError(t, s.CreateEdge(context.Background(), x, z, model.RuleMSEDCreate))

	calls := mockDriver.Executed()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Query, "MATCH (a:Birth {standardised_id: $from})")
	assert.Contains(t, calls[0].Query, "MATCH (b:Death {standardised_id: $to})")
	assert.Contains(t, calls[0].Query, "MERGE (a)-[e:SIBLING {provenance: $provenance}]-(b)")
	assert.Equal(t, map[string]interface{}{
		"from":       "sx",
		"to":         "sz",
		"provenance": "msed-create",
		"actor":      "run-1",
	}, calls[0].Params)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Edges.WithLabelValues("msed-create", "create")))
}

func TestSink_ApplyIsIdempotent(t *testing.T) {
	mockDriver := &driver.MockDriver{}
	s := New(mockDriver, "run-1", nil)
	o := model.Outcome{Action: model.ActionReject, From: x, To: z, Rule: model.RuleMaxAgeRange}

	require.NoError(t, s.Apply(context.Background(), o))
	require.NoError(t, s.Apply(context.Background(), o))

	calls := mockDriver.Executed()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
	assert.Contains(t, calls[0].Query, "MERGE (a)-[e:DELETED {provenance: $provenance}]-(b)")
	assert.NotContains(t, calls[0].Query, "DELETE e")
}

func TestSink_Errors(t *testing.T) {
	mockDriver := &driver.MockDriver{Err: errors.New("connection reset")}
	m := metrics.NewMetrics(nil)
	s := New(mockDriver, "run-1", m)

	err := s.RejectEdge(context.Background(), x, z, model.RuleBirthplaceMode)
	assert.ErrorContains(t, err, "connection reset")
	assert.Len(t, mockDriver.Executed(), 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Edges.WithLabelValues("birthplace-mode", "reject")))

	err = s.Apply(context.Background(), model.Outcome{Action: "merge"})
	assert.Error(t, err)
}
