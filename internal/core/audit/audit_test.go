package audit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kinlink/internal/driver"
)

func count(n int64) neo4j.EagerResult {
	return neo4j.EagerResult{Records: []*neo4j.Record{driver.NewRecord([]string{"n"}, n)}}
}

func TestAuditor_Summary(t *testing.T) {
	efficacyKeys := []string{"rule", "relation", "total", "truth"}
	after := false
	mockDriver := &driver.MockDriver{
		Handler: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
			switch {
			case query == driver.RuleEfficacyQuery:
				return neo4j.EagerResult{Records: []*neo4j.Record{
					driver.NewRecord(efficacyKeys, "msed-reject", "DELETED", int64(4), int64(1)),
					driver.NewRecord(efficacyKeys, "date-match-create", "SIBLING", int64(3), int64(2)),
				}}, nil
			case query == driver.CountOpenTrianglesQuery:
				if after {
					return count(1), nil
				}
				return count(7), nil
			case strings.Contains(query, "type(e) = $relation"):
				if params["relation"] == "DELETED" {
					return count(4), nil
				}
				return count(10), nil
			}
			return neo4j.EagerResult{}, errors.New("unexpected query")
		},
	}
	a := NewAuditor(mockDriver)

	s := a.Start(context.Background(), "run-1", "skye")
	after = true
	a.Summarise(context.Background(), s)

	assert.Empty(t, s.Errors)
	assert.Equal(t, Counts{SiblingEdges: 10, Tombstones: 4, OpenTriangles: 7}, s.Before)
	assert.Equal(t, int64(1), s.After.OpenTriangles)
	require.Len(t, s.Rules, 2)
	assert.Equal(t, RuleEfficacy{Rule: "date-match-create", Relation: "SIBLING", Total: 3, TruePositive: 2, FalsePositive: 1}, s.Rules[0])
	assert.Equal(t, RuleEfficacy{Rule: "msed-reject", Relation: "DELETED", Total: 4, TruePositive: 3, FalsePositive: 1}, s.Rules[1])
	assert.False(t, s.Finished.IsZero())

	for _, c := range mockDriver.Executed() {
		if c.Query == driver.RuleEfficacyQuery {
			assert.Equal(t, "run-1", c.Params["actor"])
		}
	}
}

func TestAuditor_BestEffort(t *testing.T) {
	mockDriver := &driver.MockDriver{Err: errors.New("graph unavailable")}
	a := NewAuditor(mockDriver)

	s := a.Start(context.Background(), "run-1", "skye")
	a.Summarise(context.Background(), s)

	assert.Equal(t, Counts{}, s.Before)
	assert.Len(t, s.Errors, 7)
	assert.Empty(t, s.Rules)
}
