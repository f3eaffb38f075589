//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cast"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/driver"
)

func connect(t *testing.T) *driver.Neo4jDriver {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("Skipping integration test: NEO4J_URI not set")
	}
	d, err := driver.NewNeo4jDriver(uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"), os.Getenv("NEO4J_DATABASE"))
	require.NoError(t, err)
	require.NoError(t, d.BuildIndices(context.Background()))
	t.Cleanup(func() { d.Close(context.Background()) })
	return d
}

// population returns a fresh population ID whose nodes are removed when
// the test ends.
func population(t *testing.T, d driver.GraphDriver) string {
	pop := "it-" + uuid.New().String()
	t.Cleanup(func() {
		_, _ = d.ExecuteQuery(context.Background(),
			`MATCH (n {population: $population}) DETACH DELETE n`,
			map[string]interface{}{"population": pop})
	})
	return pop
}

func birth(pop, id, year string) *model.Birth {
	return &model.Birth{
		RecordID: pop + "-" + id, StdID: pop + "-std-" + id,
		Day: "1", Month: "5", Year: year,
		Name:                 model.Names{id, "macleod", "mary", "nicolson", "john", "macleod"},
		BirthPlace:           "portree",
		ParentsMarriagePlace: "snizort",
		ParentsMarriageDay:   "1",
		ParentsMarriageMonth: "6",
		ParentsMarriageYear:  "1870",
	}
}

func seedNode(t *testing.T, d driver.GraphDriver, pop string, r model.Record) {
	query := fmt.Sprintf(`CREATE (:%s {record_id: $id, standardised_id: $std, population: $population})`, r.Kind())
	_, err := d.ExecuteQuery(context.Background(), query, map[string]interface{}{
		"id": r.ID(), "std": r.StandardisedID(), "population": pop,
	})
	require.NoError(t, err)
}

func seedEdge(t *testing.T, d driver.GraphDriver, relation string, a, b model.Record) {
	query := fmt.Sprintf(`
		MATCH (a {standardised_id: $a}), (b {standardised_id: $b})
		CREATE (a)-[:%s]->(b)`, relation)
	_, err := d.ExecuteQuery(context.Background(), query, map[string]interface{}{
		"a": a.StandardisedID(), "b": b.StandardisedID(),
	})
	require.NoError(t, err)
}

func countEdges(t *testing.T, d driver.GraphDriver, relation, provenance string, a, b model.Record) int64 {
	query := fmt.Sprintf(`
		MATCH (a {standardised_id: $a})-[e:%s]-(b {standardised_id: $b})
		WHERE e.provenance = $provenance
		RETURN count(e) AS n`, relation)
	res, err := d.ExecuteQuery(context.Background(), query, map[string]interface{}{
		"a": a.StandardisedID(), "b": b.StandardisedID(), "provenance": provenance,
	})
	require.NoError(t, err)
	return scalar(t, res)
}

func scalar(t *testing.T, res neo4j.EagerResult) int64 {
	require.NotEmpty(t, res.Records)
	v, _ := res.Records[0].Get("n")
	n, err := cast.ToInt64E(v)
	require.NoError(t, err)
	return n
}
