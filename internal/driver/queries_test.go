package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenTrianglesQuery(t *testing.T) {
	q := OpenTrianglesQuery("Birth", "Death", "SIBLING", false)

	assert.Contains(t, q, "(x:Birth {population: $population})-[:SIBLING]-(y:Death)-[:SIBLING]-(z:Birth)")
	assert.Contains(t, q, "NOT (x)-[:DELETED]-(y)")
	assert.NotContains(t, q, "$limit")

	assert.Contains(t, OpenTrianglesQuery("Birth", "Birth", "SIBLING", true), "LIMIT $limit")
}

func TestMergeEdgeQuery(t *testing.T) {
	q := MergeEdgeQuery("Birth", "Death", "DELETED")

	assert.Contains(t, q, "MATCH (a:Birth {standardised_id: $from})")
	assert.Contains(t, q, "MATCH (b:Death {standardised_id: $to})")
	assert.Contains(t, q, "MERGE (a)-[e:DELETED {provenance: $provenance}]-(b)")
	assert.Contains(t, q, "SET e.actor = $actor")
}

func TestIndexQueries(t *testing.T) {
	qs := IndexQueries()
	assert.Len(t, qs, 9)
	assert.Contains(t, qs, "CREATE INDEX Birth_standardised_id IF NOT EXISTS FOR (n:Birth) ON (n.standardised_id)")
}
