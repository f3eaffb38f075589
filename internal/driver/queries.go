package driver

import "fmt"

// Node properties written by the upstream matcher.
const (
	PropRecordID       = "record_id"
	PropStandardisedID = "standardised_id"
	PropPopulation     = "population"
)

// Labels of the nodes that carry vital records.
var RecordLabels = []string{"Birth", "Death", "Marriage"}

// Ground-truth overlay used for efficacy counts only.
const RelationGroundTruth = "GROUND_TRUTH"

// IndexQueries returns the index statements for every record label.
func IndexQueries() []string {
	var queries []string
	for _, label := range RecordLabels {
		for _, prop := range []string{PropStandardisedID, PropRecordID, PropPopulation} {
			queries = append(queries, fmt.Sprintf(
				"CREATE INDEX %[1]s_%[2]s IF NOT EXISTS FOR (n:%[1]s) ON (n.%[2]s)", label, prop))
		}
	}
	return queries
}

// OpenTrianglesQuery finds, per apex, the chains (y, z) where apex-y and
// y-z are linked, apex-z is not, and no edge of the triangle is
// tombstoned. Labels cannot be parameters so they are formatted in.
func OpenTrianglesQuery(apexLabel, middleLabel, relation string, limited bool) string {
	q := fmt.Sprintf(`
		MATCH (x:%[1]s {population: $population})-[:%[3]s]-(y:%[2]s)-[:%[3]s]-(z:%[1]s)
		WHERE x <> z
			AND NOT (x)-[:%[3]s]-(z)
			AND NOT (x)-[:DELETED]-(y)
			AND NOT (y)-[:DELETED]-(z)
			AND NOT (x)-[:DELETED]-(z)
		WITH x, collect(DISTINCT [y.record_id, z.record_id]) AS chains
		RETURN x.record_id AS apex, chains
		ORDER BY apex`, apexLabel, middleLabel, relation)
	if limited {
		q += `
		LIMIT $limit`
	}
	return q
}

// MergeEdgeQuery idempotently links two records with an edge keyed by the
// deciding rule, and stamps it with the run that last applied it.
func MergeEdgeQuery(fromLabel, toLabel, relation string) string {
	return fmt.Sprintf(`
		MATCH (a:%[1]s {standardised_id: $from})
		MATCH (b:%[2]s {standardised_id: $to})
		MERGE (a)-[e:%[3]s {provenance: $provenance}]-(b)
		ON CREATE SET e.created_at = datetime()
		SET e.actor = $actor
		RETURN count(e) AS edges`, fromLabel, toLabel, relation)
}

const (
	CountEdgesQuery = `
		MATCH (a {population: $population})-[e]-(b)
		WHERE type(e) = $relation AND elementId(a) < elementId(b)
		RETURN count(e) AS n
	`

	CountOpenTrianglesQuery = `
		MATCH (x {population: $population})-[:SIBLING]-(y)-[:SIBLING]-(z)
		WHERE elementId(x) < elementId(z)
			AND NOT (x)-[:SIBLING]-(z)
			AND NOT (x)-[:DELETED]-(y)
			AND NOT (y)-[:DELETED]-(z)
			AND NOT (x)-[:DELETED]-(z)
		RETURN count(*) AS n
	`

	RuleEfficacyQuery = `
		MATCH (a)-[e]-(b)
		WHERE e.actor = $actor AND elementId(a) < elementId(b)
		RETURN e.provenance AS rule,
			type(e) AS relation,
			count(e) AS total,
			sum(CASE WHEN EXISTS { (a)-[:GROUND_TRUTH]-(b) } THEN 1 ELSE 0 END) AS truth
	`
)
