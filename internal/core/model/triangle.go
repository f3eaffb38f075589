package model

// Chain completes an open triangle with a cluster's apex. Y and Z are
// persistent record IDs.
type Chain struct {
	Y string
	Z string
}

// Cluster is an apex with a bounded, ordered list of chains.
type Cluster struct {
	Pattern Pattern
	Apex    string
	Chains  []Chain
}

// Split cuts chains into clusters of at most max chains sharing apex.
func Split(pattern Pattern, apex string, chains []Chain, max int) []Cluster {
	if max <= 0 {
		max = len(chains)
	}
	var clusters []Cluster
	for start := 0; start < len(chains); start += max {
		end := start + max
		if end > len(chains) {
			end = len(chains)
		}
		clusters = append(clusters, Cluster{Pattern: pattern, Apex: apex, Chains: chains[start:end]})
	}
	return clusters
}
