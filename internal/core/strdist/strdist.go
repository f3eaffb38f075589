// Package strdist provides the string metrics used by the resolution engine.
package strdist

import (
	"math"
	"strings"

	"devt.de/krotik/common/stringutil"
)

// Metric compares two aligned lists of values and returns a distance in [0,1].
type Metric interface {
	Distance(a, b []string) float64
}

// MultisetMetric scores a group of strings as a whole, ignoring order.
type MultisetMetric interface {
	Distance(values []string) float64
}

// Levenshtein averages the length-normalised edit distance over aligned
// values. Missing positions compare as empty strings.
type Levenshtein struct{}

func (Levenshtein) Distance(a, b []string) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		total += normalised(at(a, i), at(b, i))
	}
	return total / float64(n)
}

func normalised(s, t string) float64 {
	if s == t {
		return 0
	}
	longest := len(s)
	if len(t) > longest {
		longest = len(t)
	}
	return float64(stringutil.LevenshteinDistance(s, t)) / float64(longest)
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// MSED is a multiset string distance: the Jensen-Shannon divergence of the
// character bigram distributions of all values, normalised by log2 of the
// number of values so that the result lies in [0,1].
type MSED struct{}

func (MSED) Distance(values []string) float64 {
	if len(values) < 2 || allEqual(values) {
		return 0
	}
	dists := make([]map[string]float64, len(values))
	mixture := make(map[string]float64)
	weight := 1 / float64(len(values))
	var meanEntropy float64
	for i, v := range values {
		dists[i] = bigrams(v)
		meanEntropy += weight * entropy(dists[i])
		for k, p := range dists[i] {
			mixture[k] += weight * p
		}
	}
	d := (entropy(mixture) - meanEntropy) / math.Log2(float64(len(values)))
	return math.Max(0, math.Min(1, d))
}

// Concat joins a record's linkage values into the single string MSED scores.
func Concat(values []string) string {
	return strings.Join(values, " ")
}

const (
	startMark = '\x02'
	endMark   = '\x03'
)

func bigrams(s string) map[string]float64 {
	runes := make([]rune, 0, len(s)+2)
	runes = append(runes, startMark)
	runes = append(runes, []rune(s)...)
	runes = append(runes, endMark)

	counts := make(map[string]float64, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		counts[string(runes[i:i+2])]++
	}
	total := float64(len(runes) - 1)
	for k := range counts {
		counts[k] /= total
	}
	return counts
}

func entropy(p map[string]float64) float64 {
	var h float64
	for _, v := range p {
		if v > 0 {
			h -= v * math.Log2(v)
		}
	}
	return h
}

func allEqual(values []string) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
