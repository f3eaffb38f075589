// Package stats aggregates the per-cluster figures the resolution rules
// compare individual records against.
package stats

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/agenthands/kinlink/internal/core/model"
)

// UnknownYear is the year average of a cluster with no dated records.
const UnknownYear = 0

type PlaceCount struct {
	Place string
	Count int
}

// Statistics is derived from one cluster and read-only once computed.
type Statistics struct {
	// Seen holds the IDs of every distinct record in the cluster.
	Seen map[string]struct{}
	// Years holds each record's best-guess birth year.
	Years map[string]int
	// BirthDates indexes records whose birth month is known.
	BirthDates map[string]model.Date

	YearTotal   int
	YearCount   int
	YearAverage float64
	YearMedian  float64
	AgeRange    int
	SortedDates []model.Date

	Places    []PlaceCount
	ModePlace string
}

// Children is the number of distinct records in the cluster.
func (s *Statistics) Children() int {
	return len(s.Seen)
}

// Compute folds the records of every triple, in order, into a fresh
// Statistics value. Records already seen are skipped.
func Compute(triples []model.Triple) *Statistics {
	s := &Statistics{
		Seen:        make(map[string]struct{}),
		Years:       make(map[string]int),
		BirthDates:  make(map[string]model.Date),
		YearAverage: UnknownYear,
	}
	places := make(map[string]int)
	for _, t := range triples {
		for _, r := range t.Records() {
			if r == nil {
				continue
			}
			if _, ok := s.Seen[r.ID()]; ok {
				continue
			}
			s.Seen[r.ID()] = struct{}{}
			s.addYear(r)
			s.addPlace(r, places)
		}
	}
	s.finish()
	return s
}

func (s *Statistics) addYear(r model.Record) {
	d := r.BirthDate()
	year := d.Year
	if !d.HasYear() {
		if s.YearCount == 0 {
			return
		}
		year = int(math.Round(s.YearAverage))
	}
	s.YearTotal += year
	s.YearCount++
	s.YearAverage = float64(s.YearTotal) / float64(s.YearCount)
	s.Years[r.ID()] = year

	if d.HasYear() && d.HasMonth() {
		if !d.HasDay() {
			d.Day = 1
		}
		s.BirthDates[r.ID()] = d
	}
}

func (s *Statistics) addPlace(r model.Record, index map[string]int) {
	place := strings.TrimSpace(r.Place())
	if model.IsMissing(place) {
		return
	}
	if i, ok := index[place]; ok {
		s.Places[i].Count++
		return
	}
	index[place] = len(s.Places)
	s.Places = append(s.Places, PlaceCount{Place: place, Count: 1})
}

func (s *Statistics) finish() {
	for _, d := range s.BirthDates {
		s.SortedDates = append(s.SortedDates, d)
	}
	sort.Slice(s.SortedDates, func(i, j int) bool {
		return s.SortedDates[i].Compare(s.SortedDates[j]) < 0
	})

	n := len(s.SortedDates)
	switch {
	case n == 0:
		s.AgeRange = 0
		s.YearMedian = s.YearAverage
	case n%2 == 1:
		s.AgeRange = s.SortedDates[n-1].Year - s.SortedDates[0].Year
		s.YearMedian = float64(s.SortedDates[n/2].Year)
	default:
		s.AgeRange = s.SortedDates[n-1].Year - s.SortedDates[0].Year
		s.YearMedian = float64(s.SortedDates[n/2-1].Year+s.SortedDates[n/2].Year) / 2
	}

	best := 0
	for _, pc := range s.Places {
		if pc.Count > best {
			best = pc.Count
			s.ModePlace = pc.Place
		}
	}
}

// Neighbourhood is a cluster with its records loaded. Its statistics are
// computed on first use and shared by every pass over the cluster.
type Neighbourhood struct {
	Cluster model.Cluster
	Triples []model.Triple

	once  sync.Once
	stats *Statistics
}

func NewNeighbourhood(c model.Cluster, triples []model.Triple) *Neighbourhood {
	return &Neighbourhood{Cluster: c, Triples: triples}
}

func (n *Neighbourhood) Statistics() *Statistics {
	n.once.Do(func() {
		n.stats = Compute(n.Triples)
	})
	return n.stats
}

func (n *Neighbourhood) Policy() model.Policy {
	return n.Cluster.Pattern.Policy
}
