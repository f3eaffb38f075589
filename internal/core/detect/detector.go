// Package detect turns open-triangle query rows into bounded clusters.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"devt.de/krotik/common/errorutil"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cast"

	"github.com/agenthands/kinlink/internal/core/model"
	"github.com/agenthands/kinlink/internal/driver"
)

// DefaultMaxChains bounds the chains of one cluster.
const DefaultMaxChains = 360

var ErrUnexpectedShape = errors.New("unexpected open triangle row")

type Detector struct {
	Driver    driver.GraphDriver
	MaxChains int
}

func NewDetector(d driver.GraphDriver, maxChains int) *Detector {
	if maxChains <= 0 {
		maxChains = DefaultMaxChains
	}
	return &Detector{Driver: d, MaxChains: maxChains}
}

// Detect returns the open-triangle clusters of population for pattern.
// limit caps the number of apexes; zero means no cap. A malformed row only
// loses its own apex: the remaining clusters are returned together with a
// composite error naming every apex that failed.
func (d *Detector) Detect(ctx context.Context, pattern model.Pattern, population string, limit int) ([]model.Cluster, error) {
	params := map[string]interface{}{"population": population}
	if limit > 0 {
		params["limit"] = limit
	}
	query := driver.OpenTrianglesQuery(string(pattern.ApexKind), string(pattern.MiddleKind), pattern.Relation, limit > 0)

	result, err := d.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query open triangles for %s: %w", pattern.Name, err)
	}

	var clusters []model.Cluster
	ce := errorutil.NewCompositeError()
	for i, rec := range result.Records {
		apex, chains, err := parseRow(rec)
		if err != nil {
			slog.Warn("skipping apex", "pattern", pattern.Name, "row", i, "error", err)
			ce.Add(fmt.Errorf("row %d: %w", i, err))
			continue
		}
		clusters = append(clusters, model.Split(pattern, apex, chains, d.MaxChains)...)
	}

	slog.Info("detected open triangles", "pattern", pattern.Name, "apexes", len(result.Records), "clusters", len(clusters))
	if ce.HasErrors() {
		return clusters, ce
	}
	return clusters, nil
}

func parseRow(rec *neo4j.Record) (string, []model.Chain, error) {
	rawApex, ok := rec.Get("apex")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing apex", ErrUnexpectedShape)
	}
	apex, err := cast.ToStringE(rawApex)
	if err != nil || apex == "" {
		return "", nil, fmt.Errorf("%w: apex %v", ErrUnexpectedShape, rawApex)
	}

	rawChains, ok := rec.Get("chains")
	if !ok {
		return "", nil, fmt.Errorf("%w: apex %s has no chains", ErrUnexpectedShape, apex)
	}
	list, ok := rawChains.([]interface{})
	if !ok {
		return "", nil, fmt.Errorf("%w: apex %s chains are %T", ErrUnexpectedShape, apex, rawChains)
	}

	chains := make([]model.Chain, 0, len(list))
	for _, item := range list {
		pair, ok := item.([]interface{})
		if !ok || len(pair) != 2 {
			return "", nil, fmt.Errorf("%w: apex %s chain %v", ErrUnexpectedShape, apex, item)
		}
		y, errY := cast.ToStringE(pair[0])
		z, errZ := cast.ToStringE(pair[1])
		if errY != nil || errZ != nil || y == "" || z == "" {
			return "", nil, fmt.Errorf("%w: apex %s chain %v", ErrUnexpectedShape, apex, item)
		}
		chains = append(chains, model.Chain{Y: y, Z: z})
	}
	return apex, chains, nil
}
