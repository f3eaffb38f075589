// Package app wires configuration into a ready engine for the commands.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/agenthands/kinlink/internal/config"
	"github.com/agenthands/kinlink/internal/core"
	"github.com/agenthands/kinlink/internal/core/record"
	"github.com/agenthands/kinlink/internal/driver"
	"github.com/agenthands/kinlink/internal/metrics"
)

type App struct {
	Config   *config.Config
	Driver   driver.GraphDriver
	Engine   *core.Engine
	Registry *prometheus.Registry
}

// New connects to the graph and the record database and builds the engine.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	d, err := driver.NewNeo4jDriver(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	sqlStore, err := record.Open(cfg.Records.Driver, cfg.Records.DSN)
	if err != nil {
		_ = d.Close(ctx)
		return nil, err
	}
	var store record.Store = sqlStore
	if cfg.Records.CacheSize > 0 {
		store = record.NewCachedStore(sqlStore, cfg.Records.CacheSize)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, err := core.NewEngine(d, store, cfg, metrics.NewMetrics(reg))
	if err != nil {
		_ = d.Close(ctx)
		return nil, err
	}
	if err := engine.BuildIndices(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("failed to build indices: %w", err)
	}

	return &App{Config: cfg, Driver: d, Engine: engine, Registry: reg}, nil
}

func (a *App) Close(ctx context.Context) error {
	return a.Driver.Close(ctx)
}
