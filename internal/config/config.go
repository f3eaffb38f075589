package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"

	"github.com/agenthands/kinlink/internal/core/model"
)

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type RecordsConfig struct {
	Driver    string `toml:"driver"`
	DSN       string `toml:"dsn"`
	CacheSize uint64 `toml:"cache_size"`
}

type SchedulerConfig struct {
	Workers  int    `toml:"workers"`
	Deadline string `toml:"deadline"`
}

type DetectionConfig struct {
	MaxChains int      `toml:"max_chains"`
	Patterns  []string `toml:"patterns"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Neo4j     Neo4jConfig                     `toml:"neo4j"`
	Records   RecordsConfig                   `toml:"records"`
	Scheduler SchedulerConfig                 `toml:"scheduler"`
	Detection DetectionConfig                 `toml:"detection"`
	Log       LogConfig                       `toml:"log"`
	Server    ServerConfig                    `toml:"server"`
	Policy    map[string]model.PolicyOverride `toml:"policy"`
}

// Default returns the reference configuration. Every built-in pattern runs
// with its own policy.
func Default() *Config {
	return &Config{
		Neo4j:     Neo4jConfig{URI: "bolt://localhost:7687", User: "neo4j", Database: "neo4j"},
		Records:   RecordsConfig{Driver: "sqlite", DSN: "records.db", CacheSize: 100000},
		Scheduler: SchedulerConfig{Deadline: "12h"},
		Detection: DetectionConfig{MaxChains: 360},
		Log:       LogConfig{Level: "info", Format: "text"},
		Server:    ServerConfig{Port: "8080"},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if _, err := cfg.Patterns(); err != nil {
		return nil, err
	}
	if _, err := cfg.Deadline(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "config/config.toml"

// FromEnv loads the file named by CONFIG_PATH, falling back to the
// defaults when no file exists, and applies the environment on top.
func FromEnv() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("no config file, using defaults", "path", path)
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides file values with the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		c.Neo4j.User = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Neo4j.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		c.Neo4j.Database = v
	}
	if v := os.Getenv("RECORDS_DSN"); v != "" {
		c.Records.DSN = v
	}
	if v := os.Getenv("SCHEDULER_WORKERS"); v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			c.Scheduler.Workers = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}

// Deadline parses the scheduler deadline.
func (c *Config) Deadline() (time.Duration, error) {
	if c.Scheduler.Deadline == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Scheduler.Deadline)
	if err != nil {
		return 0, fmt.Errorf("invalid scheduler deadline %q: %w", c.Scheduler.Deadline, err)
	}
	return d, nil
}

// Patterns resolves the configured patterns with their policy overrides
// applied. An empty list selects every built-in pattern.
func (c *Config) Patterns() ([]model.Pattern, error) {
	for name := range c.Policy {
		if _, ok := model.PatternByName(name); !ok {
			return nil, fmt.Errorf("policy for unknown pattern %q", name)
		}
	}

	var patterns []model.Pattern
	if len(c.Detection.Patterns) == 0 {
		patterns = model.BuiltinPatterns()
	} else {
		for _, name := range c.Detection.Patterns {
			p, ok := model.PatternByName(name)
			if !ok {
				return nil, fmt.Errorf("unknown pattern %q", name)
			}
			patterns = append(patterns, p)
		}
	}

	for i, p := range patterns {
		if o, ok := c.Policy[p.Name]; ok {
			patterns[i].Policy = p.Policy.Merge(o)
		}
	}
	return patterns, nil
}
