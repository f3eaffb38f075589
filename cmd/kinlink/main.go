// Package main runs one open-triangle resolution pass from the command line.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/kinlink/internal/app"
	"github.com/agenthands/kinlink/internal/config"
	"github.com/agenthands/kinlink/internal/core"
	"github.com/agenthands/kinlink/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinlink <population> <EVERYTHING|limit>",
		Short: "Resolve open sibling triangles in a population",
		Long: `kinlink detects open triangles among the sibling links of one population,
resolves them with family clustering and a predicate cascade, and writes the
decisions back to the graph as provenance-tagged edges.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	if err := rootCmd.Execute(); err != nil {
		slog.Error("kinlink failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	limit, err := core.ParseLimit(args[1])
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	summary, err := a.Engine.Run(ctx, args[0], limit)
	if err != nil {
		slog.Warn("run finished with errors", "error", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
