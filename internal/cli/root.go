// Package cli wires the claude-usage commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-usage/internal/app"
	"github.com/emiliopalmerini/claude-usage/internal/sheets"
	"github.com/emiliopalmerini/claude-usage/internal/stats"
	"github.com/emiliopalmerini/claude-usage/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "claude-usage",
	Short: "Usage telemetry aggregation for Claude Code",
	Long: `claude-usage ingests Claude Code telemetry (OTLP metrics and logs),
persists it as per-day event logs, and computes daily, hourly, weekly and
monthly usage statistics: token counts, dollar cost, tool success rates
and top-tool usage.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// deps bundles what every command needs. closeStore is non-nil when the
// summary store holds a connection.
type deps struct {
	cfg        *app.Config
	store      *store.Store
	aggregator *stats.Aggregator
	sheet      sheets.RowStore
	closeStore func() error
}

func buildDeps() (*deps, error) {
	cfg, err := app.New()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st := store.New(cfg.DataDir)
	agg := stats.New(st)

	sheet, closeStore, err := cfg.SummaryStore()
	if err != nil {
		return nil, fmt.Errorf("open summary store: %w", err)
	}
	if sheet != nil {
		agg = agg.WithSummarySource(sheet)
	}

	return &deps{
		cfg:        cfg,
		store:      st,
		aggregator: agg,
		sheet:      sheet,
		closeStore: closeStore,
	}, nil
}

func (d *deps) close() {
	if d.closeStore != nil {
		if err := d.closeStore(); err != nil {
			fmt.Fprintf(os.Stderr, "closing summary store: %v\n", err)
		}
	}
}
