package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-usage/internal/otel"
	"github.com/emiliopalmerini/claude-usage/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stats API server",
	Long: `Start the statistics and export API.

Examples:
  claude-usage serve             # listen on ADDR (default :8080)`,
	RunE: runServe,
}

var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Start the OTLP telemetry receiver",
	Long: `Start the OTLP/HTTP receiver that appends incoming Claude Code
telemetry to the per-day event logs.

Examples:
  claude-usage receive           # listen on OTLP_ADDR (default :4318)`,
	RunE: runReceive,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(receiveCmd)
}

// signalContext cancels on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nshutting down...")
		cancel()
	}()
	return ctx, cancel
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := signalContext()
	defer cancel()

	server := web.NewServer(d.cfg.Addr, d.aggregator, d.store, d.cfg.MaxRangeDays)
	return server.Start(ctx)
}

func runReceive(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := signalContext()
	defer cancel()

	server := otel.NewServer(d.store, d.cfg.OTLPAddr)
	return server.Start(ctx)
}
