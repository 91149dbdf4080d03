package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commercelab/retail-dw/internal/db"
	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/internal/metrics"
	"github.com/commercelab/retail-dw/internal/warehouse"
)

var (
	metricsExportDir string
	metricsTopRegion string
	metricsTopStates int
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Recompute metric tables from the published model",
	Long: `Metrics reads the published star schema back from the warehouse,
recomputes the derived metric tables, and exports them as CSV files.
Useful for ad-hoc exports without re-running the transformation.

With --top-region the top states within that region are printed as
well.

Example:
  retail-dw metrics --connection "postgres://..." --export-dir data/processed
  retail-dw metrics --connection "postgres://..." --top-region East --top-states 5`,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().StringVar(&metricsExportDir, "export-dir", "",
		"directory to export metric CSV files into")
	metricsCmd.Flags().StringVar(&metricsTopRegion, "top-region", "",
		"region to print the top states for")
	metricsCmd.Flags().IntVar(&metricsTopStates, "top-states", 10,
		"how many states to print for --top-region")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateMetrics(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer pool.Close()

	if info, err := warehouse.LastRunInfo(ctx, pool); err == nil {
		logging.Info().
			Str("published_at", info["published_at"]).
			Str("fact_rows", info["fact_rows"]).
			Msg("Published model found")
	}

	star, err := warehouse.ReadStar(ctx, pool)
	if err != nil {
		return err
	}

	tables, err := metrics.Compute(ctx, star)
	if err != nil {
		return fmt.Errorf("metric derivation failed: %w", err)
	}

	if metricsExportDir != "" {
		if err := warehouse.ExportMetricsCSV(metricsExportDir, tables); err != nil {
			return fmt.Errorf("metric export failed: %w", err)
		}
	}

	if metricsTopRegion != "" {
		top := metrics.TopStates(star.Facts, star.Customers, metricsTopRegion, metricsTopStates)
		cmd.Printf("Top states in %s by revenue:\n", metricsTopRegion)
		for i, s := range top {
			cmd.Printf("  %2d. %-24s %14.2f (%d orders)\n", i+1, s.State, s.Revenue, s.Orders)
		}
	}

	cmd.Printf("Revenue: %.2f  Profit: %.2f  Orders: %d  Customers: %d  Repeat: %.2f%%\n",
		tables.KPI.TotalRevenue, tables.KPI.TotalProfit,
		tables.KPI.Orders, tables.KPI.Customers, tables.Retention.RepeatPct)

	return nil
}
