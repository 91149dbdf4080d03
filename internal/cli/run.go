package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/commercelab/retail-dw/internal/db"
	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/internal/metrics"
	"github.com/commercelab/retail-dw/internal/pipeline"
	"github.com/commercelab/retail-dw/internal/staging"
	"github.com/commercelab/retail-dw/internal/warehouse"
)

var (
	runOrders           string
	runReturns          string
	runPeople           string
	runDuplicatePolicy  string
	runFailOnViolations bool
	runExportDir        string
	runSkipWarehouse    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: validate, transform, derive, publish",
	Long: `Run reads the three raw extracts, validates them, rebuilds the star
schema and the derived metric tables from scratch, and publishes
everything to the warehouse in one atomic swap. A failed run leaves the
previously published model untouched.

Example:
  retail-dw run --connection "postgres://..." --orders data/raw/orders.csv`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runOrders, "orders", "",
		"path to the raw orders CSV")
	runCmd.Flags().StringVar(&runReturns, "returns", "",
		"path to the raw returns CSV")
	runCmd.Flags().StringVar(&runPeople, "people", "",
		"path to the raw territory ownership CSV")
	runCmd.Flags().StringVar(&runDuplicatePolicy, "duplicate-policy", "",
		"duplicate natural key policy: first (deterministic tie-break) or fail")
	runCmd.Flags().BoolVar(&runFailOnViolations, "fail-on-violations", false,
		"abort the run when the validator reports any violation")
	runCmd.Flags().StringVar(&runExportDir, "export-dir", "",
		"also export metric tables as CSV files to this directory")
	runCmd.Flags().BoolVar(&runSkipWarehouse, "skip-warehouse", false,
		"compute everything but do not publish to PostgreSQL (dry run)")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if runOrders != "" {
		cfg.Input.Orders = runOrders
	}
	if runReturns != "" {
		cfg.Input.Returns = runReturns
	}
	if runPeople != "" {
		cfg.Input.People = runPeople
	}
	if runDuplicatePolicy != "" {
		cfg.Run.DuplicatePolicy = runDuplicatePolicy
	}
	if runFailOnViolations {
		cfg.Run.FailOnViolations = true
	}
	if runExportDir != "" {
		cfg.Run.ExportDir = runExportDir
	}
	if runSkipWarehouse {
		cfg.Run.SkipWarehouse = true
	}

	if err := cfg.ValidateRun(); err != nil {
		return err
	}
	policy, err := pipeline.ParsePolicy(cfg.Run.DuplicatePolicy)
	if err != nil {
		return err
	}

	orders, err := staging.ReadOrders(cfg.Input.Orders)
	if err != nil {
		return err
	}
	returns, err := staging.ReadReturns(cfg.Input.Returns)
	if err != nil {
		return err
	}
	ownership, err := staging.ReadOwnership(cfg.Input.People)
	if err != nil {
		return err
	}

	logging.Info().
		Int("orders", len(orders)).
		Int("returns", len(returns)).
		Int("ownership", len(ownership)).
		Msg("Raw extract loaded")

	ctx := context.Background()
	p := pipeline.New(policy)
	result, err := p.Run(ctx, pipeline.Input{
		Orders:    orders,
		Returns:   returns,
		Ownership: ownership,
	})
	if err != nil {
		return err
	}

	if cfg.Run.FailOnViolations && result.Report.Violations() > 0 {
		return fmt.Errorf("aborting: validator reported %d violations", result.Report.Violations())
	}

	tables, err := metrics.Compute(ctx, &result.Star)
	if err != nil {
		return fmt.Errorf("metric derivation failed: %w", err)
	}

	if cfg.Run.ExportDir != "" {
		if err := publishCSV(cfg.Run.ExportDir, tables); err != nil {
			return err
		}
	}

	if cfg.Run.SkipWarehouse {
		logging.Info().Msg("Dry run complete, warehouse publish skipped")
		return nil
	}

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer pool.Close()

	if err := publishWarehouse(ctx, pool, result, tables); err != nil {
		return err
	}

	logging.Info().
		Int("fact_rows", result.Summary.FactRows).
		Int("returned_rows", result.Summary.ReturnedRows).
		Msg("Pipeline run complete")

	return nil
}

func publishCSV(dir string, tables *metrics.Tables) error {
	if err := warehouse.ExportMetricsCSV(dir, tables); err != nil {
		return fmt.Errorf("metric export failed: %w", err)
	}
	return nil
}

func publishWarehouse(ctx context.Context, pool *pgxpool.Pool, result *pipeline.Result, tables *metrics.Tables) error {
	if err := warehouse.Publish(ctx, pool, &result.Star, tables); err != nil {
		return fmt.Errorf("warehouse publish failed: %w", err)
	}
	return nil
}
