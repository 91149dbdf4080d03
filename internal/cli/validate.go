package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commercelab/retail-dw/internal/pipeline"
	"github.com/commercelab/retail-dw/internal/staging"
)

var (
	validateOrders string
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run integrity checks over the raw extract without transforming",
	Long: `Validate reads the raw orders extract and reports null required keys,
duplicate row ids and order lines, out-of-range numeric values, and
distribution aggregates. The data is never modified; with --strict the
command exits non-zero when any violation is found.

Example:
  retail-dw validate --orders data/raw/orders.csv --strict`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateOrders, "orders", "",
		"path to the raw orders CSV")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"exit non-zero when any violation is reported")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateOrders != "" {
		cfg.Input.Orders = validateOrders
	}
	if cfg.Input.Orders == "" {
		return fmt.Errorf("orders path is required")
	}

	orders, err := staging.ReadOrders(cfg.Input.Orders)
	if err != nil {
		return err
	}

	report := pipeline.Validate(orders)
	report.Log()
	printReport(cmd, report)

	if validateStrict && report.Violations() > 0 {
		return fmt.Errorf("%d validation violations", report.Violations())
	}
	return nil
}

func printReport(cmd *cobra.Command, r *pipeline.Report) {
	cmd.Printf("Rows:                   %d\n", r.TotalRows)
	cmd.Printf("Null order_id:          %d\n", r.NullOrderID)
	cmd.Printf("Null row_id:            %d\n", r.NullRowID)
	cmd.Printf("Negative quantity:      %d\n", r.NegativeQuantity)
	cmd.Printf("Negative sales:         %d\n", r.NegativeSales)
	cmd.Printf("Negative profit:        %d\n", r.NegativeProfit)
	cmd.Printf("Discount out of [0,1]:  %d\n", r.DiscountOutOfRange)
	cmd.Printf("Null sales/qty/profit:  %d / %d / %d\n", r.NullSales, r.NullQuantity, r.NullProfit)

	if len(r.DuplicateRowIDs) > 0 {
		cmd.Printf("\nDuplicate row ids (top %d):\n", len(r.DuplicateRowIDs))
		for _, g := range r.DuplicateRowIDs {
			cmd.Printf("  row_id %-12s x%d\n", g.Key, g.Count)
		}
	}
	if len(r.DuplicateOrderLines) > 0 {
		cmd.Printf("\nDuplicate order lines (top %d):\n", len(r.DuplicateOrderLines))
		for _, g := range r.DuplicateOrderLines {
			cmd.Printf("  %-24s x%d\n", g.Key, g.Count)
		}
	}

	cmd.Println("\nRows / sales by category:")
	for _, g := range r.Categories {
		cmd.Printf("  %-20s %6d  %14.2f\n", g.Key, g.Rows, g.Sales)
	}
	cmd.Println("\nRows / sales by market:")
	for _, g := range r.Markets {
		cmd.Printf("  %-20s %6d  %14.2f\n", g.Key, g.Rows, g.Sales)
	}
}
