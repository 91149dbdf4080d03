//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/internal/metrics"
	"github.com/commercelab/retail-dw/internal/model"
	"github.com/commercelab/retail-dw/pkg/version"
)

// Publish loads the star model plus metric tables into the warehouse
// and swaps them live, all inside one transaction. A failure anywhere
// rolls back and leaves the previously published model untouched.
func Publish(ctx context.Context, pool *pgxpool.Pool, star *model.Star, tables *metrics.Tables) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := createBuildSchema(ctx, tx); err != nil {
		return err
	}
	if err := copyStar(ctx, tx, star); err != nil {
		return err
	}
	if tables != nil {
		if err := copyMetrics(ctx, tx, tables); err != nil {
			return err
		}
	}
	if err := writeRunInfo(ctx, tx, star); err != nil {
		return err
	}
	if err := swapSchemas(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit publish: %w", err)
	}

	logging.Info().
		Str("schema", LiveSchema).
		Int("facts", len(star.Facts)).
		Msg("Warehouse published")

	return nil
}

func copyStar(ctx context.Context, tx pgx.Tx, star *model.Star) error {
	dates := star.Dates
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"dim_date"},
		[]string{"date_key", "year", "quarter", "month", "day", "day_of_week", "is_weekend"},
		pgx.CopyFromSlice(len(dates), func(i int) ([]any, error) {
			d := dates[i]
			return []any{d.Date, d.Year, d.Quarter, d.Month, d.Day, d.DayOfWeek, d.Weekend}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load dim_date: %w", err)
	}

	customers := star.Customers
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"dim_customer"},
		[]string{"customer_id", "customer_name", "segment", "city", "state", "country", "postal_code", "market", "region"},
		pgx.CopyFromSlice(len(customers), func(i int) ([]any, error) {
			c := customers[i]
			return []any{c.CustomerID, c.Name, c.Segment, c.City, c.State, c.Country, c.PostalCode, c.Market, c.Region}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load dim_customer: %w", err)
	}

	products := star.Products
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"dim_product"},
		[]string{"product_id", "product_name", "category", "sub_category"},
		pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
			p := products[i]
			return []any{p.ProductID, p.Name, p.Category, p.SubCategory}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load dim_product: %w", err)
	}

	owners := star.Owners
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"dim_owner"},
		[]string{"region", "person"},
		pgx.CopyFromSlice(len(owners), func(i int) ([]any, error) {
			return []any{owners[i].Region, owners[i].Person}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load dim_owner: %w", err)
	}

	facts := star.Facts
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"fact_sales"},
		[]string{"row_id", "order_id", "order_date", "customer_id", "product_id", "region",
			"sales", "quantity", "discount", "profit", "shipping_cost", "profit_margin", "returned"},
		pgx.CopyFromSlice(len(facts), func(i int) ([]any, error) {
			f := facts[i]
			return []any{f.RowID, f.OrderID, f.OrderDate, f.CustomerID, f.ProductID, f.Region,
				f.Sales, f.Quantity, f.Discount, f.Profit, f.ShippingCost, f.ProfitMargin, f.Returned}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load fact_sales: %w", err)
	}

	return nil
}

func copyMetrics(ctx context.Context, tx pgx.Tx, t *metrics.Tables) error {
	growth := t.Growth
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"metric_monthly_trends"},
		[]string{"month", "revenue", "profit", "orders", "mom_pct", "yoy_pct", "cumulative_revenue"},
		pgx.CopyFromSlice(len(growth), func(i int) ([]any, error) {
			m := growth[i]
			return []any{m.Month, m.Revenue, m.Profit, m.Orders, m.MoMPct, m.YoYPct, m.CumulativeRevenue}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load metric_monthly_trends: %w", err)
	}

	prods := t.Products
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"metric_product_performance"},
		[]string{"product_id", "product_name", "category", "sub_category", "revenue", "profit", "margin_pct", "avg_discount", "units"},
		pgx.CopyFromSlice(len(prods), func(i int) ([]any, error) {
			p := prods[i]
			return []any{p.ProductID, p.Name, p.Category, p.SubCategory, p.Revenue, p.Profit, p.MarginPct, p.AvgDiscount, p.Units}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load metric_product_performance: %w", err)
	}

	cats := t.Categories
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"metric_category_share"},
		[]string{"category", "revenue", "share_pct", "cumulative_share_pct"},
		pgx.CopyFromSlice(len(cats), func(i int) ([]any, error) {
			c := cats[i]
			return []any{c.Category, c.Revenue, c.SharePct, c.CumulativeSharePct}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load metric_category_share: %w", err)
	}

	if t.Retention != nil {
		rfm := t.Retention.RFM
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"metric_customer_rfm"},
			[]string{"customer_id", "recency_days", "frequency", "monetary"},
			pgx.CopyFromSlice(len(rfm), func(i int) ([]any, error) {
				r := rfm[i]
				return []any{r.CustomerID, r.RecencyDays, r.Frequency, r.Monetary}, nil
			}),
		); err != nil {
			return fmt.Errorf("failed to load metric_customer_rfm: %w", err)
		}

		cohorts := t.Retention.Cohorts
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"metric_cohort_retention"},
			[]string{"cohort_month", "cohort_size", "retained_next_month", "retention_pct"},
			pgx.CopyFromSlice(len(cohorts), func(i int) ([]any, error) {
				c := cohorts[i]
				return []any{c.Month, c.Size, c.RetainedNextMonth, c.RetentionPct}, nil
			}),
		); err != nil {
			return fmt.Errorf("failed to load metric_cohort_retention: %w", err)
		}
	}

	regions := t.Regions
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"metric_regional_performance"},
		[]string{"region", "revenue", "profit", "margin_pct", "customers", "return_rate_pct"},
		pgx.CopyFromSlice(len(regions), func(i int) ([]any, error) {
			r := regions[i]
			return []any{r.Region, r.Revenue, r.Profit, r.MarginPct, r.Customers, r.ReturnRatePct}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load metric_regional_performance: %w", err)
	}

	repeatPct := 0.0
	if t.Retention != nil {
		repeatPct = t.Retention.RepeatPct
	}
	if _, err := tx.Exec(ctx, `
        INSERT INTO metric_kpi
            (total_revenue, total_profit, total_orders, total_customers, margin_pct, repeat_pct)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, t.KPI.TotalRevenue, t.KPI.TotalProfit, t.KPI.Orders, t.KPI.Customers, t.KPI.MarginPct, repeatPct); err != nil {
		return fmt.Errorf("failed to load metric_kpi: %w", err)
	}

	bands := t.Discounts
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"metric_discount_bands"},
		[]string{"discount", "orders", "revenue", "profit", "margin_pct"},
		pgx.CopyFromSlice(len(bands), func(i int) ([]any, error) {
			b := bands[i]
			return []any{b.Discount, b.Orders, b.Revenue, b.Profit, b.MarginPct}, nil
		}),
	); err != nil {
		return fmt.Errorf("failed to load metric_discount_bands: %w", err)
	}

	return nil
}

func writeRunInfo(ctx context.Context, tx pgx.Tx, star *model.Star) error {
	info := [][2]string{
		{"version", version.Short()},
		{"published_at", time.Now().UTC().Format(time.RFC3339)},
		{"fact_rows", fmt.Sprintf("%d", len(star.Facts))},
		{"dim_date_rows", fmt.Sprintf("%d", len(star.Dates))},
		{"dim_customer_rows", fmt.Sprintf("%d", len(star.Customers))},
		{"dim_product_rows", fmt.Sprintf("%d", len(star.Products))},
		{"dim_owner_rows", fmt.Sprintf("%d", len(star.Owners))},
	}
	for _, kv := range info {
		if _, err := tx.Exec(ctx,
			"INSERT INTO run_info (key, value) VALUES ($1, $2)", kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to save run info %s: %w", kv[0], err)
		}
	}
	return nil
}
