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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/internal/metrics"
)

// ExportMetricsCSV writes every metric table as a CSV file under dir,
// one file per table, for the BI layer.
func ExportMetricsCSV(dir string, t *metrics.Tables) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	kpiRows := [][]string{{
		fmtFloat(t.KPI.TotalRevenue), fmtFloat(t.KPI.TotalProfit),
		strconv.Itoa(t.KPI.Orders), strconv.Itoa(t.KPI.Customers),
		fmtFloatPtr(t.KPI.MarginPct), fmtFloat(t.Retention.RepeatPct),
	}}
	if err := writeCSV(dir, "kpi_overview.csv",
		[]string{"total_revenue", "total_profit", "total_orders", "total_customers", "margin_pct", "repeat_pct"},
		kpiRows); err != nil {
		return err
	}

	growthRows := make([][]string, len(t.Growth))
	for i, m := range t.Growth {
		growthRows[i] = []string{
			fmtMonth(m.Month), fmtFloat(m.Revenue), fmtFloat(m.Profit),
			strconv.Itoa(m.Orders), fmtFloatPtr(m.MoMPct), fmtFloatPtr(m.YoYPct),
			fmtFloat(m.CumulativeRevenue),
		}
	}
	if err := writeCSV(dir, "monthly_sales_trends.csv",
		[]string{"month", "revenue", "profit", "orders", "mom_pct", "yoy_pct", "cumulative_revenue"},
		growthRows); err != nil {
		return err
	}

	prodRows := make([][]string, len(t.Products))
	for i, p := range t.Products {
		prodRows[i] = []string{
			p.ProductID, p.Name, p.Category, p.SubCategory,
			fmtFloat(p.Revenue), fmtFloat(p.Profit), fmtFloatPtr(p.MarginPct),
			fmtFloat(p.AvgDiscount), strconv.FormatInt(p.Units, 10),
		}
	}
	if err := writeCSV(dir, "product_performance.csv",
		[]string{"product_id", "product_name", "category", "sub_category", "revenue", "profit", "margin_pct", "avg_discount", "units"},
		prodRows); err != nil {
		return err
	}

	catRows := make([][]string, len(t.Categories))
	for i, c := range t.Categories {
		catRows[i] = []string{c.Category, fmtFloat(c.Revenue), fmtFloat(c.SharePct), fmtFloat(c.CumulativeSharePct)}
	}
	if err := writeCSV(dir, "category_share.csv",
		[]string{"category", "revenue", "share_pct", "cumulative_share_pct"},
		catRows); err != nil {
		return err
	}

	rfmRows := make([][]string, len(t.Retention.RFM))
	for i, r := range t.Retention.RFM {
		recency := ""
		if r.RecencyDays != nil {
			recency = strconv.Itoa(*r.RecencyDays)
		}
		rfmRows[i] = []string{r.CustomerID, recency, strconv.Itoa(r.Frequency), fmtFloat(r.Monetary)}
	}
	if err := writeCSV(dir, "customer_rfm.csv",
		[]string{"customer_id", "recency_days", "frequency", "monetary"},
		rfmRows); err != nil {
		return err
	}

	cohortRows := make([][]string, len(t.Retention.Cohorts))
	for i, c := range t.Retention.Cohorts {
		cohortRows[i] = []string{
			fmtMonth(c.Month), strconv.Itoa(c.Size),
			strconv.Itoa(c.RetainedNextMonth), fmtFloat(c.RetentionPct),
		}
	}
	if err := writeCSV(dir, "cohort_retention.csv",
		[]string{"cohort_month", "cohort_size", "retained_next_month", "retention_pct"},
		cohortRows); err != nil {
		return err
	}

	regionRows := make([][]string, len(t.Regions))
	for i, r := range t.Regions {
		regionRows[i] = []string{
			r.Region, fmtFloat(r.Revenue), fmtFloat(r.Profit),
			fmtFloatPtr(r.MarginPct), strconv.Itoa(r.Customers), fmtFloat(r.ReturnRatePct),
		}
	}
	if err := writeCSV(dir, "regional_performance.csv",
		[]string{"region", "revenue", "profit", "margin_pct", "customers", "return_rate_pct"},
		regionRows); err != nil {
		return err
	}

	bandRows := make([][]string, len(t.Discounts))
	for i, b := range t.Discounts {
		bandRows[i] = []string{
			fmtFloat(b.Discount), strconv.Itoa(b.Orders),
			fmtFloat(b.Revenue), fmtFloat(b.Profit), fmtFloatPtr(b.MarginPct),
		}
	}
	if err := writeCSV(dir, "discount_profitability.csv",
		[]string{"discount", "orders", "revenue", "profit", "margin_pct"},
		bandRows); err != nil {
		return err
	}

	logging.Info().Str("dir", dir).Msg("Metric tables exported")
	return nil
}

func writeCSV(dir, name string, header []string, rows [][]string) error {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	logging.Debug().
		Str("file", name).
		Int("rows", len(rows)).
		Msg("Exported metric table")
	return nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

func fmtMonth(t time.Time) string {
	return t.Format("2006-01-02")
}
