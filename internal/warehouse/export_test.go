package warehouse

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/commercelab/retail-dw/internal/metrics"
)

func f64(v float64) *float64 { return &v }

func TestExportMetricsCSV(t *testing.T) {
	dir := t.TempDir()
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	recency := 3

	tables := &metrics.Tables{
		Growth: []metrics.MonthlyTrend{
			{Month: jan, Revenue: 100, Profit: 10, Orders: 2, CumulativeRevenue: 100},
			{Month: jan.AddDate(0, 1, 0), Revenue: 150, Profit: 20, Orders: 3, MoMPct: f64(50), CumulativeRevenue: 250},
		},
		Products: []metrics.ProductProfitability{
			{ProductID: "PR-1", Name: "Desk Lamp", Category: "Furniture", Revenue: 250, Profit: 50, MarginPct: f64(20), Units: 5},
		},
		Categories: []metrics.CategoryShare{
			{Category: "Furniture", Revenue: 250, SharePct: 100, CumulativeSharePct: 100},
		},
		Retention: &metrics.RetentionReport{
			RFM:       []metrics.CustomerRFM{{CustomerID: "CU-1", RecencyDays: &recency, Frequency: 2, Monetary: 250}},
			RepeatPct: 50,
			Cohorts:   []metrics.Cohort{{Month: jan, Size: 2, RetainedNextMonth: 1, RetentionPct: 50}},
		},
		Regions: []metrics.RegionPerformance{
			{Region: "East", Revenue: 250, Profit: 50, MarginPct: f64(20), Customers: 2, ReturnRatePct: 0},
		},
		KPI:       metrics.KPI{TotalRevenue: 250, TotalProfit: 50, Orders: 5, Customers: 2, MarginPct: f64(20)},
		Discounts: []metrics.DiscountBand{{Discount: 0, Orders: 5, Revenue: 250, Profit: 50, MarginPct: f64(20)}},
	}

	if err := ExportMetricsCSV(dir, tables); err != nil {
		t.Fatalf("ExportMetricsCSV failed: %v", err)
	}

	wantFiles := map[string]int{
		"kpi_overview.csv":           1,
		"monthly_sales_trends.csv":   2,
		"product_performance.csv":    1,
		"category_share.csv":         1,
		"customer_rfm.csv":           1,
		"cohort_retention.csv":       1,
		"regional_performance.csv":   1,
		"discount_profitability.csv": 1,
	}
	for name, wantRows := range wantFiles {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Missing export file %s: %v", name, err)
		}
		records, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", name, err)
		}
		if len(records) != wantRows+1 {
			t.Errorf("%s has %d rows, want %d plus header", name, len(records)-1, wantRows)
		}
	}

	// Nil percent values export as empty cells.
	f, err := os.Open(filepath.Join(dir, "monthly_sales_trends.csv"))
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	first := records[1]
	if first[0] != "2024-01-01" {
		t.Errorf("Month formatted as %q", first[0])
	}
	if first[4] != "" || first[5] != "" {
		t.Errorf("Nil comparisons should be empty, got %q/%q", first[4], first[5])
	}
	second := records[2]
	if second[4] != "50" {
		t.Errorf("MoM pct = %q, want 50", second[4])
	}
}
