package metrics

import (
	"testing"
	"time"

	"github.com/commercelab/retail-dw/internal/model"
)

var testProducts = []model.ProductDim{
	{ProductID: "PR-1", Name: "Desk Lamp", Category: "Furniture", SubCategory: "Lighting"},
	{ProductID: "PR-2", Name: "Stapler", Category: "Office Supplies", SubCategory: "Fasteners"},
}

func productFact(rowID int64, productID string, sales, profit, discount float64, qty int64) model.SalesFact {
	d := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	return model.SalesFact{
		RowID:     rowID,
		OrderID:   "O1",
		ProductID: productID,
		OrderDate: &d,
		Sales:     f64(sales),
		Profit:    f64(profit),
		Discount:  f64(discount),
		Quantity:  &qty,
	}
}

func TestProductProfitabilities(t *testing.T) {
	facts := []model.SalesFact{
		productFact(1, "PR-1", 100, 20, 0.2, 2),
		productFact(2, "PR-1", 100, 30, 0, 3),
		productFact(3, "PR-2", 300, 30, 0.1, 1),
	}

	out := ProductProfitabilities(facts, testProducts)
	if len(out) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(out))
	}

	// Revenue descending: PR-2 first.
	if out[0].ProductID != "PR-2" || out[0].Revenue != 300 {
		t.Errorf("Top product = %+v", out[0])
	}
	if out[0].Name != "Stapler" || out[0].Category != "Office Supplies" {
		t.Errorf("Dimension attributes not joined: %+v", out[0])
	}

	pr1 := out[1]
	if pr1.Revenue != 200 || pr1.Profit != 50 || pr1.Units != 5 {
		t.Errorf("PR-1 rollup = %+v", pr1)
	}
	if pr1.MarginPct == nil || *pr1.MarginPct != 25 {
		t.Errorf("PR-1 MarginPct = %v, want 25", pr1.MarginPct)
	}
	if pr1.AvgDiscount != 0.1 {
		t.Errorf("PR-1 AvgDiscount = %v, want 0.1", pr1.AvgDiscount)
	}
}

func TestProductMarginNilOnZeroRevenue(t *testing.T) {
	facts := []model.SalesFact{productFact(1, "PR-1", 0, 10, 0, 1)}

	out := ProductProfitabilities(facts, testProducts)
	if out[0].MarginPct != nil {
		t.Errorf("MarginPct = %v, want nil on zero revenue", *out[0].MarginPct)
	}
}

func TestCategoryShares(t *testing.T) {
	facts := []model.SalesFact{
		productFact(1, "PR-1", 100, 10, 0, 1),
		productFact(2, "PR-2", 300, 30, 0, 1),
	}

	out := CategoryShares(facts, testProducts)
	if len(out) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(out))
	}
	if out[0].Category != "Office Supplies" || out[0].SharePct != 75 || out[0].CumulativeSharePct != 75 {
		t.Errorf("Top category = %+v", out[0])
	}
	if out[1].SharePct != 25 || out[1].CumulativeSharePct != 100 {
		t.Errorf("Second category = %+v", out[1])
	}
}

func TestOverview(t *testing.T) {
	facts := []model.SalesFact{
		{RowID: 1, OrderID: "O1", CustomerID: "CU-1", Sales: f64(100), Profit: f64(20)},
		{RowID: 2, OrderID: "O1", CustomerID: "CU-1", Sales: f64(100), Profit: f64(20)},
		{RowID: 3, OrderID: "O2", CustomerID: "CU-2", Sales: f64(200), Profit: f64(40)},
	}

	kpi := Overview(facts)
	if kpi.TotalRevenue != 400 || kpi.TotalProfit != 80 {
		t.Errorf("Totals = %v/%v", kpi.TotalRevenue, kpi.TotalProfit)
	}
	if kpi.Orders != 2 || kpi.Customers != 2 {
		t.Errorf("Distinct counts = %d orders, %d customers", kpi.Orders, kpi.Customers)
	}
	if kpi.MarginPct == nil || *kpi.MarginPct != 20 {
		t.Errorf("MarginPct = %v, want 20", kpi.MarginPct)
	}
}

func TestDiscountProfitability(t *testing.T) {
	facts := []model.SalesFact{
		{RowID: 1, OrderID: "O1", Discount: f64(0.2), Sales: f64(100), Profit: f64(-10)},
		{RowID: 2, OrderID: "O2", Discount: nil, Sales: f64(50), Profit: f64(10)},
		{RowID: 3, OrderID: "O3", Discount: f64(0), Sales: f64(50), Profit: f64(10)},
	}

	out := DiscountProfitability(facts)
	if len(out) != 2 {
		t.Fatalf("Expected 2 bands, got %d", len(out))
	}
	// Null discount folds into the 0 band; ordered ascending.
	if out[0].Discount != 0 || out[0].Orders != 2 || out[0].Revenue != 100 {
		t.Errorf("Zero band = %+v", out[0])
	}
	if out[1].Discount != 0.2 || out[1].Profit != -10 {
		t.Errorf("0.2 band = %+v", out[1])
	}
}
