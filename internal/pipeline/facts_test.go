package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/commercelab/retail-dw/internal/model"
)

func factInput(t *testing.T, orders []model.RawOrder, ownership []model.RawOwnership) *Dimensions {
	t.Helper()
	dims, err := BuildDimensions(context.Background(), orders, ownership, PolicyFirst)
	if err != nil {
		t.Fatalf("BuildDimensions failed: %v", err)
	}
	return dims
}

func TestBuildFactsOneRowPerLine(t *testing.T) {
	orders := []model.RawOrder{
		order(3, "O2"),
		order(1, "O1"),
		order(2, "O1"),
	}
	dims := factInput(t, orders, nil)

	facts, summary, err := BuildFacts(orders, dims, nil, PolicyFirst)
	if err != nil {
		t.Fatalf("BuildFacts failed: %v", err)
	}
	if len(facts) != 3 || summary.FactRows != 3 {
		t.Fatalf("Expected 3 fact rows, got %d (summary %d)", len(facts), summary.FactRows)
	}
	for i := 1; i < len(facts); i++ {
		if facts[i-1].RowID >= facts[i].RowID {
			t.Errorf("Facts not ordered by row id: %d before %d", facts[i-1].RowID, facts[i].RowID)
		}
	}
}

func TestProfitMargin(t *testing.T) {
	tests := []struct {
		name   string
		profit *float64
		sales  *float64
		want   float64
	}{
		{"positive", f64(50), f64(250), 0.20},
		{"negative", f64(-24), f64(120), -0.20},
		{"zero sales", f64(50), f64(0), 0},
		{"null sales", f64(50), nil, 0},
		{"null profit", nil, f64(100), 0},
		{"both null", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := profitMargin(tt.profit, tt.sales); got != tt.want {
				t.Errorf("profitMargin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFactsReturnedFlag(t *testing.T) {
	orders := []model.RawOrder{order(1, "O1"), order(2, "O2"), order(3, "O2")}
	dims := factInput(t, orders, nil)
	returns := []model.RawReturn{
		{OrderID: "O2", Returned: true},
		{OrderID: "O1", Returned: false},
		{OrderID: "O9", Returned: true},
	}

	facts, summary, err := BuildFacts(orders, dims, returns, PolicyFirst)
	if err != nil {
		t.Fatalf("BuildFacts failed: %v", err)
	}
	if facts[0].Returned {
		t.Error("O1 flagged returned despite Returned=false record")
	}
	if !facts[1].Returned || !facts[2].Returned {
		t.Error("Both O2 lines should be flagged returned")
	}
	if summary.ReturnedRows != 2 {
		t.Errorf("ReturnedRows = %d, want 2", summary.ReturnedRows)
	}
}

func TestBuildFactsSkipsNullKeys(t *testing.T) {
	orders := []model.RawOrder{
		order(1, "O1"),
		{RowID: nil, OrderID: "O2", CustomerID: "CU-1", ProductID: "PR-1", Region: "East"},
		{RowID: i64(3), OrderID: "", CustomerID: "CU-1", ProductID: "PR-1", Region: "East"},
	}
	dims := factInput(t, orders, nil)

	facts, summary, err := BuildFacts(orders, dims, nil, PolicyFirst)
	if err != nil {
		t.Fatalf("BuildFacts failed: %v", err)
	}
	if len(facts) != 1 || summary.SkippedNullKey != 2 {
		t.Errorf("facts=%d skipped=%d, want 1/2", len(facts), summary.SkippedNullKey)
	}
}

func TestBuildFactsDuplicatePolicies(t *testing.T) {
	dup := order(1, "O1")
	dup.Sales = f64(999)
	orders := []model.RawOrder{order(1, "O1"), dup}
	dims := factInput(t, orders, nil)

	facts, summary, err := BuildFacts(orders, dims, nil, PolicyFirst)
	if err != nil {
		t.Fatalf("PolicyFirst failed: %v", err)
	}
	if len(facts) != 1 || summary.SkippedDuplicate != 1 {
		t.Errorf("facts=%d skipped=%d, want 1/1", len(facts), summary.SkippedDuplicate)
	}
	if facts[0].Sales != nil {
		t.Error("First occurrence should win, not the later duplicate")
	}

	_, _, err = BuildFacts(orders, dims, nil, PolicyFail)
	var ambiguous *AmbiguousKeyError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("Expected AmbiguousKeyError under PolicyFail, got %v", err)
	}
}

func TestBuildFactsReferentialIntegrity(t *testing.T) {
	known := []model.RawOrder{order(1, "O1")}
	dims := factInput(t, known, nil)

	stranger := order(2, "O2")
	stranger.CustomerID = "CU-404"
	orders := []model.RawOrder{known[0], stranger}

	_, _, err := BuildFacts(orders, dims, nil, PolicyFirst)
	var ri *ReferentialIntegrityError
	if !errors.As(err, &ri) {
		t.Fatalf("Expected ReferentialIntegrityError, got %v", err)
	}
	if ri.Dimension != "customer" || len(ri.RowIDs) != 1 || ri.RowIDs[0] != 2 {
		t.Errorf("Wrong error detail: %+v", ri)
	}
}

func TestBuildFactsNilDateAllowed(t *testing.T) {
	o := order(1, "O1")
	o.OrderDate = nil
	orders := []model.RawOrder{o}
	dims := factInput(t, orders, nil)

	facts, _, err := BuildFacts(orders, dims, nil, PolicyFirst)
	if err != nil {
		t.Fatalf("BuildFacts failed: %v", err)
	}
	if facts[0].OrderDate != nil {
		t.Error("Nil order date should stay nil on the fact row")
	}
}

func TestBuildFactsCarriesMeasures(t *testing.T) {
	o := order(1, "O1")
	o.Sales = f64(250)
	o.Profit = f64(50)
	o.Quantity = i64(5)
	o.Discount = f64(0.1)
	o.ShippingCost = f64(12.5)
	dims := factInput(t, []model.RawOrder{o}, nil)

	facts, _, err := BuildFacts([]model.RawOrder{o}, dims, nil, PolicyFirst)
	if err != nil {
		t.Fatalf("BuildFacts failed: %v", err)
	}
	f := facts[0]
	if model.Float(f.Sales) != 250 || model.Float(f.Profit) != 50 ||
		model.Int(f.Quantity) != 5 || model.Float(f.Discount) != 0.1 ||
		model.Float(f.ShippingCost) != 12.5 {
		t.Errorf("Measures not carried through: %+v", f)
	}
	if f.ProfitMargin != 0.20 {
		t.Errorf("ProfitMargin = %v, want 0.20", f.ProfitMargin)
	}
	if !f.OrderDate.Equal(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("OrderDate = %v", f.OrderDate)
	}
}
