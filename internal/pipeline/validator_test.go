package pipeline

import (
	"testing"

	"github.com/commercelab/retail-dw/internal/model"
)

func TestValidateCounts(t *testing.T) {
	orders := []model.RawOrder{
		{RowID: i64(1), OrderID: "O1", ProductID: "PR-1", Sales: f64(100), Quantity: i64(2), Profit: f64(10), Discount: f64(0.1)},
		{RowID: i64(1), OrderID: "O1", ProductID: "PR-1", Sales: f64(100), Quantity: i64(2), Profit: f64(10)},
		{RowID: nil, OrderID: "", ProductID: "PR-2", Sales: nil, Quantity: nil, Profit: nil},
		{RowID: i64(3), OrderID: "O2", ProductID: "PR-2", Sales: f64(-5), Quantity: i64(-1), Profit: f64(-2), Discount: f64(1.5)},
	}

	r := Validate(orders)

	if r.TotalRows != 4 {
		t.Errorf("TotalRows = %d, want 4", r.TotalRows)
	}
	if r.NullOrderID != 1 || r.NullRowID != 1 {
		t.Errorf("Null key counts = %d/%d, want 1/1", r.NullOrderID, r.NullRowID)
	}
	if len(r.DuplicateRowIDs) != 1 || r.DuplicateRowIDs[0].Key != "1" || r.DuplicateRowIDs[0].Count != 2 {
		t.Errorf("DuplicateRowIDs = %+v", r.DuplicateRowIDs)
	}
	if len(r.DuplicateOrderLines) != 1 || r.DuplicateOrderLines[0].Key != "O1|PR-1" {
		t.Errorf("DuplicateOrderLines = %+v", r.DuplicateOrderLines)
	}
	if r.NegativeSales != 1 || r.NegativeQuantity != 1 || r.NegativeProfit != 1 {
		t.Errorf("Negative counts = %d/%d/%d, want 1/1/1",
			r.NegativeSales, r.NegativeQuantity, r.NegativeProfit)
	}
	if r.DiscountOutOfRange != 1 {
		t.Errorf("DiscountOutOfRange = %d, want 1", r.DiscountOutOfRange)
	}
	if r.NullSales != 1 || r.NullQuantity != 1 || r.NullProfit != 1 {
		t.Errorf("Null measure counts = %d/%d/%d, want 1/1/1",
			r.NullSales, r.NullQuantity, r.NullProfit)
	}
}

func TestValidateDuplicateGroupOrdering(t *testing.T) {
	var orders []model.RawOrder
	// Row id 7 appears three times, row id 2 twice.
	for i := 0; i < 3; i++ {
		orders = append(orders, model.RawOrder{RowID: i64(7), OrderID: "O7", ProductID: "PR-7"})
	}
	for i := 0; i < 2; i++ {
		orders = append(orders, model.RawOrder{RowID: i64(2), OrderID: "O2", ProductID: "PR-2"})
	}

	r := Validate(orders)

	if len(r.DuplicateRowIDs) != 2 {
		t.Fatalf("Expected 2 duplicate groups, got %d", len(r.DuplicateRowIDs))
	}
	if r.DuplicateRowIDs[0].Key != "7" || r.DuplicateRowIDs[0].Count != 3 {
		t.Errorf("Largest group should come first, got %+v", r.DuplicateRowIDs[0])
	}
}

func TestValidateAggregates(t *testing.T) {
	orders := []model.RawOrder{
		{RowID: i64(1), OrderID: "O1", Category: "Technology", Market: "US", Sales: f64(100)},
		{RowID: i64(2), OrderID: "O2", Category: "Technology", Market: "US", Sales: f64(50)},
		{RowID: i64(3), OrderID: "O3", Category: "Furniture", Market: "EU", Sales: nil},
	}

	r := Validate(orders)

	if len(r.Categories) != 2 {
		t.Fatalf("Expected 2 category groups, got %d", len(r.Categories))
	}
	// Sorted by key.
	if r.Categories[0].Key != "Furniture" || r.Categories[0].Rows != 1 || r.Categories[0].Sales != 0 {
		t.Errorf("Furniture group = %+v", r.Categories[0])
	}
	if r.Categories[1].Key != "Technology" || r.Categories[1].Rows != 2 || r.Categories[1].Sales != 150 {
		t.Errorf("Technology group = %+v", r.Categories[1])
	}
	if len(r.Markets) != 2 {
		t.Errorf("Expected 2 market groups, got %d", len(r.Markets))
	}
}

func TestViolations(t *testing.T) {
	r := &Report{
		NullOrderID:        2,
		NullRowID:          1,
		NegativeSales:      1,
		DiscountOutOfRange: 3,
		DuplicateRowIDs: []DuplicateGroup{
			{Key: "1", Count: 3},
			{Key: "2", Count: 2},
		},
	}

	// 2+1+1+3 plus (3-1)+(2-1) duplicate extras.
	if got := r.Violations(); got != 10 {
		t.Errorf("Violations() = %d, want 10", got)
	}
}

func TestViolationsClean(t *testing.T) {
	orders := []model.RawOrder{
		{RowID: i64(1), OrderID: "O1", ProductID: "PR-1", Sales: f64(10), Quantity: i64(1), Profit: f64(1), Discount: f64(0)},
	}
	if got := Validate(orders).Violations(); got != 0 {
		t.Errorf("Violations() = %d, want 0", got)
	}
}
