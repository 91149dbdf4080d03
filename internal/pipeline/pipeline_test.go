package pipeline

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/commercelab/retail-dw/internal/model"
)

// exampleInput is a small two-line extract exercising nulls, a negative
// profit, a return, and an ownership gap.
func exampleInput() Input {
	jan := day(2024, time.January, 15)
	feb := day(2024, time.February, 3)

	return Input{
		Orders: []model.RawOrder{
			{
				RowID: i64(1), OrderID: "US-2024-100", OrderDate: jan,
				CustomerID: "CU-1", CustomerName: "Ann Chase", Segment: "Consumer",
				ProductID: "PR-1", ProductName: "Desk Lamp", Category: "Furniture",
				Region: "East", Market: "US", State: "New York",
				Sales: f64(250), Quantity: i64(5), Discount: f64(0), Profit: f64(50),
			},
			{
				RowID: i64(2), OrderID: "US-2024-101", OrderDate: feb,
				CustomerID: "CU-2", CustomerName: "Ben Ortiz", Segment: "Corporate",
				ProductID: "PR-2", ProductName: "Bookcase", Category: "Furniture",
				Region: "West", Market: "US", State: "Oregon",
				Sales: f64(120), Quantity: i64(2), Discount: f64(0.4), Profit: f64(-24),
			},
		},
		Returns: []model.RawReturn{
			{OrderID: "US-2024-101", Region: "West", Returned: true},
		},
		Ownership: []model.RawOwnership{
			{Region: "East", Person: "Alice"},
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	res, err := New(PolicyFirst).Run(context.Background(), exampleInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The negative profit on line 2 is the only violation.
	if res.Report.TotalRows != 2 || res.Report.Violations() != 1 {
		t.Errorf("Report = %d rows, %d violations", res.Report.TotalRows, res.Report.Violations())
	}

	star := res.Star
	if len(star.Dates) != 2 || len(star.Customers) != 2 || len(star.Products) != 2 {
		t.Fatalf("Dimension sizes: dates=%d customers=%d products=%d",
			len(star.Dates), len(star.Customers), len(star.Products))
	}
	if len(star.Owners) != 2 {
		t.Fatalf("Expected East plus backfilled West owner, got %d", len(star.Owners))
	}

	if len(star.Facts) != 2 {
		t.Fatalf("Expected 2 fact rows, got %d", len(star.Facts))
	}
	if star.Facts[0].ProfitMargin != 0.20 {
		t.Errorf("Fact 1 margin = %v, want 0.20", star.Facts[0].ProfitMargin)
	}
	if star.Facts[1].ProfitMargin != -0.20 {
		t.Errorf("Fact 2 margin = %v, want -0.20", star.Facts[1].ProfitMargin)
	}
	if star.Facts[0].Returned || !star.Facts[1].Returned {
		t.Errorf("Returned flags = %v/%v, want false/true",
			star.Facts[0].Returned, star.Facts[1].Returned)
	}

	if res.Summary.InputRows != 2 || res.Summary.FactRows != 2 || res.Summary.ReturnedRows != 1 {
		t.Errorf("Summary = %+v", res.Summary)
	}
}

func TestRunIdempotent(t *testing.T) {
	p := New(PolicyFirst)

	first, err := p.Run(context.Background(), exampleInput())
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, err := p.Run(context.Background(), exampleInput())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if !reflect.DeepEqual(first.Star, second.Star) {
		t.Error("Two runs over the same input produced different star models")
	}
	if !reflect.DeepEqual(first.Summary, second.Summary) {
		t.Error("Two runs over the same input produced different summaries")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"first", PolicyFirst, false},
		{"fail", PolicyFail, false},
		{"", "", true},
		{"keep-last", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunPropagatesBuilderError(t *testing.T) {
	in := exampleInput()
	conflict := in.Orders[0]
	conflict.RowID = i64(3)
	conflict.CustomerName = "Different Name"
	in.Orders = append(in.Orders, conflict)

	_, err := New(PolicyFail).Run(context.Background(), in)
	if err == nil {
		t.Fatal("Expected PolicyFail run to abort on conflicting customer attributes")
	}
}
