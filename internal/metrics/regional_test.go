package metrics

import (
	"testing"

	"github.com/commercelab/retail-dw/internal/model"
)

func regionFact(rowID int64, orderID, customerID, region string, sales, profit float64, returned bool) model.SalesFact {
	return model.SalesFact{
		RowID:      rowID,
		OrderID:    orderID,
		CustomerID: customerID,
		Region:     region,
		Sales:      f64(sales),
		Profit:     f64(profit),
		Returned:   returned,
	}
}

func TestRegionalPerformance(t *testing.T) {
	facts := []model.SalesFact{
		regionFact(1, "O1", "CU-1", "East", 100, 10, false),
		regionFact(2, "O2", "CU-1", "East", 100, 10, true),
		regionFact(3, "O3", "CU-2", "East", 200, 20, false),
		regionFact(4, "O4", "CU-3", "West", 500, 50, false),
	}

	out := RegionalPerformance(facts)
	if len(out) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(out))
	}

	// Revenue descending: West first.
	if out[0].Region != "West" || out[0].Revenue != 500 || out[0].Customers != 1 {
		t.Errorf("West = %+v", out[0])
	}
	if out[0].ReturnRatePct != 0 {
		t.Errorf("West return rate = %v, want 0", out[0].ReturnRatePct)
	}

	east := out[1]
	if east.Revenue != 400 || east.Profit != 40 || east.Customers != 2 {
		t.Errorf("East = %+v", east)
	}
	if east.MarginPct == nil || *east.MarginPct != 10 {
		t.Errorf("East MarginPct = %v, want 10", east.MarginPct)
	}
	// 1 returned row out of 3.
	want := 100 * 1.0 / 3.0
	if east.ReturnRatePct != want {
		t.Errorf("East return rate = %v, want %v", east.ReturnRatePct, want)
	}
}

func TestTopStates(t *testing.T) {
	customers := []model.CustomerDim{
		{CustomerID: "CU-1", State: "New York"},
		{CustomerID: "CU-2", State: "Ohio"},
		{CustomerID: "CU-3", State: "Oregon"},
	}
	facts := []model.SalesFact{
		regionFact(1, "O1", "CU-1", "East", 100, 10, false),
		regionFact(2, "O2", "CU-2", "East", 300, 30, false),
		regionFact(3, "O3", "CU-2", "East", 50, 5, false),
		regionFact(4, "O4", "CU-3", "West", 900, 90, false),
	}

	out := TopStates(facts, customers, "East", 10)
	if len(out) != 2 {
		t.Fatalf("Expected 2 states, got %d", len(out))
	}
	if out[0].State != "Ohio" || out[0].Revenue != 350 || out[0].Orders != 2 {
		t.Errorf("Top state = %+v", out[0])
	}
	if out[1].State != "New York" {
		t.Errorf("Second state = %+v", out[1])
	}

	if limited := TopStates(facts, customers, "East", 1); len(limited) != 1 || limited[0].State != "Ohio" {
		t.Errorf("Limit 1 gave %+v", limited)
	}
	if unlimited := TopStates(facts, customers, "East", 0); len(unlimited) != 2 {
		t.Errorf("n=0 should mean no limit, got %d states", len(unlimited))
	}
	if other := TopStates(facts, customers, "South", 10); len(other) != 0 {
		t.Errorf("Unknown region gave %+v", other)
	}
}
