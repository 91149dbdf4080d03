package datagen

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/commercelab/retail-dw/internal/model"
	"github.com/commercelab/retail-dw/internal/staging"
)

func smallConfig() SeederConfig {
	return SeederConfig{
		Orders:     50,
		Customers:  10,
		Products:   8,
		ReturnRate: 0.2,
		Seed:       42,
	}
}

func TestGenerateDeterministic(t *testing.T) {
	o1, r1, own1 := NewSeeder(smallConfig()).Generate()
	o2, r2, own2 := NewSeeder(smallConfig()).Generate()

	if !reflect.DeepEqual(o1, o2) {
		t.Error("Same seed produced different orders")
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Error("Same seed produced different returns")
	}
	if !reflect.DeepEqual(own1, own2) {
		t.Error("Same seed produced different ownership")
	}
}

func TestGenerateShape(t *testing.T) {
	orders, returns, ownership := NewSeeder(smallConfig()).Generate()

	// 1 to 3 lines per order.
	if len(orders) < 50 || len(orders) > 150 {
		t.Errorf("Order lines = %d, want between 50 and 150", len(orders))
	}
	for i := range orders {
		o := &orders[i]
		if o.RowID == nil || o.OrderID == "" || o.OrderDate == nil {
			t.Fatalf("Line %d missing required keys: %+v", i, o)
		}
		if o.CustomerID == "" || o.ProductID == "" || o.Region == "" {
			t.Fatalf("Line %d missing dimension keys: %+v", i, o)
		}
	}

	for _, r := range returns {
		if !r.Returned {
			t.Errorf("Seeder emitted a non-returned return record: %+v", r)
		}
	}

	// One owner per region across all markets.
	regions := make(map[string]int)
	for _, o := range ownership {
		regions[o.Region]++
	}
	for region, n := range regions {
		if n != 1 {
			t.Errorf("Region %s has %d ownership records", region, n)
		}
	}
}

func TestGenerateAnomalies(t *testing.T) {
	cfg := smallConfig()
	cfg.Anomalies = true
	orders, _, _ := NewSeeder(cfg).Generate()

	seen := make(map[int64]int)
	for i := range orders {
		if orders[i].RowID != nil {
			seen[*orders[i].RowID]++
		}
	}
	var dups int
	for _, n := range seen {
		if n > 1 {
			dups++
		}
	}
	if dups != 1 {
		t.Errorf("Expected exactly 1 duplicated row id, got %d", dups)
	}

	if orders[1].Discount == nil || *orders[1].Discount <= 1 {
		t.Error("Expected an out-of-range discount")
	}
	if orders[2].Quantity == nil || *orders[2].Quantity >= 0 {
		t.Error("Expected a negative quantity")
	}
	if orders[3].OrderID != "" {
		t.Error("Expected a blank order id")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewSeeder(smallConfig())
	if err := s.WriteCSV(dir); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	for _, name := range []string{"orders.csv", "returns.csv", "people.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("Missing %s: %v", name, err)
		}
	}

	orders, err := staging.ReadOrders(filepath.Join(dir, "orders.csv"))
	if err != nil {
		t.Fatalf("ReadOrders failed: %v", err)
	}
	generated, _, _ := NewSeeder(smallConfig()).Generate()
	if len(orders) != len(generated) {
		t.Fatalf("Round trip lost rows: %d written, %d read", len(generated), len(orders))
	}
	for i := range orders {
		g, r := &generated[i], &orders[i]
		if model.Int(r.RowID) != model.Int(g.RowID) || r.OrderID != g.OrderID {
			t.Fatalf("Row %d keys differ after round trip", i)
		}
		if r.OrderDate == nil || !r.OrderDate.Equal(*g.OrderDate) {
			t.Fatalf("Row %d date differs after round trip", i)
		}
	}

	returns, err := staging.ReadReturns(filepath.Join(dir, "returns.csv"))
	if err != nil {
		t.Fatalf("ReadReturns failed: %v", err)
	}
	for _, r := range returns {
		if !r.Returned {
			t.Errorf("Returned flag lost in round trip: %+v", r)
		}
	}

	owners, err := staging.ReadOwnership(filepath.Join(dir, "people.csv"))
	if err != nil {
		t.Fatalf("ReadOwnership failed: %v", err)
	}
	if len(owners) == 0 {
		t.Error("No ownership records read back")
	}
}

func TestIDFormat(t *testing.T) {
	if got := ID("CU", 1042); got != "CU-1042" {
		t.Errorf("ID = %q, want CU-1042", got)
	}
}
