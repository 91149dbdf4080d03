//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/internal/model"
	"github.com/commercelab/retail-dw/internal/staging"
)

// Reference data shaped after the superstore dataset.
var (
	segments   = []string{"Consumer", "Corporate", "Home Office"}
	shipModes  = []string{"Standard Class", "Second Class", "First Class", "Same Day"}
	priorities = []string{"Low", "Medium", "High", "Critical"}

	marketRegions = map[string][]string{
		"US":     {"East", "West", "Central", "South"},
		"EU":     {"North", "Central EU", "South EU"},
		"APAC":   {"Oceania", "Southeast Asia", "East Asia"},
		"LATAM":  {"North LATAM", "South LATAM"},
		"Africa": {"Africa"},
	}
	markets = []string{"US", "EU", "APAC", "LATAM", "Africa"}

	subCategories = map[string][]string{
		"Furniture":       {"Bookcases", "Chairs", "Tables", "Furnishings"},
		"Office Supplies": {"Paper", "Binders", "Storage", "Labels", "Art"},
		"Technology":      {"Phones", "Accessories", "Copiers", "Machines"},
	}
	productCategories = []string{"Furniture", "Office Supplies", "Technology"}
)

// SeederConfig controls the synthetic extract.
type SeederConfig struct {
	Orders     int
	Customers  int
	Products   int
	ReturnRate float64
	Seed       uint64

	// Anomalies injects duplicate row ids, out-of-range discounts, a
	// negative quantity, and a blank order id so the validator has
	// something to report.
	Anomalies bool
}

// DefaultSeederConfig returns sensible defaults for a demo extract.
func DefaultSeederConfig() SeederConfig {
	return SeederConfig{
		Orders:     2000,
		Customers:  300,
		Products:   150,
		ReturnRate: 0.06,
		Seed:       1,
	}
}

// Seeder generates the three raw record streams.
type Seeder struct {
	cfg   SeederConfig
	faker *Faker
}

// NewSeeder creates a seeder for the given config.
func NewSeeder(cfg SeederConfig) *Seeder {
	return &Seeder{cfg: cfg, faker: NewFakerWithSeed(cfg.Seed)}
}

// Generate produces the raw orders, returns and ownership records.
// The same config always produces the same records.
func (s *Seeder) Generate() ([]model.RawOrder, []model.RawReturn, []model.RawOwnership) {
	f := s.faker

	type customer struct {
		id, name, segment, city, state, postal, country, market, region string
	}
	customers := make([]customer, s.cfg.Customers)
	for i := range customers {
		market := f.Pick(markets)
		customers[i] = customer{
			id:      ID("CU", 1000+i),
			name:    f.Name(),
			segment: f.Pick(segments),
			city:    f.City(),
			state:   f.State(),
			postal:  f.Zip(),
			country: "United States",
			market:  market,
			region:  f.Pick(marketRegions[market]),
		}
	}

	type product struct {
		id, name, category, subCategory string
	}
	products := make([]product, s.cfg.Products)
	for i := range products {
		cat := f.Pick(productCategories)
		products[i] = product{
			id:          ID("PR", 1000+i),
			name:        f.ProductName(),
			category:    cat,
			subCategory: f.Pick(subCategories[cat]),
		}
	}

	var ownership []model.RawOwnership
	for _, market := range markets {
		for _, region := range marketRegions[market] {
			ownership = append(ownership, model.RawOwnership{
				Region: region,
				Person: f.Name(),
			})
		}
	}

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

	var orders []model.RawOrder
	var returns []model.RawReturn
	rowID := int64(1)
	for i := 0; i < s.cfg.Orders; i++ {
		c := customers[f.Number(0, len(customers)-1)]
		orderID := ID("ORD", 100000+i)
		orderDate := model.DateOf(f.DateRange(start, end))
		shipDate := orderDate.AddDate(0, 0, f.Number(1, 7))
		shipMode := f.Pick(shipModes)
		priority := f.Pick(priorities)

		lines := f.Number(1, 3)
		for l := 0; l < lines; l++ {
			p := products[f.Number(0, len(products)-1)]
			qty := int64(f.Number(1, 10))
			unit := f.Float64Range(5, 400)
			discount := f.Pick([]string{"0", "0", "0.1", "0.2", "0.3", "0.5"})
			disc, _ := strconv.ParseFloat(discount, 64)
			sales := unit * float64(qty) * (1 - disc)
			profit := sales * f.Float64Range(-0.2, 0.4)
			shipping := f.Float64Range(1, 60)

			id := rowID
			rowID++
			d := orderDate
			sd := shipDate
			orders = append(orders, model.RawOrder{
				RowID:         &id,
				OrderID:       orderID,
				OrderDate:     &d,
				ShipDate:      &sd,
				ShipMode:      shipMode,
				CustomerID:    c.id,
				CustomerName:  c.name,
				Segment:       c.segment,
				City:          c.city,
				State:         c.state,
				Country:       c.country,
				PostalCode:    c.postal,
				Market:        c.market,
				Region:        c.region,
				ProductID:     p.id,
				ProductName:   p.name,
				Category:      p.category,
				SubCategory:   p.subCategory,
				OrderPriority: priority,
				Sales:         &sales,
				Quantity:      &qty,
				Discount:      &disc,
				Profit:        &profit,
				ShippingCost:  &shipping,
			})
		}

		if f.Chance(s.cfg.ReturnRate) {
			returns = append(returns, model.RawReturn{
				OrderID:  orderID,
				Region:   c.region,
				Returned: true,
			})
		}
	}

	if s.cfg.Anomalies && len(orders) > 3 {
		dup := orders[0]
		orders = append(orders, dup)

		bad := 1.5
		orders[1].Discount = &bad

		negative := int64(-2)
		orders[2].Quantity = &negative

		orders[3].OrderID = ""
	}

	logging.Info().
		Int("orders", len(orders)).
		Int("returns", len(returns)).
		Int("regions", len(ownership)).
		Uint64("seed", s.cfg.Seed).
		Msg("Synthetic extract generated")

	return orders, returns, ownership
}

// WriteCSV writes the generated extract as the three staging CSV files
// under dir: orders.csv, returns.csv, people.csv.
func (s *Seeder) WriteCSV(dir string) error {
	orders, returns, ownership := s.Generate()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create seed directory: %w", err)
	}

	orderRows := make([][]string, len(orders))
	for i := range orders {
		o := &orders[i]
		orderRows[i] = []string{
			fmtIntPtr(o.RowID), o.OrderID, fmtDatePtr(o.OrderDate), fmtDatePtr(o.ShipDate), o.ShipMode,
			o.CustomerID, o.CustomerName, o.Segment,
			o.City, o.State, o.Country, o.PostalCode, o.Market, o.Region,
			o.ProductID, o.Category, o.SubCategory, o.ProductName,
			o.OrderPriority,
			fmtFloatPtr(o.Sales), fmtIntPtr(o.Quantity), fmtFloatPtr(o.Discount),
			fmtFloatPtr(o.Profit), fmtFloatPtr(o.ShippingCost),
		}
	}
	if err := writeFile(filepath.Join(dir, "orders.csv"), staging.OrderColumns, orderRows); err != nil {
		return err
	}

	returnRows := make([][]string, len(returns))
	for i, r := range returns {
		flag := "No"
		if r.Returned {
			flag = "Yes"
		}
		returnRows[i] = []string{r.OrderID, flag, r.Region}
	}
	if err := writeFile(filepath.Join(dir, "returns.csv"), staging.ReturnColumns, returnRows); err != nil {
		return err
	}

	ownerRows := make([][]string, len(ownership))
	for i, o := range ownership {
		ownerRows[i] = []string{o.Region, o.Person}
	}
	return writeFile(filepath.Join(dir, "people.csv"), staging.OwnershipColumns, ownerRows)
}

func writeFile(path string, header []string, rows [][]string) error {
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
	return w.Error()
}

func fmtIntPtr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func fmtDatePtr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02")
}
