//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/internal/model"
)

// UnknownPerson is assigned to regions that appear in orders but have
// no ownership record.
const UnknownPerson = "Unknown"

// Dimensions holds the four conformed dimensions plus the key sets the
// fact builder resolves against.
type Dimensions struct {
	Dates     []model.DateDim
	Customers []model.CustomerDim
	Products  []model.ProductDim
	Owners    []model.OwnerDim

	dates     map[time.Time]struct{}
	customers map[string]struct{}
	products  map[string]struct{}
	owners    map[string]struct{}
}

// HasDate reports whether the date dimension contains the given date.
func (d *Dimensions) HasDate(t time.Time) bool {
	_, ok := d.dates[model.DateOf(t)]
	return ok
}

// HasCustomer reports whether the customer dimension contains the id.
func (d *Dimensions) HasCustomer(id string) bool {
	_, ok := d.customers[id]
	return ok
}

// HasProduct reports whether the product dimension contains the id.
func (d *Dimensions) HasProduct(id string) bool {
	_, ok := d.products[id]
	return ok
}

// HasOwner reports whether the sales-owner dimension contains the region.
func (d *Dimensions) HasOwner(region string) bool {
	_, ok := d.owners[region]
	return ok
}

// BuildDimensions derives the four dimensions from the raw records.
// The dimensions are independent of each other and are built
// concurrently.
//
// Attribute resolution for repeated natural keys is deterministic: the
// candidate row with the lowest row id wins, rows without a row id sort
// last, and ties keep the earliest input position. Under PolicyFail,
// conflicting attribute sets for the same key abort the build with an
// AmbiguousKeyError instead.
func BuildDimensions(ctx context.Context, orders []model.RawOrder, owners []model.RawOwnership, policy DuplicatePolicy) (*Dimensions, error) {
	dims := &Dimensions{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		dims.Dates = buildDates(orders)
		return nil
	})
	g.Go(func() error {
		var err error
		dims.Customers, err = buildCustomers(orders, policy)
		return err
	})
	g.Go(func() error {
		var err error
		dims.Products, err = buildProducts(orders, policy)
		return err
	})
	g.Go(func() error {
		var err error
		dims.Owners, err = buildOwners(owners, orders, policy)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dims.dates = make(map[time.Time]struct{}, len(dims.Dates))
	for _, d := range dims.Dates {
		dims.dates[d.Date] = struct{}{}
	}
	dims.customers = make(map[string]struct{}, len(dims.Customers))
	for _, c := range dims.Customers {
		dims.customers[c.CustomerID] = struct{}{}
	}
	dims.products = make(map[string]struct{}, len(dims.Products))
	for _, p := range dims.Products {
		dims.products[p.ProductID] = struct{}{}
	}
	dims.owners = make(map[string]struct{}, len(dims.Owners))
	for _, o := range dims.Owners {
		dims.owners[o.Region] = struct{}{}
	}

	logging.Info().
		Int("dates", len(dims.Dates)).
		Int("customers", len(dims.Customers)).
		Int("products", len(dims.Products)).
		Int("owners", len(dims.Owners)).
		Msg("Dimensions built")

	return dims, nil
}

// buildDates expands every distinct order date into calendar
// attributes. Null order dates contribute no row; no sentinel date is
// ever synthesized.
func buildDates(orders []model.RawOrder) []model.DateDim {
	seen := make(map[time.Time]struct{})
	for i := range orders {
		if orders[i].OrderDate == nil {
			continue
		}
		seen[model.DateOf(*orders[i].OrderDate)] = struct{}{}
	}

	dates := make([]model.DateDim, 0, len(seen))
	for d := range seen {
		dates = append(dates, deriveDate(d))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Date.Before(dates[j].Date) })
	return dates
}

func deriveDate(d time.Time) model.DateDim {
	wd := d.Weekday()
	return model.DateDim{
		Date:      d,
		Year:      d.Year(),
		Quarter:   (int(d.Month())-1)/3 + 1,
		Month:     int(d.Month()),
		Day:       d.Day(),
		DayOfWeek: wd.String(),
		Weekend:   wd == time.Saturday || wd == time.Sunday,
	}
}

// rowBefore reports whether row id a should be preferred over b for
// attribute resolution. Nil row ids sort last, equal ids keep the
// incumbent.
func rowBefore(a, b *int64) bool {
	if a == nil || b == nil {
		return b == nil && a != nil
	}
	return *a < *b
}

type group[T comparable] struct {
	rep      T
	repRow   *int64
	count    int
	conflict bool
}

func resolve[T comparable](g *group[T], candidate T, rowID *int64) {
	g.count++
	if candidate != g.rep {
		g.conflict = true
	}
	if rowBefore(rowID, g.repRow) {
		g.rep = candidate
		g.repRow = rowID
	}
}

func buildCustomers(orders []model.RawOrder, policy DuplicatePolicy) ([]model.CustomerDim, error) {
	groups := make(map[string]*group[model.CustomerDim])
	for i := range orders {
		o := &orders[i]
		cand := model.CustomerDim{
			CustomerID: o.CustomerID,
			Name:       o.CustomerName,
			Segment:    o.Segment,
			City:       o.City,
			State:      o.State,
			Country:    o.Country,
			PostalCode: o.PostalCode,
			Market:     o.Market,
			Region:     o.Region,
		}
		g, ok := groups[o.CustomerID]
		if !ok {
			groups[o.CustomerID] = &group[model.CustomerDim]{rep: cand, repRow: o.RowID, count: 1}
			continue
		}
		resolve(g, cand, o.RowID)
	}

	out := make([]model.CustomerDim, 0, len(groups))
	for key, g := range groups {
		if g.conflict && policy == PolicyFail {
			return nil, &AmbiguousKeyError{Entity: "customer", Key: key, Count: g.count}
		}
		out = append(out, g.rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func buildProducts(orders []model.RawOrder, policy DuplicatePolicy) ([]model.ProductDim, error) {
	groups := make(map[string]*group[model.ProductDim])
	for i := range orders {
		o := &orders[i]
		cand := model.ProductDim{
			ProductID:   o.ProductID,
			Name:        o.ProductName,
			Category:    o.Category,
			SubCategory: o.SubCategory,
		}
		g, ok := groups[o.ProductID]
		if !ok {
			groups[o.ProductID] = &group[model.ProductDim]{rep: cand, repRow: o.RowID, count: 1}
			continue
		}
		resolve(g, cand, o.RowID)
	}

	out := make([]model.ProductDim, 0, len(groups))
	for key, g := range groups {
		if g.conflict && policy == PolicyFail {
			return nil, &AmbiguousKeyError{Entity: "product", Key: key, Count: g.count}
		}
		out = append(out, g.rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// buildOwners groups ownership records by region. The first record per
// region wins; later records with a different person are reported.
// Regions present in orders but absent from the ownership records get
// an "Unknown" owner row so fact rows still resolve.
func buildOwners(owners []model.RawOwnership, orders []model.RawOrder, policy DuplicatePolicy) ([]model.OwnerDim, error) {
	byRegion := make(map[string]model.OwnerDim)
	for _, o := range owners {
		existing, ok := byRegion[o.Region]
		if !ok {
			byRegion[o.Region] = model.OwnerDim{Region: o.Region, Person: o.Person}
			continue
		}
		if existing.Person != o.Person {
			if policy == PolicyFail {
				return nil, &AmbiguousKeyError{Entity: "owner", Key: o.Region, Count: 2}
			}
			logging.Warn().
				Str("region", o.Region).
				Str("kept", existing.Person).
				Str("dropped", o.Person).
				Msg("Conflicting ownership record, keeping first")
		}
	}

	unmatched := 0
	for i := range orders {
		region := orders[i].Region
		if _, ok := byRegion[region]; !ok {
			byRegion[region] = model.OwnerDim{Region: region, Person: UnknownPerson}
			unmatched++
			logging.Warn().
				Str("region", region).
				Msg(fmt.Sprintf("Region has no ownership record, assigning %q", UnknownPerson))
		}
	}
	if unmatched > 0 {
		logging.Warn().
			Int("regions", unmatched).
			Msg("Regions without ownership records")
	}

	out := make([]model.OwnerDim, 0, len(byRegion))
	for _, o := range byRegion {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out, nil
}
