//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package metrics

import (
	"sort"

	"github.com/commercelab/retail-dw/internal/model"
)

// RegionPerformance is the per-region rollup.
type RegionPerformance struct {
	Region  string
	Revenue float64
	Profit  float64

	// MarginPct is 100*profit/revenue, nil when revenue is 0.
	MarginPct *float64

	// Customers is the distinct customer count.
	Customers int

	// ReturnRatePct is 100 * returned fact rows / all fact rows in the
	// region.
	ReturnRatePct float64
}

// StatePerformance is one state inside a region, for the top-states
// query.
type StatePerformance struct {
	State   string
	Revenue float64
	Profit  float64
	Orders  int
}

// RegionalPerformance rolls facts up by region, ordered by revenue
// descending, ties by region.
func RegionalPerformance(facts []model.SalesFact) []RegionPerformance {
	type agg struct {
		revenue, profit float64
		customers       map[string]struct{}
		rows, returned  int
	}
	aggs := make(map[string]*agg)
	for i := range facts {
		f := &facts[i]
		a, ok := aggs[f.Region]
		if !ok {
			a = &agg{customers: make(map[string]struct{})}
			aggs[f.Region] = a
		}
		a.revenue += model.Float(f.Sales)
		a.profit += model.Float(f.Profit)
		a.customers[f.CustomerID] = struct{}{}
		a.rows++
		if f.Returned {
			a.returned++
		}
	}

	out := make([]RegionPerformance, 0, len(aggs))
	for region, a := range aggs {
		out = append(out, RegionPerformance{
			Region:        region,
			Revenue:       a.revenue,
			Profit:        a.profit,
			MarginPct:     marginPct(a.profit, a.revenue),
			Customers:     len(a.customers),
			ReturnRatePct: 100 * float64(a.returned) / float64(a.rows),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// TopStates returns the top n states by revenue within one region.
// State comes from the customer dimension geography. n <= 0 means no
// limit.
func TopStates(facts []model.SalesFact, customers []model.CustomerDim, region string, n int) []StatePerformance {
	stateOf := make(map[string]string, len(customers))
	for i := range customers {
		stateOf[customers[i].CustomerID] = customers[i].State
	}

	type agg struct {
		revenue, profit float64
		orders          map[string]struct{}
	}
	aggs := make(map[string]*agg)
	for i := range facts {
		f := &facts[i]
		if f.Region != region {
			continue
		}
		state := stateOf[f.CustomerID]
		a, ok := aggs[state]
		if !ok {
			a = &agg{orders: make(map[string]struct{})}
			aggs[state] = a
		}
		a.revenue += model.Float(f.Sales)
		a.profit += model.Float(f.Profit)
		a.orders[f.OrderID] = struct{}{}
	}

	out := make([]StatePerformance, 0, len(aggs))
	for state, a := range aggs {
		out = append(out, StatePerformance{
			State:   state,
			Revenue: a.revenue,
			Profit:  a.profit,
			Orders:  len(a.orders),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].State < out[j].State
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
