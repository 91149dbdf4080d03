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

// KPI is the executive overview snapshot.
type KPI struct {
	TotalRevenue float64
	TotalProfit  float64
	Orders       int
	Customers    int
	MarginPct    *float64
}

// DiscountBand is the profitability rollup for one discount value.
type DiscountBand struct {
	// Discount is the band's discount fraction; null discounts land in
	// the 0 band.
	Discount  float64
	Orders    int
	Revenue   float64
	Profit    float64
	MarginPct *float64
}

// Overview computes the executive KPI snapshot.
func Overview(facts []model.SalesFact) KPI {
	orders := make(map[string]struct{})
	customers := make(map[string]struct{})
	var revenue, profit float64

	for i := range facts {
		f := &facts[i]
		revenue += model.Float(f.Sales)
		profit += model.Float(f.Profit)
		orders[f.OrderID] = struct{}{}
		customers[f.CustomerID] = struct{}{}
	}

	return KPI{
		TotalRevenue: revenue,
		TotalProfit:  profit,
		Orders:       len(orders),
		Customers:    len(customers),
		MarginPct:    marginPct(profit, revenue),
	}
}

// DiscountProfitability groups facts by discount value, ordered by
// discount ascending.
func DiscountProfitability(facts []model.SalesFact) []DiscountBand {
	type agg struct {
		revenue, profit float64
		orders          map[string]struct{}
	}
	aggs := make(map[float64]*agg)
	for i := range facts {
		f := &facts[i]
		d := model.Float(f.Discount)
		a, ok := aggs[d]
		if !ok {
			a = &agg{orders: make(map[string]struct{})}
			aggs[d] = a
		}
		a.revenue += model.Float(f.Sales)
		a.profit += model.Float(f.Profit)
		a.orders[f.OrderID] = struct{}{}
	}

	out := make([]DiscountBand, 0, len(aggs))
	for d, a := range aggs {
		out = append(out, DiscountBand{
			Discount:  d,
			Orders:    len(a.orders),
			Revenue:   a.revenue,
			Profit:    a.profit,
			MarginPct: marginPct(a.profit, a.revenue),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Discount < out[j].Discount })
	return out
}
