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

// ProductProfitability is the per-product profitability rollup.
type ProductProfitability struct {
	ProductID   string
	Name        string
	Category    string
	SubCategory string

	Revenue float64
	Profit  float64

	// MarginPct is 100*profit/revenue, nil when revenue is 0.
	MarginPct *float64

	// AvgDiscount is the mean discount over the product's fact rows,
	// null discounts counted as 0.
	AvgDiscount float64
	Units       int64
}

// CategoryShare is one category's slice of total revenue, with the
// Pareto cumulative share over categories ordered by descending
// revenue.
type CategoryShare struct {
	Category           string
	Revenue            float64
	SharePct           float64
	CumulativeSharePct float64
}

// ProductProfitabilities rolls facts up by product, joined with the
// product dimension for descriptive attributes. Ordered by revenue
// descending, ties by product id.
func ProductProfitabilities(facts []model.SalesFact, products []model.ProductDim) []ProductProfitability {
	byID := make(map[string]*model.ProductDim, len(products))
	for i := range products {
		byID[products[i].ProductID] = &products[i]
	}

	type agg struct {
		revenue, profit, discount float64
		units                     int64
		rows                      int
	}
	aggs := make(map[string]*agg)
	for i := range facts {
		f := &facts[i]
		a, ok := aggs[f.ProductID]
		if !ok {
			a = &agg{}
			aggs[f.ProductID] = a
		}
		a.revenue += model.Float(f.Sales)
		a.profit += model.Float(f.Profit)
		a.discount += model.Float(f.Discount)
		a.units += model.Int(f.Quantity)
		a.rows++
	}

	out := make([]ProductProfitability, 0, len(aggs))
	for id, a := range aggs {
		p := ProductProfitability{
			ProductID: id,
			Revenue:   a.revenue,
			Profit:    a.profit,
			MarginPct: marginPct(a.profit, a.revenue),
			Units:     a.units,
		}
		if a.rows > 0 {
			p.AvgDiscount = a.discount / float64(a.rows)
		}
		if dim := byID[id]; dim != nil {
			p.Name = dim.Name
			p.Category = dim.Category
			p.SubCategory = dim.SubCategory
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// CategoryShares computes each category's revenue share and the
// cumulative share over categories by descending revenue.
func CategoryShares(facts []model.SalesFact, products []model.ProductDim) []CategoryShare {
	categoryOf := make(map[string]string, len(products))
	for i := range products {
		categoryOf[products[i].ProductID] = products[i].Category
	}

	revenue := make(map[string]float64)
	var total float64
	for i := range facts {
		f := &facts[i]
		v := model.Float(f.Sales)
		revenue[categoryOf[f.ProductID]] += v
		total += v
	}

	out := make([]CategoryShare, 0, len(revenue))
	for cat, rev := range revenue {
		out = append(out, CategoryShare{Category: cat, Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})

	var cumulative float64
	for i := range out {
		if total != 0 {
			out[i].SharePct = 100 * out[i].Revenue / total
		}
		cumulative += out[i].SharePct
		out[i].CumulativeSharePct = cumulative
	}
	return out
}

// marginPct computes 100*profit/revenue, nil when revenue is 0. The
// same guard applies everywhere a margin percentage is derived.
func marginPct(profit, revenue float64) *float64 {
	if revenue == 0 {
		return nil
	}
	pct := 100 * profit / revenue
	return &pct
}
