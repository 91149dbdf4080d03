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
	"time"

	"github.com/commercelab/retail-dw/internal/model"
)

// MonthlyTrend is one calendar month of the growth series.
type MonthlyTrend struct {
	Month   time.Time
	Revenue float64
	Profit  float64
	Orders  int

	// MoMPct and YoYPct are percent changes in revenue against the
	// previous calendar month and the month 12 months prior. Nil when
	// the comparison month is absent or had zero revenue.
	MoMPct *float64
	YoYPct *float64

	CumulativeRevenue float64
}

// GrowthTrends groups fact rows by calendar month and derives the
// growth series, ordered by month ascending. Fact rows without an
// order date have no month bucket and are skipped.
func GrowthTrends(facts []model.SalesFact) []MonthlyTrend {
	type bucket struct {
		revenue float64
		profit  float64
		orders  map[string]struct{}
	}
	buckets := make(map[time.Time]*bucket)

	for i := range facts {
		f := &facts[i]
		if f.OrderDate == nil {
			continue
		}
		m := model.MonthOf(*f.OrderDate)
		b, ok := buckets[m]
		if !ok {
			b = &bucket{orders: make(map[string]struct{})}
			buckets[m] = b
		}
		b.revenue += model.Float(f.Sales)
		b.profit += model.Float(f.Profit)
		b.orders[f.OrderID] = struct{}{}
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	revenueByMonth := make(map[time.Time]float64, len(buckets))
	for m, b := range buckets {
		revenueByMonth[m] = b.revenue
	}

	trends := make([]MonthlyTrend, 0, len(months))
	var cumulative float64
	for _, m := range months {
		b := buckets[m]
		cumulative += b.revenue
		trends = append(trends, MonthlyTrend{
			Month:             m,
			Revenue:           b.revenue,
			Profit:            b.profit,
			Orders:            len(b.orders),
			MoMPct:            pctChange(b.revenue, revenueByMonth, m.AddDate(0, -1, 0)),
			YoYPct:            pctChange(b.revenue, revenueByMonth, m.AddDate(-1, 0, 0)),
			CumulativeRevenue: cumulative,
		})
	}
	return trends
}

// pctChange computes 100*(curr-prev)/prev against the bucket at the
// comparison month, nil when that month is absent or prev is 0.
func pctChange(curr float64, revenueByMonth map[time.Time]float64, prevMonth time.Time) *float64 {
	prev, ok := revenueByMonth[prevMonth]
	if !ok || prev == 0 {
		return nil
	}
	pct := 100 * (curr - prev) / prev
	return &pct
}
