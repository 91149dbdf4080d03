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

// CustomerRFM is the recency/frequency/monetary score for one customer.
type CustomerRFM struct {
	CustomerID string

	// RecencyDays is the whole-day gap between the customer's latest
	// order date and the global latest order date. Nil when the
	// customer has no dated orders.
	RecencyDays *int

	// Frequency is the distinct order count.
	Frequency int

	// Monetary is total sales.
	Monetary float64
}

// Cohort is one acquisition-month cohort with strict next-month
// retention: a customer counts as retained only with an order in
// exactly the following calendar month.
type Cohort struct {
	Month             time.Time
	Size              int
	RetainedNextMonth int
	RetentionPct      float64
}

// RetentionReport bundles the customer-retention metric family.
type RetentionReport struct {
	RFM []CustomerRFM

	// RepeatPct is 100 * (customers with more than one distinct
	// order) / (all customers). 0 when there are no customers.
	RepeatPct float64

	Cohorts []Cohort
}

// Retention computes RFM scores, the repeat-purchase rate, and
// next-month cohort retention from the fact table.
func Retention(facts []model.SalesFact) *RetentionReport {
	type cust struct {
		orders      map[string]struct{}
		monetary    float64
		firstDate   *time.Time
		lastDate    *time.Time
		orderMonths map[time.Time]struct{}
	}
	customers := make(map[string]*cust)
	var globalMax *time.Time

	for i := range facts {
		f := &facts[i]
		c, ok := customers[f.CustomerID]
		if !ok {
			c = &cust{
				orders:      make(map[string]struct{}),
				orderMonths: make(map[time.Time]struct{}),
			}
			customers[f.CustomerID] = c
		}
		c.orders[f.OrderID] = struct{}{}
		c.monetary += model.Float(f.Sales)

		if f.OrderDate == nil {
			continue
		}
		d := model.DateOf(*f.OrderDate)
		if c.firstDate == nil || d.Before(*c.firstDate) {
			t := d
			c.firstDate = &t
		}
		if c.lastDate == nil || d.After(*c.lastDate) {
			t := d
			c.lastDate = &t
		}
		if globalMax == nil || d.After(*globalMax) {
			t := d
			globalMax = &t
		}
		c.orderMonths[model.MonthOf(d)] = struct{}{}
	}

	report := &RetentionReport{}

	repeat := 0
	cohortSize := make(map[time.Time]int)
	cohortRetained := make(map[time.Time]int)

	ids := make([]string, 0, len(customers))
	for id := range customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := customers[id]
		rfm := CustomerRFM{
			CustomerID: id,
			Frequency:  len(c.orders),
			Monetary:   c.monetary,
		}
		if c.lastDate != nil && globalMax != nil {
			days := int(globalMax.Sub(*c.lastDate).Hours() / 24)
			rfm.RecencyDays = &days
		}
		report.RFM = append(report.RFM, rfm)

		if len(c.orders) > 1 {
			repeat++
		}

		if c.firstDate != nil {
			cohort := model.MonthOf(*c.firstDate)
			cohortSize[cohort]++
			if _, ok := c.orderMonths[cohort.AddDate(0, 1, 0)]; ok {
				cohortRetained[cohort]++
			}
		}
	}

	if len(customers) > 0 {
		report.RepeatPct = 100 * float64(repeat) / float64(len(customers))
	}

	months := make([]time.Time, 0, len(cohortSize))
	for m := range cohortSize {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	for _, m := range months {
		size := cohortSize[m]
		retained := cohortRetained[m]
		report.Cohorts = append(report.Cohorts, Cohort{
			Month:             m,
			Size:              size,
			RetainedNextMonth: retained,
			RetentionPct:      100 * float64(retained) / float64(size),
		})
	}

	return report
}
