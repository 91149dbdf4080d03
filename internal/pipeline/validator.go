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
	"fmt"
	"sort"

	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/internal/model"
)

// maxDuplicateGroups caps the duplicate group lists in the report.
const maxDuplicateGroups = 50

// Report is the validator's structured output. The validator never
// fails a run; it reports and leaves the pass/fail policy to the
// caller.
type Report struct {
	TotalRows int

	// Null required keys.
	NullOrderID int
	NullRowID   int

	// Duplicate groups, sorted descending by size, capped to the top
	// maxDuplicateGroups.
	DuplicateRowIDs     []DuplicateGroup
	DuplicateOrderLines []DuplicateGroup

	// Out-of-domain numeric values.
	NegativeQuantity   int
	NegativeSales      int
	NegativeProfit     int
	DiscountOutOfRange int

	// Null core measures.
	NullSales    int
	NullQuantity int
	NullProfit   int

	// Distribution aggregates for eyeballing.
	Categories []GroupStat
	Markets    []GroupStat
}

// DuplicateGroup is one group of rows sharing a key that should have
// been unique.
type DuplicateGroup struct {
	Key   string
	Count int
}

// GroupStat is a per-group row count and sales sum.
type GroupStat struct {
	Key   string
	Rows  int
	Sales float64
}

// Validate runs the integrity and range checks over the raw orders.
// Read only; the input is never mutated.
func Validate(orders []model.RawOrder) *Report {
	r := &Report{TotalRows: len(orders)}

	rowIDCounts := make(map[int64]int)
	lineCounts := make(map[string]int)
	categories := make(map[string]*GroupStat)
	markets := make(map[string]*GroupStat)

	for i := range orders {
		o := &orders[i]

		if o.OrderID == "" {
			r.NullOrderID++
		}
		if o.RowID == nil {
			r.NullRowID++
		} else {
			rowIDCounts[*o.RowID]++
		}
		if o.OrderID != "" && o.ProductID != "" {
			lineCounts[o.OrderID+"|"+o.ProductID]++
		}

		if o.Quantity != nil && *o.Quantity < 0 {
			r.NegativeQuantity++
		}
		if o.Sales != nil && *o.Sales < 0 {
			r.NegativeSales++
		}
		if o.Profit != nil && *o.Profit < 0 {
			r.NegativeProfit++
		}
		if o.Discount != nil && (*o.Discount < 0 || *o.Discount > 1) {
			r.DiscountOutOfRange++
		}

		if o.Sales == nil {
			r.NullSales++
		}
		if o.Quantity == nil {
			r.NullQuantity++
		}
		if o.Profit == nil {
			r.NullProfit++
		}

		accumulate(categories, o.Category, model.Float(o.Sales))
		accumulate(markets, o.Market, model.Float(o.Sales))
	}

	for id, n := range rowIDCounts {
		if n > 1 {
			r.DuplicateRowIDs = append(r.DuplicateRowIDs, DuplicateGroup{
				Key:   fmt.Sprintf("%d", id),
				Count: n,
			})
		}
	}
	for key, n := range lineCounts {
		if n > 1 {
			r.DuplicateOrderLines = append(r.DuplicateOrderLines, DuplicateGroup{
				Key:   key,
				Count: n,
			})
		}
	}
	sortDuplicates(r.DuplicateRowIDs)
	sortDuplicates(r.DuplicateOrderLines)
	if len(r.DuplicateRowIDs) > maxDuplicateGroups {
		r.DuplicateRowIDs = r.DuplicateRowIDs[:maxDuplicateGroups]
	}
	if len(r.DuplicateOrderLines) > maxDuplicateGroups {
		r.DuplicateOrderLines = r.DuplicateOrderLines[:maxDuplicateGroups]
	}

	r.Categories = sortedStats(categories)
	r.Markets = sortedStats(markets)

	return r
}

// Violations returns the total count of violating rows. Duplicate
// groups count each extra row beyond the first.
func (r *Report) Violations() int {
	total := r.NullOrderID + r.NullRowID +
		r.NegativeQuantity + r.NegativeSales + r.NegativeProfit +
		r.DiscountOutOfRange
	for _, g := range r.DuplicateRowIDs {
		total += g.Count - 1
	}
	return total
}

// Log emits the report through the structured logger.
func (r *Report) Log() {
	logging.Info().
		Int("rows", r.TotalRows).
		Int("null_order_id", r.NullOrderID).
		Int("null_row_id", r.NullRowID).
		Int("duplicate_row_id_groups", len(r.DuplicateRowIDs)).
		Int("duplicate_order_line_groups", len(r.DuplicateOrderLines)).
		Int("negative_quantity", r.NegativeQuantity).
		Int("negative_sales", r.NegativeSales).
		Int("negative_profit", r.NegativeProfit).
		Int("discount_out_of_range", r.DiscountOutOfRange).
		Int("null_sales", r.NullSales).
		Int("null_quantity", r.NullQuantity).
		Int("null_profit", r.NullProfit).
		Msg("Validation report")

	for _, g := range r.DuplicateRowIDs {
		logging.Warn().
			Str("row_id", g.Key).
			Int("count", g.Count).
			Msg("Duplicate row id")
	}
}

func accumulate(groups map[string]*GroupStat, key string, sales float64) {
	g, ok := groups[key]
	if !ok {
		g = &GroupStat{Key: key}
		groups[key] = g
	}
	g.Rows++
	g.Sales += sales
}

func sortDuplicates(groups []DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
}

func sortedStats(groups map[string]*GroupStat) []GroupStat {
	out := make([]GroupStat, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
