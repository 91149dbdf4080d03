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

// FactSummary describes what the fact build did with the raw rows.
type FactSummary struct {
	InputRows        int
	FactRows         int
	SkippedNullKey   int
	SkippedDuplicate int
	ReturnedRows     int
}

// BuildFacts emits one fact row per raw order line, resolving the four
// dimension keys, recomputing the profit margin, and flagging returns.
//
// Rows without a row id or order id cannot key a fact and are excluded
// (counted in the summary). Duplicate row ids follow the same policy as
// the dimension builder: under PolicyFirst the occurrence with the
// earliest input position is kept, under PolicyFail the build aborts.
// Output is ordered by row id ascending.
func BuildFacts(orders []model.RawOrder, dims *Dimensions, returns []model.RawReturn, policy DuplicatePolicy) ([]model.SalesFact, *FactSummary, error) {
	summary := &FactSummary{InputRows: len(orders)}

	returned := make(map[string]struct{})
	for _, r := range returns {
		if r.Returned && r.OrderID != "" {
			returned[r.OrderID] = struct{}{}
		}
	}

	missing := make(map[string][]int64)
	seen := make(map[int64]struct{}, len(orders))
	facts := make([]model.SalesFact, 0, len(orders))

	for i := range orders {
		o := &orders[i]

		if o.RowID == nil || o.OrderID == "" {
			summary.SkippedNullKey++
			continue
		}
		rowID := *o.RowID

		if _, dup := seen[rowID]; dup {
			if policy == PolicyFail {
				return nil, nil, &AmbiguousKeyError{
					Entity: "sales_fact",
					Key:    fmt.Sprintf("row_id %d", rowID),
					Count:  2,
				}
			}
			summary.SkippedDuplicate++
			continue
		}
		seen[rowID] = struct{}{}

		if o.OrderDate != nil && !dims.HasDate(*o.OrderDate) {
			missing["date"] = append(missing["date"], rowID)
		}
		if !dims.HasCustomer(o.CustomerID) {
			missing["customer"] = append(missing["customer"], rowID)
		}
		if !dims.HasProduct(o.ProductID) {
			missing["product"] = append(missing["product"], rowID)
		}
		if !dims.HasOwner(o.Region) {
			missing["owner"] = append(missing["owner"], rowID)
		}

		_, isReturned := returned[o.OrderID]
		if isReturned {
			summary.ReturnedRows++
		}

		facts = append(facts, model.SalesFact{
			RowID:        rowID,
			OrderID:      o.OrderID,
			OrderDate:    o.OrderDate,
			CustomerID:   o.CustomerID,
			ProductID:    o.ProductID,
			Region:       o.Region,
			Sales:        o.Sales,
			Quantity:     o.Quantity,
			Discount:     o.Discount,
			Profit:       o.Profit,
			ShippingCost: o.ShippingCost,
			ProfitMargin: profitMargin(o.Profit, o.Sales),
			Returned:     isReturned,
		})
	}

	for _, dim := range []string{"date", "customer", "product", "owner"} {
		if rows := missing[dim]; len(rows) > 0 {
			return nil, nil, &ReferentialIntegrityError{Dimension: dim, RowIDs: rows}
		}
	}

	sort.Slice(facts, func(i, j int) bool { return facts[i].RowID < facts[j].RowID })
	summary.FactRows = len(facts)

	logging.Info().
		Int("input_rows", summary.InputRows).
		Int("fact_rows", summary.FactRows).
		Int("skipped_null_key", summary.SkippedNullKey).
		Int("skipped_duplicate", summary.SkippedDuplicate).
		Int("returned_rows", summary.ReturnedRows).
		Msg("Fact table built")

	return facts, summary, nil
}

// profitMargin recomputes profit/sales, returning exactly 0 when sales
// is null or 0 so the result is never NaN or Inf.
func profitMargin(profit, sales *float64) float64 {
	s := model.Float(sales)
	if s == 0 {
		return 0
	}
	return model.Float(profit) / s
}
