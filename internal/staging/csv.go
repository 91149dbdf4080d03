//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package staging reads the raw record extracts (orders, returns,
// territory ownership) from CSV files into staging records.
//
// Header names are normalized (trimmed, lowercased, spaces and hyphens
// replaced with underscores) so "Order ID", "order id" and "order_id"
// all resolve to the same column. Empty cells become nulls for the
// nullable fields and empty strings for descriptive attributes.
package staging

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/internal/model"
)

// Column headers written by the seeder and accepted by the readers.
// Readers match on normalized names, so the exact casing of the source
// extract does not matter.
var (
	OrderColumns = []string{
		"row_id", "order_id", "order_date", "ship_date", "ship_mode",
		"customer_id", "customer_name", "segment",
		"city", "state", "country", "postal_code", "market", "region",
		"product_id", "category", "sub_category", "product_name",
		"order_priority",
		"sales", "quantity", "discount", "profit", "shipping_cost",
	}
	ReturnColumns    = []string{"order_id", "returned", "region"}
	OwnershipColumns = []string{"region", "person"}
)

// excelEpoch is the Windows Excel serial-date base.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"2/1/2006 15:04",
}

// NormalizeHeader normalizes a CSV header name.
func NormalizeHeader(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// header maps normalized column names to their index in a CSV record.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		h[NormalizeHeader(name)] = i
	}
	return h, nil
}

func (h header) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (h header) get(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ReadOrders reads raw order lines from a CSV file.
func ReadOrders(path string) ([]model.RawOrder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.require("row_id", "order_id", "order_date", "customer_id", "product_id", "sales"); err != nil {
		return nil, fmt.Errorf("orders file %s: %w", path, err)
	}

	var orders []model.RawOrder
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read orders line %d: %w", line+1, err)
		}
		line++

		orders = append(orders, model.RawOrder{
			RowID:     parseInt(h.get(record, "row_id")),
			OrderID:   h.get(record, "order_id"),
			OrderDate: parseDate(h.get(record, "order_date")),
			ShipDate:  parseDate(h.get(record, "ship_date")),
			ShipMode:  h.get(record, "ship_mode"),

			CustomerID:   h.get(record, "customer_id"),
			CustomerName: h.get(record, "customer_name"),
			Segment:      h.get(record, "segment"),

			City:       h.get(record, "city"),
			State:      h.get(record, "state"),
			Country:    h.get(record, "country"),
			PostalCode: h.get(record, "postal_code"),
			Market:     h.get(record, "market"),
			Region:     cleanText(h.get(record, "region")),

			ProductID:   h.get(record, "product_id"),
			ProductName: h.get(record, "product_name"),
			Category:    h.get(record, "category"),
			SubCategory: h.get(record, "sub_category"),

			OrderPriority: h.get(record, "order_priority"),

			Sales:        parseFloat(h.get(record, "sales")),
			Quantity:     parseInt(h.get(record, "quantity")),
			Discount:     parseFloat(h.get(record, "discount")),
			Profit:       parseFloat(h.get(record, "profit")),
			ShippingCost: parseFloat(h.get(record, "shipping_cost")),
		})
	}

	logging.Debug().
		Str("path", path).
		Int("rows", len(orders)).
		Msg("Read raw orders")

	return orders, nil
}

// ReadReturns reads return records from a CSV file.
func ReadReturns(path string) ([]model.RawReturn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open returns file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.require("order_id", "returned"); err != nil {
		return nil, fmt.Errorf("returns file %s: %w", path, err)
	}

	var returns []model.RawReturn
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read returns record: %w", err)
		}
		returns = append(returns, model.RawReturn{
			OrderID:  h.get(record, "order_id"),
			Region:   cleanText(h.get(record, "region")),
			Returned: parseReturned(h.get(record, "returned")),
		})
	}
	return returns, nil
}

// ReadOwnership reads region-to-salesperson records from a CSV file.
func ReadOwnership(path string) ([]model.RawOwnership, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ownership file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.require("region", "person"); err != nil {
		return nil, fmt.Errorf("ownership file %s: %w", path, err)
	}

	var owners []model.RawOwnership
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ownership record: %w", err)
		}
		owners = append(owners, model.RawOwnership{
			Region: cleanText(h.get(record, "region")),
			Person: cleanText(h.get(record, "person")),
		})
	}
	return owners, nil
}

func newReader(f *os.File) *csv.Reader {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r
}

// cleanText strips non-breaking spaces that show up in spreadsheet
// exports, then trims.
func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
}

// parseInt parses a nullable integer cell. Malformed values are
// coerced to null, matching the permissive staging contract.
func parseInt(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Spreadsheet exports sometimes render integers as "42.0".
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == float64(int64(f)) {
			n := int64(f)
			return &n
		}
		return nil
	}
	return &v
}

// parseFloat parses a nullable numeric cell, coercing malformed values
// to null.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseDate parses a nullable date cell. Accepts ISO dates, common US
// formats, and Excel serial numbers (base 1899-12-30). Unparseable
// values are coerced to null.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := model.DateOf(t)
			return &d
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		d := model.DateOf(excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour))))
		return &d
	}
	return nil
}

// parseReturned normalizes a returned flag. "yes", "true" and "1"
// (case-insensitive) mark a return; everything else does not.
func parseReturned(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}
