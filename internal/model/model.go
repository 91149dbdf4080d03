// Package model defines the staging records and the conformed
// dimensional model produced by a pipeline run.
package model

import "time"

// RawOrder is one order line as captured in the staging extract.
// Pointer fields are nullable: an empty cell in the extract is nil.
type RawOrder struct {
	RowID     *int64
	OrderID   string
	OrderDate *time.Time
	ShipDate  *time.Time
	ShipMode  string

	CustomerID   string
	CustomerName string
	Segment      string

	City       string
	State      string
	Country    string
	PostalCode string
	Market     string
	Region     string

	ProductID   string
	ProductName string
	Category    string
	SubCategory string

	OrderPriority string

	Sales        *float64
	Quantity     *int64
	Discount     *float64
	Profit       *float64
	ShippingCost *float64
}

// RawReturn marks an order as returned.
type RawReturn struct {
	OrderID  string
	Region   string
	Returned bool
}

// RawOwnership maps a sales region to the responsible salesperson.
type RawOwnership struct {
	Region string
	Person string
}

// DateDim is the date dimension, keyed by calendar date (UTC midnight).
type DateDim struct {
	Date      time.Time
	Year      int
	Quarter   int
	Month     int
	Day       int
	DayOfWeek string
	Weekend   bool
}

// CustomerDim is the customer dimension, keyed by customer id.
type CustomerDim struct {
	CustomerID string
	Name       string
	Segment    string
	City       string
	State      string
	Country    string
	PostalCode string
	Market     string
	Region     string
}

// ProductDim is the product dimension, keyed by product id.
type ProductDim struct {
	ProductID   string
	Name        string
	Category    string
	SubCategory string
}

// OwnerDim is the sales-owner dimension, keyed by region.
type OwnerDim struct {
	Region string
	Person string
}

// SalesFact is one fact row per raw order line. RowID is the natural key.
// OrderDate is nil when the raw line carried no order date; such rows
// reference no date-dimension row.
type SalesFact struct {
	RowID      int64
	OrderID    string
	OrderDate  *time.Time
	CustomerID string
	ProductID  string
	Region     string

	Sales        *float64
	Quantity     *int64
	Discount     *float64
	Profit       *float64
	ShippingCost *float64

	// ProfitMargin is always recomputed as profit/sales, 0 when sales
	// is null or 0. Never NaN or Inf.
	ProfitMargin float64
	Returned     bool
}

// Star bundles the conformed dimensional model of one pipeline run.
type Star struct {
	Dates     []DateDim
	Customers []CustomerDim
	Products  []ProductDim
	Owners    []OwnerDim
	Facts     []SalesFact
}

// Float dereferences a nullable measure, treating null as 0.
func Float(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Int dereferences a nullable count, treating null as 0.
func Int(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthOf truncates a timestamp to the first day of its UTC calendar month.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
