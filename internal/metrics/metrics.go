//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package metrics derives the business metric tables from the conformed
// star schema. Every function is a pure, read-only aggregation: given
// identical inputs the outputs are identical, including ordering.
//
// The metric families have no data dependency on each other, so Compute
// runs them concurrently once the fact table is finalized.
package metrics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/commercelab/retail-dw/internal/model"
)

// Tables bundles all derived metric tables of one run.
type Tables struct {
	Growth     []MonthlyTrend
	Products   []ProductProfitability
	Categories []CategoryShare
	Retention  *RetentionReport
	Regions    []RegionPerformance
	KPI        KPI
	Discounts  []DiscountBand
}

// Compute derives all metric families from the star model, in
// parallel. The model is treated as immutable; the engine assumes a
// valid conformed model and does not re-validate.
func Compute(ctx context.Context, star *model.Star) (*Tables, error) {
	t := &Tables{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t.Growth = GrowthTrends(star.Facts)
		return nil
	})
	g.Go(func() error {
		t.Products = ProductProfitabilities(star.Facts, star.Products)
		t.Categories = CategoryShares(star.Facts, star.Products)
		return nil
	})
	g.Go(func() error {
		t.Retention = Retention(star.Facts)
		return nil
	})
	g.Go(func() error {
		t.Regions = RegionalPerformance(star.Facts)
		return nil
	})
	g.Go(func() error {
		t.KPI = Overview(star.Facts)
		t.Discounts = DiscountProfitability(star.Facts)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}
