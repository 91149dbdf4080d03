//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline transforms the raw staging records into the
// conformed star schema: validation report, four dimensions, and the
// sales fact table.
package pipeline

import (
	"context"
	"fmt"

	"github.com/commercelab/retail-dw/internal/model"
)

// DuplicatePolicy controls how the builders treat duplicate natural
// keys with conflicting data.
type DuplicatePolicy string

const (
	// PolicyFirst keeps the deterministic first candidate (lowest row
	// id, ties by input position) and reports the rest.
	PolicyFirst DuplicatePolicy = "first"

	// PolicyFail aborts the run with an AmbiguousKeyError.
	PolicyFail DuplicatePolicy = "fail"
)

// ParsePolicy validates a policy string from config or flags.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case PolicyFirst, PolicyFail:
		return DuplicatePolicy(s), nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q (want %q or %q)", s, PolicyFirst, PolicyFail)
}

// Input is the immutable snapshot of raw records a run consumes.
type Input struct {
	Orders    []model.RawOrder
	Returns   []model.RawReturn
	Ownership []model.RawOwnership
}

// Result carries everything a run produced. The star model fully
// replaces any previously published tables; nothing is mutated in
// place.
type Result struct {
	Report  *Report
	Star    model.Star
	Summary *FactSummary
}

// Pipeline is an explicit run context. Each Run reads the input
// snapshot and produces a fresh Result; there is no shared state
// between runs.
type Pipeline struct {
	policy DuplicatePolicy
}

// New creates a pipeline with the given duplicate policy.
func New(policy DuplicatePolicy) *Pipeline {
	if policy == "" {
		policy = PolicyFirst
	}
	return &Pipeline{policy: policy}
}

// Run executes validate, dimension build, and fact build in order.
// The validator only reports; a fatal error from the builders aborts
// the run without producing a star model.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	report := Validate(in.Orders)
	report.Log()

	dims, err := BuildDimensions(ctx, in.Orders, in.Ownership, p.policy)
	if err != nil {
		return nil, fmt.Errorf("dimension build failed: %w", err)
	}

	facts, summary, err := BuildFacts(in.Orders, dims, in.Returns, p.policy)
	if err != nil {
		return nil, fmt.Errorf("fact build failed: %w", err)
	}

	return &Result{
		Report: report,
		Star: model.Star{
			Dates:     dims.Dates,
			Customers: dims.Customers,
			Products:  dims.Products,
			Owners:    dims.Owners,
			Facts:     facts,
		},
		Summary: summary,
	}, nil
}
