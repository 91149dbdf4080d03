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
	"strings"
)

// maxReportedRows caps how many offending row ids an error message names.
const maxReportedRows = 10

// ReferentialIntegrityError is fatal: one or more fact rows reference a
// dimension key that does not exist in the built dimensions.
type ReferentialIntegrityError struct {
	// Dimension is the dimension that failed to resolve (date,
	// customer, product, owner).
	Dimension string

	// RowIDs lists the offending raw order row ids.
	RowIDs []int64
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("referential integrity violation: %d row(s) reference a missing %s dimension key (row ids: %s)",
		len(e.RowIDs), e.Dimension, formatRowIDs(e.RowIDs))
}

// AmbiguousKeyError is fatal under the "fail" duplicate policy: the same
// natural key appeared more than once with conflicting data and no
// tie-break was allowed.
type AmbiguousKeyError struct {
	// Entity names the table being built (customer, product, owner,
	// sales_fact).
	Entity string

	// Key is the conflicting natural key value.
	Key string

	// Count is how many candidate rows carried the key.
	Count int
}

func (e *AmbiguousKeyError) Error() string {
	return fmt.Sprintf("ambiguous %s key %q: %d conflicting rows and duplicate policy is %q",
		e.Entity, e.Key, e.Count, PolicyFail)
}

func formatRowIDs(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i == maxReportedRows {
			fmt.Fprintf(&b, ", ... %d more", len(ids)-maxReportedRows)
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", id)
	}
	return b.String()
}
