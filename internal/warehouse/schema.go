//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse persists the conformed star schema and the derived
// metric tables to PostgreSQL.
//
// Each run builds every table inside a scratch schema and publishes it
// by renaming the scratch schema over the live one, all within a single
// transaction. Readers either see the previous complete model or the
// new one, never a partial load; a failed run leaves the live schema
// untouched.
package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	// LiveSchema is the published schema readers consume.
	LiveSchema = "retail_dw"

	// buildSchema is the scratch schema a run loads into before the
	// atomic rename.
	buildSchema = "retail_dw_build"
)

// Star schema and metric table DDL. Executed with search_path set to
// the build schema, so all names are unqualified.
const createTablesSQL = `
-- Date dimension: one row per distinct order date.
CREATE TABLE dim_date (
    date_key    DATE PRIMARY KEY,
    year        INTEGER NOT NULL,
    quarter     INTEGER NOT NULL,
    month       INTEGER NOT NULL,
    day         INTEGER NOT NULL,
    day_of_week TEXT NOT NULL,
    is_weekend  BOOLEAN NOT NULL
);

-- Customer dimension: one row per distinct customer id.
CREATE TABLE dim_customer (
    customer_id   TEXT PRIMARY KEY,
    customer_name TEXT,
    segment       TEXT,
    city          TEXT,
    state         TEXT,
    country       TEXT,
    postal_code   TEXT,
    market        TEXT,
    region        TEXT
);

-- Product dimension: one row per distinct product id.
CREATE TABLE dim_product (
    product_id   TEXT PRIMARY KEY,
    product_name TEXT,
    category     TEXT,
    sub_category TEXT
);

-- Sales-owner dimension: one row per region.
CREATE TABLE dim_owner (
    region TEXT PRIMARY KEY,
    person TEXT NOT NULL
);

-- Sales fact: one row per raw order line.
CREATE TABLE fact_sales (
    row_id        BIGINT PRIMARY KEY,
    order_id      TEXT NOT NULL,
    order_date    DATE REFERENCES dim_date(date_key),
    customer_id   TEXT NOT NULL REFERENCES dim_customer(customer_id),
    product_id    TEXT NOT NULL REFERENCES dim_product(product_id),
    region        TEXT NOT NULL REFERENCES dim_owner(region),
    sales         DOUBLE PRECISION,
    quantity      BIGINT,
    discount      DOUBLE PRECISION,
    profit        DOUBLE PRECISION,
    shipping_cost DOUBLE PRECISION,
    profit_margin DOUBLE PRECISION NOT NULL,
    returned      BOOLEAN NOT NULL
);

CREATE INDEX idx_fact_sales_order_date ON fact_sales(order_date);
CREATE INDEX idx_fact_sales_customer ON fact_sales(customer_id);
CREATE INDEX idx_fact_sales_product ON fact_sales(product_id);
CREATE INDEX idx_fact_sales_region ON fact_sales(region);

-- Derived metric tables, consumed read-only by the BI layer.
CREATE TABLE metric_monthly_trends (
    month              DATE PRIMARY KEY,
    revenue            DOUBLE PRECISION NOT NULL,
    profit             DOUBLE PRECISION NOT NULL,
    orders             INTEGER NOT NULL,
    mom_pct            DOUBLE PRECISION,
    yoy_pct            DOUBLE PRECISION,
    cumulative_revenue DOUBLE PRECISION NOT NULL
);

CREATE TABLE metric_product_performance (
    product_id   TEXT PRIMARY KEY,
    product_name TEXT,
    category     TEXT,
    sub_category TEXT,
    revenue      DOUBLE PRECISION NOT NULL,
    profit       DOUBLE PRECISION NOT NULL,
    margin_pct   DOUBLE PRECISION,
    avg_discount DOUBLE PRECISION NOT NULL,
    units        BIGINT NOT NULL
);

CREATE TABLE metric_category_share (
    category             TEXT PRIMARY KEY,
    revenue              DOUBLE PRECISION NOT NULL,
    share_pct            DOUBLE PRECISION NOT NULL,
    cumulative_share_pct DOUBLE PRECISION NOT NULL
);

CREATE TABLE metric_customer_rfm (
    customer_id  TEXT PRIMARY KEY,
    recency_days INTEGER,
    frequency    INTEGER NOT NULL,
    monetary     DOUBLE PRECISION NOT NULL
);

CREATE TABLE metric_cohort_retention (
    cohort_month        DATE PRIMARY KEY,
    cohort_size         INTEGER NOT NULL,
    retained_next_month INTEGER NOT NULL,
    retention_pct       DOUBLE PRECISION NOT NULL
);

CREATE TABLE metric_regional_performance (
    region          TEXT PRIMARY KEY,
    revenue         DOUBLE PRECISION NOT NULL,
    profit          DOUBLE PRECISION NOT NULL,
    margin_pct      DOUBLE PRECISION,
    customers       INTEGER NOT NULL,
    return_rate_pct DOUBLE PRECISION NOT NULL
);

CREATE TABLE metric_kpi (
    total_revenue   DOUBLE PRECISION NOT NULL,
    total_profit    DOUBLE PRECISION NOT NULL,
    total_orders    INTEGER NOT NULL,
    total_customers INTEGER NOT NULL,
    margin_pct      DOUBLE PRECISION,
    repeat_pct      DOUBLE PRECISION NOT NULL
);

CREATE TABLE metric_discount_bands (
    discount   DOUBLE PRECISION PRIMARY KEY,
    orders     INTEGER NOT NULL,
    revenue    DOUBLE PRECISION NOT NULL,
    profit     DOUBLE PRECISION NOT NULL,
    margin_pct DOUBLE PRECISION
);

-- Run bookkeeping for the published model.
CREATE TABLE run_info (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// createBuildSchema drops any leftover scratch schema and creates a
// fresh one with all tables, scoped to the given transaction.
func createBuildSchema(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", buildSchema)); err != nil {
		return fmt.Errorf("failed to drop stale build schema: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", buildSchema)); err != nil {
		return fmt.Errorf("failed to create build schema: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL search_path TO %s", buildSchema)); err != nil {
		return fmt.Errorf("failed to set search_path: %w", err)
	}
	if _, err := tx.Exec(ctx, createTablesSQL); err != nil {
		return fmt.Errorf("failed to create warehouse tables: %w", err)
	}
	return nil
}

// swapSchemas replaces the live schema with the build schema.
func swapSchemas(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", LiveSchema)); err != nil {
		return fmt.Errorf("failed to drop previous schema: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("ALTER SCHEMA %s RENAME TO %s", buildSchema, LiveSchema)); err != nil {
		return fmt.Errorf("failed to publish schema: %w", err)
	}
	return nil
}
