//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commercelab/retail-dw/internal/model"
)

// ReadStar loads the published star model back out of the live schema,
// ordered by natural keys so repeated reads are identical.
func ReadStar(ctx context.Context, pool *pgxpool.Pool) (*model.Star, error) {
	star := &model.Star{}

	rows, err := pool.Query(ctx, fmt.Sprintf(`
        SELECT date_key, year, quarter, month, day, day_of_week, is_weekend
        FROM %s.dim_date ORDER BY date_key`, LiveSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to read dim_date: %w", err)
	}
	for rows.Next() {
		var d model.DateDim
		if err := rows.Scan(&d.Date, &d.Year, &d.Quarter, &d.Month, &d.Day, &d.DayOfWeek, &d.Weekend); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan dim_date: %w", err)
		}
		d.Date = model.DateOf(d.Date)
		star.Dates = append(star.Dates, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dim_date: %w", err)
	}

	rows, err = pool.Query(ctx, fmt.Sprintf(`
        SELECT customer_id, customer_name, segment, city, state, country, postal_code, market, region
        FROM %s.dim_customer ORDER BY customer_id`, LiveSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to read dim_customer: %w", err)
	}
	for rows.Next() {
		var c model.CustomerDim
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.Segment, &c.City, &c.State, &c.Country, &c.PostalCode, &c.Market, &c.Region); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan dim_customer: %w", err)
		}
		star.Customers = append(star.Customers, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dim_customer: %w", err)
	}

	rows, err = pool.Query(ctx, fmt.Sprintf(`
        SELECT product_id, product_name, category, sub_category
        FROM %s.dim_product ORDER BY product_id`, LiveSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to read dim_product: %w", err)
	}
	for rows.Next() {
		var p model.ProductDim
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Category, &p.SubCategory); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan dim_product: %w", err)
		}
		star.Products = append(star.Products, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dim_product: %w", err)
	}

	rows, err = pool.Query(ctx, fmt.Sprintf(`
        SELECT region, person FROM %s.dim_owner ORDER BY region`, LiveSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to read dim_owner: %w", err)
	}
	for rows.Next() {
		var o model.OwnerDim
		if err := rows.Scan(&o.Region, &o.Person); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan dim_owner: %w", err)
		}
		star.Owners = append(star.Owners, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dim_owner: %w", err)
	}

	rows, err = pool.Query(ctx, fmt.Sprintf(`
        SELECT row_id, order_id, order_date, customer_id, product_id, region,
               sales, quantity, discount, profit, shipping_cost, profit_margin, returned
        FROM %s.fact_sales ORDER BY row_id`, LiveSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to read fact_sales: %w", err)
	}
	for rows.Next() {
		var f model.SalesFact
		var orderDate *time.Time
		if err := rows.Scan(&f.RowID, &f.OrderID, &orderDate, &f.CustomerID, &f.ProductID, &f.Region,
			&f.Sales, &f.Quantity, &f.Discount, &f.Profit, &f.ShippingCost, &f.ProfitMargin, &f.Returned); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan fact_sales: %w", err)
		}
		if orderDate != nil {
			d := model.DateOf(*orderDate)
			f.OrderDate = &d
		}
		star.Facts = append(star.Facts, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fact_sales: %w", err)
	}

	return star, nil
}

// LastRunInfo returns the run bookkeeping of the published model.
func LastRunInfo(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf("SELECT key, value FROM %s.run_info", LiveSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to read run info: %w", err)
	}
	defer rows.Close()

	info := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan run info: %w", err)
		}
		info[k] = v
	}
	return info, rows.Err()
}
