//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for retail-dw.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/commercelab/retail-dw/internal/config"
	"github.com/commercelab/retail-dw/internal/logging"
	"github.com/commercelab/retail-dw/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "retail-dw",
		Short: "Retail staging-to-star-schema warehouse pipeline",
		Long: `retail-dw transforms flat retail transaction extracts (orders,
returns, sales-territory ownership) into a validated star schema in
PostgreSQL and derives business metric tables from the conformed model.

Each run validates the raw extract, rebuilds the four dimensions and
the sales fact table from scratch, and publishes them atomically: the
previous model stays visible until the new one is complete.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./retail-dw.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tablesCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables a run publishes",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Conformed model (schema retail_dw):")
		cmd.Println()
		cmd.Println("  dim_date                     - calendar attributes per order date")
		cmd.Println("  dim_customer                 - one row per customer id")
		cmd.Println("  dim_product                  - one row per product id")
		cmd.Println("  dim_owner                    - responsible salesperson per region")
		cmd.Println("  fact_sales                   - one row per raw order line")
		cmd.Println()
		cmd.Println("Derived metric tables:")
		cmd.Println()
		cmd.Println("  metric_kpi                   - executive overview snapshot")
		cmd.Println("  metric_monthly_trends        - revenue/profit/orders with MoM and YoY")
		cmd.Println("  metric_product_performance   - profitability per product")
		cmd.Println("  metric_category_share        - category revenue share (Pareto)")
		cmd.Println("  metric_customer_rfm          - recency/frequency/monetary per customer")
		cmd.Println("  metric_cohort_retention      - strict next-month cohort retention")
		cmd.Println("  metric_regional_performance  - revenue/margin/returns per region")
		cmd.Println("  metric_discount_bands        - profitability per discount value")
	},
}
