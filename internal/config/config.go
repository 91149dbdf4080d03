//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for retail-dw.
// Configuration is loaded from config files and CLI flags (no
// environment variables). CLI flags take precedence over config file
// values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for retail-dw.
type Config struct {
	// Connection is the PostgreSQL connection string for the warehouse.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Input holds the staging extract locations.
	Input InputConfig `mapstructure:"input"`

	// Run holds configuration for the run subcommand.
	Run RunConfig `mapstructure:"run"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// InputConfig locates the three raw CSV extracts.
type InputConfig struct {
	Orders  string `mapstructure:"orders"`
	Returns string `mapstructure:"returns"`
	People  string `mapstructure:"people"`
}

// RunConfig holds configuration for the transformation run.
type RunConfig struct {
	// DuplicatePolicy is "first" (deterministic tie-break) or "fail".
	DuplicatePolicy string `mapstructure:"duplicate_policy"`

	// FailOnViolations aborts the run before the dimension build when
	// the validator reports any violation.
	FailOnViolations bool `mapstructure:"fail_on_violations"`

	// ExportDir, when set, additionally writes the metric tables as
	// CSV files to this directory.
	ExportDir string `mapstructure:"export_dir"`

	// SkipWarehouse computes but does not publish (dry run).
	SkipWarehouse bool `mapstructure:"skip_warehouse"`
}

// SeedConfig holds configuration for synthetic extract generation.
type SeedConfig struct {
	Dir        string  `mapstructure:"dir"`
	Orders     int     `mapstructure:"orders"`
	Customers  int     `mapstructure:"customers"`
	Products   int     `mapstructure:"products"`
	ReturnRate float64 `mapstructure:"return_rate"`
	RandomSeed uint64  `mapstructure:"random_seed"`
	Anomalies  bool    `mapstructure:"anomalies"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Input: InputConfig{
			Orders:  "data/raw/orders.csv",
			Returns: "data/raw/returns.csv",
			People:  "data/raw/people.csv",
		},
		Run: RunConfig{
			DuplicatePolicy: "first",
		},
		Seed: SeedConfig{
			Dir:        "data/raw",
			Orders:     2000,
			Customers:  300,
			Products:   150,
			ReturnRate: 0.06,
			RandomSeed: 1,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./retail-dw.yaml
// 3. ~/.config/retail-dw/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("retail-dw")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "retail-dw"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// ValidateInput checks that the staging extract paths are set.
func (c *Config) ValidateInput() error {
	if c.Input.Orders == "" {
		return fmt.Errorf("orders path is required")
	}
	if c.Input.Returns == "" {
		return fmt.Errorf("returns path is required")
	}
	if c.Input.People == "" {
		return fmt.Errorf("people path is required")
	}
	return nil
}

// ValidateRun checks configuration required for the run command.
func (c *Config) ValidateRun() error {
	if err := c.ValidateInput(); err != nil {
		return err
	}
	if !c.Run.SkipWarehouse && c.Connection == "" {
		return fmt.Errorf("connection string is required (or use --skip-warehouse)")
	}
	if p := c.Run.DuplicatePolicy; p != "first" && p != "fail" {
		return fmt.Errorf("duplicate_policy must be 'first' or 'fail'")
	}
	return nil
}

// ValidateMetrics checks configuration required for the metrics command.
func (c *Config) ValidateMetrics() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if c.Seed.Dir == "" {
		return fmt.Errorf("seed output directory is required")
	}
	if c.Seed.Orders < 1 {
		return fmt.Errorf("seed orders must be at least 1")
	}
	if c.Seed.Customers < 1 {
		return fmt.Errorf("seed customers must be at least 1")
	}
	if c.Seed.Products < 1 {
		return fmt.Errorf("seed products must be at least 1")
	}
	if c.Seed.ReturnRate < 0 || c.Seed.ReturnRate > 1 {
		return fmt.Errorf("seed return_rate must be within [0,1]")
	}
	return nil
}
