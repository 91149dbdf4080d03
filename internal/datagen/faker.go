//-------------------------------------------------------------------------
//
// Retail Data Warehouse ETL
//
// Copyright (c) 2025 - 2026, CommerceLab, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates synthetic superstore-style staging extracts
// for demos and test fixtures.
package datagen

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for
// reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Name generates a random full name.
func (f *Faker) Name() string {
	return f.faker.Name()
}

// City generates a random city name.
func (f *Faker) City() string {
	return f.faker.City()
}

// State generates a random US state name.
func (f *Faker) State() string {
	return f.faker.State()
}

// Zip generates a random postal code.
func (f *Faker) Zip() string {
	return f.faker.Zip()
}

// ProductName generates a random product name.
func (f *Faker) ProductName() string {
	return f.faker.ProductName()
}

// Number generates a random integer in [min, max].
func (f *Faker) Number(min, max int) int {
	return f.faker.Number(min, max)
}

// Float64Range generates a random float in [min, max).
func (f *Faker) Float64Range(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Pick selects a random element from choices.
func (f *Faker) Pick(choices []string) string {
	return choices[f.faker.Number(0, len(choices)-1)]
}

// DateRange generates a random date in [start, end].
func (f *Faker) DateRange(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end)
}

// Chance returns true with the given probability.
func (f *Faker) Chance(p float64) bool {
	return f.faker.Float64Range(0, 1) < p
}

// ID formats a prefixed sequential identifier, e.g. "CU-10042".
func ID(prefix string, n int) string {
	return fmt.Sprintf("%s-%d", prefix, n)
}
