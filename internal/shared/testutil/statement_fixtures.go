package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"distresscli/pkg/contracts/domain"
)

// DefaultPeriods are the period ends of the default eight-quarter calendar
var DefaultPeriods = []string{
	"2022-09-30", "2022-12-31", "2023-03-31", "2023-06-30",
	"2023-09-30", "2023-12-31", "2024-03-31", "2024-06-30",
}

// SteadyScore is the distress score of SteadySet under the default calendar
const SteadyScore = 20.2

// StatementFixtures provides statement test data and file helpers
type StatementFixtures struct {
	TestDataDir string
}

// NewStatementFixtures creates a new fixtures manager
func NewStatementFixtures(testDataDir string) *StatementFixtures {
	return &StatementFixtures{TestDataDir: testDataDir}
}

// Record builds a statement record from plain values
func Record(period string, fields map[string]float64) domain.StatementRecord {
	r := domain.StatementRecord{
		PeriodEnding: period,
		Fields:       make(map[string]decimal.NullDecimal, len(fields)),
	}
	for k, v := range fields {
		r.Fields[k] = decimal.NewNullDecimal(decimal.NewFromFloat(v))
	}
	return r
}

// SteadySet returns eight identical quarters for ticker.
// Every quarter reports revenue 1000, net income 100, total assets 2000,
// total liabilities 1000, current assets 600, current liabilities 300,
// retained earnings 400 and operating cash flow 120.
func (f *StatementFixtures) SteadySet(ticker string) domain.StatementSet {
	set := domain.StatementSet{Ticker: ticker}
	for _, period := range DefaultPeriods {
		set.Income = append(set.Income, Record(period, map[string]float64{
			"total_revenue":          1000,
			"net_income":             100,
			"total_operating_income": 0,
		}))
		set.Balance = append(set.Balance, Record(period, map[string]float64{
			"total_assets":              2000,
			"total_liabilities":         1000,
			"total_current_assets":      600,
			"total_current_liabilities": 300,
			"retained_earnings":         400,
		}))
		set.Cash = append(set.Cash, Record(period, map[string]float64{
			"operating_cash_flow": 120,
		}))
	}
	return set
}

// EmptySet returns a set with no statements
func (f *StatementFixtures) EmptySet(ticker string) domain.StatementSet {
	return domain.StatementSet{Ticker: ticker}
}

// WriteJSON marshals v into name under the fixture directory
func (f *StatementFixtures) WriteJSON(name string, v interface{}) (string, error) {
	if err := os.MkdirAll(f.TestDataDir, 0755); err != nil {
		return "", fmt.Errorf("create test data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal fixture: %w", err)
	}

	path := filepath.Join(f.TestDataDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write fixture: %w", err)
	}
	return path, nil
}

// WriteRaw writes content as name under the fixture directory
func (f *StatementFixtures) WriteRaw(name, content string) (string, error) {
	if err := os.MkdirAll(f.TestDataDir, 0755); err != nil {
		return "", fmt.Errorf("create test data dir: %w", err)
	}
	path := filepath.Join(f.TestDataDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write fixture: %w", err)
	}
	return path, nil
}
