package domain

import (
	"github.com/shopspring/decimal"
)

// StatementKind identifies one of the three quarterly statements
type StatementKind string

const (
	StatementIncome   StatementKind = "income"
	StatementBalance  StatementKind = "balance"
	StatementCashFlow StatementKind = "cash"
)

// StatementKinds lists the statement kinds in load order
var StatementKinds = []StatementKind{StatementIncome, StatementBalance, StatementCashFlow}

// StatementRecord is one quarterly statement as delivered by a data provider.
// Field values are optional; a null or missing field is not an error.
type StatementRecord struct {
	PeriodEnding string                         `json:"period_ending" validate:"required,period"`
	Fields       map[string]decimal.NullDecimal `json:"fields"`
}

// Value returns the named field when it is present and non-null
func (r StatementRecord) Value(name string) (decimal.Decimal, bool) {
	v, ok := r.Fields[name]
	if !ok || !v.Valid {
		return decimal.Zero, false
	}
	return v.Decimal, true
}

// Float returns the first present field among names as a float64.
// Names are tried in order so callers can pass provider aliases.
func (r StatementRecord) Float(names ...string) (float64, bool) {
	for _, name := range names {
		if v, ok := r.Value(name); ok {
			return v.InexactFloat64(), true
		}
	}
	return 0, false
}

// StatementSet bundles the three statement collections of one entity
type StatementSet struct {
	Ticker  string            `json:"ticker" validate:"required,ticker"`
	Income  []StatementRecord `json:"income" validate:"dive"`
	Balance []StatementRecord `json:"balance" validate:"dive"`
	Cash    []StatementRecord `json:"cash" validate:"dive"`
}

// Records returns the collection for the given kind
func (s StatementSet) Records(kind StatementKind) []StatementRecord {
	switch kind {
	case StatementIncome:
		return s.Income
	case StatementBalance:
		return s.Balance
	case StatementCashFlow:
		return s.Cash
	default:
		return nil
	}
}

// IsEmpty reports whether all three collections are empty
func (s StatementSet) IsEmpty() bool {
	return len(s.Income) == 0 && len(s.Balance) == 0 && len(s.Cash) == 0
}
