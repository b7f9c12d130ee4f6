package distress

import (
	"github.com/shopspring/decimal"

	"distresscli/pkg/contracts/domain"
)

// quarterValues are the raw statement values of one synthetic quarter
type quarterValues struct {
	rev, ni, oi, ta, tl, ca, cl, re, ocf float64
}

func record(period string, fields map[string]float64) domain.StatementRecord {
	r := domain.StatementRecord{
		PeriodEnding: period,
		Fields:       make(map[string]decimal.NullDecimal, len(fields)),
	}
	for k, v := range fields {
		r.Fields[k] = decimal.NewNullDecimal(decimal.NewFromFloat(v))
	}
	return r
}

// buildSet creates a statement set whose quarters occupy the given calendar
// positions of the default calendar
func buildSet(ticker string, positions []int, values func(pos int) quarterValues) domain.StatementSet {
	targets := DefaultCalendar().Targets()
	set := domain.StatementSet{Ticker: ticker}

	for _, pos := range positions {
		v := values(pos)
		period := targets[pos].PeriodEnd
		set.Income = append(set.Income, record(period, map[string]float64{
			"total_revenue":          v.rev,
			"net_income":             v.ni,
			"total_operating_income": v.oi,
		}))
		set.Balance = append(set.Balance, record(period, map[string]float64{
			"total_assets":              v.ta,
			"total_liabilities":         v.tl,
			"total_current_assets":      v.ca,
			"total_current_liabilities": v.cl,
			"retained_earnings":         v.re,
		}))
		set.Cash = append(set.Cash, record(period, map[string]float64{
			"operating_cash_flow": v.ocf,
		}))
	}

	return set
}

func positionsFrom(start int) []int {
	var out []int
	for p := start; p < CalendarQuarters; p++ {
		out = append(out, p)
	}
	return out
}

func constantQuarter(int) quarterValues {
	return quarterValues{rev: 1000, ni: 100, oi: 0, ta: 2000, tl: 1000, ca: 600, cl: 300, re: 400, ocf: 120}
}

func growthQuarter(pos int) quarterValues {
	i := float64(pos)
	return quarterValues{
		rev: 1000 + 100*i,
		ni:  80 + 15*i,
		oi:  150 + 20*i,
		ta:  2000 + 50*i,
		tl:  1200 - 30*i,
		ca:  700 + 20*i,
		cl:  400 - 10*i,
		re:  300 + 40*i,
		ocf: 110 + 20*i,
	}
}

func declineQuarter(pos int) quarterValues {
	i := float64(pos)
	return quarterValues{
		rev: 1000 - 80*i,
		ni:  50 - 30*i,
		oi:  60 - 25*i,
		ta:  2000 - 40*i,
		tl:  1500 + 60*i,
		ca:  500 - 30*i,
		cl:  450 + 25*i,
		re:  100 - 60*i,
		ocf: 40 - 25*i,
	}
}

// rowsFor runs alignment and extraction for a synthetic set
func rowsFor(set domain.StatementSet) []FeatureRow {
	return ExtractFeatures(Align(set.Income, set.Balance, set.Cash, DefaultCalendar()))
}
