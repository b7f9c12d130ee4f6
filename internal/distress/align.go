package distress

import (
	"strings"

	"distresscli/pkg/contracts/domain"
)

// Align builds the QuarterPanel for one entity.
//
// For every calendar quarter each collection is scanned in source order and
// the first record whose period ending equals or contains the target date is
// taken. Records are not assumed sorted or de-duplicated. A missing match
// leaves the slot empty.
func Align(income, balance, cash []domain.StatementRecord, cal Calendar) QuarterPanel {
	targets := cal.Targets()
	panel := QuarterPanel{Slots: make([]QuarterSlot, len(targets))}

	for i, t := range targets {
		panel.Slots[i] = QuarterSlot{
			Target:  t,
			Income:  matchPeriod(income, t.PeriodEnd),
			Balance: matchPeriod(balance, t.PeriodEnd),
			Cash:    matchPeriod(cash, t.PeriodEnd),
		}
	}

	return panel
}

// matchPeriod returns the first record whose period ending matches date
func matchPeriod(records []domain.StatementRecord, date string) *domain.StatementRecord {
	for i := range records {
		if strings.Contains(records[i].PeriodEnding, date) {
			return &records[i]
		}
	}
	return nil
}
