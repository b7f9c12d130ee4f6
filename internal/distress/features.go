package distress

import (
	"distresscli/pkg/contracts/domain"
)

// Field aliases per feature. The first present alias wins; absent fields read as 0.
var (
	revenueFields            = []string{"revenue", "total_revenue"}
	netIncomeFields          = []string{"net_income", "consolidated_net_income"}
	operatingIncomeFields    = []string{"total_operating_income", "operating_income"}
	ebitFields               = []string{"ebit"}
	totalAssetsFields        = []string{"total_assets"}
	currentAssetsFields      = []string{"total_current_assets", "current_assets"}
	currentLiabilitiesFields = []string{"total_current_liabilities", "current_liabilities"}
	retainedEarningsFields   = []string{"retained_earnings"}
	totalLiabilitiesFields   = []string{"total_liabilities"}
	operatingCashFlowFields  = []string{"operating_cash_flow", "net_cash_from_operating_activities"}
)

// ExtractFeatures derives one FeatureRow per usable quarter, oldest first.
// Quarters lacking an income or balance match are skipped, not zero-filled.
func ExtractFeatures(panel QuarterPanel) []FeatureRow {
	rows := make([]FeatureRow, 0, len(panel.Slots))

	for pos, slot := range panel.Slots {
		if !slot.Usable() {
			continue
		}
		rows = append(rows, extractRow(pos, slot))
	}

	return rows
}

func extractRow(pos int, slot QuarterSlot) FeatureRow {
	inc, bal := *slot.Income, *slot.Balance

	row := FeatureRow{
		Label:              slot.Target.Label,
		Position:           pos,
		Revenue:            field(inc, revenueFields),
		NetIncome:          field(inc, netIncomeFields),
		OperatingIncome:    field(inc, operatingIncomeFields),
		TotalAssets:        field(bal, totalAssetsFields),
		CurrentAssets:      field(bal, currentAssetsFields),
		CurrentLiabilities: field(bal, currentLiabilitiesFields),
		RetainedEarnings:   field(bal, retainedEarningsFields),
		TotalLiabilities:   field(bal, totalLiabilitiesFields),
	}

	// EBIT falls back to operating income when not reported (or reported as 0)
	row.EBIT = field(inc, ebitFields)
	if row.EBIT == 0 {
		row.EBIT = row.OperatingIncome
	}

	row.WorkingCapital = row.CurrentAssets - row.CurrentLiabilities
	row.BookEquity = row.TotalAssets - row.TotalLiabilities

	if slot.Cash != nil {
		row.OperatingCashFlow = field(*slot.Cash, operatingCashFlowFields)
		row.HasCashFlow = true
	}

	return row
}

func field(r domain.StatementRecord, names []string) float64 {
	v, _ := r.Float(names...)
	return v
}

// yearAgo returns the row four calendar positions before latest, if present
func yearAgo(rows []FeatureRow) (FeatureRow, bool) {
	if len(rows) == 0 {
		return FeatureRow{}, false
	}
	want := rows[len(rows)-1].Position - 4
	for _, r := range rows {
		if r.Position == want {
			return r, true
		}
	}
	return FeatureRow{}, false
}
