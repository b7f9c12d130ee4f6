package distress

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"distresscli/pkg/contracts/domain"
)

// ExcelSheet is the worksheet name written by SaveToExcel
const ExcelSheet = "Distress"

var reportHeader = []string{
	"Ticker",
	"Assessment_Date",
	"Distress_Score",
	"Status",
	"Reason",
	"Altman_Zone",
	"Latest_Z_Raw",
	"F_Score",
	"M_Score",
	"Manipulation_Risk",
	"Z_Contribution",
	"F_Contribution",
	"M_Contribution",
	"Interaction_Multiplier",
	"Volatility_Penalty",
	"Quarters_Used",
}

// SaveToCSV writes one row per report, sorted by ticker
func SaveToCSV(reports []domain.DistressReport, outputPath string) error {
	if len(reports) == 0 {
		return fmt.Errorf("no reports to save")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(reportHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, r := range sortedByTicker(reports) {
		if err := writer.Write(formatReportRecord(r)); err != nil {
			return fmt.Errorf("write CSV record for %s: %w", r.Ticker, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}

// SaveToExcel writes the reports to the Distress sheet of a new workbook
func SaveToExcel(reports []domain.DistressReport, outputPath string) error {
	if len(reports) == 0 {
		return fmt.Errorf("no reports to save")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet so the workbook holds only ours
	if err := f.SetSheetName(f.GetSheetName(0), ExcelSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(reportHeader))
	for i, h := range reportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ExcelSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range sortedByTicker(reports) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := excelRow(r)
		if err := f.SetSheetRow(ExcelSheet, cell, &row); err != nil {
			return fmt.Errorf("write row for %s: %w", r.Ticker, err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// SaveSummaryReport writes a plain text overview of a scoring run
func SaveSummaryReport(reports []domain.DistressReport, outputPath string) error {
	if len(reports) == 0 {
		return fmt.Errorf("no reports to save")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer file.Close()

	sorted := sortedByTicker(reports)
	s := summarize(sorted)

	fmt.Fprintf(file, "Financial Distress Score - Summary Report\n")
	fmt.Fprintf(file, "=========================================\n\n")
	fmt.Fprintf(file, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(file, "DATASET OVERVIEW\n")
	fmt.Fprintf(file, "----------------\n")
	fmt.Fprintf(file, "Entities: %d\n", len(sorted))
	fmt.Fprintf(file, "Scored: %d\n", s.scored)
	fmt.Fprintf(file, "Insufficient: %d\n\n", len(sorted)-s.scored)

	if s.scored > 0 {
		fmt.Fprintf(file, "DISTRESS SCORE STATISTICS\n")
		fmt.Fprintf(file, "-------------------------\n")
		fmt.Fprintf(file, "Mean: %.1f\n", s.mean)
		fmt.Fprintf(file, "Min: %.1f (%s)\n", s.min.DistressScore, s.min.Ticker)
		fmt.Fprintf(file, "Max: %.1f (%s)\n\n", s.max.DistressScore, s.max.Ticker)

		fmt.Fprintf(file, "ALTMAN ZONES\n")
		fmt.Fprintf(file, "------------\n")
		for _, zone := range []string{ZoneDistress, ZoneGrey, ZoneSafe} {
			fmt.Fprintf(file, "%s: %d\n", zone, s.zones[zone])
		}
		fmt.Fprintf(file, "\n")
	}

	fmt.Fprintf(file, "ENTITIES\n")
	fmt.Fprintf(file, "--------\n")
	for _, r := range sorted {
		if r.Status == domain.ScoreStatusInsufficient {
			fmt.Fprintf(file, "%-10s %5.1f  insufficient (%s)\n", r.Ticker, r.DistressScore, r.Reason)
			continue
		}
		fmt.Fprintf(file, "%-10s %5.1f\n", r.Ticker, r.DistressScore)
	}

	return nil
}

type runSummary struct {
	scored   int
	mean     float64
	min, max domain.DistressReport
	zones    map[string]int
}

func summarize(reports []domain.DistressReport) runSummary {
	s := runSummary{zones: make(map[string]int)}
	var scores []float64

	for _, r := range reports {
		if r.Status != domain.ScoreStatusScored {
			continue
		}
		if s.scored == 0 || r.DistressScore < s.min.DistressScore {
			s.min = r
		}
		if s.scored == 0 || r.DistressScore > s.max.DistressScore {
			s.max = r
		}
		s.scored++
		scores = append(scores, r.DistressScore)
		if r.Diagnostics != nil {
			s.zones[r.Diagnostics.AltmanZone]++
		}
	}
	s.mean = calculateMean(scores)

	return s
}

// sortedByTicker returns a sorted copy; the caller's slice is left untouched
func sortedByTicker(reports []domain.DistressReport) []domain.DistressReport {
	out := make([]domain.DistressReport, len(reports))
	copy(out, reports)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ticker < out[j].Ticker
	})
	return out
}

func formatReportRecord(r domain.DistressReport) []string {
	record := []string{
		r.Ticker,
		r.AssessmentDate.Format(periodLayout),
		formatFloat(r.DistressScore, 1),
		string(r.Status),
		r.Reason,
	}

	d := r.Diagnostics
	if d == nil {
		for len(record) < len(reportHeader) {
			record = append(record, "")
		}
		return record
	}

	return append(record,
		d.AltmanZone,
		formatFloat(d.LatestZRaw, 4),
		strconv.Itoa(d.FScore),
		formatFloat(d.MScore, 4),
		d.ManipulationRisk,
		formatFloat(d.ZContribution, 4),
		formatFloat(d.FContribution, 4),
		formatFloat(d.MContribution, 4),
		formatFloat(d.InteractionMultiplier, 2),
		formatFloat(d.VolatilityPenalty, 4),
		strconv.Itoa(d.QuartersUsed),
	)
}

func excelRow(r domain.DistressReport) []interface{} {
	row := []interface{}{
		r.Ticker,
		r.AssessmentDate.Format(periodLayout),
		r.DistressScore,
		string(r.Status),
		r.Reason,
	}

	d := r.Diagnostics
	if d == nil {
		return row
	}

	return append(row,
		d.AltmanZone,
		roundTo(d.LatestZRaw, 4),
		d.FScore,
		roundTo(d.MScore, 4),
		d.ManipulationRisk,
		roundTo(d.ZContribution, 4),
		roundTo(d.FContribution, 4),
		roundTo(d.MContribution, 4),
		d.InteractionMultiplier,
		roundTo(d.VolatilityPenalty, 4),
		d.QuartersUsed,
	)
}

func formatFloat(value float64, precision int) string {
	return strconv.FormatFloat(value, 'f', precision, 64)
}
