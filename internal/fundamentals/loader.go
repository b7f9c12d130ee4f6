package fundamentals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "distresscli/internal/errors"
	"distresscli/internal/validation"
	"distresscli/pkg/contracts/domain"
)

// PeriodColumn is the workbook header naming the period ending column
const PeriodColumn = "period_ending"

// Loader reads statement sets from JSON documents or Excel workbooks and
// validates them before they reach the engine.
type Loader struct {
	statements *validation.StatementValidator
	files      *validation.FileValidator
	logger     *slog.Logger
}

// NewLoader creates a Loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		statements: validation.NewStatementValidator(logger),
		files:      validation.NewFileValidator(logger),
		logger:     logger.With(slog.String("component", "fundamentals_loader")),
	}
}

// Load dispatches on the file extension. For JSON input a non-empty ticker
// selects one set; for workbooks it names the entity.
func (l *Loader) Load(path, ticker string) ([]domain.StatementSet, error) {
	if err := l.files.ValidateStatementFile(path); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		set, err := l.LoadWorkbook(path, ticker)
		if err != nil {
			return nil, err
		}
		return []domain.StatementSet{set}, nil
	default:
		sets, err := l.LoadJSON(path)
		if err != nil {
			return nil, err
		}
		return selectTicker(sets, ticker)
	}
}

// LoadJSON reads a single statement set object or an array of them
func (l *Loader) LoadJSON(path string) ([]domain.StatementSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("read %s", path), err)
	}

	sets, err := DecodeSets(data)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("decode %s", path), err)
	}

	if err := l.statements.ValidateSets(sets); err != nil {
		return nil, err
	}

	l.logger.Info("statement sets loaded",
		slog.String("file", path),
		slog.Int("sets", len(sets)),
	)
	return sets, nil
}

// DecodeSets accepts either one JSON object or a JSON array of objects
func DecodeSets(data []byte) ([]domain.StatementSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	if trimmed[0] == '[' {
		var sets []domain.StatementSet
		if err := json.Unmarshal(trimmed, &sets); err != nil {
			return nil, err
		}
		return sets, nil
	}

	var set domain.StatementSet
	if err := json.Unmarshal(trimmed, &set); err != nil {
		return nil, err
	}
	return []domain.StatementSet{set}, nil
}

func selectTicker(sets []domain.StatementSet, ticker string) ([]domain.StatementSet, error) {
	if ticker == "" {
		return sets, nil
	}
	for _, s := range sets {
		if strings.EqualFold(s.Ticker, ticker) {
			return []domain.StatementSet{s}, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("ticker %s", ticker))
}

// LoadWorkbook reads the income, balance and cash sheets of one entity.
// Row 1 of each sheet is a header holding period_ending and field names.
// A missing sheet yields an empty collection; an empty cell is a null field.
// When ticker is empty it is derived from the file name.
func (l *Loader) LoadWorkbook(path, ticker string) (domain.StatementSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.StatementSet{}, apperrors.NewParsingError(fmt.Sprintf("open workbook %s", path), err)
	}
	defer f.Close()

	if ticker == "" {
		ticker = strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	set := domain.StatementSet{Ticker: ticker}

	sheets := sheetIndex(f.GetSheetList())
	for _, kind := range domain.StatementKinds {
		name, ok := sheets[string(kind)]
		if !ok {
			l.logger.Warn("statement sheet missing",
				slog.String("file", path),
				slog.String("sheet", string(kind)),
			)
			continue
		}

		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return domain.StatementSet{}, apperrors.NewParsingError(fmt.Sprintf("read sheet %s", name), err)
		}

		records, err := parseSheet(rows)
		if err != nil {
			return domain.StatementSet{}, apperrors.NewParsingError(fmt.Sprintf("parse sheet %s", name), err).
				WithContext("file", path)
		}

		switch kind {
		case domain.StatementIncome:
			set.Income = records
		case domain.StatementBalance:
			set.Balance = records
		case domain.StatementCashFlow:
			set.Cash = records
		}
	}

	if err := l.statements.ValidateSet(set); err != nil {
		return domain.StatementSet{}, err
	}

	l.logger.Info("workbook loaded",
		slog.String("file", path),
		slog.String("ticker", ticker),
		slog.Int("income", len(set.Income)),
		slog.Int("balance", len(set.Balance)),
		slog.Int("cash", len(set.Cash)),
	)
	return set, nil
}

// sheetIndex maps lower-cased, trimmed sheet names to their real names
func sheetIndex(names []string) map[string]string {
	idx := make(map[string]string, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if _, exists := idx[key]; !exists {
			idx[key] = n
		}
	}
	return idx
}

func parseSheet(rows [][]string) ([]domain.StatementRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	periodCol := -1
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		if header[i] == PeriodColumn && periodCol < 0 {
			periodCol = i
		}
	}
	if periodCol < 0 {
		return nil, fmt.Errorf("header has no %s column", PeriodColumn)
	}

	var records []domain.StatementRecord
	for r, row := range rows[1:] {
		if blankRow(row) {
			continue
		}

		rec := domain.StatementRecord{
			PeriodEnding: periodCell(cell(row, periodCol)),
			Fields:       make(map[string]decimal.NullDecimal, len(header)-1),
		}

		for c, name := range header {
			if c == periodCol || name == "" {
				continue
			}
			v, err := parseAmount(cell(row, c))
			if err != nil {
				// r is zero-based over data rows; sheet rows are one-based with a header
				return nil, fmt.Errorf("row %d column %s: %w", r+2, name, err)
			}
			rec.Fields[name] = v
		}

		records = append(records, rec)
	}

	return records, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// periodCell converts Excel date serials to YYYY-MM-DD and passes text through
func periodCell(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format("2006-01-02")
}

// parseAmount reads a numeric cell; empty cells and dashes are null
func parseAmount(v string) (decimal.NullDecimal, error) {
	v = strings.ReplaceAll(v, ",", "")
	if v == "" || v == "-" {
		return decimal.NullDecimal{}, nil
	}

	// Accounting negatives such as (1200)
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		v = "-" + strings.TrimSuffix(strings.TrimPrefix(v, "("), ")")
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse amount %q: %w", v, err)
	}
	return decimal.NewNullDecimal(d), nil
}
