package distress

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"distresscli/pkg/contracts/domain"
)

func sampleReports(t *testing.T) []domain.DistressReport {
	t.Helper()
	engine := testEngine()
	ctx := context.Background()

	return []domain.DistressReport{
		engine.Score(ctx, buildSet("ZAIN", positionsFrom(0), growthQuarter)).Report(),
		engine.Score(ctx, domain.StatementSet{Ticker: "MTNK"}).Report(),
		engine.Score(ctx, buildSet("BBOB", positionsFrom(0), constantQuarter)).Report(),
	}
}

func TestSaveToCSV(t *testing.T) {
	reports := sampleReports(t)
	path := filepath.Join(t.TempDir(), "nested", "distress.csv")

	require.NoError(t, SaveToCSV(reports, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, reportHeader, records[0])
	// Sorted by ticker
	assert.Equal(t, "BBOB", records[1][0])
	assert.Equal(t, "MTNK", records[2][0])
	assert.Equal(t, "ZAIN", records[3][0])

	assert.Equal(t, "2024-06-30", records[1][1])
	assert.Equal(t, "20.2", records[1][2])
	assert.Equal(t, "scored", records[1][3])
	assert.Equal(t, ZoneDistress, records[1][5])

	assert.Equal(t, "50.0", records[2][2])
	assert.Equal(t, "insufficient", records[2][3])
	assert.Len(t, records[2], len(reportHeader))

	assert.Equal(t, "64.3", records[3][2])

	// The caller's slice keeps its order
	assert.Equal(t, "ZAIN", reports[0].Ticker)
}

func TestSaveToExcel(t *testing.T) {
	reports := sampleReports(t)
	path := filepath.Join(t.TempDir(), "distress.xlsx")

	require.NoError(t, SaveToExcel(reports, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExcelSheet}, f.GetSheetList())

	rows, err := f.GetRows(ExcelSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, reportHeader, rows[0])
	assert.Equal(t, "BBOB", rows[1][0])
	assert.Equal(t, "20.2", rows[1][2])
	assert.Equal(t, "MTNK", rows[2][0])
	assert.Equal(t, "ZAIN", rows[3][0])
}

func TestSaveSummaryReport(t *testing.T) {
	reports := sampleReports(t)
	path := filepath.Join(t.TempDir(), "summary.txt")

	require.NoError(t, SaveSummaryReport(reports, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "Entities: 3")
	assert.Contains(t, text, "Scored: 2")
	assert.Contains(t, text, "Insufficient: 1")
	assert.Contains(t, text, "Min: 20.2 (BBOB)")
	assert.Contains(t, text, "Max: 64.3 (ZAIN)")
	assert.Contains(t, text, "insufficient (missing statement data")
	assert.Less(t, strings.Index(text, "BBOB "), strings.Index(text, "ZAIN "))
}

func TestSaveEmptyReports(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, SaveToCSV(nil, filepath.Join(dir, "a.csv")))
	assert.Error(t, SaveToExcel(nil, filepath.Join(dir, "a.xlsx")))
	assert.Error(t, SaveSummaryReport(nil, filepath.Join(dir, "a.txt")))
}
