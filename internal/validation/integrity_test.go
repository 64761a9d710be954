package validation

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exopanel/pkg/contracts/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fullBar(date time.Time, close float64) domain.PriceBar {
	return domain.PriceBar{
		Date:        date,
		Open:        domain.Float(close),
		High:        domain.Float(close),
		Low:         domain.Float(close),
		Close:       close,
		AdjClose:    domain.Float(close),
		Volume:      domain.Float(1000),
		Dividends:   domain.Float(0),
		StockSplits: domain.Float(0),
	}
}

func TestCheckPriceSeriesClean(t *testing.T) {
	series := &domain.PriceSeries{
		Symbol: "BBVA.MC",
		Bars: []domain.PriceBar{
			fullBar(day(2020, time.June, 1), 4.15),
			fullBar(day(2020, time.June, 2), 4.25),
			fullBar(day(2020, time.June, 3), 4.30),
		},
	}

	report := NewChecker(nil).CheckPriceSeries(series)

	assert.Equal(t, "BBVA.MC", report.Table)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 0, report.MissingCells)
	assert.Equal(t, 0, report.DuplicateDates)
	assert.Equal(t, day(2020, time.June, 1), report.MinDate)
	assert.Equal(t, day(2020, time.June, 3), report.MaxDate)
	assert.True(t, report.Monotonic)
}

func TestCheckPriceSeriesFindings(t *testing.T) {
	series := &domain.PriceSeries{
		Symbol: "SAN.MC",
		Bars: []domain.PriceBar{
			fullBar(day(2020, time.June, 2), 4.25),
			{Date: day(2020, time.June, 1), Close: 4.15},
			fullBar(day(2020, time.June, 1), 4.15),
		},
	}

	report := NewChecker(nil).CheckPriceSeries(series)

	assert.Equal(t, 3, report.Rows)
	// The bare bar is missing all seven optional cells.
	assert.Equal(t, 7, report.MissingCells)
	assert.Equal(t, 1, report.DuplicateDates)
	assert.False(t, report.Monotonic)
	assert.Equal(t, day(2020, time.June, 1), report.MinDate)
	assert.Equal(t, day(2020, time.June, 2), report.MaxDate)
}

func TestCheckPriceSeriesEmpty(t *testing.T) {
	report := NewChecker(nil).CheckPriceSeries(&domain.PriceSeries{Symbol: "BBVA.MC"})

	assert.Equal(t, 0, report.Rows)
	assert.True(t, report.MinDate.IsZero())
	assert.True(t, report.Monotonic)
}

func TestCheckMacroSeries(t *testing.T) {
	series := domain.MacroSeries{
		Name: "MACRO_IBEX35",
		Observations: []domain.MacroObservation{
			{Date: day(2020, time.January, 31), Value: 9500},
			{Date: day(2020, time.February, 29), Value: 8800},
			{Date: day(2020, time.February, 29), Value: 8801},
		},
	}

	report := NewChecker(nil).CheckMacroSeries(series)

	assert.Equal(t, "MACRO_IBEX35", report.Table)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 1, report.DuplicateDates)
	assert.False(t, report.Monotonic)
	assert.Equal(t, day(2020, time.January, 31), report.MinDate)
	assert.Equal(t, day(2020, time.February, 29), report.MaxDate)
}

func TestWriteReport(t *testing.T) {
	checker := NewChecker(nil)
	reports := []TableReport{
		{
			Table: "BBVA.MC", Rows: 3, MissingCells: 7, DuplicateDates: 0,
			MinDate: day(2020, time.June, 1), MaxDate: day(2020, time.June, 3),
			Monotonic: true,
		},
		{Table: "MACRO_IBEX35", Rows: 0, Monotonic: true},
	}

	path := filepath.Join(t.TempDir(), "reports", "integrity.csv")
	require.NoError(t, checker.WriteReport(reports, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"Table", "Rows", "MissingCells", "DuplicateDates", "MinDate", "MaxDate", "Monotonic",
	}, records[0])
	assert.Equal(t, []string{"BBVA.MC", "3", "7", "0", "2020-06-01", "2020-06-03", "true"}, records[1])
	assert.Equal(t, []string{"MACRO_IBEX35", "0", "0", "0", "", "", "true"}, records[2])
}
