package loader

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "exopanel/internal/errors"
	"exopanel/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// PriceLoader reads loosely-formatted per-symbol OHLCV CSV files and
// normalizes them into the fixed price schema. Source files vary by
// vendor: extra derived columns, missing corporate-action columns, rows
// without a close, duplicate dates. Only Date and Close are mandatory;
// everything else is defaulted per the documented rules with a logged
// data quality warning.
type PriceLoader struct {
	logger *slog.Logger
}

// NewPriceLoader creates a price loader. A nil logger falls back to the
// default slog logger.
func NewPriceLoader(logger *slog.Logger) *PriceLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceLoader{logger: logger}
}

// Load reads and normalizes the price CSV at path for symbol.
// The returned series is sorted ascending by date with duplicate dates
// collapsed (last occurrence wins). Missing file and missing required
// columns are fatal; all other irregularities are repaired in place.
func (l *PriceLoader) Load(path, symbol string) (*domain.PriceSeries, error) {
	records, err := readCSVFile(path, "load_prices")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewExecution("load_prices",
			fmt.Errorf("price file %s is empty", path))
	}

	cols := headerIndex(records[0])
	dateIdx, ok := cols["Date"]
	if !ok {
		return nil, apperrors.NewSchema("load_prices", symbol, "Date")
	}
	closeIdx, ok := cols["Close"]
	if !ok {
		return nil, apperrors.NewSchema("load_prices", symbol, "Close")
	}

	var (
		bars           []domain.PriceBar
		droppedNoClose int
		defaultedAdj   int
		defaultedCorp  int
	)
	byDate := make(map[string]int)

	for _, record := range records[1:] {
		if dateIdx >= len(record) {
			continue
		}
		date, err := parseLooseDate(record[dateIdx])
		if err != nil {
			// Vendor exports sometimes carry a second header row
			// (ticker line) before the data; skip anything whose
			// date cell does not parse.
			continue
		}

		closeVal, ok := parseFloatCell(record, closeIdx)
		if !ok {
			droppedNoClose++
			continue
		}

		bar := domain.PriceBar{
			Date:  date,
			Close: closeVal,
		}
		bar.Open = optionalCell(record, cols, "Open")
		bar.High = optionalCell(record, cols, "High")
		bar.Low = optionalCell(record, cols, "Low")
		bar.Volume = optionalCell(record, cols, "Volume")

		bar.AdjClose = optionalCell(record, cols, "Adj Close")
		if !bar.AdjClose.Valid {
			bar.AdjClose = domain.Float(closeVal)
			defaultedAdj++
		}
		bar.Dividends = optionalCell(record, cols, "Dividends")
		if !bar.Dividends.Valid {
			bar.Dividends = domain.Float(0)
			defaultedCorp++
		}
		bar.StockSplits = optionalCell(record, cols, "Stock Splits")
		if !bar.StockSplits.Valid {
			bar.StockSplits = domain.Float(0)
			defaultedCorp++
		}

		key := date.Format(dateLayout)
		if i, seen := byDate[key]; seen {
			bars[i] = bar
			continue
		}
		byDate[key] = len(bars)
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	if droppedNoClose > 0 || defaultedAdj > 0 || defaultedCorp > 0 {
		l.logger.Warn("price normalization applied defaults",
			slog.String("symbol", symbol),
			slog.Int("rows_dropped_no_close", droppedNoClose),
			slog.Int("adj_close_defaulted", defaultedAdj),
			slog.Int("corporate_actions_defaulted", defaultedCorp))
	}

	return &domain.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// readCSVFile reads every record of a CSV file, tolerating a UTF-8 BOM
// and ragged rows.
func readCSVFile(path, step string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewMissingSource(step, path)
		}
		return nil, apperrors.NewExecution(step, err)
	}

	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewExecution(step, fmt.Errorf("failed to read CSV %s: %w", path, err))
	}
	return records, nil
}

// headerIndex maps trimmed column names to their positions.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// parseLooseDate accepts plain dates and datetime stamps, normalizing
// both to a UTC midnight date.
func parseLooseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if len(cell) > len(dateLayout) {
		cell = cell[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, cell)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseFloatCell parses record[idx] as a float, reporting absence for
// out-of-range indexes, empty cells and unparseable values.
func parseFloatCell(record []string, idx int) (float64, bool) {
	if idx < 0 || idx >= len(record) {
		return 0, false
	}
	cell := strings.TrimSpace(record[idx])
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// optionalCell reads a named optional column from a record.
func optionalCell(record []string, cols map[string]int, name string) domain.OptionalFloat {
	idx, ok := cols[name]
	if !ok {
		return domain.NoFloat()
	}
	v, ok := parseFloatCell(record, idx)
	if !ok {
		return domain.NoFloat()
	}
	return domain.Float(v)
}
