package loader

import (
	"log/slog"
	"path/filepath"
	"sort"

	apperrors "exopanel/internal/errors"
	"exopanel/internal/exogenous"
	"exopanel/pkg/contracts/domain"
)

// macroSource binds one raw indicator file to its internal column name.
// Source files keep their vendor column headers; the rename happens at
// load time so everything downstream sees only the canonical names.
type macroSource struct {
	File      string
	RawColumn string
	Column    string
}

// macroSources is the fixed raw-file inventory of the macro block.
var macroSources = []macroSource{
	{File: "MACRO_ECB_Deposit_Rate.csv", RawColumn: "DepositRate", Column: exogenous.MacroECBDepositRate},
	{File: "MACRO_Inflation_HICP_EA.csv", RawColumn: "Inflation", Column: exogenous.MacroInflationHICP},
	{File: "MACRO_IBEX_Close.csv", RawColumn: "IBEX_Close", Column: exogenous.MacroIBEX35},
}

// MacroSourceFiles returns the raw file names read from the macro
// directory, in panel column order.
func MacroSourceFiles() []string {
	files := make([]string, len(macroSources))
	for i, src := range macroSources {
		files[i] = src.File
	}
	return files
}

// MacroLoader reads the sparse macro indicator CSVs.
type MacroLoader struct {
	logger *slog.Logger
}

// NewMacroLoader creates a macro loader. A nil logger falls back to the
// default slog logger.
func NewMacroLoader(logger *slog.Logger) *MacroLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &MacroLoader{logger: logger}
}

// LoadAll reads every macro indicator file under dir and returns the
// series keyed by canonical column name. Any missing file or missing
// value column is fatal.
func (l *MacroLoader) LoadAll(dir string) (map[string]domain.MacroSeries, error) {
	series := make(map[string]domain.MacroSeries, len(macroSources))
	for _, src := range macroSources {
		s, err := l.load(filepath.Join(dir, src.File), src.RawColumn, src.Column)
		if err != nil {
			return nil, err
		}
		series[src.Column] = s
	}
	return series, nil
}

// load reads one indicator CSV, renaming rawColumn to the canonical
// name and sorting observations ascending by date.
func (l *MacroLoader) load(path, rawColumn, name string) (domain.MacroSeries, error) {
	records, err := readCSVFile(path, "load_macro")
	if err != nil {
		return domain.MacroSeries{}, err
	}
	if len(records) == 0 {
		return domain.MacroSeries{}, apperrors.NewSchema("load_macro", name, "Date")
	}

	cols := headerIndex(records[0])
	dateIdx, ok := cols["Date"]
	if !ok {
		return domain.MacroSeries{}, apperrors.NewSchema("load_macro", name, "Date")
	}
	valueIdx, ok := cols[rawColumn]
	if !ok {
		return domain.MacroSeries{}, apperrors.NewSchema("load_macro", name, rawColumn)
	}

	var (
		obs     []domain.MacroObservation
		skipped int
	)
	for _, record := range records[1:] {
		if dateIdx >= len(record) {
			continue
		}
		date, err := parseLooseDate(record[dateIdx])
		if err != nil {
			skipped++
			continue
		}
		value, ok := parseFloatCell(record, valueIdx)
		if !ok {
			skipped++
			continue
		}
		obs = append(obs, domain.MacroObservation{Date: date, Value: value})
	}

	sort.Slice(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})

	if skipped > 0 {
		l.logger.Warn("macro rows skipped during load",
			slog.String("indicator", name),
			slog.Int("rows_skipped", skipped))
	}

	return domain.MacroSeries{Name: name, Observations: obs}, nil
}
