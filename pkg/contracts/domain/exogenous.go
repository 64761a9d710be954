package domain

import (
	"time"
)

// EventDefinition is a named date interval to be encoded as a binary
// indicator column. Start and End are optional: a missing Start defaults
// to the project start, a missing End to the resolved Start (single-day
// event). Both bounds are clipped to the project date range.
type EventDefinition struct {
	Name  string     `yaml:"name" json:"name"`
	Start *time.Time `yaml:"start" json:"start,omitempty"`
	End   *time.Time `yaml:"end" json:"end,omitempty"`
}

// EventIndicatorMatrix holds one int 0/1 column per event, aligned to the
// project calendar. It is built once per run and shared read-only across
// every per-symbol merge.
type EventIndicatorMatrix struct {
	Calendar []time.Time
	Columns  []string
	Values   map[string][]int
}

// Column returns the indicator values for a column name.
func (m *EventIndicatorMatrix) Column(name string) ([]int, bool) {
	vals, ok := m.Values[name]
	return vals, ok
}

// MacroObservation is one dated scalar reading of a macro indicator.
type MacroObservation struct {
	Date  time.Time
	Value float64
}

// MacroSeries is the sparse, irregularly-timed observation history of one
// macro indicator. Observations are sorted ascending by date.
type MacroSeries struct {
	Name         string
	Observations []MacroObservation
}

// MacroDailyMatrix holds one gap-free daily column per macro indicator,
// aligned to the project calendar. Like the event matrix it is immutable
// once built and shared across symbols.
type MacroDailyMatrix struct {
	Calendar []time.Time
	Columns  []string
	Values   map[string][]float64
}

// Column returns the daily values for an indicator column.
func (m *MacroDailyMatrix) Column(name string) ([]float64, bool) {
	vals, ok := m.Values[name]
	return vals, ok
}

// PanelRow is one trading-day row of the final per-symbol panel: the
// anchor price bar plus its matched event indicators and macro values.
type PanelRow struct {
	Bar    PriceBar
	Events []int
	Macros []float64
}

// Panel is the final per-symbol exogenous feature table. Rows correspond
// one-to-one with the symbol's price anchor, sorted ascending by date.
// EventColumns and MacroColumns carry the deterministic column order used
// when the panel is persisted.
type Panel struct {
	Symbol       string
	EventColumns []string
	MacroColumns []string
	Rows         []PanelRow
}

// Len returns the panel row count, which always equals the anchor's.
func (p *Panel) Len() int {
	return len(p.Rows)
}
