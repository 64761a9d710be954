package exogenous

import (
	"fmt"
	"sort"

	apperrors "exopanel/internal/errors"
	"exopanel/pkg/contracts/domain"
)

// MergeMethod labels the join strategy recorded in lineage metadata.
const MergeMethod = "left"

// MergeEngine joins the shared event and macro matrices onto a symbol's
// price anchor. The anchor's date set, not the full calendar, defines the
// output row universe: non-trading days never appear as panel rows.
type MergeEngine struct{}

// NewMergeEngine creates a merge engine.
func NewMergeEngine() *MergeEngine {
	return &MergeEngine{}
}

// Merge left-joins events and macros onto the price anchor of one symbol.
// Guarantees: the panel row count equals the anchor row count exactly;
// event and macro columns contain no missing values (event columns
// zero-fill, macro columns forward- then backward-fill any residual gap
// introduced by the join); rows are sorted ascending by date. The shared
// matrices are read, never written: every value is copied into the panel.
func (m *MergeEngine) Merge(prices *domain.PriceSeries, events *domain.EventIndicatorMatrix, macros *domain.MacroDailyMatrix) (*domain.Panel, error) {
	if len(events.Calendar) != len(macros.Calendar) {
		return nil, apperrors.NewExecution("merge_panel",
			fmt.Errorf("event and macro matrices are aligned to different calendars (%d vs %d rows)",
				len(events.Calendar), len(macros.Calendar)))
	}

	index := calendarIndex(events.Calendar)

	bars := append([]domain.PriceBar(nil), prices.Bars...)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	panel := &domain.Panel{
		Symbol:       prices.Symbol,
		EventColumns: append([]string(nil), events.Columns...),
		MacroColumns: append([]string(nil), macros.Columns...),
		Rows:         make([]domain.PanelRow, len(bars)),
	}

	// Residual macro gaps can only arise when an anchor date falls outside
	// the calendar; they are tracked per cell and closed after the join.
	gaps := make([][]bool, len(bars))

	for i, bar := range bars {
		row := domain.PanelRow{
			Bar:    bar,
			Events: make([]int, len(panel.EventColumns)),
			Macros: make([]float64, len(panel.MacroColumns)),
		}
		gaps[i] = make([]bool, len(panel.MacroColumns))

		pos, matched := index[Day(bar.Date).Format(dateLayout)]
		for c, name := range panel.EventColumns {
			// Zero-fill for unmatched rows keeps the integer invariant even
			// though the calendar is a superset of anchor dates.
			if matched {
				row.Events[c] = events.Values[name][pos]
			}
		}
		for c, name := range panel.MacroColumns {
			if matched {
				row.Macros[c] = macros.Values[name][pos]
			} else {
				gaps[i][c] = true
			}
		}

		panel.Rows[i] = row
	}

	fillResidualMacroGaps(panel, gaps)

	if panel.Len() != prices.Len() {
		return nil, apperrors.NewExecution("merge_panel",
			fmt.Errorf("panel row count %d does not match anchor row count %d for %s",
				panel.Len(), prices.Len(), prices.Symbol))
	}

	return panel, nil
}

// fillResidualMacroGaps re-applies forward-fill then backward-fill on each
// macro column of the joined panel.
func fillResidualMacroGaps(panel *domain.Panel, gaps [][]bool) {
	for c := range panel.MacroColumns {
		lastKnown := -1
		for i := range panel.Rows {
			if !gaps[i][c] {
				lastKnown = i
				continue
			}
			if lastKnown >= 0 {
				panel.Rows[i].Macros[c] = panel.Rows[lastKnown].Macros[c]
				gaps[i][c] = false
			}
		}

		nextKnown := -1
		for i := len(panel.Rows) - 1; i >= 0; i-- {
			if !gaps[i][c] {
				nextKnown = i
				continue
			}
			if nextKnown >= 0 {
				panel.Rows[i].Macros[c] = panel.Rows[nextKnown].Macros[c]
				gaps[i][c] = false
			}
		}
	}
}
