package exogenous

import (
	"fmt"
	"time"

	apperrors "exopanel/internal/errors"
	"exopanel/pkg/contracts/domain"
)

// Fixed internal names of the required macro indicators, in panel column
// order.
const (
	MacroECBDepositRate = "MACRO_ECB_Deposit_Rate"
	MacroInflationHICP  = "MACRO_Inflation_HICP_EA"
	MacroIBEX35         = "MACRO_IBEX35"
)

// MacroColumns is the fixed, ordered macro column set of the final panel.
var MacroColumns = []string{MacroECBDepositRate, MacroInflationHICP, MacroIBEX35}

// MacroResampler converts sparse, irregularly-timed macro observations into
// a calendar-aligned, gap-free daily matrix.
type MacroResampler struct{}

// NewMacroResampler creates a resampler.
func NewMacroResampler() *MacroResampler {
	return &MacroResampler{}
}

// Resample reindexes every series in MacroColumns order onto calendar and
// closes the gaps: linear interpolation across interior gaps bounded by two
// observations, then forward-fill for the trailing gap after the last
// observation, then backward-fill for the leading gap before the first.
// The order matters: interpolation alone cannot resolve leading or trailing
// gaps.
//
// It fails with a missing-source error when a required indicator has no
// series, and with an execution error when a series has no observation
// inside the calendar range (the gap-free invariant would be unsatisfiable).
func (r *MacroResampler) Resample(series map[string]domain.MacroSeries, calendar []time.Time) (*domain.MacroDailyMatrix, error) {
	matrix := &domain.MacroDailyMatrix{
		Calendar: calendar,
		Columns:  append([]string(nil), MacroColumns...),
		Values:   make(map[string][]float64, len(MacroColumns)),
	}

	for _, name := range MacroColumns {
		s, ok := series[name]
		if !ok {
			return nil, apperrors.NewMissingSource("resample_macro", name)
		}

		values, err := resampleSeries(s, calendar)
		if err != nil {
			return nil, err
		}
		matrix.Values[name] = values
	}

	return matrix, nil
}

// resampleSeries aligns one sparse series onto the calendar and fills every
// gap. After it returns, no position is missing.
func resampleSeries(s domain.MacroSeries, calendar []time.Time) ([]float64, error) {
	values := make([]float64, len(calendar))
	valid := make([]bool, len(calendar))

	index := calendarIndex(calendar)
	for _, obs := range s.Observations {
		// Observations outside the calendar range are dropped by the
		// reindex; a duplicate date keeps the last reading.
		if i, ok := index[Day(obs.Date).Format(dateLayout)]; ok {
			values[i] = obs.Value
			valid[i] = true
		}
	}

	first, last := -1, -1
	for i, ok := range valid {
		if ok {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return nil, apperrors.NewExecution("resample_macro",
			fmt.Errorf("indicator %s has no observation inside the calendar range", s.Name))
	}

	// Interior gaps: linear interpolation between the bounding observations.
	// The calendar is daily, so row distance equals day distance.
	prev := first
	for i := first + 1; i <= last; i++ {
		if !valid[i] {
			continue
		}
		if i > prev+1 {
			step := (values[i] - values[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				values[j] = values[prev] + step*float64(j-prev)
				valid[j] = true
			}
		}
		prev = i
	}

	// Trailing gap: forward-fill from the last observation.
	for i := last + 1; i < len(values); i++ {
		values[i] = values[last]
		valid[i] = true
	}

	// Leading gap: backward-fill from the first observation.
	for i := 0; i < first; i++ {
		values[i] = values[first]
		valid[i] = true
	}

	return values, nil
}
