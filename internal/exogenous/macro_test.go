package exogenous

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "exopanel/internal/errors"
	"exopanel/pkg/contracts/domain"
)

func fullMacroSet(obs map[string][]domain.MacroObservation) map[string]domain.MacroSeries {
	series := make(map[string]domain.MacroSeries, len(MacroColumns))
	for _, name := range MacroColumns {
		series[name] = domain.MacroSeries{Name: name, Observations: obs[name]}
	}
	return series
}

func singleObservation(d time.Time, v float64) []domain.MacroObservation {
	return []domain.MacroObservation{{Date: d, Value: v}}
}

func TestResampleMonthlySeries(t *testing.T) {
	calendar, err := BuildCalendar(date(2020, 1, 1), date(2020, 3, 31))
	require.NoError(t, err)

	// Observed only on the first of each month.
	obs := map[string][]domain.MacroObservation{
		MacroECBDepositRate: {
			{Date: date(2020, 1, 1), Value: 0.0},
			{Date: date(2020, 2, 1), Value: 31.0},
			{Date: date(2020, 3, 1), Value: 60.0},
		},
		MacroInflationHICP: singleObservation(date(2020, 2, 1), 1.2),
		MacroIBEX35:        singleObservation(date(2020, 1, 15), 9500.0),
	}

	matrix, err := NewMacroResampler().Resample(fullMacroSet(obs), calendar)
	require.NoError(t, err)

	rate, ok := matrix.Column(MacroECBDepositRate)
	require.True(t, ok)
	require.Len(t, rate, len(calendar))

	// January has 31 days, so the 0→31 ramp rises exactly 1.0 per day.
	for i := 0; i < 31; i++ {
		assert.InDelta(t, float64(i), rate[i], 1e-9, "day %d of the january ramp", i)
	}
	// February 2020 has 29 days; 31→60 is also 1.0 per day.
	assert.InDelta(t, 31.0, rate[31], 1e-9)
	assert.InDelta(t, 45.0, rate[45], 1e-9)
	assert.InDelta(t, 60.0, rate[60], 1e-9)
	// After the last observation the value holds flat.
	for i := 61; i < len(rate); i++ {
		assert.InDelta(t, 60.0, rate[i], 1e-9)
	}
}

func TestResampleLeadingAndTrailingFills(t *testing.T) {
	calendar, err := BuildCalendar(date(2020, 1, 1), date(2020, 1, 10))
	require.NoError(t, err)

	obs := map[string][]domain.MacroObservation{
		MacroECBDepositRate: {
			{Date: date(2020, 1, 4), Value: 2.0},
			{Date: date(2020, 1, 7), Value: 5.0},
		},
		MacroInflationHICP: singleObservation(date(2020, 1, 5), 1.0),
		MacroIBEX35:        singleObservation(date(2020, 1, 5), 2.0),
	}

	matrix, err := NewMacroResampler().Resample(fullMacroSet(obs), calendar)
	require.NoError(t, err)

	rate, _ := matrix.Column(MacroECBDepositRate)
	expected := []float64{2, 2, 2, 2, 3, 4, 5, 5, 5, 5}
	for i, want := range expected {
		assert.InDelta(t, want, rate[i], 1e-9, "index %d", i)
	}

	// A single observation propagates both directions.
	hicp, _ := matrix.Column(MacroInflationHICP)
	for i := range hicp {
		assert.InDelta(t, 1.0, hicp[i], 1e-9)
	}
}

func TestResampleNoGapsRemain(t *testing.T) {
	calendar, err := BuildCalendar(date(2018, 1, 1), date(2020, 12, 31))
	require.NoError(t, err)

	obs := map[string][]domain.MacroObservation{
		MacroECBDepositRate: {
			{Date: date(2018, 3, 14), Value: -0.4},
			{Date: date(2019, 9, 18), Value: -0.5},
		},
		MacroInflationHICP: {
			{Date: date(2018, 6, 1), Value: 1.9},
			{Date: date(2020, 6, 1), Value: 0.3},
		},
		MacroIBEX35: singleObservation(date(2019, 1, 2), 8500.0),
	}

	matrix, err := NewMacroResampler().Resample(fullMacroSet(obs), calendar)
	require.NoError(t, err)

	for _, name := range MacroColumns {
		values, ok := matrix.Column(name)
		require.True(t, ok)
		assert.Len(t, values, len(calendar), name)
	}
	assert.Equal(t, MacroColumns, matrix.Columns)
}

func TestResampleDropsOutOfRangeObservations(t *testing.T) {
	calendar, err := BuildCalendar(date(2020, 1, 1), date(2020, 1, 5))
	require.NoError(t, err)

	obs := map[string][]domain.MacroObservation{
		MacroECBDepositRate: {
			{Date: date(2019, 12, 1), Value: 99.0}, // before the calendar
			{Date: date(2020, 1, 3), Value: 1.0},
		},
		MacroInflationHICP: singleObservation(date(2020, 1, 2), 1.0),
		MacroIBEX35:        singleObservation(date(2020, 1, 2), 1.0),
	}

	matrix, err := NewMacroResampler().Resample(fullMacroSet(obs), calendar)
	require.NoError(t, err)

	rate, _ := matrix.Column(MacroECBDepositRate)
	// The out-of-range reading never contributes; the in-range one
	// back-fills the leading gap.
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, rate)
}

func TestResampleMissingIndicator(t *testing.T) {
	calendar, err := BuildCalendar(date(2020, 1, 1), date(2020, 1, 5))
	require.NoError(t, err)

	series := fullMacroSet(map[string][]domain.MacroObservation{
		MacroECBDepositRate: singleObservation(date(2020, 1, 1), 0.0),
		MacroInflationHICP:  singleObservation(date(2020, 1, 1), 0.0),
		MacroIBEX35:         singleObservation(date(2020, 1, 1), 0.0),
	})
	delete(series, MacroIBEX35)

	_, err = NewMacroResampler().Resample(series, calendar)
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingSource(err))
}

func TestResampleEmptySeriesInRange(t *testing.T) {
	calendar, err := BuildCalendar(date(2020, 1, 1), date(2020, 1, 5))
	require.NoError(t, err)

	series := fullMacroSet(map[string][]domain.MacroObservation{
		MacroECBDepositRate: nil, // present but without observations
		MacroInflationHICP:  singleObservation(date(2020, 1, 1), 0.0),
		MacroIBEX35:         singleObservation(date(2020, 1, 1), 0.0),
	})

	_, err = NewMacroResampler().Resample(series, calendar)
	require.Error(t, err)
	assert.False(t, apperrors.IsMissingSource(err))
}

func TestResampleDuplicateDateKeepsLastReading(t *testing.T) {
	calendar, err := BuildCalendar(date(2020, 1, 1), date(2020, 1, 3))
	require.NoError(t, err)

	obs := map[string][]domain.MacroObservation{
		MacroECBDepositRate: {
			{Date: date(2020, 1, 2), Value: 1.0},
			{Date: date(2020, 1, 2), Value: 2.0},
		},
		MacroInflationHICP: singleObservation(date(2020, 1, 2), 1.0),
		MacroIBEX35:        singleObservation(date(2020, 1, 2), 1.0),
	}

	matrix, err := NewMacroResampler().Resample(fullMacroSet(obs), calendar)
	require.NoError(t, err)

	rate, _ := matrix.Column(MacroECBDepositRate)
	assert.Equal(t, []float64{2, 2, 2}, rate)
}
