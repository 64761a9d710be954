package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *RunError
		expected string
	}{
		{
			name:     "missing source includes path",
			err:      NewMissingSource("load_macro", ".cache/macro/MACRO_IBEX_Close.csv"),
			expected: "[missing_source] load_macro: required input file not found: .cache/macro/MACRO_IBEX_Close.csv",
		},
		{
			name:     "schema names table and column",
			err:      NewSchema("load_prices", "BBVA.MC", "Close"),
			expected: `[schema] load_prices: table BBVA.MC is missing required column "Close"`,
		},
		{
			name: "invalid range formats both dates",
			err: NewInvalidRange("build_calendar",
				time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
			expected: "[invalid_range] build_calendar: start date 2021-01-01 is after end date 2020-01-01",
		},
		{
			name:     "no step still renders kind",
			err:      &RunError{Kind: KindExecution, Message: "boom"},
			expected: "[execution] boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestKindClassification(t *testing.T) {
	assert.True(t, IsMissingSource(NewMissingSource("s", "p")))
	assert.True(t, IsSchema(NewSchema("s", "t", "c")))
	assert.True(t, IsInvalidRange(NewInvalidRange("s", time.Now(), time.Now().AddDate(0, 0, -1))))

	// Wrapped errors keep their classification.
	wrapped := fmt.Errorf("run failed: %w", NewSchema("load_prices", "SAN.MC", "Date"))
	assert.True(t, IsSchema(wrapped))
	assert.Equal(t, KindSchema, KindOf(wrapped))

	// Unclassified errors fall back to execution.
	assert.Equal(t, KindExecution, KindOf(fmt.Errorf("plain")))
	assert.False(t, IsMissingSource(fmt.Errorf("plain")))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewExecution("write_panel", cause)
	assert.ErrorIs(t, err, cause)
}
