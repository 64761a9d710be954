// Package exogenous implements the calendar-construction and merge engine
// of the panel builder.
//
// The engine runs in four steps:
//
// 1. BuildCalendar: dense daily date sequence over the configured bounds
// 2. EventWindowEncoder: named date intervals → binary indicator matrix
// 3. MacroResampler: sparse macro readings → gap-free daily matrix
// 4. MergeEngine: anchor prices + both matrices → per-symbol panel
//
// The calendar, the event matrix and the macro matrix are built once per
// run and shared read-only across every per-symbol merge; a merge copies
// values into its panel and never mutates the shared inputs, so symbols
// can be processed concurrently without locks.
//
// Invariants enforced here:
//
//   - calendar length == (end-start in days)+1, strictly increasing
//   - event columns are int 0/1, exactly 1 inside the clipped window
//   - macro columns have zero missing values given one in-range observation
//   - panel row count == anchor row count, always
package exogenous
