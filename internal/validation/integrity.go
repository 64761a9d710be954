// Package validation computes per-input integrity reports before the
// merge runs. The checks are descriptive, not gating: findings are
// logged and summarized to a CSV so a suspicious panel can be traced to
// its inputs, while fatal conditions stay the loaders' responsibility.
package validation

import (
	"fmt"
	"log/slog"
	"time"

	"exopanel/internal/exporter"
	"exopanel/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// TableReport summarizes one input table.
type TableReport struct {
	Table          string
	Rows           int
	MissingCells   int
	DuplicateDates int
	MinDate        time.Time
	MaxDate        time.Time
	Monotonic      bool
}

// Checker builds integrity reports over loaded inputs.
type Checker struct {
	logger *slog.Logger
}

// NewChecker creates a checker. A nil logger falls back to the default
// slog logger.
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{logger: logger}
}

// CheckPriceSeries reports on a normalized per-symbol price table.
// MissingCells counts absent optional values across all rows.
func (c *Checker) CheckPriceSeries(series *domain.PriceSeries) TableReport {
	report := TableReport{Table: series.Symbol, Rows: series.Len(), Monotonic: true}

	seen := make(map[string]bool, series.Len())
	var prev time.Time
	for i, bar := range series.Bars {
		key := bar.Date.Format(dateLayout)
		if seen[key] {
			report.DuplicateDates++
		}
		seen[key] = true

		if i > 0 && !bar.Date.After(prev) {
			report.Monotonic = false
		}
		prev = bar.Date

		for _, cell := range []domain.OptionalFloat{
			bar.Open, bar.High, bar.Low, bar.AdjClose,
			bar.Volume, bar.Dividends, bar.StockSplits,
		} {
			if !cell.Valid {
				report.MissingCells++
			}
		}

		if report.MinDate.IsZero() || bar.Date.Before(report.MinDate) {
			report.MinDate = bar.Date
		}
		if bar.Date.After(report.MaxDate) {
			report.MaxDate = bar.Date
		}
	}

	c.logFindings(report)
	return report
}

// CheckMacroSeries reports on one sparse macro indicator history.
func (c *Checker) CheckMacroSeries(series domain.MacroSeries) TableReport {
	report := TableReport{Table: series.Name, Rows: len(series.Observations), Monotonic: true}

	seen := make(map[string]bool, len(series.Observations))
	var prev time.Time
	for i, obs := range series.Observations {
		key := obs.Date.Format(dateLayout)
		if seen[key] {
			report.DuplicateDates++
		}
		seen[key] = true

		if i > 0 && !obs.Date.After(prev) {
			report.Monotonic = false
		}
		prev = obs.Date

		if report.MinDate.IsZero() || obs.Date.Before(report.MinDate) {
			report.MinDate = obs.Date
		}
		if obs.Date.After(report.MaxDate) {
			report.MaxDate = obs.Date
		}
	}

	c.logFindings(report)
	return report
}

// WriteReport persists the collected reports as a summary CSV.
func (c *Checker) WriteReport(reports []TableReport, path string) error {
	headers := []string{
		"Table", "Rows", "MissingCells", "DuplicateDates", "MinDate", "MaxDate", "Monotonic",
	}
	records := make([][]string, 0, len(reports))
	for _, r := range reports {
		records = append(records, []string{
			r.Table,
			fmt.Sprintf("%d", r.Rows),
			fmt.Sprintf("%d", r.MissingCells),
			fmt.Sprintf("%d", r.DuplicateDates),
			formatDate(r.MinDate),
			formatDate(r.MaxDate),
			fmt.Sprintf("%t", r.Monotonic),
		})
	}

	if err := exporter.WriteCSVAtomic(path, exporter.WriteOptions{
		Headers: headers,
		Records: records,
	}); err != nil {
		return fmt.Errorf("failed to write integrity report: %w", err)
	}

	c.logger.Info("integrity report written",
		slog.String("path", path),
		slog.Int("tables", len(reports)))
	return nil
}

// logFindings warns about the conditions worth a human look.
func (c *Checker) logFindings(report TableReport) {
	if report.Rows == 0 {
		c.logger.Warn("input table is empty", slog.String("table", report.Table))
		return
	}
	if report.DuplicateDates > 0 {
		c.logger.Warn("input table has duplicate dates",
			slog.String("table", report.Table),
			slog.Int("duplicates", report.DuplicateDates))
	}
	if !report.Monotonic {
		c.logger.Warn("input table dates are not strictly increasing",
			slog.String("table", report.Table))
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
