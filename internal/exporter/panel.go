package exporter

import (
	"fmt"
	"log/slog"

	"exopanel/pkg/contracts/domain"
)

// PanelWriter persists finished per-symbol panels as CSV files.
type PanelWriter struct {
	logger *slog.Logger
}

// NewPanelWriter creates a panel writer. A nil logger falls back to the
// default slog logger.
func NewPanelWriter(logger *slog.Logger) *PanelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PanelWriter{logger: logger}
}

// Write persists the panel to path atomically. The column layout is
// Date, the fixed price columns, then the event and macro columns in
// the panel's own order; rows are already sorted ascending by date.
func (w *PanelWriter) Write(panel *domain.Panel, path string) error {
	headers := make([]string, 0, 1+len(domain.PriceColumns)+len(panel.EventColumns)+len(panel.MacroColumns))
	headers = append(headers, "Date")
	headers = append(headers, domain.PriceColumns...)
	headers = append(headers, panel.EventColumns...)
	headers = append(headers, panel.MacroColumns...)

	records := make([][]string, 0, panel.Len())
	for _, row := range panel.Rows {
		if len(row.Events) != len(panel.EventColumns) || len(row.Macros) != len(panel.MacroColumns) {
			return fmt.Errorf("panel %s row %s has inconsistent column counts",
				panel.Symbol, row.Bar.Date.Format("2006-01-02"))
		}

		record := make([]string, 0, len(headers))
		record = append(record,
			row.Bar.Date.Format("2006-01-02"),
			formatOptional(row.Bar.Open),
			formatOptional(row.Bar.High),
			formatOptional(row.Bar.Low),
			formatFloat(row.Bar.Close),
			formatOptional(row.Bar.AdjClose),
			formatOptional(row.Bar.Volume),
			formatOptional(row.Bar.Dividends),
			formatOptional(row.Bar.StockSplits),
		)
		for _, v := range row.Events {
			record = append(record, formatInt(v))
		}
		for _, v := range row.Macros {
			record = append(record, formatFloat(v))
		}
		records = append(records, record)
	}

	if err := WriteCSVAtomic(path, WriteOptions{Headers: headers, Records: records}); err != nil {
		return fmt.Errorf("failed to write panel for %s: %w", panel.Symbol, err)
	}

	w.logger.Info("panel written",
		slog.String("symbol", panel.Symbol),
		slog.String("path", path),
		slog.Int("rows", panel.Len()),
		slog.Int("columns", len(headers)))
	return nil
}
