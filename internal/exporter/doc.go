// Package exporter persists finished panels and reports as CSV files.
//
// Two pieces:
//
// WriteCSVAtomic: generic write-to-temp-then-rename CSV writer so a
// crashed run never leaves a truncated file at a destination path.
//
// PanelWriter: renders a per-symbol panel into the fixed column layout
// (Date, price columns, event indicators, macro columns) with
// deterministic cell formatting.
//
// Example usage:
//
//	writer := exporter.NewPanelWriter(logger)
//	err := writer.Write(panel, paths.PanelPath(panel.Symbol))
package exporter
