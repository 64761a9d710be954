package exporter

import (
	"strconv"

	"exopanel/pkg/contracts/domain"
)

// formatFloat renders a float with the shortest decimal representation
// that round-trips, so repeated runs over the same inputs produce
// byte-identical files.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptional renders an optional float; an absent value becomes an
// empty cell.
func formatOptional(f domain.OptionalFloat) string {
	if !f.Valid {
		return ""
	}
	return formatFloat(f.Float64)
}

// formatInt renders an integer cell.
func formatInt(i int) string {
	return strconv.Itoa(i)
}
