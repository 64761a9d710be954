package domain

import (
	"time"
)

// OptionalFloat is a float64 that knows whether it has been observed.
// It keeps "no value yet" distinct from "value is zero" so downstream
// fill rules can be applied per column instead of leaking NaN sentinels.
type OptionalFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present OptionalFloat holding v.
func Float(v float64) OptionalFloat {
	return OptionalFloat{Float64: v, Valid: true}
}

// NoFloat returns an absent OptionalFloat.
func NoFloat() OptionalFloat {
	return OptionalFloat{}
}

// Or returns the held value, or fallback when absent.
func (f OptionalFloat) Or(fallback float64) float64 {
	if f.Valid {
		return f.Float64
	}
	return fallback
}

// PriceBar represents one trading day of a symbol's cleaned price history.
// Close is always present after normalization; the remaining numeric
// columns may be absent in loosely-formatted source files.
type PriceBar struct {
	Date        time.Time     `json:"date"`
	Open        OptionalFloat `json:"open"`
	High        OptionalFloat `json:"high"`
	Low         OptionalFloat `json:"low"`
	Close       float64       `json:"close"`
	AdjClose    OptionalFloat `json:"adj_close"`
	Volume      OptionalFloat `json:"volume"`
	Dividends   OptionalFloat `json:"dividends"`
	StockSplits OptionalFloat `json:"stock_splits"`
}

// PriceColumns is the fixed column set of a normalized price table, in
// output order (Date excluded).
var PriceColumns = []string{
	"Open", "High", "Low", "Close", "Adj Close", "Volume", "Dividends", "Stock Splits",
}

// PriceSeries is the pre-cleaned per-symbol price table. Bars are sorted
// ascending by date with no duplicate dates; it defines the row universe
// of the symbol's final panel and is read-only to the merge engine.
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Dates returns the anchor date set of the series, in ascending order.
func (s *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, bar := range s.Bars {
		dates[i] = bar.Date
	}
	return dates
}

// Len returns the number of trading-day rows.
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}
