// Package data provides market data series, schemas and loaders for the
// backtester. Series are fully materialized in memory; the simulation loop
// never blocks on I/O.
package data

import (
	stderrors "errors"
	"fmt"

	"options-backtester/internal/errors"
)

// StockSchema maps the logical stock fields to the physical column names of a
// stock price table. It is resolved once when a series is loaded; the engine
// only ever sees normalized records.
type StockSchema struct {
	Date     string
	Symbol   string
	AdjClose string
}

// DefaultStockSchema returns the schema of a Tiingo-style daily price table.
func DefaultStockSchema() StockSchema {
	return StockSchema{
		Date:     "date",
		Symbol:   "symbol",
		AdjClose: "adjClose",
	}
}

// Validate checks that every logical field has a physical column name.
func (s StockSchema) Validate() error {
	for field, col := range map[string]string{
		"date":     s.Date,
		"symbol":   s.Symbol,
		"adjClose": s.AdjClose,
	} {
		if col == "" {
			return errors.NewConfigError("stock_schema", fmt.Sprintf("missing column for %q", field), errors.ErrConfigInvalid)
		}
	}
	return nil
}

// reverse returns the physical-to-logical column mapping.
func (s StockSchema) reverse() map[string]string {
	return map[string]string{
		s.Date:     "date",
		s.Symbol:   "symbol",
		s.AdjClose: "adjClose",
	}
}

// OptionSchema maps the logical option quote fields to the physical column
// names of an end-of-day options table.
type OptionSchema struct {
	Date            string
	Contract        string
	Underlying      string
	UnderlyingPrice string
	Expiration      string
	Type            string
	Strike          string
	Bid             string
	Ask             string
	Last            string
	Volume          string
}

// DefaultOptionSchema returns the schema of a historical EOD options table
// (DiscountOptionData/CBOE-style column names).
func DefaultOptionSchema() OptionSchema {
	return OptionSchema{
		Date:            "quotedate",
		Contract:        "optionroot",
		Underlying:      "underlying",
		UnderlyingPrice: "underlying_last",
		Expiration:      "expiration",
		Type:            "type",
		Strike:          "strike",
		Bid:             "bid",
		Ask:             "ask",
		Last:            "last",
		Volume:          "volume",
	}
}

// Validate checks that every logical field has a physical column name.
func (s OptionSchema) Validate() error {
	for field, col := range map[string]string{
		"date":       s.Date,
		"contract":   s.Contract,
		"underlying": s.Underlying,
		"expiration": s.Expiration,
		"type":       s.Type,
		"strike":     s.Strike,
		"bid":        s.Bid,
		"ask":        s.Ask,
	} {
		if col == "" {
			return errors.NewConfigError("option_schema", fmt.Sprintf("missing column for %q", field), errors.ErrConfigInvalid)
		}
	}
	return nil
}

// Equal reports whether two option schemas describe the same physical layout.
// A strategy built against one layout must not run against another.
func (s OptionSchema) Equal(other OptionSchema) bool {
	return s == other
}

func (s OptionSchema) reverse() map[string]string {
	m := map[string]string{
		s.Date:       "quotedate",
		s.Contract:   "optionroot",
		s.Underlying: "underlying",
		s.Expiration: "expiration",
		s.Type:       "type",
		s.Strike:     "strike",
		s.Bid:        "bid",
		s.Ask:        "ask",
	}
	if s.UnderlyingPrice != "" {
		m[s.UnderlyingPrice] = "underlying_last"
	}
	if s.Last != "" {
		m[s.Last] = "last"
	}
	if s.Volume != "" {
		m[s.Volume] = "volume"
	}
	return m
}

var errEmptySeries = stderrors.New("series has no rows")
