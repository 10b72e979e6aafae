// Package models provides domain models shared across the backtester.
package models

import "time"

// Direction represents the trade direction of an option leg.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Opposite returns the direction used to close a position opened with d.
func (d Direction) Opposite() Direction {
	if d == DirectionBuy {
		return DirectionSell
	}
	return DirectionBuy
}

// Signal distinguishes position entries from exits.
type Signal string

const (
	SignalEntry Signal = "ENTRY"
	SignalExit  Signal = "EXIT"
)

// OrderType tags a trade with its canonical options order category.
type OrderType string

const (
	OrderBuyToOpen   OrderType = "BTO"
	OrderSellToOpen  OrderType = "STO"
	OrderSellToClose OrderType = "STC"
	OrderBuyToClose  OrderType = "BTC"
)

// OrderFor maps a leg direction and signal to its order type. Entries keep the
// leg's own direction; exits take the opposite side.
func OrderFor(d Direction, s Signal) OrderType {
	switch {
	case d == DirectionBuy && s == SignalEntry:
		return OrderBuyToOpen
	case d == DirectionBuy && s == SignalExit:
		return OrderSellToClose
	case d == DirectionSell && s == SignalEntry:
		return OrderSellToOpen
	default:
		return OrderBuyToClose
	}
}

// OptionType represents the contract right.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// Stock is one member of the configured stock universe with its target weight.
// Percentages across the universe must sum to 1.0.
type Stock struct {
	Symbol     string
	Percentage float64
}

// StockHolding is one row of the stock inventory.
type StockHolding struct {
	Symbol   string
	Price    float64
	Quantity int64
}

// Value returns the holding's market value at its recorded price.
func (h StockHolding) Value() float64 {
	return h.Price * float64(h.Quantity)
}

// LegPosition is one leg's slice of a held option combination. Cost is per
// combination unit (contract price times the share multiplier) and signed:
// positive means capital outflow (bought), negative means capital inflow (sold).
type LegPosition struct {
	Contract   string
	Underlying string
	Expiration time.Time
	Type       OptionType
	Strike     float64
	Cost       float64
	Order      OrderType
}

// TradeRecord is one immutable row of the trade log. It mirrors a combination
// at the moment of execution; Legs is in strategy leg order.
type TradeRecord struct {
	Date      time.Time
	Legs      []LegPosition
	TotalCost float64
	Quantity  int64
}

// BalanceRow is one valuation snapshot of the portfolio. PerStock holds the
// capital in each stock of the universe. Derived fields are filled in by
// Ledger.Finalize once the run is complete.
type BalanceRow struct {
	Date         time.Time
	Cash         float64
	PerStock     map[string]float64
	CallsCapital float64
	PutsCapital  float64
	StocksQty    int64
	OptionsQty   int64

	// Derived.
	OptionsCapital float64
	StocksCapital  float64
	TotalCapital   float64
	PctChange      float64
	CumReturn      float64
}
