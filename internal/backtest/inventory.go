// Package backtest implements the rebalancing simulation engine: the stateful
// loop that liquidates, revalues and rebuilds a combined stock and multi-leg
// options portfolio over a historical data series.
package backtest

import (
	"time"

	"options-backtester/internal/models"
)

// Combination is one currently-held multi-leg option position. Legs follows
// the strategy's leg order. Cost is the aggregate signed cost per unit;
// Quantity is shared by every leg. ID is a synthetic, stable row identity so
// exits can never misalign with the inventory.
type Combination struct {
	ID        int64
	Legs      []models.LegPosition
	Cost      float64
	Quantity  int64
	EntryDate time.Time
}

// Inventory holds the current stock positions and option combinations of one
// engine run. It is the only mutation surface for position state: entries,
// exits and clears all go through its methods.
type Inventory struct {
	stocks []models.StockHolding
	combos []*Combination
	nextID int64
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{nextID: 1}
}

// Clear drops all stock and option positions. Identity numbering continues
// across clears.
func (inv *Inventory) Clear() {
	inv.stocks = nil
	inv.combos = nil
}

// SetStocks replaces the stock inventory wholesale. Stock positions are
// rebuilt from scratch at each rebalance, never partially mutated.
func (inv *Inventory) SetStocks(holdings []models.StockHolding) {
	inv.stocks = holdings
}

// Stocks returns the current stock holdings.
func (inv *Inventory) Stocks() []models.StockHolding {
	return inv.stocks
}

// StockQuantity returns the held quantity for one symbol.
func (inv *Inventory) StockQuantity(symbol string) int64 {
	for _, h := range inv.stocks {
		if h.Symbol == symbol {
			return h.Quantity
		}
	}
	return 0
}

// StocksValue returns the total value of the stock inventory at its recorded
// prices.
func (inv *Inventory) StocksValue() float64 {
	total := 0.0
	for _, h := range inv.stocks {
		total += h.Value()
	}
	return total
}

// StocksQuantity returns the total number of shares held.
func (inv *Inventory) StocksQuantity() int64 {
	var total int64
	for _, h := range inv.stocks {
		total += h.Quantity
	}
	return total
}

// AddCombination appends a new option combination and assigns its identity.
func (inv *Inventory) AddCombination(legs []models.LegPosition, cost float64, qty int64, date time.Time) *Combination {
	c := &Combination{
		ID:        inv.nextID,
		Legs:      legs,
		Cost:      cost,
		Quantity:  qty,
		EntryDate: date,
	}
	inv.nextID++
	inv.combos = append(inv.combos, c)
	return c
}

// Combinations returns the currently-held option combinations in entry order.
func (inv *Inventory) Combinations() []*Combination {
	return inv.combos
}

// Remove drops the combinations with the given identities.
func (inv *Inventory) Remove(ids map[int64]bool) {
	if len(ids) == 0 {
		return
	}
	kept := inv.combos[:0]
	for _, c := range inv.combos {
		if !ids[c.ID] {
			kept = append(kept, c)
		}
	}
	inv.combos = kept
}

// OptionsValue returns the total entry value of the option inventory
// (cost per unit times quantity, summed).
func (inv *Inventory) OptionsValue() float64 {
	total := 0.0
	for _, c := range inv.combos {
		total += c.Cost * float64(c.Quantity)
	}
	return total
}

// OptionsQuantity returns the total number of combination units held.
func (inv *Inventory) OptionsQuantity() int64 {
	var total int64
	for _, c := range inv.combos {
		total += c.Quantity
	}
	return total
}

// HeldContracts returns the set of contract identifiers held by any leg.
func (inv *Inventory) HeldContracts() map[string]bool {
	held := make(map[string]bool)
	for _, c := range inv.combos {
		for _, leg := range c.Legs {
			held[leg.Contract] = true
		}
	}
	return held
}
