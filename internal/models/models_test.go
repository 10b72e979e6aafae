package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderFor(t *testing.T) {
	assert.Equal(t, OrderBuyToOpen, OrderFor(DirectionBuy, SignalEntry))
	assert.Equal(t, OrderSellToClose, OrderFor(DirectionBuy, SignalExit))
	assert.Equal(t, OrderSellToOpen, OrderFor(DirectionSell, SignalEntry))
	assert.Equal(t, OrderBuyToClose, OrderFor(DirectionSell, SignalExit))
}

func TestDirectionOpposite(t *testing.T) {
	assert.Equal(t, DirectionSell, DirectionBuy.Opposite())
	assert.Equal(t, DirectionBuy, DirectionSell.Opposite())
}

func TestStockHoldingValue(t *testing.T) {
	h := StockHolding{Symbol: "ABC", Price: 50, Quantity: 1200}
	assert.Equal(t, 60_000.0, h.Value())
}
