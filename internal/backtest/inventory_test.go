package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

func TestInventoryCombinationLifecycle(t *testing.T) {
	inv := NewInventory()
	d := day(2023, time.March, 1)

	a := inv.AddCombination([]models.LegPosition{{Contract: "A"}}, 80, 125, d)
	b := inv.AddCombination([]models.LegPosition{{Contract: "B"}, {Contract: "C"}}, -40, 10, d)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.Len(t, inv.Combinations(), 2)
	assert.Equal(t, int64(135), inv.OptionsQuantity())
	assert.Equal(t, 80.0*125-40.0*10, inv.OptionsValue())

	held := inv.HeldContracts()
	assert.True(t, held["A"])
	assert.True(t, held["B"])
	assert.True(t, held["C"])
	assert.False(t, held["D"])

	inv.Remove(map[int64]bool{a.ID: true})
	require.Len(t, inv.Combinations(), 1)
	assert.Equal(t, b.ID, inv.Combinations()[0].ID)
	assert.False(t, inv.HeldContracts()["A"])
}

func TestInventoryClearKeepsNumbering(t *testing.T) {
	inv := NewInventory()
	d := day(2023, time.March, 1)

	first := inv.AddCombination([]models.LegPosition{{Contract: "A"}}, 100, 1, d)
	inv.Clear()

	assert.Empty(t, inv.Combinations())
	assert.Empty(t, inv.Stocks())

	second := inv.AddCombination([]models.LegPosition{{Contract: "A"}}, 100, 1, d)
	assert.Greater(t, second.ID, first.ID)
}

func TestInventoryStocks(t *testing.T) {
	inv := NewInventory()
	inv.SetStocks([]models.StockHolding{
		{Symbol: "ABC", Price: 50, Quantity: 1200},
		{Symbol: "XYZ", Price: 20, Quantity: 0},
	})

	assert.Equal(t, int64(1200), inv.StockQuantity("ABC"))
	assert.Equal(t, int64(0), inv.StockQuantity("XYZ"))
	assert.Equal(t, int64(0), inv.StockQuantity("MISSING"))
	assert.Equal(t, int64(1200), inv.StocksQuantity())
	assert.Equal(t, 60_000.0, inv.StocksValue())
}

func TestAllocationNormalizeErrors(t *testing.T) {
	_, err := Allocation{Stocks: -0.1, Options: 0.5, Cash: 0.6}.Normalize()
	assert.ErrorIs(t, err, errors.ErrBadAllocation)

	_, err = Allocation{}.Normalize()
	assert.ErrorIs(t, err, errors.ErrBadAllocation)
}

func TestAllocationNormalizeRescales(t *testing.T) {
	alloc, err := Allocation{Stocks: 2, Options: 1, Cash: 1}.Normalize()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, alloc.Stocks, 1e-12)
	assert.InDelta(t, 0.25, alloc.Options, 1e-12)
	assert.InDelta(t, 0.25, alloc.Cash, 1e-12)
}

func TestValidateStockWeights(t *testing.T) {
	assert.NoError(t, validateStockWeights(nil))
	assert.NoError(t, validateStockWeights([]models.Stock{
		{Symbol: "ABC", Percentage: 0.6},
		{Symbol: "XYZ", Percentage: 0.4},
	}))

	err := validateStockWeights([]models.Stock{
		{Symbol: "ABC", Percentage: 0.6},
		{Symbol: "XYZ", Percentage: 0.5},
	})
	assert.ErrorIs(t, err, errors.ErrBadStockWeights)
}
