package backtest

import (
	"math"

	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

// Allocation holds the capital split between stocks, options and cash.
// Fractions need not sum to 1 on input; Normalize rescales them.
type Allocation struct {
	Stocks  float64
	Options float64
	Cash    float64
}

// Normalize rescales the allocation so the three fractions sum to exactly 1.
// All inputs must be non-negative and at least one must be positive.
func (a Allocation) Normalize() (Allocation, error) {
	if a.Stocks < 0 || a.Options < 0 || a.Cash < 0 {
		return Allocation{}, errors.NewConfigError("allocation", "fractions must be non-negative", errors.ErrBadAllocation)
	}
	total := a.Stocks + a.Options + a.Cash
	if total <= 0 {
		return Allocation{}, errors.NewConfigError("allocation", "fractions sum to zero", errors.ErrBadAllocation)
	}
	return Allocation{
		Stocks:  a.Stocks / total,
		Options: a.Options / total,
		Cash:    a.Cash / total,
	}, nil
}

// validateStockWeights checks that the configured stock target percentages
// sum to 1.0 within tolerance.
func validateStockWeights(stocks []models.Stock) error {
	if len(stocks) == 0 {
		return nil
	}
	sum := 0.0
	for _, s := range stocks {
		sum += s.Percentage
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return errors.NewConfigError("stocks", "stock percentages must sum to 1.0", errors.ErrBadStockWeights)
	}
	return nil
}
