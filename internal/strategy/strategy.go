// Package strategy defines multi-leg option strategies: named legs with a
// trade direction, entry and exit predicates over option quotes, and a
// portfolio-level profit/loss threshold rule.
package strategy

import (
	"fmt"
	"math"

	"options-backtester/internal/data"
	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

// Filter is a predicate over a single option quote.
type Filter func(q data.OptionQuote) bool

// ThresholdFunc decides whether a held combination must exit given its entry
// cost and the current cost of closing it (both per unit, signed: positive is
// a capital outflow).
type ThresholdFunc func(heldCost, currentCost float64) bool

// Leg is one component of a multi-leg strategy.
type Leg struct {
	Name        string
	Direction   models.Direction
	EntryFilter Filter
	ExitFilter  Filter
}

// Strategy is an ordered set of legs plus a portfolio-level threshold rule.
// Schema records the physical data layout the strategy was written against;
// the engine refuses to run it against differently-shaped options data.
type Strategy struct {
	Name       string
	Legs       []Leg
	Thresholds ThresholdFunc
	Schema     data.OptionSchema
}

// Validate checks the strategy is runnable.
func (s *Strategy) Validate() error {
	if len(s.Legs) == 0 {
		return errors.NewConfigError("strategy", "strategy has no legs", errors.ErrConfigInvalid)
	}
	seen := map[string]bool{}
	for i, leg := range s.Legs {
		if leg.Name == "" {
			return errors.NewConfigError("strategy", fmt.Sprintf("leg %d has no name", i+1), errors.ErrConfigInvalid)
		}
		if seen[leg.Name] {
			return errors.NewConfigError("strategy", fmt.Sprintf("duplicate leg name %q", leg.Name), errors.ErrConfigInvalid)
		}
		seen[leg.Name] = true
		if leg.Direction != models.DirectionBuy && leg.Direction != models.DirectionSell {
			return errors.NewConfigError("strategy", fmt.Sprintf("leg %q has invalid direction %q", leg.Name, leg.Direction), errors.ErrConfigInvalid)
		}
		if leg.EntryFilter == nil {
			return errors.NewConfigError("strategy", fmt.Sprintf("leg %q has no entry filter", leg.Name), errors.ErrConfigInvalid)
		}
	}
	return nil
}

// Filter combinators.

// And returns a filter that passes when all of the given filters pass.
func And(filters ...Filter) Filter {
	return func(q data.OptionQuote) bool {
		for _, f := range filters {
			if !f(q) {
				return false
			}
		}
		return true
	}
}

// Or returns a filter that passes when any of the given filters passes.
func Or(filters ...Filter) Filter {
	return func(q data.OptionQuote) bool {
		for _, f := range filters {
			if f(q) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(f Filter) Filter {
	return func(q data.OptionQuote) bool { return !f(q) }
}

// Never passes nothing. Useful as an exit filter for hold-to-rebalance legs.
func Never() Filter {
	return func(data.OptionQuote) bool { return false }
}

// Common predicates.

// TypeIs passes quotes of the given contract right.
func TypeIs(t models.OptionType) Filter {
	return func(q data.OptionQuote) bool { return q.Type == t }
}

// UnderlyingIs passes quotes on the given underlying symbol.
func UnderlyingIs(symbol string) Filter {
	return func(q data.OptionQuote) bool { return q.Underlying == symbol }
}

// DTEBetween passes quotes with min <= days-to-expiration <= max.
func DTEBetween(min, max int) Filter {
	return func(q data.OptionQuote) bool {
		dte := q.DTE()
		return dte >= min && dte <= max
	}
}

// DTEBelow passes quotes with days-to-expiration < days.
func DTEBelow(days int) Filter {
	return func(q data.OptionQuote) bool { return q.DTE() < days }
}

// StrikeBandPct passes quotes whose strike falls within
// [min*underlying, max*underlying].
func StrikeBandPct(min, max float64) Filter {
	return func(q data.OptionQuote) bool {
		if q.UnderlyingPrice <= 0 {
			return false
		}
		ratio := q.Strike / q.UnderlyingPrice
		return ratio >= min && ratio <= max
	}
}

// MinBid passes quotes with a bid of at least x. Filters out dead quotes.
func MinBid(x float64) Filter {
	return func(q data.OptionQuote) bool { return q.Bid >= x }
}

// MinVolume passes quotes with traded volume of at least v.
func MinVolume(v int64) Filter {
	return func(q data.OptionQuote) bool { return q.Volume >= v }
}

// ProfitLossThresholds returns a threshold rule that forces an exit when the
// combination's open profit reaches profitPct of its entry cost, or its open
// loss reaches lossPct. Both are fractions; a non-positive value disables that
// side. Profit per unit is -(heldCost + currentCost): closing costs are signed
// so a profitable close nets a larger inflow than the entry outflow.
func ProfitLossThresholds(profitPct, lossPct float64) ThresholdFunc {
	return func(heldCost, currentCost float64) bool {
		base := math.Abs(heldCost)
		if base == 0 {
			return false
		}
		ratio := -(heldCost + currentCost) / base
		if profitPct > 0 && ratio >= profitPct {
			return true
		}
		if lossPct > 0 && ratio <= -lossPct {
			return true
		}
		return false
	}
}
