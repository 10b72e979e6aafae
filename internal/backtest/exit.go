package backtest

import (
	"time"

	"options-backtester/internal/data"
	"options-backtester/internal/logging"
	"options-backtester/internal/models"
)

// legQuote is one leg's lookup against the current option slice: the exit
// position (imputed from the inventory when the contract is missing), the
// signed closing cost, and whether the contract was missing. The missing
// condition is kept as its own flag rather than collapsed into cost, so exit
// logic can act even when the monetary impact nets to zero.
type legQuote struct {
	pos     models.LegPosition
	cost    float64
	missing bool
	quote   data.OptionQuote
}

// currentLegQuotes left-joins the inventory's contracts against the current
// slice, preserving inventory row order and count exactly. A missing contract
// keeps its last known leg fields from the inventory with cost forced to
// zero.
func (e *Engine) currentLegQuotes(options []data.OptionQuote) [][]legQuote {
	byContract := data.ByContract(options)

	out := make([][]legQuote, 0, len(e.inventory.Combinations()))
	for _, combo := range e.inventory.Combinations() {
		row := make([]legQuote, len(e.strat.Legs))
		for i, leg := range e.strat.Legs {
			held := combo.Legs[i]
			order := models.OrderFor(leg.Direction, models.SignalExit)

			q, ok := byContract[held.Contract]
			if !ok {
				imputed := held
				imputed.Cost = 0
				imputed.Order = order
				row[i] = legQuote{pos: imputed, missing: true}
				continue
			}

			cost := exitCost(q, leg.Direction, e.sharesPerContract)
			row[i] = legQuote{
				pos: models.LegPosition{
					Contract:   q.Contract,
					Underlying: q.Underlying,
					Expiration: q.Expiration,
					Type:       q.Type,
					Strike:     q.Strike,
					Cost:       cost,
					Order:      order,
				},
				cost:  cost,
				quote: q,
			}
		}
		out = append(out, row)
	}
	return out
}

// exitCost returns the signed, multiplier-scaled cost of closing one leg.
// The closing trade takes the opposite side of the leg's quote: a bought leg
// closes at the bid (negated, since selling is a cash inflow) and a sold leg
// closes at the ask (paid to buy back).
func exitCost(q data.OptionQuote, direction models.Direction, sharesPerContract int) float64 {
	var cost float64
	if direction == models.DirectionBuy {
		cost = -q.Bid
	} else {
		cost = q.Ask
	}
	return cost * float64(sharesPerContract)
}

// comboExit is one combination selected for closing, with its exit legs and
// total per-unit closing cost already resolved.
type comboExit struct {
	combo     *Combination
	legs      []models.LegPosition
	totalCost float64
}

// pendingExits evaluates the exit masks without touching cash or inventory:
// any leg's exit filter firing, any leg's contract missing from today's
// quotes, or the strategy's profit/loss threshold tripping. With forceAll
// set, every held combination is selected regardless of filters (the
// rebalance-boundary full liquidation); the quote lookup and imputation
// rules are identical either way. There are no partial-leg exits; one leg
// wanting out closes the whole combination.
func (e *Engine) pendingExits(options []data.OptionQuote, forceAll bool) []comboExit {
	combos := e.inventory.Combinations()
	if len(combos) == 0 {
		return nil
	}

	quotes := e.currentLegQuotes(options)
	var exits []comboExit

	for ci, combo := range combos {
		row := quotes[ci]

		totalCost := 0.0
		for _, lq := range row {
			totalCost += lq.cost
		}

		exit := forceAll
		if !exit {
			for i, leg := range e.strat.Legs {
				// A missing quote always forces an exit,
				// independent of the leg's own predicate.
				if row[i].missing {
					exit = true
					break
				}
				if leg.ExitFilter != nil && leg.ExitFilter(row[i].quote) {
					exit = true
					break
				}
			}
			if !exit && e.strat.Thresholds != nil && e.strat.Thresholds(combo.Cost, totalCost) {
				exit = true
			}
		}
		if !exit {
			continue
		}

		legs := make([]models.LegPosition, len(row))
		for i, lq := range row {
			legs[i] = lq.pos
		}
		exits = append(exits, comboExit{combo: combo, legs: legs, totalCost: totalCost})
	}
	return exits
}

// applyExits realizes the selected exits: trade records, the cash delta and
// removal from the inventory.
func (e *Engine) applyExits(date time.Time, exits []comboExit) {
	if len(exits) == 0 {
		return
	}
	removed := make(map[int64]bool, len(exits))
	for _, ex := range exits {
		e.tradeLog.Append(models.TradeRecord{
			Date:      date,
			Legs:      ex.legs,
			TotalCost: ex.totalCost,
			Quantity:  ex.combo.Quantity,
		})
		e.cash -= ex.totalCost * float64(ex.combo.Quantity)
		removed[ex.combo.ID] = true

		logging.LogTrade(e.logger, string(models.SignalExit), date, ex.totalCost, ex.combo.Quantity)
	}
	e.inventory.Remove(removed)
}
