package backtest

import (
	"math"
	"time"

	"options-backtester/internal/data"
	"options-backtester/internal/logging"
	"options-backtester/internal/models"
)

// EntryCandidate is one fully-assembled combination candidate: one surviving
// quote per leg, costs signed and scaled, paired under a single row identity.
type EntryCandidate struct {
	Row       int
	Legs      []models.LegPosition
	TotalCost float64
}

// Selector picks which candidate combination to enter when more than one
// survives the leg filters. The default policy is intentionally simple; it is
// a documented tie-break, not an optimizer.
type Selector interface {
	Select(candidates []EntryCandidate) (EntryCandidate, bool)
}

// FirstCandidate picks the first combination in slice order.
type FirstCandidate struct{}

// Select returns the first candidate, or ok=false when there are none.
func (FirstCandidate) Select(candidates []EntryCandidate) (EntryCandidate, bool) {
	if len(candidates) == 0 {
		return EntryCandidate{}, false
	}
	return candidates[0], true
}

// executeOptionEntries enters at most one new combination against the target
// dollar allocation. Contracts already held are excluded from candidacy; if
// any leg has zero surviving candidates, no entry occurs this period.
func (e *Engine) executeOptionEntries(date time.Time, options []data.OptionQuote, target float64) {
	candidates := e.buildEntryCandidates(date, options)
	if len(candidates) == 0 {
		return
	}

	chosen, ok := e.selector.Select(candidates)
	if !ok {
		return
	}
	if math.Abs(chosen.TotalCost) < 1e-12 {
		e.logger.Debug().Time("date", date).Msg("Zero-cost combination; skipping entry")
		return
	}

	qty := int64(math.Floor(math.Abs(target) / math.Abs(chosen.TotalCost)))
	if qty == 0 {
		e.logger.Debug().Time("date", date).
			Float64("total_cost", chosen.TotalCost).
			Float64("target", target).
			Msg("Combination not affordable; skipping entry")
		return
	}

	e.inventory.AddCombination(chosen.Legs, chosen.TotalCost, qty, date)
	e.tradeLog.Append(models.TradeRecord{
		Date:      date,
		Legs:      chosen.Legs,
		TotalCost: chosen.TotalCost,
		Quantity:  qty,
	})
	e.cash -= chosen.TotalCost * float64(qty)

	logging.LogTrade(e.logger, string(models.SignalEntry), date, chosen.TotalCost, qty)
}

// buildEntryCandidates applies each leg's entry filter to the slice and pairs
// the survivors row by row into combination candidates. Row i across legs
// forms one combination; the pairing is done once here, under an explicit row
// index, so later steps cannot misalign legs.
func (e *Engine) buildEntryCandidates(date time.Time, options []data.OptionQuote) []EntryCandidate {
	held := e.inventory.HeldContracts()

	perLeg := make([][]data.OptionQuote, len(e.strat.Legs))
	minLen := math.MaxInt32
	for i, leg := range e.strat.Legs {
		for _, q := range options {
			if held[q.Contract] {
				continue
			}
			if leg.EntryFilter(q) {
				perLeg[i] = append(perLeg[i], q)
			}
		}
		// No survivors for any leg means no entry this period; the
		// engine never enters a partial combination.
		if len(perLeg[i]) == 0 {
			return nil
		}
		if len(perLeg[i]) < minLen {
			minLen = len(perLeg[i])
		}
	}

	candidates := make([]EntryCandidate, 0, minLen)
	for row := 0; row < minLen; row++ {
		legs := make([]models.LegPosition, len(e.strat.Legs))
		total := 0.0
		for i, leg := range e.strat.Legs {
			q := perLeg[i][row]
			cost := entryCost(q, leg.Direction, e.sharesPerContract)
			legs[i] = models.LegPosition{
				Contract:   q.Contract,
				Underlying: q.Underlying,
				Expiration: q.Expiration,
				Type:       q.Type,
				Strike:     q.Strike,
				Cost:       cost,
				Order:      models.OrderFor(leg.Direction, models.SignalEntry),
			}
			total += cost
		}
		candidates = append(candidates, EntryCandidate{Row: row, Legs: legs, TotalCost: total})
	}
	return candidates
}

// entryCost returns the signed, multiplier-scaled cost of opening one leg:
// buys pay the ask, sells receive the bid (negative cost).
func entryCost(q data.OptionQuote, direction models.Direction, sharesPerContract int) float64 {
	var cost float64
	if direction == models.DirectionBuy {
		cost = q.Ask
	} else {
		cost = -q.Bid
	}
	return cost * float64(sharesPerContract)
}
