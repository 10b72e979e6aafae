package backtest

import (
	"time"

	"options-backtester/internal/data"
	"options-backtester/internal/models"
)

// flushBalance appends one valuation row per trading date in [from, to),
// extended to include to itself when inclusive is set, using the inventory
// currently in effect. The engine calls this before each rebalance and each
// mid-period exit (for the elapsed window) and once more after the stream
// ends for the final window.
func (e *Engine) flushBalance(from, to time.Time, inclusive bool) {
	lastPrice := make(map[string]float64)
	for _, h := range e.inventory.Stocks() {
		lastPrice[h.Symbol] = h.Price
	}

	stocksQty := e.inventory.StocksQuantity()
	optionsQty := e.inventory.OptionsQuantity()

	for _, d := range e.stockData.Dates() {
		if d.Before(from) {
			continue
		}
		if inclusive {
			if d.After(to) {
				break
			}
		} else if !d.Before(to) {
			break
		}

		for _, q := range e.stockData.Slice(d) {
			lastPrice[q.Symbol] = q.AdjClose
		}

		perStock := make(map[string]float64, len(e.stocks))
		for _, s := range e.stocks {
			qty := e.inventory.StockQuantity(s.Symbol)
			perStock[s.Symbol] = lastPrice[s.Symbol] * float64(qty)
		}

		calls, puts := e.optionCapital(e.optionData.Slice(d))

		e.ledger.Append(models.BalanceRow{
			Date:         d,
			Cash:         e.cash,
			PerStock:     perStock,
			CallsCapital: calls,
			PutsCapital:  puts,
			StocksQty:    stocksQty,
			OptionsQty:   optionsQty,
		})
	}
}

// optionCapital values the held combinations against one day's quotes, split
// into calls and puts. Each leg is valued at the quote it would close at; a
// leg whose contract has no quote that day contributes zero. This is a
// valuation magnitude, not a signed cash flow.
func (e *Engine) optionCapital(options []data.OptionQuote) (calls, puts float64) {
	if len(e.inventory.Combinations()) == 0 {
		return 0, 0
	}
	byContract := data.ByContract(options)

	for _, combo := range e.inventory.Combinations() {
		for i, leg := range e.strat.Legs {
			held := combo.Legs[i]
			q, ok := byContract[held.Contract]
			if !ok {
				continue
			}
			var price float64
			if leg.Direction == models.DirectionBuy {
				price = q.Bid
			} else {
				price = q.Ask
			}
			value := price * float64(combo.Quantity) * float64(e.sharesPerContract)
			if held.Type == models.OptionCall {
				calls += value
			} else {
				puts += value
			}
		}
	}
	return calls, puts
}
