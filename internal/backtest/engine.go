package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"options-backtester/internal/data"
	"options-backtester/internal/errors"
	"options-backtester/internal/logging"
	"options-backtester/internal/models"
	"options-backtester/internal/strategy"
)

// DefaultSharesPerContract is the standard US equity option multiplier.
const DefaultSharesPerContract = 100

// Config holds everything needed to construct an Engine.
type Config struct {
	Allocation        Allocation
	InitialCapital    float64
	SharesPerContract int
	StopIfBroke       bool
	Stocks            []models.Stock
	Strategy          *strategy.Strategy
	StockData         *data.StockSeries
	OptionData        *data.OptionSeries
	Selector          Selector
	Logger            zerolog.Logger
}

// RunParams are the per-run knobs of the simulation.
type RunParams struct {
	// RebalanceFreq is the spacing of rebalancing dates in months.
	// 0 means a single rebalance on the first date only.
	RebalanceFreq int
	// Monthly iterates the data month by month instead of day by day.
	Monthly bool
	// SMAWindow gates stock entries behind a trailing simple moving
	// average of that many observations. 0 disables the gate.
	SMAWindow int
}

// Result holds the artifacts of one completed run.
type Result struct {
	TradeLog *TradeLog
	Balance  *Ledger
}

// Engine orchestrates one backtest run. All mutable state (cash, inventory,
// trade log, ledger) is owned exclusively by one Engine for the lifetime of
// one run; independent runs never share state.
type Engine struct {
	allocation        Allocation
	initialCapital    float64
	sharesPerContract int
	stopIfBroke       bool
	stocks            []models.Stock
	strat             *strategy.Strategy
	stockData         *data.StockSeries
	optionData        *data.OptionSeries
	selector          Selector
	logger            zerolog.Logger

	cash      float64
	inventory *Inventory
	tradeLog  *TradeLog
	ledger    *Ledger
}

// New validates the configuration and builds an Engine. The allocation is
// normalized here, once; the engine only ever works with fractions that sum
// to 1.
func New(cfg Config) (*Engine, error) {
	alloc, err := cfg.Allocation.Normalize()
	if err != nil {
		return nil, err
	}
	if cfg.InitialCapital <= 0 {
		return nil, errors.NewConfigError("initial_capital", "must be positive", errors.ErrBadAllocation)
	}
	if err := validateStockWeights(cfg.Stocks); err != nil {
		return nil, err
	}

	sharesPerContract := cfg.SharesPerContract
	if sharesPerContract == 0 {
		sharesPerContract = DefaultSharesPerContract
	}
	selector := cfg.Selector
	if selector == nil {
		selector = FirstCandidate{}
	}

	return &Engine{
		allocation:        alloc,
		initialCapital:    cfg.InitialCapital,
		sharesPerContract: sharesPerContract,
		stopIfBroke:       cfg.StopIfBroke,
		stocks:            cfg.Stocks,
		strat:             cfg.Strategy,
		stockData:         cfg.StockData,
		optionData:        cfg.OptionData,
		selector:          selector,
		logger:            cfg.Logger,
	}, nil
}

// Allocation returns the normalized allocation the engine runs with.
func (e *Engine) Allocation() Allocation {
	return e.allocation
}

// checkPreconditions verifies the fatal configuration conditions before the
// loop starts. None of these are retried; a failed run never begins.
func (e *Engine) checkPreconditions() error {
	if e.stockData == nil {
		return errors.ErrNoStockData
	}
	if e.optionData == nil {
		return errors.ErrNoOptionsData
	}
	if e.strat == nil {
		return errors.ErrNoStrategy
	}
	if err := e.strat.Validate(); err != nil {
		return err
	}
	if !e.strat.Schema.Equal(e.optionData.Schema()) {
		return errors.ErrSchemaMismatch
	}
	for _, s := range e.stocks {
		if !e.stockData.HasSymbol(s.Symbol) {
			return fmt.Errorf("%w: %s", errors.ErrSymbolNotFound, s.Symbol)
		}
	}
	if !data.SameDates(e.stockData, e.optionData) {
		return errors.ErrDateMismatch
	}
	return nil
}

// Run executes the backtest and returns its trade log and balance ledger
// spanning [start date - 1 day, end date].
func (e *Engine) Run(ctx context.Context, params RunParams) (*Result, error) {
	if err := e.checkPreconditions(); err != nil {
		return nil, err
	}

	start, err := e.stockData.Start()
	if err != nil {
		return nil, errors.ErrNoStockData
	}
	end, err := e.stockData.End()
	if err != nil {
		return nil, errors.ErrNoStockData
	}

	e.inventory = NewInventory()
	e.cash = e.initialCapital
	e.tradeLog = NewTradeLog()
	e.ledger = NewLedger()

	// Seed the ledger one day before the series starts so the first flush
	// has a predecessor row for percent-change computation.
	e.ledger.Append(models.BalanceRow{
		Date:     start.AddDate(0, 0, -1),
		Cash:     e.cash,
		PerStock: map[string]float64{},
	})

	if params.SMAWindow > 0 {
		e.stockData.ComputeSMA(params.SMAWindow)
	}

	rebalancing := rebalancingDates(start, end, params.RebalanceFreq)
	nextRebalance := 0

	var stockIter *data.StockIter
	var optionIter *data.OptionIter
	if params.Monthly {
		stockIter = e.stockData.IterMonths()
		optionIter = e.optionData.IterMonths()
	} else {
		stockIter = e.stockData.IterDates()
		optionIter = e.optionData.IterDates()
	}

	var lastFlush time.Time
	haveRebalanced := false

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date, stockSlice, ok := stockIter.Next()
		if !ok {
			break
		}
		_, optionSlice, ok := optionIter.Next()
		if !ok {
			break
		}

		// A rebalance triggers on the first iterated date on or after its
		// scheduled date. Month-end iteration and holiday gaps rarely land
		// exactly on a scheduled calendar day.
		if nextRebalance < len(rebalancing) && !date.Before(rebalancing[nextRebalance]) {
			for nextRebalance < len(rebalancing) && !rebalancing[nextRebalance].After(date) {
				nextRebalance++
			}
			// The flush for the elapsed window always uses the
			// inventory in effect during that window; it must run
			// before the rebalance that closes it.
			if haveRebalanced {
				e.flushBalance(lastFlush, date, false)
			}
			e.rebalance(date, stockSlice, optionSlice, params.SMAWindow)
			lastFlush = date
			haveRebalanced = true
		} else if haveRebalanced {
			exits := e.pendingExits(optionSlice, false)
			if len(exits) > 0 {
				// Same ordering rule for mid-period exits: value the
				// elapsed window before the exit moves cash.
				e.flushBalance(lastFlush, date, false)
				lastFlush = date
			}
			e.applyExits(date, exits)
		}
	}

	if haveRebalanced {
		e.flushBalance(lastFlush, end, true)
	}
	e.ledger.Finalize()

	e.logger.Info().
		Time("start", start).
		Time("end", end).
		Int("trades", e.tradeLog.Len()).
		Int("balance_rows", e.ledger.Len()).
		Msg("Backtest complete")

	return &Result{TradeLog: e.tradeLog, Balance: e.ledger}, nil
}

// rebalance performs one full rebalance: forced liquidation of every held
// combination, revaluation, target derivation, inventory rebuild and residual
// cash accounting.
func (e *Engine) rebalance(date time.Time, stocks []data.StockQuote, options []data.OptionQuote, smaWindow int) {
	// (1) Close every held combination regardless of filters.
	e.applyExits(date, e.pendingExits(options, true))

	// (2) Revalue and derive targets.
	stockCapital := e.currentStockCapital(stocks)
	totalCapital := e.cash + stockCapital
	optionsTarget := e.allocation.Options * totalCapital
	stocksTarget := e.allocation.Stocks * totalCapital

	// (4) Clear both inventories before re-entry.
	e.inventory.Clear()

	if e.stopIfBroke && totalCapital <= 0 {
		e.logger.Warn().Time("date", date).Float64("total_capital", totalCapital).
			Msg("Portfolio exhausted; skipping entries")
		e.cash = totalCapital
		return
	}

	// (5) Rebuild positions against the fresh targets.
	e.buyStocks(stocks, stocksTarget, smaWindow > 0)
	e.executeOptionEntries(date, options, optionsTarget)

	// (6) Cash is the residual of every allocation decision; rounding
	// leftovers fall back into it.
	e.cash = totalCapital - e.inventory.StocksValue() - e.inventory.OptionsValue()

	logging.LogRebalance(e.logger, date, totalCapital, e.cash)
}

// currentStockCapital values the stock inventory against today's prices.
// A symbol with no quote today is valued at its last recorded price.
func (e *Engine) currentStockCapital(stocks []data.StockQuote) float64 {
	prices := make(map[string]float64, len(stocks))
	for _, q := range stocks {
		prices[q.Symbol] = q.AdjClose
	}
	total := 0.0
	for _, h := range e.inventory.Stocks() {
		price, ok := prices[h.Symbol]
		if !ok {
			price = h.Price
		}
		total += price * float64(h.Quantity)
	}
	return total
}

// buyStocks rebuilds the stock inventory against the dollar target, splitting
// it by each stock's configured percentage. Quantities are whole shares; the
// fractional remainder stays in cash. With the SMA gate on, a stock is only
// entered while its price is strictly above its trailing average.
func (e *Engine) buyStocks(stocks []data.StockQuote, target float64, useSMA bool) {
	quotes := make(map[string]data.StockQuote, len(stocks))
	for _, q := range stocks {
		if _, ok := quotes[q.Symbol]; !ok {
			quotes[q.Symbol] = q
		}
	}

	holdings := make([]models.StockHolding, 0, len(e.stocks))
	for _, s := range e.stocks {
		q, ok := quotes[s.Symbol]
		if !ok || q.AdjClose <= 0 {
			e.logger.Debug().Str("symbol", s.Symbol).Msg("No stock quote on rebalance date")
			continue
		}
		var qty int64
		if !useSMA || (q.HasSMA && q.AdjClose > q.SMA) {
			if v := target * s.Percentage / q.AdjClose; v > 0 {
				qty = int64(v)
			}
		}
		holdings = append(holdings, models.StockHolding{
			Symbol:   s.Symbol,
			Price:    q.AdjClose,
			Quantity: qty,
		})
	}
	e.inventory.SetStocks(holdings)
}

// rebalancingDates computes the ordered rebalancing dates: business
// month-start days spaced freq months apart within [start, end], with the
// very first date always included. freq 0 yields only the first date.
func rebalancingDates(start, end time.Time, freq int) []time.Time {
	out := []time.Time{start}
	if freq <= 0 {
		return out
	}

	year, month := start.Year(), start.Month()
	candidate := firstBusinessDay(year, month)
	if candidate.Before(start) {
		year, month = nextMonth(year, month)
		candidate = firstBusinessDay(year, month)
	}
	for !candidate.After(end) {
		if candidate.After(start) {
			out = append(out, candidate)
		}
		for i := 0; i < freq; i++ {
			year, month = nextMonth(year, month)
		}
		candidate = firstBusinessDay(year, month)
	}
	return out
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// firstBusinessDay returns the first weekday of the month, midnight UTC.
func firstBusinessDay(year int, month time.Month) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
