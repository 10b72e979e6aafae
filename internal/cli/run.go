package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"options-backtester/internal/backtest"
	"options-backtester/internal/data"
	"options-backtester/internal/models"
	"options-backtester/internal/performance"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest from the configured data and strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadConfig(cmd); err != nil {
				return err
			}
			return runBacktest(cmd, app)
		},
	}
	cmd.Flags().Bool("trades", false, "print the full trade log")
	return cmd
}

func runBacktest(cmd *cobra.Command, app *App) error {
	cfg := app.Config

	stockData, optionData, err := loadSeries(cmd, app)
	if err != nil {
		return err
	}

	strat, err := cfg.Strategy.Compile(optionData.Schema())
	if err != nil {
		return err
	}

	stocks := make([]models.Stock, 0, len(cfg.Backtest.Stocks))
	for _, s := range cfg.Backtest.Stocks {
		stocks = append(stocks, models.Stock{Symbol: s.Symbol, Percentage: s.Percentage})
	}

	engine, err := backtest.New(backtest.Config{
		Allocation: backtest.Allocation{
			Stocks:  cfg.Backtest.Allocation.Stocks,
			Options: cfg.Backtest.Allocation.Options,
			Cash:    cfg.Backtest.Allocation.Cash,
		},
		InitialCapital:    cfg.Backtest.InitialCapital,
		SharesPerContract: cfg.Backtest.SharesPerContract,
		StopIfBroke:       cfg.Backtest.StopIfBroke,
		Stocks:            stocks,
		Strategy:          strat,
		StockData:         stockData,
		OptionData:        optionData,
		Logger:            app.Logger,
	})
	if err != nil {
		return err
	}

	result, err := engine.Run(cmd.Context(), backtest.RunParams{
		RebalanceFreq: cfg.Backtest.RebalanceFreqMonths,
		Monthly:       cfg.Backtest.Monthly,
		SMAWindow:     cfg.Backtest.SMAWindow,
	})
	if err != nil {
		return err
	}

	showTrades, _ := cmd.Flags().GetBool("trades")
	if showTrades {
		printTradeLog(cmd.OutOrStdout(), result.TradeLog)
	}

	summary, err := performance.Summarize(result.Balance.Rows())
	if err != nil {
		return fmt.Errorf("computing summary: %w", err)
	}
	printSummary(cmd.OutOrStdout(), summary, result.TradeLog.Len())

	return nil
}

// loadSeries loads the stock and option series from the configured source:
// the SQLite cache when set, CSV files otherwise.
func loadSeries(cmd *cobra.Command, app *App) (*data.StockSeries, *data.OptionSeries, error) {
	cfg := app.Config

	if cfg.Data.CacheDB != "" && cfg.Data.StockCSV == "" {
		store, err := data.NewQuoteStore(cfg.Data.CacheDB)
		if err != nil {
			return nil, nil, err
		}
		defer store.Close()

		stockData, err := store.LoadStockSeries(cmd.Context(), zeroTime, zeroTime)
		if err != nil {
			return nil, nil, err
		}
		optionData, err := store.LoadOptionSeries(cmd.Context(), zeroTime, zeroTime)
		if err != nil {
			return nil, nil, err
		}
		app.Logger.Debug().Str("cache", cfg.Data.CacheDB).Msg("Loaded series from quote cache")
		return stockData, optionData, nil
	}

	stockData, err := data.LoadStockCSV(cfg.Data.StockCSV, cfg.StockSchema())
	if err != nil {
		return nil, nil, err
	}
	optionData, err := data.LoadOptionCSV(cfg.Data.OptionCSV, cfg.OptionSchema())
	if err != nil {
		return nil, nil, err
	}
	return stockData, optionData, nil
}
