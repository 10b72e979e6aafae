package cli

import (
	"time"

	"github.com/spf13/cobra"

	"options-backtester/internal/data"
	"options-backtester/internal/errors"
)

var zeroTime time.Time

func newIngestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load the configured CSV tables into the SQLite quote cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadConfig(cmd); err != nil {
				return err
			}
			return ingest(cmd, app)
		},
	}
	return cmd
}

func ingest(cmd *cobra.Command, app *App) error {
	cfg := app.Config
	if cfg.Data.CacheDB == "" {
		return errors.NewValidationError("data.cache_db", "", "required for ingest")
	}
	if cfg.Data.StockCSV == "" || cfg.Data.OptionCSV == "" {
		return errors.NewValidationError("data", "", "stock_csv and option_csv are required for ingest")
	}

	store, err := data.NewQuoteStore(cfg.Data.CacheDB)
	if err != nil {
		return err
	}
	defer store.Close()

	stockData, err := data.LoadStockCSV(cfg.Data.StockCSV, cfg.StockSchema())
	if err != nil {
		return err
	}
	if err := store.SaveStockSeries(cmd.Context(), stockData); err != nil {
		return err
	}
	app.Logger.Info().
		Int("dates", len(stockData.Dates())).
		Str("source", cfg.Data.StockCSV).
		Msg("Stock series cached")

	optionData, err := data.LoadOptionCSV(cfg.Data.OptionCSV, cfg.OptionSchema())
	if err != nil {
		return err
	}
	if err := store.SaveOptionSeries(cmd.Context(), optionData); err != nil {
		return err
	}
	app.Logger.Info().
		Int("dates", len(optionData.Dates())).
		Str("source", cfg.Data.OptionCSV).
		Msg("Option series cached")

	return nil
}
