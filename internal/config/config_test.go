package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backtest.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[backtest]
initial_capital = 500000.0
shares_per_contract = 100
stop_if_broke = true
rebalance_freq_months = 2
monthly = false
sma_window = 50

[backtest.allocation]
stocks = 0.5
options = 0.3
cash = 0.2

[[backtest.stocks]]
symbol = "SPY"
percentage = 0.7

[[backtest.stocks]]
symbol = "QQQ"
percentage = 0.3

[data]
stock_csv = "stocks.csv"
option_csv = "options.csv"

[data.option_columns]
quotedate = "quote_dt"
optionroot = "contract_id"

[strategy]
name = "bull-call-spread"
profit_pct = 0.5

[[strategy.legs]]
name = "long"
direction = "buy"
type = "call"
entry_min_dte = 30
entry_max_dte = 60

[logging]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 2, cfg.Backtest.RebalanceFreqMonths)
	assert.Equal(t, 50, cfg.Backtest.SMAWindow)
	assert.Equal(t, 0.5, cfg.Backtest.Allocation.Stocks)
	assert.Equal(t, 0.3, cfg.Backtest.Allocation.Options)
	require.Len(t, cfg.Backtest.Stocks, 2)
	assert.Equal(t, "SPY", cfg.Backtest.Stocks[0].Symbol)
	assert.Equal(t, 0.7, cfg.Backtest.Stocks[0].Percentage)

	assert.Equal(t, "bull-call-spread", cfg.Strategy.Name)
	require.Len(t, cfg.Strategy.Legs, 1)
	assert.Equal(t, "long", cfg.Strategy.Legs[0].Name)
	assert.Equal(t, 30, cfg.Strategy.Legs[0].EntryMinDTE)
	assert.Equal(t, 0.5, cfg.Strategy.ProfitPct)

	assert.Equal(t, "debug", cfg.Logging.Level)

	schema := cfg.OptionSchema()
	assert.Equal(t, "quote_dt", schema.Date)
	assert.Equal(t, "contract_id", schema.Contract)
	assert.Equal(t, "underlying", schema.Underlying, "untouched columns keep their defaults")
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[data]
stock_csv = "stocks.csv"
option_csv = "options.csv"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1_000_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 100, cfg.Backtest.SharesPerContract)
	assert.True(t, cfg.Backtest.StopIfBroke)
	assert.Equal(t, 1, cfg.Backtest.RebalanceFreqMonths)
	assert.Equal(t, 0.5, cfg.Backtest.Allocation.Stocks)
	assert.Equal(t, 0.5, cfg.Backtest.Allocation.Options)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Backtest: BacktestConfig{
				InitialCapital:    100_000,
				SharesPerContract: 100,
			},
			Data: DataConfig{StockCSV: "s.csv", OptionCSV: "o.csv"},
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.Backtest.InitialCapital = 0
	assert.Error(t, c.Validate())

	c = base()
	c.Backtest.SharesPerContract = -1
	assert.Error(t, c.Validate())

	c = base()
	c.Backtest.RebalanceFreqMonths = -1
	assert.Error(t, c.Validate())

	c = base()
	c.Data.StockCSV = ""
	assert.Error(t, c.Validate())

	c = base()
	c.Data = DataConfig{CacheDB: "quotes.db"}
	assert.NoError(t, c.Validate(), "a cache database can replace both CSVs")
}

func TestStockSchemaOverrides(t *testing.T) {
	cfg := &Config{
		Data: DataConfig{
			StockColumns: map[string]string{
				"date":     "trade_date",
				"adjClose": "close_adj",
			},
		},
	}
	schema := cfg.StockSchema()
	assert.Equal(t, "trade_date", schema.Date)
	assert.Equal(t, "symbol", schema.Symbol)
	assert.Equal(t, "close_adj", schema.AdjClose)
}
