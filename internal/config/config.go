// Package config provides configuration management for the backtester.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"options-backtester/internal/data"
	"options-backtester/internal/errors"
	"options-backtester/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Backtest BacktestConfig `mapstructure:"backtest"`
	Data     DataConfig     `mapstructure:"data"`
	Strategy strategy.Spec  `mapstructure:"strategy"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// BacktestConfig holds the simulation parameters.
type BacktestConfig struct {
	InitialCapital      float64          `mapstructure:"initial_capital"`
	SharesPerContract   int              `mapstructure:"shares_per_contract"`
	StopIfBroke         bool             `mapstructure:"stop_if_broke"`
	RebalanceFreqMonths int              `mapstructure:"rebalance_freq_months"`
	Monthly             bool             `mapstructure:"monthly"`
	SMAWindow           int              `mapstructure:"sma_window"`
	Allocation          AllocationConfig `mapstructure:"allocation"`
	Stocks              []StockConfig    `mapstructure:"stocks"`
}

// AllocationConfig holds the capital split between asset classes. Values are
// normalized by the engine, so they may be given as any non-negative weights.
type AllocationConfig struct {
	Stocks  float64 `mapstructure:"stocks"`
	Options float64 `mapstructure:"options"`
	Cash    float64 `mapstructure:"cash"`
}

// StockConfig is one member of the stock universe.
type StockConfig struct {
	Symbol     string  `mapstructure:"symbol"`
	Percentage float64 `mapstructure:"percentage"`
}

// DataConfig points at the input price tables. Column overrides map logical
// field names to the physical column names of non-default layouts.
type DataConfig struct {
	StockCSV      string            `mapstructure:"stock_csv"`
	OptionCSV     string            `mapstructure:"option_csv"`
	CacheDB       string            `mapstructure:"cache_db"`
	StockColumns  map[string]string `mapstructure:"stock_columns"`
	OptionColumns map[string]string `mapstructure:"option_columns"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-backtester"
	}
	return filepath.Join(home, ".config", "options-backtester")
}

// Load loads configuration from the given file path. An empty path looks for
// backtest.toml in the working directory and then the default config dir.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("backtest")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultConfigDir())
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backtest.initial_capital", 1_000_000.0)
	v.SetDefault("backtest.shares_per_contract", 100)
	v.SetDefault("backtest.stop_if_broke", true)
	v.SetDefault("backtest.rebalance_freq_months", 1)
	v.SetDefault("backtest.allocation.stocks", 0.5)
	v.SetDefault("backtest.allocation.options", 0.5)
	v.SetDefault("backtest.allocation.cash", 0.0)
	v.SetDefault("logging.level", "info")
}

// Validate checks the configuration for fatal problems.
func (c *Config) Validate() error {
	if c.Backtest.InitialCapital <= 0 {
		return errors.NewValidationError("backtest.initial_capital", c.Backtest.InitialCapital, "must be positive")
	}
	if c.Backtest.SharesPerContract <= 0 {
		return errors.NewValidationError("backtest.shares_per_contract", c.Backtest.SharesPerContract, "must be positive")
	}
	if c.Backtest.RebalanceFreqMonths < 0 {
		return errors.NewValidationError("backtest.rebalance_freq_months", c.Backtest.RebalanceFreqMonths, "must be >= 0")
	}
	if c.Data.StockCSV == "" && c.Data.CacheDB == "" {
		return errors.NewValidationError("data", "", "either stock_csv or cache_db is required")
	}
	if c.Data.OptionCSV == "" && c.Data.CacheDB == "" {
		return errors.NewValidationError("data", "", "either option_csv or cache_db is required")
	}
	return nil
}

// StockSchema resolves the configured stock column overrides onto the default
// physical layout.
func (c *Config) StockSchema() data.StockSchema {
	schema := data.DefaultStockSchema()
	for logical, physical := range c.Data.StockColumns {
		switch logical {
		case "date":
			schema.Date = physical
		case "symbol":
			schema.Symbol = physical
		case "adjClose":
			schema.AdjClose = physical
		}
	}
	return schema
}

// OptionSchema resolves the configured option column overrides onto the
// default physical layout.
func (c *Config) OptionSchema() data.OptionSchema {
	schema := data.DefaultOptionSchema()
	for logical, physical := range c.Data.OptionColumns {
		switch logical {
		case "date", "quotedate":
			schema.Date = physical
		case "contract", "optionroot":
			schema.Contract = physical
		case "underlying":
			schema.Underlying = physical
		case "underlying_last":
			schema.UnderlyingPrice = physical
		case "expiration":
			schema.Expiration = physical
		case "type":
			schema.Type = physical
		case "strike":
			schema.Strike = physical
		case "bid":
			schema.Bid = physical
		case "ask":
			schema.Ask = physical
		case "last":
			schema.Last = physical
		case "volume":
			schema.Volume = physical
		}
	}
	return schema
}
