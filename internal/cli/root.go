// Package cli provides the command-line interface for the backtester.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-backtester/internal/config"
	"options-backtester/internal/logging"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	app := &App{Logger: logger}

	rootCmd := &cobra.Command{
		Use:   "backtester",
		Short: "Options backtester - historical equity and options strategy simulation",
		Long: `Options backtester simulates the day-by-day evolution of a portfolio
combining equities and multi-leg options positions against historical quote
tables, producing a trade log and a capital balance time series.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the config file")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newIngestCmd(app))

	return rootCmd
}

// loadConfig loads configuration from the --config flag or default locations.
func (app *App) loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	app.Config = cfg
	return nil
}
