package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"options-backtester/internal/backtest"
	"options-backtester/internal/performance"
)

// FormatPercent formats a fraction as a signed percentage.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value*100)
}

func printSummary(w io.Writer, s *performance.Summary, trades int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Backtest summary")
	fmt.Fprintln(w, strings.Repeat("─", 40))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Start capital\t%.2f\n", s.StartCapital)
	fmt.Fprintf(tw, "End capital\t%.2f\n", s.EndCapital)
	fmt.Fprintf(tw, "Total return\t%s\n", FormatPercent(s.TotalReturn))
	fmt.Fprintf(tw, "Annualized return\t%s\n", FormatPercent(s.AnnualizedReturn))
	fmt.Fprintf(tw, "Annualized volatility\t%s\n", FormatPercent(s.AnnualizedVolatility))
	fmt.Fprintf(tw, "Sharpe ratio\t%.2f\n", s.SharpeRatio)
	fmt.Fprintf(tw, "Max drawdown\t%s\n", FormatPercent(-s.MaxDrawdown))
	fmt.Fprintf(tw, "Trades\t%d\n", trades)
	tw.Flush()
}

func printTradeLog(w io.Writer, log *backtest.TradeLog) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade log")
	fmt.Fprintln(w, strings.Repeat("─", 40))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "date\tleg\tcontract\torder\tcost\tqty")
	for _, rec := range log.Records() {
		for i, leg := range rec.Legs {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.2f\t%d\n",
				rec.Date.Format("2006-01-02"), i+1, leg.Contract, leg.Order, leg.Cost, rec.Quantity)
		}
	}
	tw.Flush()
}
