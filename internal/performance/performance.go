// Package performance computes summary metrics over a finalized balance
// ledger.
package performance

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"options-backtester/internal/models"
)

// tradingDaysPerYear is the annualization factor for daily return series.
const tradingDaysPerYear = 252

// Summary holds the headline metrics of one backtest run.
type Summary struct {
	StartCapital         float64
	EndCapital           float64
	TotalReturn          float64
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	SharpeRatio          float64
	MaxDrawdown          float64
}

// Summarize computes run metrics from a finalized ledger. It needs at least
// two rows (the seed row plus one valuation row).
func Summarize(rows []models.BalanceRow) (*Summary, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("need at least 2 balance rows, got %d", len(rows))
	}

	start := rows[0].TotalCapital
	end := rows[len(rows)-1].TotalCapital
	if start == 0 {
		return nil, fmt.Errorf("start capital is zero")
	}

	returns := make([]float64, 0, len(rows)-1)
	for _, row := range rows[1:] {
		returns = append(returns, row.PctChange)
	}

	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return nil, fmt.Errorf("failed to compute volatility: %w", err)
	}
	annualizedStdev := stdev * math.Sqrt(tradingDaysPerYear)

	days := rows[len(rows)-1].Date.Sub(rows[0].Date).Hours() / 24
	years := days / 365
	annualizedReturn := 0.0
	if years > 0 && end > 0 {
		annualizedReturn = math.Pow(end/start, 1/years) - 1
	}

	sharpe := 0.0
	if annualizedStdev != 0 {
		sharpe = annualizedReturn / annualizedStdev
	}

	return &Summary{
		StartCapital:         start,
		EndCapital:           end,
		TotalReturn:          end/start - 1,
		AnnualizedReturn:     annualizedReturn,
		AnnualizedVolatility: annualizedStdev,
		SharpeRatio:          sharpe,
		MaxDrawdown:          maxDrawdown(rows),
	}, nil
}

// maxDrawdown returns the largest peak-to-trough decline of total capital as
// a positive fraction.
func maxDrawdown(rows []models.BalanceRow) float64 {
	peak := rows[0].TotalCapital
	maxDD := 0.0
	for _, row := range rows {
		if row.TotalCapital > peak {
			peak = row.TotalCapital
		}
		if peak > 0 {
			dd := (peak - row.TotalCapital) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
