package backtest

import "options-backtester/internal/models"

// Ledger is the append-only chronological record of portfolio valuation
// snapshots. Rows are appended in date order during the run; Finalize fills
// the derived columns once the run is complete.
type Ledger struct {
	rows      []models.BalanceRow
	finalized bool
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds one valuation snapshot. Appends are assumed chronological: each
// row's date is a successor of the last one already present.
func (l *Ledger) Append(row models.BalanceRow) {
	l.rows = append(l.rows, row)
}

// Rows returns all snapshots in chronological order.
func (l *Ledger) Rows() []models.BalanceRow {
	return l.rows
}

// Len returns the number of snapshots.
func (l *Ledger) Len() int {
	return len(l.rows)
}

// Finalize computes the derived columns over the whole ledger:
// options capital, stocks capital, total capital, percent change and
// cumulative return. Total capital is cash + stocks capital + options capital
// by construction, so the balance identity always holds exactly.
func (l *Ledger) Finalize() {
	if l.finalized {
		return
	}
	cum := 1.0
	for i := range l.rows {
		row := &l.rows[i]
		row.OptionsCapital = row.CallsCapital + row.PutsCapital
		row.StocksCapital = 0
		for _, v := range row.PerStock {
			row.StocksCapital += v
		}
		row.TotalCapital = row.Cash + row.StocksCapital + row.OptionsCapital

		if i == 0 || l.rows[i-1].TotalCapital == 0 {
			row.PctChange = 0
		} else {
			row.PctChange = row.TotalCapital/l.rows[i-1].TotalCapital - 1
		}
		cum *= 1 + row.PctChange
		row.CumReturn = cum
	}
	l.finalized = true
}
