package backtest

import "options-backtester/internal/models"

// TradeLog is the append-only chronological record of every executed entry
// and exit.
type TradeLog struct {
	records []models.TradeRecord
}

// NewTradeLog returns an empty trade log.
func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

// Append adds one executed trade.
func (l *TradeLog) Append(rec models.TradeRecord) {
	l.records = append(l.records, rec)
}

// Records returns all trades in execution order.
func (l *TradeLog) Records() []models.TradeRecord {
	return l.records
}

// Len returns the number of recorded trades.
func (l *TradeLog) Len() int {
	return len(l.records)
}
