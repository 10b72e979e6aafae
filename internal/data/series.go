package data

import (
	"sort"
	"time"

	"options-backtester/internal/models"
)

// StockQuote is one normalized row of the stock price table.
type StockQuote struct {
	Date     time.Time
	Symbol   string
	AdjClose float64

	// SMA carries the trailing simple moving average once ComputeSMA has
	// been called. HasSMA is false while the window is still filling.
	SMA    float64
	HasSMA bool
}

// OptionQuote is one normalized row of the options quote table.
type OptionQuote struct {
	Date            time.Time
	Contract        string
	Underlying      string
	UnderlyingPrice float64
	Expiration      time.Time
	Type            models.OptionType
	Strike          float64
	Bid             float64
	Ask             float64
	Last            float64
	Volume          int64
}

// DTE returns the days to expiration at the quote date.
func (q OptionQuote) DTE() int {
	return int(q.Expiration.Sub(q.Date).Hours() / 24)
}

// StockSeries is a date-indexed, in-memory series of stock quotes.
type StockSeries struct {
	schema StockSchema
	quotes []StockQuote
	dates  []time.Time
	byDate map[time.Time][]StockQuote
}

// NewStockSeries builds a series from normalized quotes. Rows are indexed by
// date; the date ordering is chronological regardless of input order.
func NewStockSeries(schema StockSchema, quotes []StockQuote) *StockSeries {
	s := &StockSeries{
		schema: schema,
		quotes: quotes,
		byDate: make(map[time.Time][]StockQuote),
	}
	for _, q := range quotes {
		if _, ok := s.byDate[q.Date]; !ok {
			s.dates = append(s.dates, q.Date)
		}
		s.byDate[q.Date] = append(s.byDate[q.Date], q)
	}
	sort.Slice(s.dates, func(i, j int) bool { return s.dates[i].Before(s.dates[j]) })
	return s
}

// Schema returns the physical layout the series was loaded from.
func (s *StockSeries) Schema() StockSchema { return s.schema }

// Dates returns the unique quote dates in chronological order.
func (s *StockSeries) Dates() []time.Time { return s.dates }

// Start returns the first quote date.
func (s *StockSeries) Start() (time.Time, error) {
	if len(s.dates) == 0 {
		return time.Time{}, errEmptySeries
	}
	return s.dates[0], nil
}

// End returns the last quote date.
func (s *StockSeries) End() (time.Time, error) {
	if len(s.dates) == 0 {
		return time.Time{}, errEmptySeries
	}
	return s.dates[len(s.dates)-1], nil
}

// Slice returns all quotes for one date.
func (s *StockSeries) Slice(date time.Time) []StockQuote {
	return s.byDate[date]
}

// Range returns all quotes with start <= date < end, chronologically grouped.
func (s *StockSeries) Range(start, end time.Time) []StockQuote {
	var out []StockQuote
	for _, d := range s.dates {
		if d.Before(start) || !d.Before(end) {
			continue
		}
		out = append(out, s.byDate[d]...)
	}
	return out
}

// HasSymbol reports whether the symbol appears anywhere in the series.
func (s *StockSeries) HasSymbol(symbol string) bool {
	for _, q := range s.quotes {
		if q.Symbol == symbol {
			return true
		}
	}
	return false
}

// ComputeSMA fills the trailing simple moving average of AdjClose per symbol.
// Rows before the window has filled keep HasSMA false, which downstream entry
// filters treat as a failed gate.
func (s *StockSeries) ComputeSMA(window int) {
	if window <= 0 {
		return
	}
	closes := make(map[string][]float64)
	for _, d := range s.dates {
		slice := s.byDate[d]
		for i := range slice {
			q := &slice[i]
			history := append(closes[q.Symbol], q.AdjClose)
			closes[q.Symbol] = history
			if len(history) >= window {
				sum := 0.0
				for _, c := range history[len(history)-window:] {
					sum += c
				}
				q.SMA = sum / float64(window)
				q.HasSMA = true
			}
		}
	}
}

// IterDates returns a restartable daily iterator over the series.
func (s *StockSeries) IterDates() *StockIter {
	return &StockIter{series: s, dates: s.dates}
}

// IterMonths returns a restartable monthly iterator: the last trading date of
// each calendar month with its slice.
func (s *StockSeries) IterMonths() *StockIter {
	return &StockIter{series: s, dates: monthEnds(s.dates)}
}

// StockIter iterates (date, slice) pairs in chronological order.
type StockIter struct {
	series *StockSeries
	dates  []time.Time
	pos    int
}

// Next returns the next (date, slice) pair; ok is false when exhausted.
func (it *StockIter) Next() (time.Time, []StockQuote, bool) {
	if it.pos >= len(it.dates) {
		return time.Time{}, nil, false
	}
	d := it.dates[it.pos]
	it.pos++
	return d, it.series.Slice(d), true
}

// OptionSeries is a date-indexed, in-memory series of option quotes.
type OptionSeries struct {
	schema OptionSchema
	dates  []time.Time
	byDate map[time.Time][]OptionQuote
}

// NewOptionSeries builds a series from normalized quotes.
func NewOptionSeries(schema OptionSchema, quotes []OptionQuote) *OptionSeries {
	s := &OptionSeries{
		schema: schema,
		byDate: make(map[time.Time][]OptionQuote),
	}
	for _, q := range quotes {
		if _, ok := s.byDate[q.Date]; !ok {
			s.dates = append(s.dates, q.Date)
		}
		s.byDate[q.Date] = append(s.byDate[q.Date], q)
	}
	sort.Slice(s.dates, func(i, j int) bool { return s.dates[i].Before(s.dates[j]) })
	return s
}

// Schema returns the physical layout the series was loaded from.
func (s *OptionSeries) Schema() OptionSchema { return s.schema }

// Dates returns the unique quote dates in chronological order.
func (s *OptionSeries) Dates() []time.Time { return s.dates }

// Start returns the first quote date.
func (s *OptionSeries) Start() (time.Time, error) {
	if len(s.dates) == 0 {
		return time.Time{}, errEmptySeries
	}
	return s.dates[0], nil
}

// End returns the last quote date.
func (s *OptionSeries) End() (time.Time, error) {
	if len(s.dates) == 0 {
		return time.Time{}, errEmptySeries
	}
	return s.dates[len(s.dates)-1], nil
}

// Slice returns all quotes for one date.
func (s *OptionSeries) Slice(date time.Time) []OptionQuote {
	return s.byDate[date]
}

// Range returns all quotes with start <= date < end.
func (s *OptionSeries) Range(start, end time.Time) []OptionQuote {
	var out []OptionQuote
	for _, d := range s.dates {
		if d.Before(start) || !d.Before(end) {
			continue
		}
		out = append(out, s.byDate[d]...)
	}
	return out
}

// IterDates returns a restartable daily iterator over the series.
func (s *OptionSeries) IterDates() *OptionIter {
	return &OptionIter{series: s, dates: s.dates}
}

// IterMonths returns a restartable monthly iterator.
func (s *OptionSeries) IterMonths() *OptionIter {
	return &OptionIter{series: s, dates: monthEnds(s.dates)}
}

// OptionIter iterates (date, slice) pairs in chronological order.
type OptionIter struct {
	series *OptionSeries
	dates  []time.Time
	pos    int
}

// Next returns the next (date, slice) pair; ok is false when exhausted.
func (it *OptionIter) Next() (time.Time, []OptionQuote, bool) {
	if it.pos >= len(it.dates) {
		return time.Time{}, nil, false
	}
	d := it.dates[it.pos]
	it.pos++
	return d, it.series.Slice(d), true
}

// ByContract indexes a daily slice by contract identifier.
func ByContract(slice []OptionQuote) map[string]OptionQuote {
	m := make(map[string]OptionQuote, len(slice))
	for _, q := range slice {
		m[q.Contract] = q
	}
	return m
}

// SameDates reports whether the two series cover the identical set of dates.
// Stock and option data must be date-aligned before a run starts.
func SameDates(stocks *StockSeries, options *OptionSeries) bool {
	sd, od := stocks.Dates(), options.Dates()
	if len(sd) != len(od) {
		return false
	}
	for i := range sd {
		if !sd[i].Equal(od[i]) {
			return false
		}
	}
	return true
}

// monthEnds returns the last date of each calendar month present in dates.
// Input must be chronologically sorted.
func monthEnds(dates []time.Time) []time.Time {
	var out []time.Time
	for i, d := range dates {
		if i == len(dates)-1 {
			out = append(out, d)
			continue
		}
		next := dates[i+1]
		if next.Month() != d.Month() || next.Year() != d.Year() {
			out = append(out, d)
		}
	}
	return out
}
