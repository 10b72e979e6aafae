package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-backtester/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStockSeriesOrdering(t *testing.T) {
	// Input deliberately out of order; the series must index chronologically.
	quotes := []StockQuote{
		{Date: day(2023, time.March, 3), Symbol: "ABC", AdjClose: 52},
		{Date: day(2023, time.March, 1), Symbol: "ABC", AdjClose: 50},
		{Date: day(2023, time.March, 2), Symbol: "ABC", AdjClose: 51},
	}
	s := NewStockSeries(DefaultStockSchema(), quotes)

	start, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, day(2023, time.March, 1), start)

	end, err := s.End()
	require.NoError(t, err)
	assert.Equal(t, day(2023, time.March, 3), end)

	dates := s.Dates()
	require.Len(t, dates, 3)
	assert.True(t, dates[0].Before(dates[1]) && dates[1].Before(dates[2]))

	assert.True(t, s.HasSymbol("ABC"))
	assert.False(t, s.HasSymbol("XYZ"))
}

func TestStockSeriesEmpty(t *testing.T) {
	s := NewStockSeries(DefaultStockSchema(), nil)
	_, err := s.Start()
	assert.Error(t, err)
	_, err = s.End()
	assert.Error(t, err)
}

func TestStockSeriesRange(t *testing.T) {
	quotes := []StockQuote{
		{Date: day(2023, time.March, 1), Symbol: "ABC", AdjClose: 50},
		{Date: day(2023, time.March, 2), Symbol: "ABC", AdjClose: 51},
		{Date: day(2023, time.March, 3), Symbol: "ABC", AdjClose: 52},
	}
	s := NewStockSeries(DefaultStockSchema(), quotes)

	// Range is half-open: the end date is excluded.
	got := s.Range(day(2023, time.March, 1), day(2023, time.March, 3))
	require.Len(t, got, 2)
	assert.Equal(t, 50.0, got[0].AdjClose)
	assert.Equal(t, 51.0, got[1].AdjClose)
}

func TestComputeSMA(t *testing.T) {
	quotes := []StockQuote{
		{Date: day(2023, time.March, 1), Symbol: "ABC", AdjClose: 10},
		{Date: day(2023, time.March, 2), Symbol: "ABC", AdjClose: 20},
		{Date: day(2023, time.March, 3), Symbol: "ABC", AdjClose: 30},
	}
	s := NewStockSeries(DefaultStockSchema(), quotes)
	s.ComputeSMA(2)

	first := s.Slice(day(2023, time.March, 1))[0]
	assert.False(t, first.HasSMA, "window not yet filled")

	second := s.Slice(day(2023, time.March, 2))[0]
	require.True(t, second.HasSMA)
	assert.Equal(t, 15.0, second.SMA)

	third := s.Slice(day(2023, time.March, 3))[0]
	require.True(t, third.HasSMA)
	assert.Equal(t, 25.0, third.SMA)
}

func TestIterMonths(t *testing.T) {
	quotes := []StockQuote{
		{Date: day(2023, time.January, 30), Symbol: "ABC", AdjClose: 1},
		{Date: day(2023, time.January, 31), Symbol: "ABC", AdjClose: 2},
		{Date: day(2023, time.February, 1), Symbol: "ABC", AdjClose: 3},
		{Date: day(2023, time.February, 28), Symbol: "ABC", AdjClose: 4},
		{Date: day(2023, time.March, 1), Symbol: "ABC", AdjClose: 5},
	}
	s := NewStockSeries(DefaultStockSchema(), quotes)

	it := s.IterMonths()
	var got []time.Time
	for {
		d, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, d)
	}

	want := []time.Time{
		day(2023, time.January, 31),
		day(2023, time.February, 28),
		day(2023, time.March, 1),
	}
	assert.Equal(t, want, got)
}

func TestSameDates(t *testing.T) {
	d1, d2 := day(2023, time.March, 1), day(2023, time.March, 2)

	stocks := NewStockSeries(DefaultStockSchema(), []StockQuote{
		{Date: d1, Symbol: "ABC"},
		{Date: d2, Symbol: "ABC"},
	})
	options := NewOptionSeries(DefaultOptionSchema(), []OptionQuote{
		{Date: d1, Contract: "X", Type: models.OptionCall},
		{Date: d2, Contract: "X", Type: models.OptionCall},
	})
	assert.True(t, SameDates(stocks, options))

	shorter := NewOptionSeries(DefaultOptionSchema(), []OptionQuote{
		{Date: d1, Contract: "X", Type: models.OptionCall},
	})
	assert.False(t, SameDates(stocks, shorter))

	shifted := NewOptionSeries(DefaultOptionSchema(), []OptionQuote{
		{Date: d1, Contract: "X", Type: models.OptionCall},
		{Date: day(2023, time.March, 3), Contract: "X", Type: models.OptionCall},
	})
	assert.False(t, SameDates(stocks, shifted))
}

func TestByContract(t *testing.T) {
	slice := []OptionQuote{
		{Contract: "A", Bid: 1},
		{Contract: "B", Bid: 2},
	}
	m := ByContract(slice)
	require.Len(t, m, 2)
	assert.Equal(t, 1.0, m["A"].Bid)
	assert.Equal(t, 2.0, m["B"].Bid)
}

func TestOptionQuoteDTE(t *testing.T) {
	q := OptionQuote{
		Date:       day(2023, time.March, 1),
		Expiration: day(2023, time.April, 15),
	}
	assert.Equal(t, 45, q.DTE())
}
