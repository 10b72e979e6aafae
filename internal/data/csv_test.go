package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-backtester/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadStockCSVDefaultLayout(t *testing.T) {
	path := writeFile(t, "stocks.csv", `date,symbol,adjClose
2023-03-01,ABC,50.25
2023-03-02,ABC,51.00
`)

	series, err := LoadStockCSV(path, DefaultStockSchema())
	require.NoError(t, err)

	require.Len(t, series.Dates(), 2)
	slice := series.Slice(day(2023, time.March, 1))
	require.Len(t, slice, 1)
	assert.Equal(t, "ABC", slice[0].Symbol)
	assert.Equal(t, 50.25, slice[0].AdjClose)
}

func TestLoadStockCSVCustomColumns(t *testing.T) {
	path := writeFile(t, "stocks.csv", `trade_date,ticker,close_adj
2023-03-01,ABC,50.25
`)

	schema := StockSchema{Date: "trade_date", Symbol: "ticker", AdjClose: "close_adj"}
	series, err := LoadStockCSV(path, schema)
	require.NoError(t, err)

	slice := series.Slice(day(2023, time.March, 1))
	require.Len(t, slice, 1)
	assert.Equal(t, "ABC", slice[0].Symbol)
	assert.Equal(t, 50.25, slice[0].AdjClose)
}

func TestLoadStockCSVBadDate(t *testing.T) {
	path := writeFile(t, "stocks.csv", `date,symbol,adjClose
not-a-date,ABC,50.25
`)

	_, err := LoadStockCSV(path, DefaultStockSchema())
	assert.Error(t, err)
}

func TestLoadStockCSVMissingFile(t *testing.T) {
	_, err := LoadStockCSV(filepath.Join(t.TempDir(), "absent.csv"), DefaultStockSchema())
	assert.Error(t, err)
}

func TestLoadStockCSVInvalidSchema(t *testing.T) {
	_, err := LoadStockCSV("unused.csv", StockSchema{Date: "date"})
	assert.Error(t, err)
}

func TestLoadOptionCSVDefaultLayout(t *testing.T) {
	path := writeFile(t, "options.csv", `quotedate,optionroot,underlying,underlying_last,expiration,type,strike,bid,ask,last,volume
2023-03-01,SPY230415C00400000,SPY,401.5,2023-04-15,call,400,2.10,2.30,2.20,1500
2023-03-01,SPY230415P00380000,SPY,401.5,2023-04-15,put,380,1.05,1.15,1.10,900
`)

	series, err := LoadOptionCSV(path, DefaultOptionSchema())
	require.NoError(t, err)

	slice := series.Slice(day(2023, time.March, 1))
	require.Len(t, slice, 2)

	call := slice[0]
	assert.Equal(t, "SPY230415C00400000", call.Contract)
	assert.Equal(t, "SPY", call.Underlying)
	assert.Equal(t, 401.5, call.UnderlyingPrice)
	assert.Equal(t, day(2023, time.April, 15), call.Expiration)
	assert.Equal(t, models.OptionCall, call.Type)
	assert.Equal(t, 400.0, call.Strike)
	assert.Equal(t, 2.10, call.Bid)
	assert.Equal(t, 2.30, call.Ask)
	assert.Equal(t, int64(1500), call.Volume)

	assert.Equal(t, models.OptionPut, slice[1].Type)
}

func TestLoadOptionCSVShortTypeNames(t *testing.T) {
	path := writeFile(t, "options.csv", `quotedate,optionroot,underlying,underlying_last,expiration,type,strike,bid,ask,last,volume
2023-03-01,SPY230415C00400000,SPY,401.5,2023-04-15,C,400,2.10,2.30,2.20,1500
2023-03-01,SPY230415P00380000,SPY,401.5,2023-04-15,p,380,1.05,1.15,1.10,900
`)

	series, err := LoadOptionCSV(path, DefaultOptionSchema())
	require.NoError(t, err)

	slice := series.Slice(day(2023, time.March, 1))
	require.Len(t, slice, 2)
	assert.Equal(t, models.OptionCall, slice[0].Type)
	assert.Equal(t, models.OptionPut, slice[1].Type)
}

func TestLoadOptionCSVUnknownType(t *testing.T) {
	path := writeFile(t, "options.csv", `quotedate,optionroot,underlying,underlying_last,expiration,type,strike,bid,ask,last,volume
2023-03-01,SPY230415C00400000,SPY,401.5,2023-04-15,straddle,400,2.10,2.30,2.20,1500
`)

	_, err := LoadOptionCSV(path, DefaultOptionSchema())
	assert.Error(t, err)
}

func TestParseDateLayouts(t *testing.T) {
	want := day(2023, time.March, 1)
	for _, in := range []string{
		"2023-03-01",
		"2023-03-01 16:00:00",
		"03/01/2023",
		"2023-03-01T16:00:00Z",
		"  2023-03-01  ",
	} {
		got, err := parseDate(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := parseDate("March 1st 2023")
	assert.Error(t, err)
}
