package data

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

// Wire rows are tagged with the canonical column names; non-default physical
// layouts are mapped onto them through a header normalizer built from the
// schema, so the mapping is resolved once per load.
type stockCSVRow struct {
	Date     string  `csv:"date"`
	Symbol   string  `csv:"symbol"`
	AdjClose float64 `csv:"adjClose"`
}

type optionCSVRow struct {
	Date            string  `csv:"quotedate"`
	Contract        string  `csv:"optionroot"`
	Underlying      string  `csv:"underlying"`
	UnderlyingPrice float64 `csv:"underlying_last"`
	Expiration      string  `csv:"expiration"`
	Type            string  `csv:"type"`
	Strike          float64 `csv:"strike"`
	Bid             float64 `csv:"bid"`
	Ask             float64 `csv:"ask"`
	Last            float64 `csv:"last"`
	Volume          int64   `csv:"volume"`
}

// LoadStockCSV reads a daily stock price table and normalizes it through the
// given schema.
func LoadStockCSV(path string, schema StockSchema) (*StockSeries, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError(path, "open", err)
	}
	defer f.Close()

	setNormalizer(schema.reverse())
	defer resetNormalizer()

	rows := []stockCSVRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.NewDataError(path, "parse csv", err)
	}

	quotes := make([]StockQuote, 0, len(rows))
	for i, row := range rows {
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, errors.NewDataError(path, fmt.Sprintf("row %d", i+1), err)
		}
		quotes = append(quotes, StockQuote{
			Date:     date,
			Symbol:   row.Symbol,
			AdjClose: row.AdjClose,
		})
	}

	return NewStockSeries(schema, quotes), nil
}

// LoadOptionCSV reads an end-of-day options quote table and normalizes it
// through the given schema.
func LoadOptionCSV(path string, schema OptionSchema) (*OptionSeries, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError(path, "open", err)
	}
	defer f.Close()

	setNormalizer(schema.reverse())
	defer resetNormalizer()

	rows := []optionCSVRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.NewDataError(path, "parse csv", err)
	}

	quotes := make([]OptionQuote, 0, len(rows))
	for i, row := range rows {
		q, err := normalizeOptionRow(row)
		if err != nil {
			return nil, errors.NewDataError(path, fmt.Sprintf("row %d", i+1), err)
		}
		quotes = append(quotes, q)
	}

	return NewOptionSeries(schema, quotes), nil
}

func normalizeOptionRow(row optionCSVRow) (OptionQuote, error) {
	date, err := parseDate(row.Date)
	if err != nil {
		return OptionQuote{}, err
	}
	expiration, err := parseDate(row.Expiration)
	if err != nil {
		return OptionQuote{}, err
	}
	optType, err := parseOptionType(row.Type)
	if err != nil {
		return OptionQuote{}, err
	}
	return OptionQuote{
		Date:            date,
		Contract:        row.Contract,
		Underlying:      row.Underlying,
		UnderlyingPrice: row.UnderlyingPrice,
		Expiration:      expiration,
		Type:            optType,
		Strike:          row.Strike,
		Bid:             row.Bid,
		Ask:             row.Ask,
		Last:            row.Last,
		Volume:          row.Volume,
	}, nil
}

func setNormalizer(toCanonical map[string]string) {
	gocsv.SetHeaderNormalizer(func(header string) string {
		if canonical, ok := toCanonical[header]; ok {
			return canonical
		}
		return header
	})
}

func resetNormalizer() {
	gocsv.SetHeaderNormalizer(gocsv.DefaultNameNormalizer())
}

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02 15:04:05",
	"01/02/2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Normalize to midnight UTC so stock and option dates compare
			// equal regardless of source timestamp precision.
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseOptionType(s string) (models.OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return models.OptionCall, nil
	case "put", "p":
		return models.OptionPut, nil
	default:
		return "", fmt.Errorf("unknown option type %q", s)
	}
}
