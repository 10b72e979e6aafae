package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"options-backtester/internal/data"
	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func anyQuote() Filter {
	return func(data.OptionQuote) bool { return true }
}

func TestStrategyValidate(t *testing.T) {
	valid := &Strategy{
		Name: "long-call",
		Legs: []Leg{
			{Name: "long", Direction: models.DirectionBuy, EntryFilter: anyQuote()},
		},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		strat *Strategy
	}{
		{"no legs", &Strategy{Name: "empty"}},
		{"unnamed leg", &Strategy{Legs: []Leg{
			{Direction: models.DirectionBuy, EntryFilter: anyQuote()},
		}}},
		{"duplicate leg names", &Strategy{Legs: []Leg{
			{Name: "leg", Direction: models.DirectionBuy, EntryFilter: anyQuote()},
			{Name: "leg", Direction: models.DirectionSell, EntryFilter: anyQuote()},
		}}},
		{"invalid direction", &Strategy{Legs: []Leg{
			{Name: "leg", Direction: "HOLD", EntryFilter: anyQuote()},
		}}},
		{"missing entry filter", &Strategy{Legs: []Leg{
			{Name: "leg", Direction: models.DirectionBuy},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.strat.Validate()
			assert.ErrorIs(t, err, errors.ErrConfigInvalid)
		})
	}
}

func TestFilterCombinators(t *testing.T) {
	call := data.OptionQuote{Type: models.OptionCall, Bid: 2, Volume: 100}
	put := data.OptionQuote{Type: models.OptionPut, Bid: 0.01, Volume: 5}

	isCall := TypeIs(models.OptionCall)
	liquid := And(MinBid(1), MinVolume(50))

	assert.True(t, isCall(call))
	assert.False(t, isCall(put))

	assert.True(t, And(isCall, liquid)(call))
	assert.False(t, And(isCall, liquid)(put))

	assert.True(t, Or(isCall, MinBid(10))(call))
	assert.False(t, Or(TypeIs(models.OptionPut), MinBid(10))(call))

	assert.False(t, Not(isCall)(call))
	assert.True(t, Not(isCall)(put))

	assert.False(t, Never()(call))
}

func TestDTEFilters(t *testing.T) {
	q := data.OptionQuote{
		Date:       day(2023, time.March, 1),
		Expiration: day(2023, time.April, 15), // 45 DTE
	}

	assert.True(t, DTEBetween(30, 60)(q))
	assert.False(t, DTEBetween(50, 60)(q))
	assert.True(t, DTEBetween(45, 45)(q))

	assert.False(t, DTEBelow(45)(q))
	assert.True(t, DTEBelow(46)(q))
}

func TestStrikeBandPct(t *testing.T) {
	q := data.OptionQuote{Strike: 105, UnderlyingPrice: 100}

	assert.True(t, StrikeBandPct(1.0, 1.1)(q))
	assert.False(t, StrikeBandPct(1.1, 1.2)(q))

	// No underlying price means the band cannot be evaluated.
	assert.False(t, StrikeBandPct(0.5, 2.0)(data.OptionQuote{Strike: 105}))
}

func TestUnderlyingIs(t *testing.T) {
	q := data.OptionQuote{Underlying: "SPY"}
	assert.True(t, UnderlyingIs("SPY")(q))
	assert.False(t, UnderlyingIs("QQQ")(q))
}

func TestProfitLossThresholds(t *testing.T) {
	rule := ProfitLossThresholds(0.5, 0.4)

	// Bought at 200 per unit; closing at -320 nets a 120 profit: 60% of the
	// entry cost, past the 50% take-profit line.
	assert.True(t, rule(200, -320))

	// Closing at -220 nets 10%, inside both lines.
	assert.False(t, rule(200, -220))

	// Closing at -110 loses 45%, past the 40% stop-loss line.
	assert.True(t, rule(200, -110))

	// A position with zero entry cost has no base to measure against.
	assert.False(t, rule(0, -100))
}

func TestProfitLossThresholdsDisabledSides(t *testing.T) {
	profitOnly := ProfitLossThresholds(0.5, 0)
	assert.True(t, profitOnly(200, -320))
	assert.False(t, profitOnly(200, -10), "stop-loss side disabled")

	lossOnly := ProfitLossThresholds(0, 0.4)
	assert.False(t, lossOnly(200, -320), "take-profit side disabled")
	assert.True(t, lossOnly(200, -110))
}
