package strategy

import (
	"fmt"
	"strings"

	"options-backtester/internal/data"
	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

// LegSpec is the declarative form of a leg, as it appears in the config file.
// Zero values disable the corresponding predicate.
type LegSpec struct {
	Name              string  `mapstructure:"name"`
	Direction         string  `mapstructure:"direction"`
	Type              string  `mapstructure:"type"`
	Underlying        string  `mapstructure:"underlying"`
	EntryMinDTE       int     `mapstructure:"entry_min_dte"`
	EntryMaxDTE       int     `mapstructure:"entry_max_dte"`
	EntryMinStrikePct float64 `mapstructure:"entry_min_strike_pct"`
	EntryMaxStrikePct float64 `mapstructure:"entry_max_strike_pct"`
	EntryMinBid       float64 `mapstructure:"entry_min_bid"`
	ExitBelowDTE      int     `mapstructure:"exit_below_dte"`
}

// Compile resolves the spec into a Leg with concrete predicates.
func (sp LegSpec) Compile() (Leg, error) {
	leg := Leg{Name: sp.Name}

	switch strings.ToUpper(sp.Direction) {
	case "BUY":
		leg.Direction = models.DirectionBuy
	case "SELL":
		leg.Direction = models.DirectionSell
	default:
		return Leg{}, errors.NewConfigError("strategy", fmt.Sprintf("leg %q: invalid direction %q", sp.Name, sp.Direction), errors.ErrConfigInvalid)
	}

	entry := []Filter{}
	switch strings.ToLower(sp.Type) {
	case "call":
		entry = append(entry, TypeIs(models.OptionCall))
	case "put":
		entry = append(entry, TypeIs(models.OptionPut))
	case "":
	default:
		return Leg{}, errors.NewConfigError("strategy", fmt.Sprintf("leg %q: invalid option type %q", sp.Name, sp.Type), errors.ErrConfigInvalid)
	}
	if sp.Underlying != "" {
		entry = append(entry, UnderlyingIs(sp.Underlying))
	}
	if sp.EntryMinDTE > 0 || sp.EntryMaxDTE > 0 {
		max := sp.EntryMaxDTE
		if max == 0 {
			max = 10000
		}
		entry = append(entry, DTEBetween(sp.EntryMinDTE, max))
	}
	if sp.EntryMinStrikePct > 0 || sp.EntryMaxStrikePct > 0 {
		max := sp.EntryMaxStrikePct
		if max == 0 {
			max = 100
		}
		entry = append(entry, StrikeBandPct(sp.EntryMinStrikePct, max))
	}
	if sp.EntryMinBid > 0 {
		entry = append(entry, MinBid(sp.EntryMinBid))
	}
	if len(entry) == 0 {
		return Leg{}, errors.NewConfigError("strategy", fmt.Sprintf("leg %q: no entry predicates", sp.Name), errors.ErrConfigInvalid)
	}
	leg.EntryFilter = And(entry...)

	if sp.ExitBelowDTE > 0 {
		leg.ExitFilter = DTEBelow(sp.ExitBelowDTE)
	} else {
		leg.ExitFilter = Never()
	}

	return leg, nil
}

// Spec is the declarative form of a whole strategy.
type Spec struct {
	Name      string    `mapstructure:"name"`
	Legs      []LegSpec `mapstructure:"legs"`
	ProfitPct float64   `mapstructure:"profit_pct"`
	LossPct   float64   `mapstructure:"loss_pct"`
}

// Compile resolves the spec into a runnable Strategy bound to the given
// options data schema.
func (sp Spec) Compile(schema data.OptionSchema) (*Strategy, error) {
	s := &Strategy{
		Name:   sp.Name,
		Schema: schema,
	}
	for _, legSpec := range sp.Legs {
		leg, err := legSpec.Compile()
		if err != nil {
			return nil, err
		}
		s.Legs = append(s.Legs, leg)
	}
	if sp.ProfitPct > 0 || sp.LossPct > 0 {
		s.Thresholds = ProfitLossThresholds(sp.ProfitPct, sp.LossPct)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
