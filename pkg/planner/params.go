package planner

import (
	"fmt"

	"github.com/levenlabs/go-lflag"
	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/scheduler"
)

// Params holds the tunable calculation constants. All of them have working
// defaults; flags exist so deployments can match local pile hardware and
// cost assumptions.
type Params struct {
	SlotIntervalMinutes  int
	EmpiricalCoefficient decimal.Decimal
	Rating               scheduler.PileRating
	DischargeDerate      decimal.Decimal
	EssUnitCostPerKwh    decimal.Decimal
	OmRatio              decimal.Decimal
	OmInflationPerYear   decimal.Decimal
	SuggestFastRatio     decimal.Decimal
	SuggestSlowRatio     decimal.Decimal
	SuggestUltraRatio    decimal.Decimal

	err error
}

// Defaults returns the parameter set used when no flags override it.
func Defaults() *Params {
	return &Params{
		SlotIntervalMinutes:  15,
		EmpiricalCoefficient: decimal.RequireFromString("0.8"),
		Rating: scheduler.PileRating{
			SlowKw:     decimal.NewFromInt(7),
			FastKw:     decimal.NewFromInt(120),
			UltraKw:    decimal.NewFromInt(350),
			FallbackKw: decimal.NewFromInt(7),
		},
		DischargeDerate:    decimal.RequireFromString("0.85"),
		EssUnitCostPerKwh:  decimal.NewFromInt(1500),
		OmRatio:            decimal.RequireFromString("0.02"),
		OmInflationPerYear: decimal.RequireFromString("0.02"),
		SuggestFastRatio:   decimal.RequireFromString("0.2"),
		SuggestSlowRatio:   decimal.RequireFromString("0.8"),
		SuggestUltraRatio:  decimal.RequireFromString("0.05"),
	}
}

// Configured sets up the calculation parameters based on flags.
func Configured() *Params {
	p := &Params{}
	interval := lflag.Int("slot-interval-minutes", 15, "Width of one load-curve slot in minutes")
	slow := lflag.String("slow-pile-kw", "7", "Rated power of a slow charging pile (kW)")
	fast := lflag.String("fast-pile-kw", "120", "Rated power of a fast charging pile (kW)")
	ultra := lflag.String("ultra-pile-kw", "350", "Rated power of an ultra-fast charging pile (kW)")
	fallback := lflag.String("fallback-pile-kw", "7", "Pile power assumed when a station has no piles configured")
	coeff := lflag.String("empirical-coefficient", "0.8", "Coefficient applied to the load peak when sizing the ESS")
	derate := lflag.String("v2g-discharge-derate", "0.85", "Ratio of V2G discharge power to charge power")
	unitCost := lflag.String("ess-unit-cost", "1500", "ESS investment cost per kWh of capacity")
	omRatio := lflag.String("ess-om-ratio", "0.02", "Annual O&M cost as a fraction of the initial investment")
	omInflation := lflag.String("ess-om-inflation", "0.02", "Linear O&M cost inflation per elapsed year")
	suggestFast := lflag.String("suggest-fast-ratio", "0.2", "Suggested fast piles per vehicle")
	suggestSlow := lflag.String("suggest-slow-ratio", "0.8", "Suggested slow piles per vehicle")
	suggestUltra := lflag.String("suggest-ultra-ratio", "0.05", "Suggested ultra-fast piles per vehicle")

	lflag.Do(func() {
		p.SlotIntervalMinutes = *interval
		p.Rating.SlowKw = p.parse("slow-pile-kw", *slow)
		p.Rating.FastKw = p.parse("fast-pile-kw", *fast)
		p.Rating.UltraKw = p.parse("ultra-pile-kw", *ultra)
		p.Rating.FallbackKw = p.parse("fallback-pile-kw", *fallback)
		p.EmpiricalCoefficient = p.parse("empirical-coefficient", *coeff)
		p.DischargeDerate = p.parse("v2g-discharge-derate", *derate)
		p.EssUnitCostPerKwh = p.parse("ess-unit-cost", *unitCost)
		p.OmRatio = p.parse("ess-om-ratio", *omRatio)
		p.OmInflationPerYear = p.parse("ess-om-inflation", *omInflation)
		p.SuggestFastRatio = p.parse("suggest-fast-ratio", *suggestFast)
		p.SuggestSlowRatio = p.parse("suggest-slow-ratio", *suggestSlow)
		p.SuggestUltraRatio = p.parse("suggest-ultra-ratio", *suggestUltra)
	})

	return p
}

func (p *Params) parse(name, value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s (%q): %w", name, value, err)
	}
	return d
}

// Validate ensures the configuration is valid.
func (p *Params) Validate() error {
	if p.err != nil {
		return p.err
	}
	if p.SlotIntervalMinutes <= 0 || (24*60)%p.SlotIntervalMinutes != 0 {
		return fmt.Errorf("slot-interval-minutes (%d) must evenly divide a day", p.SlotIntervalMinutes)
	}
	if p.EmpiricalCoefficient.Sign() <= 0 {
		return fmt.Errorf("empirical-coefficient must be > 0")
	}
	if p.DischargeDerate.Sign() <= 0 || p.DischargeDerate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("v2g-discharge-derate must be in (0, 1]")
	}
	return nil
}
