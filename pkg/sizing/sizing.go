// Package sizing selects standard transformer capacities and ESS modules
// for a station's computed load.
package sizing

import (
	"fmt"

	"github.com/levenlabs/go-lflag"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EssModel is one standard commercial ESS module.
type EssModel struct {
	PowerKw     int `json:"powerKw"`
	CapacityKwh int `json:"capacityKwh"`
}

// Tables holds the per-country standard transformer sizes (kVA, ascending)
// and the standard ESS module catalogue. Countries without an entry fall
// back to the CN tables.
type Tables struct {
	Transformers map[string][]int
	EssModels    map[string][]EssModel
}

func defaultTransformers() map[string][]int {
	return map[string][]int{
		"CN": {30, 50, 80, 100, 125, 160, 200, 250, 315, 400, 500, 630, 800, 1000, 1250, 1600, 2000, 2500, 3150},
		"JP": {30, 50, 75, 100, 150, 200, 300, 500, 750, 1000, 1500, 2000, 3000},
		"UK": {25, 50, 100, 200, 315, 500, 800, 1000, 1500, 2000, 2500},
	}
}

func defaultEssModels() map[string][]EssModel {
	models := []EssModel{{PowerKw: 100, CapacityKwh: 215}, {PowerKw: 125, CapacityKwh: 261}}
	return map[string][]EssModel{
		"CN": models,
		"JP": models,
		"UK": models,
	}
}

// Defaults returns the built-in standard tables without consulting flags.
func Defaults() *Tables {
	return &Tables{
		Transformers: defaultTransformers(),
		EssModels:    defaultEssModels(),
	}
}

// Configured sets up the standard tables based on flags.
func Configured() *Tables {
	t := &Tables{}
	transformers := defaultTransformers()
	lflag.JSON(&transformers, "standard-transformer-sizes", transformers,
		"JSON map of country code to ascending standard transformer sizes (kVA)")
	models := defaultEssModels()
	lflag.JSON(&models, "standard-ess-models", models,
		"JSON map of country code to standard ESS modules ({powerKw, capacityKwh})")

	lflag.Do(func() {
		t.Transformers = transformers
		t.EssModels = models
	})

	return t
}

// Validate ensures the configured tables are usable.
func (t *Tables) Validate() error {
	if len(t.Transformers["CN"]) == 0 {
		return fmt.Errorf("standard-transformer-sizes must include CN")
	}
	if len(t.EssModels["CN"]) == 0 {
		return fmt.Errorf("standard-ess-models must include CN")
	}
	for country, sizes := range t.Transformers {
		for i := 1; i < len(sizes); i++ {
			if sizes[i] < sizes[i-1] {
				return fmt.Errorf("standard-transformer-sizes for %s must be ascending", country)
			}
		}
	}
	return nil
}

func (t *Tables) transformerSizes(country string) []int {
	if sizes, ok := t.Transformers[country]; ok {
		return sizes
	}
	return t.Transformers["CN"]
}

func (t *Tables) essModels(country string) []EssModel {
	if models, ok := t.EssModels[country]; ok {
		return models
	}
	return t.EssModels["CN"]
}

// TransformerFor returns the smallest standard transformer of the country
// that covers requiredKw, or the largest one when none does. Without any
// configured sizes it rounds up to the nearest 100 kVA.
func (t *Tables) TransformerFor(country string, requiredKw decimal.Decimal) decimal.Decimal {
	sizes := t.transformerSizes(country)
	if len(sizes) == 0 {
		return requiredKw.Div(hundred).Ceil().Mul(hundred)
	}
	for _, size := range sizes {
		if decimal.NewFromInt(int64(size)).GreaterThanOrEqual(requiredKw) {
			return decimal.NewFromInt(int64(size))
		}
	}
	return decimal.NewFromInt(int64(sizes[len(sizes)-1]))
}

// SelectEss picks the standard module that covers both the required power
// and capacity with the fewest units, breaking ties on the smallest total
// capacity. Units is at least 1 even for zero requirements.
func (t *Tables) SelectEss(country string, requiredPowerKw, requiredCapacityKwh decimal.Decimal) (EssModel, int) {
	models := t.essModels(country)
	if len(models) == 0 {
		return EssModel{
			PowerKw:     int(requiredPowerKw.Ceil().IntPart()),
			CapacityKwh: int(requiredCapacityKwh.Ceil().IntPart()),
		}, 1
	}

	best := models[0]
	bestUnits := -1
	bestTotalCapacity := 0
	for _, m := range models {
		units := max(unitsFor(requiredPowerKw, m.PowerKw), unitsFor(requiredCapacityKwh, m.CapacityKwh))
		totalCapacity := units * m.CapacityKwh
		if bestUnits == -1 || units < bestUnits || (units == bestUnits && totalCapacity < bestTotalCapacity) {
			best = m
			bestUnits = units
			bestTotalCapacity = totalCapacity
		}
	}
	return best, bestUnits
}

func unitsFor(required decimal.Decimal, per int) int {
	if required.Sign() <= 0 || per <= 0 {
		return 1
	}
	return int(required.Div(decimal.NewFromInt(int64(per))).Ceil().IntPart())
}

// EssMaxPowerKw applies the empirical coefficient to the load peak. The
// storage never has to cover the absolute peak alone.
func EssMaxPowerKw(loadPeakKw, coefficient decimal.Decimal) decimal.Decimal {
	return loadPeakKw.Mul(coefficient).Round(2)
}

// EssRatedPowerKw subtracts the PV peak from the ESS max power, floored at
// zero when PV alone covers the need.
func EssRatedPowerKw(essMaxKw, pvPeakKw decimal.Decimal) decimal.Decimal {
	rated := essMaxKw.Sub(pvPeakKw)
	if rated.IsNegative() {
		return decimal.Zero
	}
	return rated.Round(2)
}

// ValidateTransformer returns a warning when the ESS rated power exceeds the
// transformer capacity. The excess is reported; the run still succeeds.
func ValidateTransformer(essRatedKw, transformerKva decimal.Decimal) string {
	if essRatedKw.LessThanOrEqual(transformerKva) {
		return ""
	}
	excess := essRatedKw.Sub(transformerKva).Round(2)
	return fmt.Sprintf("ESS rated power (%s kW) exceeds transformer capacity (%s kVA) by %s kW; reduce the vehicle count or increase the transformer",
		essRatedKw.StringFixed(2), transformerKva.StringFixed(2), excess.StringFixed(2))
}
