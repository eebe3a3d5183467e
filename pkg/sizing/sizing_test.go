package sizing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTables() *Tables {
	return &Tables{
		Transformers: defaultTransformers(),
		EssModels:    defaultEssModels(),
	}
}

func TestTransformerFor(t *testing.T) {
	tables := testTables()

	// smallest standard size covering the peak
	got := tables.TransformerFor("CN", dec("1200"))
	assert.True(t, got.Equal(dec("1250")), got.String())

	// beyond the largest size: the largest is returned
	got = tables.TransformerFor("CN", dec("3500"))
	assert.True(t, got.Equal(dec("3150")), got.String())

	// exact match
	got = tables.TransformerFor("CN", dec("400"))
	assert.True(t, got.Equal(dec("400")), got.String())

	// unknown country falls back to CN
	got = tables.TransformerFor("DE", dec("90"))
	assert.True(t, got.Equal(dec("100")), got.String())

	// JP has its own ladder
	got = tables.TransformerFor("JP", dec("90"))
	assert.True(t, got.Equal(dec("100")), got.String())
	got = tables.TransformerFor("JP", dec("120"))
	assert.True(t, got.Equal(dec("150")), got.String())

	// no tables at all: round up to the nearest 100
	empty := &Tables{Transformers: map[string][]int{}}
	got = empty.TransformerFor("CN", dec("230"))
	assert.True(t, got.Equal(dec("300")), got.String())
}

func TestSelectEss(t *testing.T) {
	tables := testTables()

	// 180 kW / 400 kWh: both models need 2 units, (100,215) wins on total
	// capacity 430 vs 522
	model, units := tables.SelectEss("CN", dec("180"), dec("400"))
	assert.Equal(t, EssModel{PowerKw: 100, CapacityKwh: 215}, model)
	assert.Equal(t, 2, units)

	// zero requirements still produce one unit
	model, units = tables.SelectEss("CN", decimal.Zero, decimal.Zero)
	assert.Equal(t, 1, units)
	assert.Equal(t, 100, model.PowerKw)

	// capacity-bound selection: 50 kW but 600 kWh
	model, units = tables.SelectEss("CN", dec("50"), dec("600"))
	assert.Equal(t, EssModel{PowerKw: 125, CapacityKwh: 261}, model)
	assert.Equal(t, 3, units)
}

func TestEssPower(t *testing.T) {
	coeff := dec("0.8")

	got := EssMaxPowerKw(dec("625"), coeff)
	assert.True(t, got.Equal(dec("500")), got.String())

	got = EssRatedPowerKw(dec("500"), dec("120"))
	assert.True(t, got.Equal(dec("380")), got.String())

	// PV covers everything: floored at zero
	got = EssRatedPowerKw(dec("100"), dec("250"))
	assert.True(t, got.IsZero(), got.String())
}

func TestValidateTransformer(t *testing.T) {
	assert.Empty(t, ValidateTransformer(dec("380"), dec("400")))
	assert.Empty(t, ValidateTransformer(dec("400"), dec("400")))

	warning := ValidateTransformer(dec("500"), dec("400"))
	assert.Contains(t, warning, "exceeds transformer capacity")
	assert.Contains(t, warning, "100.00 kW")
}

func TestTablesValidate(t *testing.T) {
	assert.NoError(t, testTables().Validate())

	bad := testTables()
	bad.Transformers["CN"] = []int{100, 50}
	assert.Error(t, bad.Validate())

	missing := &Tables{Transformers: map[string][]int{}, EssModels: map[string][]EssModel{}}
	assert.Error(t, missing.Validate())
}
