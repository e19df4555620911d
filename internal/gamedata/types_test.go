package gamedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitsPerHour(t *testing.T) {
	m := ProductionMethod{ID: "default", CycleTime: 60, Amount: 10}
	assert.Equal(t, 600.0, m.UnitsPerHour())

	zero := ProductionMethod{ID: "default", CycleTime: 0, Amount: 10}
	assert.Zero(t, zero.UnitsPerHour())
}

func TestNormalizeWareID(t *testing.T) {
	assert.Equal(t, WareID("energycells"), NormalizeWareID("Energy Cells"))
	assert.Equal(t, WareID("sunriseflowers"), NormalizeWareID("sunrise_flowers"))
	assert.Equal(t, WareID("ore"), NormalizeWareID("ORE"))
}

func TestClassifyShip(t *testing.T) {
	tests := []struct {
		purpose string
		macro   string
		want    ShipPurpose
	}{
		{"trade", "ship_arg_s_scout_01_a_macro", PurposeTrader},
		{"mine", "ship_arg_l_miner_solid_01_a_macro", PurposeMiner},
		{"build", "", PurposeBuilder},
		{"fight", "", PurposeFighter},
		{"auxiliary", "", PurposeAuxiliary},
		{"", "ship_tel_l_miner_liquid_01_a_macro", PurposeMiner},
		{"", "ship_arg_m_trans_container_01_a_macro", PurposeTrader},
		{"", "ship_par_m_frigate_01_a_macro", PurposeFighter},
		{"", "ship_arg_xl_resupplier_01_a_macro", PurposeAuxiliary},
		{"", "ship_xen_xs_unknown_thing_macro", PurposeUnrecognized},
	}
	for _, tt := range tests {
		got := ClassifyShip(tt.purpose, tt.macro)
		assert.Equal(t, tt.want, got, "purpose=%q macro=%q", tt.purpose, tt.macro)
	}
}

func TestDefinitionsLookup(t *testing.T) {
	defs := &Definitions{
		Wares: map[WareID]*WareDefinition{"ore": {ID: "ore", Name: "Ore"}},
		Ships: map[string]*ShipDefinition{
			"ship_arg_l_miner_solid_01_a": {Macro: "ship_arg_l_miner_solid_01_a", CargoCapacity: 30000},
		},
	}

	w, ok := defs.Ware("ore")
	require.True(t, ok)
	assert.Equal(t, "Ore", w.Name)

	_, ok = defs.Ware("wheat")
	assert.False(t, ok)

	// Lookup works with and without the _macro suffix.
	s, ok := defs.Ship("ship_arg_l_miner_solid_01_a_macro")
	require.True(t, ok)
	assert.Equal(t, 30000, s.CargoCapacity)

	var nilDefs *Definitions
	_, ok = nilDefs.Ware("ore")
	assert.False(t, ok)
}

func TestCategorizeWare(t *testing.T) {
	assert.Equal(t, TierRaw, CategorizeWare("ore"))
	assert.Equal(t, TierRaw, CategorizeWare("helium"))
	assert.True(t, IsRawMaterial("silicon"))
	assert.False(t, IsRawMaterial("hullparts"))
	assert.Equal(t, TierUncategorized, CategorizeWare("somethingnew"))
}
