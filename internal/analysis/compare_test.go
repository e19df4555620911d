package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
)

func reportAt(ts time.Time, wares map[gamedata.WareID]*WareBalance, stations map[string]*StationSummary) *Report {
	if stations == nil {
		stations = map[string]*StationSummary{}
	}
	return &Report{SaveTime: ts, Wares: wares, Stations: stations}
}

func TestCompareWareTransitions(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(4 * time.Hour)

	old := reportAt(t0, map[gamedata.WareID]*WareBalance{
		"energycells": {Ware: "energycells", Name: "Energy Cells", Status: StatusBalanced, ModuleCount: 2, Production: 1200, Consumption: 1100},
		"hullparts":   {Ware: "hullparts", Name: "Hull Parts", Status: StatusSurplus, ModuleCount: 3, Production: 300, Consumption: 100},
		"ore":         {Ware: "ore", Name: "Ore", Status: StatusNotProduced, Consumption: 400},
		"water":       {Ware: "water", Name: "Water", Status: StatusBalanced, ModuleCount: 1, Production: 100, Consumption: 100},
		"wheat":       {Ware: "wheat", Name: "Wheat", Status: StatusNoDemand, ModuleCount: 1, Production: 50},
	}, nil)

	new := reportAt(t1, map[gamedata.WareID]*WareBalance{
		"energycells": {Ware: "energycells", Name: "Energy Cells", Status: StatusShortage, ModuleCount: 2, Production: 1200, Consumption: 1600},
		"hullparts":   {Ware: "hullparts", Name: "Hull Parts", Status: StatusSurplus, ModuleCount: 3, Production: 300, Consumption: 100},
		"ore":         {Ware: "ore", Name: "Ore", Status: StatusNoDemand, ModuleCount: 1, Production: 600},
		"water":       {Ware: "water", Name: "Water", Status: StatusNotProduced, Consumption: 100},
		"wheat":       {Ware: "wheat", Name: "Wheat", Status: StatusBalanced, ModuleCount: 1, Production: 50, Consumption: 45},
	}, nil)

	cmp := Compare(old, new)

	assert.Equal(t, 5, cmp.WaresCompared)
	assert.Equal(t, 1, cmp.Degraded, "energycells fell into shortage")
	assert.Equal(t, 1, cmp.NewProduction, "ore gained its first module")
	assert.Equal(t, 1, cmp.Stopped, "water lost its module")
	assert.Equal(t, 1, cmp.Improved, "wheat found a buyer")
	assert.Equal(t, 1, cmp.Unchanged)

	// Degraded wares sort to the front, they are what the player reads
	// the comparison for.
	require.Len(t, cmp.WareChanges, 4)
	assert.Equal(t, ChangeDegraded, cmp.WareChanges[0].Change)
	assert.Equal(t, gamedata.WareID("energycells"), cmp.WareChanges[0].Ware)
	assert.InDelta(t, -500.0, cmp.WareChanges[0].BalanceDelta, 1e-9)

	assert.Contains(t, cmp.Alerts, "1 ware(s) now in SHORTAGE")
}

func TestCompareStationsByName(t *testing.T) {
	old := reportAt(time.Time{}, map[gamedata.WareID]*WareBalance{}, map[string]*StationSummary{
		// IDs differ across saves; only the name is stable.
		"A1": {ID: "A1", Name: "Energy Hub", Modules: []ModuleSummary{{Count: 2}}},
		"B1": {ID: "B1", Name: "Old Refinery", Modules: []ModuleSummary{{Count: 5}}},
	})
	new := reportAt(time.Time{}, map[gamedata.WareID]*WareBalance{}, map[string]*StationSummary{
		"A9": {ID: "A9", Name: "Energy Hub", Modules: []ModuleSummary{{Count: 4}}},
		"C1": {ID: "C1", Name: "New Forge", Modules: []ModuleSummary{{Count: 3}}},
	})

	cmp := Compare(old, new)

	assert.Equal(t, 1, cmp.StationsAdded)
	assert.Equal(t, 1, cmp.StationsRemoved)
	assert.Equal(t, 0, cmp.ModulesDelta, "+2 grown, +3 added, -5 removed")

	require.Len(t, cmp.StationChanges, 3)
	assert.Equal(t, "Energy Hub", cmp.StationChanges[0].Name)
	assert.Equal(t, "modified", cmp.StationChanges[0].Change)
	assert.Equal(t, 2, cmp.StationChanges[0].ModuleDelta)
	assert.Equal(t, "added", cmp.StationChanges[1].Change)
	assert.Equal(t, "removed", cmp.StationChanges[2].Change)

	assert.Contains(t, cmp.Alerts, "1 station(s) removed")
	assert.Contains(t, cmp.Alerts, "1 new station(s)")
}

func TestCompareModuleSurgeAlert(t *testing.T) {
	old := reportAt(time.Time{}, map[gamedata.WareID]*WareBalance{}, map[string]*StationSummary{
		"A1": {ID: "A1", Name: "Energy Hub", Modules: []ModuleSummary{{Count: 1}}},
	})
	new := reportAt(time.Time{}, map[gamedata.WareID]*WareBalance{}, map[string]*StationSummary{
		"A1": {ID: "A1", Name: "Energy Hub", Modules: []ModuleSummary{{Count: 13}}},
	})

	cmp := Compare(old, new)
	assert.Equal(t, 12, cmp.ModulesDelta)
	assert.Contains(t, cmp.Alerts, "+12 production modules")
}

func TestParseStatusRoundTrip(t *testing.T) {
	statuses := []Status{
		StatusSurplus, StatusBalanced, StatusNoDemand,
		StatusShortage, StatusNotProduced,
	}
	for _, s := range statuses {
		assert.Equal(t, s, ParseStatus(s.String()))
	}
	assert.Equal(t, StatusNotProduced, ParseStatus("garbage"))
}
