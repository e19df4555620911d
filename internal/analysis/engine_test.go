package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zillatron27/x4-production-analyzer/internal/config"
	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
	"github.com/Zillatron27/x4-production-analyzer/internal/save"
)

// testDefs carries one recipe: 10 energy cells per 60s cycle, consuming
// 1 ore per cycle. One module therefore makes 600/hr and eats 60/hr.
func testDefs() *gamedata.Definitions {
	return &gamedata.Definitions{
		Wares: map[gamedata.WareID]*gamedata.WareDefinition{
			"energycells": {
				ID:   "energycells",
				Name: "Energy Cells",
				Methods: []gamedata.ProductionMethod{{
					ID:        "default",
					CycleTime: 60,
					Amount:    10,
					Inputs:    []gamedata.RecipeInput{{Ware: "ore", Amount: 1}},
				}},
			},
		},
		Ships: map[string]*gamedata.ShipDefinition{},
	}
}

func energyStation(count int) *save.Station {
	return &save.Station{
		ID:   "HUB-001",
		Name: "Energy Hub",
		Type: save.StationProduction,
		Modules: []save.Module{{
			Macro: "prod_gen_energycells_macro",
			Ware:  "energycells",
			Count: count,
		}},
	}
}

func TestAnalyzeRecipeRates(t *testing.T) {
	engine := NewEngine(testDefs(), config.Default().Thresholds)
	require.False(t, engine.EstimateMode())

	empire := &save.Empire{Stations: []*save.Station{energyStation(2)}}
	r := engine.Analyze(empire)

	ec := r.Wares["energycells"]
	require.NotNil(t, ec)
	assert.InDelta(t, 1200.0, ec.Production, 1e-9)
	assert.Zero(t, ec.Consumption)
	assert.Equal(t, StatusNoDemand, ec.Status)
	assert.Equal(t, 2, ec.ModuleCount)
	assert.False(t, ec.Estimated)
	assert.Equal(t, []string{"HUB-001"}, ec.Producers)

	ore := r.Wares["ore"]
	require.NotNil(t, ore)
	assert.Zero(t, ore.Production)
	assert.InDelta(t, 120.0, ore.Consumption, 1e-9)
	assert.Equal(t, StatusNotProduced, ore.Status)
	assert.Equal(t, []string{"HUB-001"}, ore.Consumers)

	st := r.Stations["HUB-001"]
	require.NotNil(t, st)
	assert.InDelta(t, 1200.0, st.Production["energycells"], 1e-9)
	assert.InDelta(t, 120.0, st.Consumption["ore"], 1e-9)

	// The station subtotals and empire totals come from independent
	// passes; any mismatch would surface as a diagnostic.
	assert.Empty(t, r.Diagnostics)

	shortages := r.Shortages()
	require.Len(t, shortages, 1)
	assert.Equal(t, gamedata.WareID("ore"), shortages[0].Ware)
}

func TestClassifyBoundaries(t *testing.T) {
	engine := NewEngine(testDefs(), config.Default().Thresholds)

	cases := []struct {
		name string
		prod float64
		cons float64
		want Status
	}{
		{"just under surplus bound", 100, 79, StatusSurplus},
		{"surplus bound is balanced", 100, 80, StatusBalanced},
		{"shortage bound is balanced", 100, 120, StatusBalanced},
		{"just over shortage bound", 100, 121, StatusShortage},
		{"no demand", 100, 0, StatusNoDemand},
		{"not produced", 0, 50, StatusNotProduced},
		{"inactive ware", 0, 0, StatusBalanced},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := engine.classify(tc.prod, tc.cons)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMarginalSurplus(t *testing.T) {
	engine := NewEngine(testDefs(), config.Default().Thresholds)
	r := &Report{Wares: map[gamedata.WareID]*WareBalance{
		"thin": {Ware: "thin", Production: 100, Consumption: 95},
		"wide": {Ware: "wide", Production: 100, Consumption: 50},
	}}
	engine.classifyAll(r)

	assert.True(t, r.Wares["thin"].Marginal)
	assert.Equal(t, StatusBalanced, r.Wares["thin"].Status)
	assert.False(t, r.Wares["wide"].Marginal)
}

func TestEstimateModeFromTradeOffers(t *testing.T) {
	engine := NewEngine(nil, config.Default().Thresholds)
	require.True(t, engine.EstimateMode())

	st := energyStation(1)
	st.Trades = []save.TradeOrder{
		{Ware: "energycells", Direction: save.TradeSell, Amount: 100, Desired: 500},
		{Ware: "ore", Direction: save.TradeBuy, Amount: 20, Desired: 200},
	}
	r := engine.Analyze(&save.Empire{Stations: []*save.Station{st}})

	require.True(t, r.EstimateMode)
	ec := r.Wares["energycells"]
	require.NotNil(t, ec)
	assert.InDelta(t, 500.0, ec.Production, 1e-9)
	assert.True(t, ec.Estimated)

	ore := r.Wares["ore"]
	require.NotNil(t, ore)
	assert.InDelta(t, 200.0, ore.Consumption, 1e-9)
	assert.True(t, ore.Estimated)
	assert.Empty(t, r.Diagnostics)
}

func TestBuyOfferWithoutDesiredFallsBackToAmount(t *testing.T) {
	engine := NewEngine(nil, config.Default().Thresholds)

	st := energyStation(1)
	st.Trades = []save.TradeOrder{
		{Ware: "ore", Direction: save.TradeBuy, Amount: 300, Desired: 0},
	}
	r := engine.Analyze(&save.Empire{Stations: []*save.Station{st}})

	ore := r.Wares["ore"]
	require.NotNil(t, ore)
	assert.InDelta(t, 300.0, ore.Consumption, 1e-9)
	assert.InDelta(t, 300.0, r.Stations["HUB-001"].Consumption["ore"], 1e-9)
}

func TestDefinitionWarningsReachDiagnostics(t *testing.T) {
	engine := NewEngine(testDefs(), config.Default().Thresholds)
	engine.NoteDefinitionWarnings([]error{
		&gamedata.ParseFailure{Path: "libraries/wares.xml", Err: assert.AnError},
	})

	r := engine.Analyze(&save.Empire{Stations: []*save.Station{energyStation(1)}})
	require.Len(t, r.Diagnostics, 1)
	assert.Contains(t, r.Diagnostics[0], "libraries/wares.xml")
}

func TestShipyardConsumesBuyOffers(t *testing.T) {
	engine := NewEngine(testDefs(), config.Default().Thresholds)
	yard := &save.Station{
		ID:   "SHY-001",
		Name: "Argon Shipyard",
		Type: save.StationShipyard,
		Trades: []save.TradeOrder{
			{Ware: "hullparts", Direction: save.TradeBuy, Desired: 800},
			{Ware: "energycells", Direction: save.TradeSell, Desired: 50},
		},
	}
	r := engine.Analyze(&save.Empire{Stations: []*save.Station{yard}})

	hp := r.Wares["hullparts"]
	require.NotNil(t, hp)
	assert.InDelta(t, 800.0, hp.Consumption, 1e-9)
	assert.True(t, hp.Estimated, "demand-driven figures are approximations")
	assert.Equal(t, StatusNotProduced, hp.Status)
}

func TestMiningCoverage(t *testing.T) {
	cases := []struct {
		name  string
		cargo int
		want  MiningCoverage
	}{
		{"sufficient", 200, MiningSufficient},
		{"marginal", 70, MiningMarginal},
		{"insufficient", 30, MiningInsufficient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine(testDefs(), config.Default().Thresholds)
			// Two modules consume 120 ore/hr; one assigned miner covers it
			// only when its hold is at least that big.
			empire := &save.Empire{
				Stations: []*save.Station{energyStation(2)},
				Ships: []*save.Ship{{
					ID:            "MIN-001",
					Purpose:       gamedata.PurposeMiner,
					CargoCapacity: tc.cargo,
					StationID:     "HUB-001",
				}},
			}
			r := engine.Analyze(empire)

			require.Len(t, r.Mining, 1)
			m := r.Mining[0]
			assert.Equal(t, gamedata.WareID("ore"), m.Ware)
			assert.InDelta(t, 120.0, m.Consumption, 1e-9)
			assert.Equal(t, 1, m.MinerCount)
			assert.Equal(t, tc.cargo, m.MinerCargo)
			assert.Equal(t, tc.want, m.Coverage)
		})
	}
}

func TestLogisticsSummary(t *testing.T) {
	engine := NewEngine(testDefs(), config.Default().Thresholds)
	empire := &save.Empire{
		Stations: []*save.Station{energyStation(1)},
		Ships: []*save.Ship{
			{ID: "MIN-001", Purpose: gamedata.PurposeMiner, CargoCapacity: 40000, StationID: "HUB-001"},
			{ID: "TRD-001", Name: "Lone Trader", Purpose: gamedata.PurposeTrader, CargoCapacity: 8000},
			{ID: "FGT-001", Purpose: gamedata.PurposeFighter, CargoCapacity: 10},
		},
	}
	r := engine.Analyze(empire)

	ls := r.Logistics
	assert.Equal(t, 3, ls.TotalShips)
	assert.Equal(t, 1, ls.Assigned)
	assert.Equal(t, 2, ls.Unassigned)
	assert.Equal(t, 48010, ls.CargoCapacity)
	assert.Equal(t, 1, ls.ByPurpose[gamedata.PurposeMiner])
	require.Len(t, ls.UnassignedList, 2)
	assert.Equal(t, "Lone Trader", ls.UnassignedList[0].Name)

	st := r.Stations["HUB-001"]
	require.NotNil(t, st)
	assert.Equal(t, 1, st.Ships.Miners)
	assert.Equal(t, 40000, st.Ships.MinerCargo)
}

func TestSortedWaresOrdersByTier(t *testing.T) {
	r := &Report{Wares: map[gamedata.WareID]*WareBalance{
		"hullparts":   {Ware: "hullparts", Name: "Hull Parts", Tier: gamedata.CategorizeWare("hullparts")},
		"ore":         {Ware: "ore", Name: "Ore", Tier: gamedata.CategorizeWare("ore")},
		"energycells": {Ware: "energycells", Name: "Energy Cells", Tier: gamedata.CategorizeWare("energycells")},
	}}
	sorted := r.SortedWares()
	require.Len(t, sorted, 3)
	assert.Equal(t, gamedata.WareID("ore"), sorted[0].Ware, "raw materials sort first")
}
