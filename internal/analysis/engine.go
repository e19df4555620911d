package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/Zillatron27/x4-production-analyzer/internal/config"
	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
	"github.com/Zillatron27/x4-production-analyzer/internal/log"
	"github.com/Zillatron27/x4-production-analyzer/internal/save"
)

// Engine computes supply/demand rates for one empire snapshot. It holds
// only immutable inputs; every Analyze call derives a fresh report, nothing
// is cached across definition reloads.
type Engine struct {
	defs        *gamedata.Definitions
	thresholds  config.Thresholds
	estimate    bool
	defWarnings []string
}

// NewEngine builds an engine. A nil or empty definition table switches the
// whole run into stock-based estimate mode.
func NewEngine(defs *gamedata.Definitions, th config.Thresholds) *Engine {
	estimate := defs == nil || len(defs.Wares) == 0
	if estimate {
		log.Warn("Game definitions unavailable, falling back to stock-based estimates")
	}
	return &Engine{defs: defs, thresholds: th, estimate: estimate}
}

// EstimateMode reports whether rates come from stock proxies instead of
// recipe math.
func (e *Engine) EstimateMode() bool { return e.estimate }

// NoteDefinitionWarnings records recoverable definition-load failures so
// every report carries them in its diagnostics, next to the save parser's
// own notes.
func (e *Engine) NoteDefinitionWarnings(warnings []error) {
	for _, w := range warnings {
		e.defWarnings = append(e.defWarnings, w.Error())
	}
}

// Analyze consumes one parsed empire and produces the full report.
func (e *Engine) Analyze(empire *save.Empire) *Report {
	r := &Report{
		GeneratedAt:  time.Now(),
		SaveTime:     empire.Meta.Timestamp,
		PlayerName:   empire.Meta.PlayerName,
		EstimateMode: e.estimate,
		Wares:        make(map[gamedata.WareID]*WareBalance),
		Stations:     make(map[string]*StationSummary),
	}

	for _, st := range empire.Stations {
		r.Stations[st.ID] = e.analyzeStation(st, empire)
	}

	// Empire totals are summed straight from the modules, independently of
	// the station subtotals above, then cross-checked against them.
	e.aggregateEmpire(empire, r)
	e.crossCheck(r)

	e.classifyAll(r)
	e.aggregateLogistics(empire, r)
	e.analyzeMining(empire, r)

	r.Diagnostics = append(r.Diagnostics, e.defWarnings...)
	for _, note := range empire.Diagnostics.Notes {
		r.Diagnostics = append(r.Diagnostics, note)
	}
	if n := empire.Diagnostics.SkippedFragments; n > 0 {
		r.Diagnostics = append(r.Diagnostics, fmt.Sprintf("%d malformed save fragments skipped", n))
	}
	return r
}

// analyzeStation builds one station's summary with its own per-ware
// subtotals.
func (e *Engine) analyzeStation(st *save.Station, empire *save.Empire) *StationSummary {
	sum := &StationSummary{
		ID:          st.ID,
		Name:        st.Name,
		Sector:      st.Sector,
		Type:        st.Type.String(),
		Production:  make(map[gamedata.WareID]float64),
		Consumption: make(map[gamedata.WareID]float64),
	}

	for _, mod := range st.Modules {
		ms := ModuleSummary{
			Macro:    mod.Macro,
			Ware:     mod.Ware,
			WareName: gamedata.WareName(mod.Ware),
			Count:    mod.Count,
		}
		if def, method := e.recipe(mod.Ware); method != nil {
			ms.WareName = def.Name
			ms.Rate = float64(mod.Count) * method.UnitsPerHour()
			sum.Production[mod.Ware] += ms.Rate
			for _, in := range method.Inputs {
				sum.Consumption[in.Ware] += float64(mod.Count) * method.InputPerHour(in.Ware)
			}
		} else {
			// Unknown recipe: fall back to the station's sell offer as a
			// throughput proxy. Degraded, not an error.
			ms.Estimated = true
			ms.Rate = estimateFromTrades(st, mod.Ware, save.TradeSell)
			sum.Production[mod.Ware] += ms.Rate
		}
		sum.Modules = append(sum.Modules, ms)
	}

	// Demand-driven stations consume whatever their buy offers ask for;
	// recipe math does not apply to shipyards and docks. Without recipes
	// the same proxy is all we have for producers too.
	if st.Type != save.StationProduction || e.estimate {
		for _, tr := range st.Trades {
			if tr.Direction == save.TradeBuy {
				sum.Consumption[tr.Ware] += tradeDemand(tr)
			}
		}
	}

	sum.Ships = countShips(empire.ShipsFor(st.ID), e.defs)
	return sum
}

// aggregateEmpire sums production and consumption per ware across every
// retained station, directly from the module records.
func (e *Engine) aggregateEmpire(empire *save.Empire, r *Report) {
	for _, st := range empire.Stations {
		for _, mod := range st.Modules {
			wb := e.balance(r, mod.Ware)
			wb.ModuleCount += mod.Count
			if _, method := e.recipe(mod.Ware); method != nil {
				wb.Production += float64(mod.Count) * method.UnitsPerHour()
				for _, in := range method.Inputs {
					inb := e.balance(r, in.Ware)
					inb.Consumption += float64(mod.Count) * method.InputPerHour(in.Ware)
					addUnique(&inb.Consumers, st.ID)
				}
			} else {
				wb.Estimated = true
				wb.Production += estimateFromTrades(st, mod.Ware, save.TradeSell)
			}
			addUnique(&wb.Producers, st.ID)
		}
		if st.Type != save.StationProduction || e.estimate {
			for _, tr := range st.Trades {
				if tr.Direction != save.TradeBuy {
					continue
				}
				wb := e.balance(r, tr.Ware)
				wb.Consumption += tradeDemand(tr)
				wb.Estimated = true
				addUnique(&wb.Consumers, st.ID)
			}
		}
	}
}

// crossCheck verifies the empire totals against the independently computed
// station subtotals. A mismatch is a bug in one of the two paths; it is
// reported, not silently reconciled.
func (e *Engine) crossCheck(r *Report) {
	prod := make(map[gamedata.WareID]float64)
	cons := make(map[gamedata.WareID]float64)
	for _, st := range r.Stations {
		for w, v := range st.Production {
			prod[w] += v
		}
		for w, v := range st.Consumption {
			cons[w] += v
		}
	}
	for id, wb := range r.Wares {
		if !closeEnough(wb.Production, prod[id]) || !closeEnough(wb.Consumption, cons[id]) {
			note := fmt.Sprintf("aggregation mismatch for %s: empire %.1f/%.1f vs stations %.1f/%.1f",
				id, wb.Production, wb.Consumption, prod[id], cons[id])
			r.Diagnostics = append(r.Diagnostics, note)
			log.Error("Aggregation cross-check failed", "ware", id,
				"empireProd", wb.Production, "stationProd", prod[id])
		}
	}
}

func (e *Engine) classifyAll(r *Report) {
	for _, wb := range r.Wares {
		wb.Net = wb.Production - wb.Consumption
		wb.Status, wb.Ratio = e.classify(wb.Production, wb.Consumption)
		wb.Marginal = wb.Production > 0 && wb.Net > 0 &&
			wb.Net < e.thresholds.MarginalBuffer*wb.Production
		if e.estimate {
			wb.Estimated = true
		}
	}
}

// classify applies the ratio thresholds. The band between surplus and
// shortage is inclusive on both ends.
func (e *Engine) classify(prod, cons float64) (Status, float64) {
	if prod <= 0 {
		if cons > 0 {
			return StatusNotProduced, 0
		}
		return StatusBalanced, 0
	}
	ratio := cons / prod
	switch {
	case cons == 0:
		return StatusNoDemand, ratio
	case ratio < e.thresholds.SurplusBelow:
		return StatusSurplus, ratio
	case ratio > e.thresholds.ShortageAbove:
		return StatusShortage, ratio
	default:
		return StatusBalanced, ratio
	}
}

func (e *Engine) aggregateLogistics(empire *save.Empire, r *Report) {
	ls := LogisticsSummary{ByPurpose: make(map[gamedata.ShipPurpose]int)}
	for _, sh := range empire.Ships {
		ls.TotalShips++
		ls.ByPurpose[sh.Purpose]++
		ls.CargoCapacity += e.shipCargo(sh)
		if sh.StationID == "" {
			ls.Unassigned++
			ls.UnassignedList = append(ls.UnassignedList, UnassignedShip{
				ID:      sh.ID,
				Name:    sh.Name,
				Purpose: sh.Purpose,
				Cargo:   e.shipCargo(sh),
			})
		} else {
			ls.Assigned++
		}
	}
	r.Logistics = ls
}

// analyzeMining grades assigned-miner cargo capacity against raw-material
// consumption. This is a coarse heuristic: cargo capacity stands in for
// throughput, which it only loosely tracks.
func (e *Engine) analyzeMining(empire *save.Empire, r *Report) {
	for _, wb := range r.Wares {
		if !gamedata.IsRawMaterial(wb.Ware) || wb.Consumption <= 0 {
			continue
		}
		var count, cargo int
		for _, stID := range wb.Consumers {
			for _, sh := range empire.ShipsFor(stID) {
				if sh.Purpose == gamedata.PurposeMiner {
					count++
					cargo += e.shipCargo(sh)
				}
			}
		}
		ratio := float64(cargo) / wb.Consumption
		coverage := MiningInsufficient
		switch {
		case ratio >= e.thresholds.MiningSufficient:
			coverage = MiningSufficient
		case ratio >= e.thresholds.MiningMarginal:
			coverage = MiningMarginal
		}
		r.Mining = append(r.Mining, MiningReport{
			Ware:        wb.Ware,
			Name:        wb.Name,
			Consumption: wb.Consumption,
			MinerCount:  count,
			MinerCargo:  cargo,
			Coverage:    coverage,
		})
	}
}

// recipe resolves a ware's default production method, nil when definitions
// are unavailable or the ware is unknown.
func (e *Engine) recipe(id gamedata.WareID) (*gamedata.WareDefinition, *gamedata.ProductionMethod) {
	if e.estimate || id == "" {
		return nil, nil
	}
	def, ok := e.defs.Ware(id)
	if !ok {
		return nil, nil
	}
	return def, def.DefaultMethod()
}

// balance fetches or creates the empire-wide entry for a ware.
func (e *Engine) balance(r *Report, id gamedata.WareID) *WareBalance {
	if wb, ok := r.Wares[id]; ok {
		return wb
	}
	wb := &WareBalance{
		Ware: id,
		Name: gamedata.WareName(id),
		Tier: gamedata.CategorizeWare(id),
	}
	if def, ok := e.lookupWare(id); ok && def.Name != "" {
		wb.Name = def.Name
	}
	r.Wares[id] = wb
	return wb
}

func (e *Engine) lookupWare(id gamedata.WareID) (*gamedata.WareDefinition, bool) {
	if e.defs == nil {
		return nil, false
	}
	return e.defs.Ware(id)
}

func (e *Engine) shipCargo(sh *save.Ship) int {
	if sh.CargoCapacity > 0 {
		return sh.CargoCapacity
	}
	if e.defs != nil {
		if def, ok := e.defs.Ship(sh.Macro); ok {
			return def.CargoCapacity
		}
	}
	return 0
}

// tradeDemand is one buy offer's demand proxy: the desired restock
// quantity, or the standing order amount when the save carries no desired
// figure.
func tradeDemand(tr save.TradeOrder) float64 {
	if tr.Desired > 0 {
		return float64(tr.Desired)
	}
	return float64(tr.Amount)
}

// estimateFromTrades proxies a rate from a station's standing offers: the
// desired restock quantity per hour. Crude, but it is the only signal a
// single snapshot carries without recipes.
func estimateFromTrades(st *save.Station, ware gamedata.WareID, dir save.TradeDirection) float64 {
	var total float64
	for _, tr := range st.Trades {
		if tr.Ware == ware && tr.Direction == dir {
			total += float64(tr.Desired)
		}
	}
	return total
}

func countShips(ships []*save.Ship, defs *gamedata.Definitions) ShipCounts {
	var c ShipCounts
	for _, sh := range ships {
		c.Total++
		cargo := sh.CargoCapacity
		if cargo == 0 && defs != nil {
			if def, ok := defs.Ship(sh.Macro); ok {
				cargo = def.CargoCapacity
			}
		}
		c.CargoTotal += cargo
		switch sh.Purpose {
		case gamedata.PurposeTrader:
			c.Traders++
		case gamedata.PurposeMiner:
			c.Miners++
			c.MinerCargo += cargo
		case gamedata.PurposeBuilder:
			c.Builders++
		case gamedata.PurposeFighter:
			c.Fighters++
		case gamedata.PurposeAuxiliary:
			c.Auxiliary++
		default:
			c.Other++
		}
	}
	return c
}

func addUnique(list *[]string, id string) {
	for _, v := range *list {
		if v == id {
			return
		}
	}
	*list = append(*list, id)
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < 1e-6*(1+math.Abs(a)+math.Abs(b))
}
