package analysis

import (
	"fmt"
	"math"

	"github.com/Zillatron27/x4-production-analyzer/internal/config"
	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
)

// InputStatus grades one input ware's headroom for a planned expansion.
type InputStatus int

const (
	InputInsufficient InputStatus = iota
	InputMarginal
	InputSufficient
)

func (s InputStatus) String() string {
	switch s {
	case InputSufficient:
		return "sufficient"
	case InputMarginal:
		return "marginal"
	default:
		return "insufficient"
	}
}

// InputRequirement is the effect of a planned expansion on one input ware.
type InputRequirement struct {
	Ware             gamedata.WareID
	Name             string
	CurrentDemand    float64 // units/hr consumed empire-wide today
	NewDemand        float64 // after the expansion
	DeltaDemand      float64
	Production       float64 // what the empire makes of it today
	NetAvailable     float64 // production minus current demand
	SurplusOrDeficit float64 // headroom after the expansion, negative = deficit
	Status           InputStatus
}

// SolutionKind names the ways a bottleneck can be resolved.
type SolutionKind int

const (
	SolutionExpandProduction SolutionKind = iota
	SolutionAssignMiners
	SolutionPurchaseMarket
)

// Solution is one concrete way to close a supply deficit.
type Solution struct {
	Kind           SolutionKind
	Description    string
	ModulesNeeded  int
	MinersNeeded   int
	Feasible       bool
	BlockingIssues []string
}

// Severity grades a bottleneck by how much of the needed supply is missing.
type Severity int

const (
	SeverityMedium Severity = iota
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	default:
		return "medium"
	}
}

// Bottleneck is an input deficit that blocks an expansion, with ranked
// solutions attached.
type Bottleneck struct {
	Ware        gamedata.WareID
	Name        string
	Deficit     float64 // units/hr
	Severity    Severity
	Solutions   []Solution
	Recommended *Solution
}

// ExpansionPlan is the full impact analysis of adding production modules
// for one ware.
type ExpansionPlan struct {
	Ware            gamedata.WareID
	Name            string
	CurrentModules  int
	PlannedModules  int
	CurrentRate     float64
	PlannedRate     float64
	IncreaseAmount  float64
	IncreasePercent float64

	Inputs          []InputRequirement
	Bottlenecks     []Bottleneck
	Recommendations []string
	Feasible        bool
}

// Planner answers "what happens if I add N modules of ware X". It works
// off a finished report; it never re-parses the save.
type Planner struct {
	defs *gamedata.Definitions
	th   config.Thresholds
}

func NewPlanner(defs *gamedata.Definitions, th config.Thresholds) *Planner {
	return &Planner{defs: defs, th: th}
}

// Plan computes the impact of adding modules for the given ware. The ware
// must be producible per the definitions; expansion planning has no
// estimate mode.
func (p *Planner) Plan(r *Report, ware gamedata.WareID, additionalModules int) (*ExpansionPlan, error) {
	wb, ok := r.Wares[ware]
	if !ok {
		return nil, fmt.Errorf("no production data for %q in this empire", ware)
	}
	def, method := p.producible(ware)
	if method == nil {
		return nil, fmt.Errorf("no production recipe for %q", ware)
	}

	moduleRate := method.UnitsPerHour()
	currentRate := wb.Production
	increase := float64(additionalModules) * moduleRate
	increasePct := 100.0
	if currentRate > 0 {
		increasePct = increase / currentRate * 100
	}

	plan := &ExpansionPlan{
		Ware:            ware,
		Name:            def.Name,
		CurrentModules:  wb.ModuleCount,
		PlannedModules:  wb.ModuleCount + additionalModules,
		CurrentRate:     currentRate,
		PlannedRate:     currentRate + increase,
		IncreaseAmount:  increase,
		IncreasePercent: increasePct,
	}

	for _, in := range method.Inputs {
		req := p.analyzeInput(r, in.Ware, additionalModules, method)
		plan.Inputs = append(plan.Inputs, req)
		if req.Status == InputInsufficient {
			plan.Bottlenecks = append(plan.Bottlenecks,
				p.buildBottleneck(r, in.Ware, -req.SurplusOrDeficit))
		}
	}

	plan.Feasible = len(plan.Bottlenecks) == 0
	plan.Recommendations = p.recommendations(plan, additionalModules)
	return plan, nil
}

// Remediate ranks solutions for a ware that is already short, using the
// same machinery the impact analysis applies to prospective deficits. The
// second return is false when the ware has no deficit to close.
func (p *Planner) Remediate(r *Report, ware gamedata.WareID) (Bottleneck, bool) {
	wb, ok := r.Wares[ware]
	if !ok {
		return Bottleneck{}, false
	}
	deficit := wb.Consumption - wb.Production
	if deficit <= 0 {
		return Bottleneck{}, false
	}
	return p.buildBottleneck(r, ware, deficit), true
}

func (p *Planner) analyzeInput(r *Report, ware gamedata.WareID, modules int, method *gamedata.ProductionMethod) InputRequirement {
	delta := float64(modules) * method.InputPerHour(ware)

	var demand, production float64
	if wb, ok := r.Wares[ware]; ok {
		demand = wb.Consumption
		production = wb.Production
	}
	net := production - demand
	headroom := net - delta

	status := InputSufficient
	switch {
	case headroom < 0:
		status = InputInsufficient
	case headroom < delta*p.th.MarginalBuffer:
		status = InputMarginal
	}

	return InputRequirement{
		Ware:             ware,
		Name:             gamedata.WareName(ware),
		CurrentDemand:    demand,
		NewDemand:        demand + delta,
		DeltaDemand:      delta,
		Production:       production,
		NetAvailable:     net,
		SurplusOrDeficit: headroom,
		Status:           status,
	}
}

func (p *Planner) buildBottleneck(r *Report, ware gamedata.WareID, deficit float64) Bottleneck {
	name := gamedata.WareName(ware)
	var production float64
	if wb, ok := r.Wares[ware]; ok {
		production = wb.Production
	}

	// Severity is the deficit's share of total needed supply.
	totalNeeded := production + deficit
	deficitPct := 100.0
	if totalNeeded > 0 {
		deficitPct = deficit / totalNeeded * 100
	}
	severity := SeverityMedium
	switch {
	case deficitPct > 50:
		severity = SeverityCritical
	case deficitPct > 20:
		severity = SeverityHigh
	}

	b := Bottleneck{Ware: ware, Name: name, Deficit: deficit, Severity: severity}

	if def, method := p.producible(ware); method != nil {
		b.Name = def.Name
		moduleRate := method.UnitsPerHour()
		needed := 1
		if moduleRate > 0 {
			needed = int(math.Ceil(deficit / moduleRate))
		}
		// Would expanding this ware just push the deficit upstream?
		var blocking []string
		for _, in := range method.Inputs {
			if wb, ok := r.Wares[in.Ware]; ok {
				available := wb.Production - wb.Consumption
				required := float64(needed) * method.InputPerHour(in.Ware)
				if available < required {
					blocking = append(blocking, fmt.Sprintf("%s also needs expansion", gamedata.WareName(in.Ware)))
				}
			}
		}
		b.Solutions = append(b.Solutions, Solution{
			Kind:           SolutionExpandProduction,
			Description:    fmt.Sprintf("Add %d %s production module%s", needed, b.Name, plural(needed)),
			ModulesNeeded:  needed,
			Feasible:       len(blocking) == 0,
			BlockingIssues: blocking,
		})
	}

	if gamedata.IsRawMaterial(ware) {
		miners := int(math.Ceil(deficit / p.th.MinerRate))
		b.Solutions = append(b.Solutions, Solution{
			Kind:           SolutionAssignMiners,
			Description:    fmt.Sprintf("Assign %d additional miner%s for %s", miners, plural(miners), b.Name),
			MinersNeeded:   miners,
			Feasible:       true,
			BlockingIssues: []string{"Requires available miners in fleet"},
		})
	}

	b.Solutions = append(b.Solutions, Solution{
		Kind:           SolutionPurchaseMarket,
		Description:    fmt.Sprintf("Purchase ~%d/hr from NPC stations", int(deficit)),
		Feasible:       true,
		BlockingIssues: []string{"Ongoing cost - not self-sufficient"},
	})

	b.Recommended = recommendSolution(b.Solutions)
	return b
}

// recommendSolution ranks: feasible expansion, then miners, then infeasible
// expansion (still better long-term than buying), then the market.
func recommendSolution(solutions []Solution) *Solution {
	for i := range solutions {
		if solutions[i].Kind == SolutionExpandProduction && solutions[i].Feasible {
			return &solutions[i]
		}
	}
	for i := range solutions {
		if solutions[i].Kind == SolutionAssignMiners {
			return &solutions[i]
		}
	}
	for i := range solutions {
		if solutions[i].Kind == SolutionExpandProduction {
			return &solutions[i]
		}
	}
	for i := range solutions {
		if solutions[i].Kind == SolutionPurchaseMarket {
			return &solutions[i]
		}
	}
	return nil
}

func (p *Planner) recommendations(plan *ExpansionPlan, modules int) []string {
	var out []string
	if len(plan.Bottlenecks) == 0 {
		out = append(out,
			"Expansion is feasible - all input requirements can be met",
			fmt.Sprintf("You can safely add %d %s module%s", modules, plan.Name, plural(modules)))
	} else {
		out = append(out, fmt.Sprintf("%d bottleneck%s must be resolved first:",
			len(plan.Bottlenecks), plural(len(plan.Bottlenecks))))
		for _, b := range plan.Bottlenecks {
			if b.Recommended == nil {
				continue
			}
			out = append(out, fmt.Sprintf("  %s: %s", b.Name, b.Recommended.Description))
			if !b.Recommended.Feasible {
				for _, issue := range b.Recommended.BlockingIssues {
					out = append(out, fmt.Sprintf("    (Note: %s)", issue))
				}
			}
		}
	}
	var marginal []InputRequirement
	for _, req := range plan.Inputs {
		if req.Status == InputMarginal {
			marginal = append(marginal, req)
		}
	}
	if len(marginal) > 0 {
		out = append(out, "", "Marginal supplies (tight buffer):")
		for _, req := range marginal {
			out = append(out, fmt.Sprintf("  %s: only %.0f/hr surplus after expansion", req.Name, req.SurplusOrDeficit))
		}
	}
	return out
}

func (p *Planner) producible(ware gamedata.WareID) (*gamedata.WareDefinition, *gamedata.ProductionMethod) {
	if p.defs == nil {
		return nil, nil
	}
	def, ok := p.defs.Ware(ware)
	if !ok {
		return nil, nil
	}
	return def, def.DefaultMethod()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
