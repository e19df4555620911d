// Package analysis turns parsed save entities and game definitions into
// supply/demand figures. All rate math lives here; the report itself is a
// plain data structure that renderers consume without recomputing anything.
package analysis

import (
	"sort"
	"time"

	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
)

// Status classifies one ware's empire-wide supply situation.
type Status int

const (
	StatusNotProduced Status = iota // consumed but nothing makes it
	StatusShortage
	StatusNoDemand // produced but nothing consumes it
	StatusBalanced
	StatusSurplus
)

func (s Status) String() string {
	switch s {
	case StatusSurplus:
		return "Surplus"
	case StatusBalanced:
		return "Balanced"
	case StatusNoDemand:
		return "No Demand"
	case StatusShortage:
		return "Shortage"
	default:
		return "Not Produced"
	}
}

// ParseStatus is the inverse of Status.String, for rebuilding reports from
// stored snapshot rows. Unknown strings map to NotProduced.
func ParseStatus(s string) Status {
	switch s {
	case "Surplus":
		return StatusSurplus
	case "Balanced":
		return StatusBalanced
	case "No Demand":
		return StatusNoDemand
	case "Shortage":
		return StatusShortage
	default:
		return StatusNotProduced
	}
}

// Rank orders statuses from worst to best, for sorting and for comparing
// two snapshots of the same ware.
func (s Status) Rank() int {
	switch s {
	case StatusSurplus:
		return 3
	case StatusBalanced:
		return 2
	case StatusNoDemand:
		return 1
	case StatusShortage:
		return 0
	default:
		return -1
	}
}

// WareBalance is the empire-wide supply/demand picture for one ware.
type WareBalance struct {
	Ware gamedata.WareID
	Name string
	Tier gamedata.Tier

	Production  float64 // units/hour
	Consumption float64 // units/hour
	Net         float64
	Ratio       float64 // consumption / production, 0 when undefined
	Status      Status

	// Estimated marks figures derived from stock proxies instead of
	// recipe math. Renderers must show these as approximations.
	Estimated bool
	// Marginal marks a surplus thinner than the configured buffer.
	Marginal bool

	ModuleCount int
	Producers   []string // station IDs
	Consumers   []string
}

// ModuleSummary is one aggregated production line on a station.
type ModuleSummary struct {
	Macro     string
	Ware      gamedata.WareID
	WareName  string
	Count     int
	Rate      float64 // units/hour, all modules of this line combined
	Estimated bool
}

// ShipCounts buckets a station's assigned ships by purpose.
type ShipCounts struct {
	Traders    int
	Miners     int
	Builders   int
	Fighters   int
	Auxiliary  int
	Other      int
	Total      int
	CargoTotal int
	MinerCargo int
}

// StationSummary is the per-station breakdown.
type StationSummary struct {
	ID     string
	Name   string
	Sector string
	Type   string

	Modules []ModuleSummary
	// Production and Consumption are this station's per-ware subtotals,
	// computed independently of the empire totals.
	Production  map[gamedata.WareID]float64
	Consumption map[gamedata.WareID]float64

	Ships ShipCounts
}

// LogisticsSummary is the empire-wide ship picture. Purely additive.
type LogisticsSummary struct {
	TotalShips     int
	Assigned       int
	Unassigned     int
	ByPurpose      map[gamedata.ShipPurpose]int
	CargoCapacity  int
	UnassignedList []UnassignedShip
}

// UnassignedShip is a ship with no commander, a candidate for assignment.
type UnassignedShip struct {
	ID      string
	Name    string
	Purpose gamedata.ShipPurpose
	Cargo   int
}

// MiningCoverage grades miner capacity against raw-material demand.
type MiningCoverage int

const (
	MiningInsufficient MiningCoverage = iota
	MiningMarginal
	MiningSufficient
)

func (m MiningCoverage) String() string {
	switch m {
	case MiningSufficient:
		return "Sufficient"
	case MiningMarginal:
		return "Marginal"
	default:
		return "Insufficient"
	}
}

// MiningReport covers one raw-material ware. The grading compares assigned
// miner cargo capacity against hourly consumption; it is a rough heuristic,
// not a throughput simulation.
type MiningReport struct {
	Ware        gamedata.WareID
	Name        string
	Consumption float64
	MinerCount  int
	MinerCargo  int
	Coverage    MiningCoverage
}

// Report is the complete analysis of one save. It carries no behavior
// beyond sorted accessors; renderers and exporters read it as-is.
type Report struct {
	GeneratedAt time.Time
	SaveTime    time.Time
	PlayerName  string

	// EstimateMode is set when game definitions were unavailable and
	// every rate in the report is a stock-based estimate.
	EstimateMode bool

	Wares     map[gamedata.WareID]*WareBalance
	Stations  map[string]*StationSummary
	Logistics LogisticsSummary
	Mining    []MiningReport

	Diagnostics []string
}

// SortedWares returns balances ordered by tier (raw first), then name.
func (r *Report) SortedWares() []*WareBalance {
	out := make([]*WareBalance, 0, len(r.Wares))
	for _, w := range r.Wares {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SortedStations returns station summaries ordered by name.
func (r *Report) SortedStations() []*StationSummary {
	out := make([]*StationSummary, 0, len(r.Stations))
	for _, s := range r.Stations {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Shortages returns wares in shortage or not produced at all, worst first.
func (r *Report) Shortages() []*WareBalance {
	var out []*WareBalance
	for _, w := range r.SortedWares() {
		if w.Status == StatusShortage || w.Status == StatusNotProduced {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Status.Rank() < out[j].Status.Rank()
	})
	return out
}
