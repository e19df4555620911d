package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
)

// ChangeType classifies what happened to one ware between two saves.
type ChangeType int

const (
	ChangeDegraded ChangeType = iota // sorted first, it needs attention
	ChangeStopped
	ChangeImproved
	ChangeNew
	ChangeUnchanged
)

func (c ChangeType) String() string {
	switch c {
	case ChangeImproved:
		return "improved"
	case ChangeDegraded:
		return "degraded"
	case ChangeNew:
		return "new"
	case ChangeStopped:
		return "stopped"
	default:
		return "unchanged"
	}
}

// WareChange is the delta for one ware between two reports.
type WareChange struct {
	Ware gamedata.WareID
	Name string

	OldStatus Status
	NewStatus Status
	Change    ChangeType

	OldModules  int
	NewModules  int
	ModuleDelta int

	OldProduction  float64
	NewProduction  float64
	OldConsumption float64
	NewConsumption float64

	OldBalance   float64
	NewBalance   float64
	BalanceDelta float64
}

// StationChange records a station added, removed, or resized between saves.
// Stations are matched by name; save IDs are not stable across sessions.
type StationChange struct {
	Name        string
	Change      string // added, removed, modified
	OldModules  int
	NewModules  int
	ModuleDelta int
}

// Comparison is the full delta between two analyzed saves.
type Comparison struct {
	OldTime time.Time
	NewTime time.Time

	WaresCompared int
	Improved      int
	Degraded      int
	NewProduction int
	Stopped       int
	Unchanged     int

	StationsAdded   int
	StationsRemoved int
	ModulesDelta    int

	WareChanges    []WareChange // excludes unchanged wares
	StationChanges []StationChange
	Alerts         []string
}

// Compare diffs two reports, oldest first. Both must come from the same
// engine configuration for the statuses to be comparable.
func Compare(old, new *Report) *Comparison {
	cmp := &Comparison{OldTime: old.SaveTime, NewTime: new.SaveTime}

	ids := make(map[gamedata.WareID]bool)
	for id := range old.Wares {
		ids[id] = true
	}
	for id := range new.Wares {
		ids[id] = true
	}
	cmp.WaresCompared = len(ids)

	for id := range ids {
		change := compareWare(id, old.Wares[id], new.Wares[id])
		switch change.Change {
		case ChangeImproved:
			cmp.Improved++
		case ChangeDegraded:
			cmp.Degraded++
		case ChangeNew:
			cmp.NewProduction++
		case ChangeStopped:
			cmp.Stopped++
		default:
			cmp.Unchanged++
			continue
		}
		cmp.WareChanges = append(cmp.WareChanges, change)
	}

	compareStations(old, new, cmp)
	cmp.Alerts = buildAlerts(cmp)

	sort.SliceStable(cmp.WareChanges, func(i, j int) bool {
		if cmp.WareChanges[i].Change != cmp.WareChanges[j].Change {
			return cmp.WareChanges[i].Change < cmp.WareChanges[j].Change
		}
		return cmp.WareChanges[i].Name < cmp.WareChanges[j].Name
	})
	return cmp
}

func compareWare(id gamedata.WareID, old, new *WareBalance) WareChange {
	c := WareChange{Ware: id, Name: gamedata.WareName(id)}
	c.OldStatus, c.NewStatus = StatusNotProduced, StatusNotProduced

	if old != nil {
		c.Name = old.Name
		c.OldStatus = old.Status
		c.OldModules = old.ModuleCount
		c.OldProduction = old.Production
		c.OldConsumption = old.Consumption
	}
	if new != nil {
		c.Name = new.Name
		c.NewStatus = new.Status
		c.NewModules = new.ModuleCount
		c.NewProduction = new.Production
		c.NewConsumption = new.Consumption
	}

	c.ModuleDelta = c.NewModules - c.OldModules
	c.OldBalance = c.OldProduction - c.OldConsumption
	c.NewBalance = c.NewProduction - c.NewConsumption
	c.BalanceDelta = c.NewBalance - c.OldBalance
	c.Change = changeType(c)
	return c
}

func changeType(c WareChange) ChangeType {
	switch {
	case c.OldStatus == StatusNotProduced && c.NewModules > 0:
		return ChangeNew
	case c.NewStatus == StatusNotProduced && c.OldModules > 0:
		return ChangeStopped
	case c.OldStatus == c.NewStatus:
		return ChangeUnchanged
	case c.NewStatus.Rank() > c.OldStatus.Rank():
		return ChangeImproved
	case c.NewStatus.Rank() < c.OldStatus.Rank():
		return ChangeDegraded
	default:
		return ChangeUnchanged
	}
}

func compareStations(old, new *Report, cmp *Comparison) {
	oldByName := stationsByName(old)
	newByName := stationsByName(new)

	names := make(map[string]bool)
	for n := range oldByName {
		names[n] = true
	}
	for n := range newByName {
		names[n] = true
	}

	for name := range names {
		o, n := oldByName[name], newByName[name]
		switch {
		case o != nil && n == nil:
			cmp.StationsRemoved++
			cmp.ModulesDelta -= moduleLines(o)
			cmp.StationChanges = append(cmp.StationChanges, StationChange{
				Name: name, Change: "removed", OldModules: moduleLines(o),
			})
		case n != nil && o == nil:
			cmp.StationsAdded++
			cmp.ModulesDelta += moduleLines(n)
			cmp.StationChanges = append(cmp.StationChanges, StationChange{
				Name: name, Change: "added", NewModules: moduleLines(n),
			})
		default:
			delta := moduleLines(n) - moduleLines(o)
			if delta != 0 {
				cmp.ModulesDelta += delta
				cmp.StationChanges = append(cmp.StationChanges, StationChange{
					Name: name, Change: "modified",
					OldModules: moduleLines(o), NewModules: moduleLines(n), ModuleDelta: delta,
				})
			}
		}
	}
	sort.Slice(cmp.StationChanges, func(i, j int) bool {
		return cmp.StationChanges[i].Name < cmp.StationChanges[j].Name
	})
}

func stationsByName(r *Report) map[string]*StationSummary {
	out := make(map[string]*StationSummary, len(r.Stations))
	for _, s := range r.Stations {
		out[s.Name] = s
	}
	return out
}

func moduleLines(s *StationSummary) int {
	total := 0
	for _, m := range s.Modules {
		total += m.Count
	}
	return total
}

func buildAlerts(cmp *Comparison) []string {
	var alerts []string
	newShortages, resolved := 0, 0
	for _, c := range cmp.WareChanges {
		if c.Change == ChangeDegraded && c.NewStatus == StatusShortage {
			newShortages++
		}
		if c.Change == ChangeImproved && c.OldStatus == StatusShortage {
			resolved++
		}
	}
	if newShortages > 0 {
		alerts = append(alerts, fmt.Sprintf("%d ware(s) now in SHORTAGE", newShortages))
	}
	if resolved > 0 {
		alerts = append(alerts, fmt.Sprintf("%d shortage(s) resolved", resolved))
	}
	if cmp.StationsRemoved > 0 {
		alerts = append(alerts, fmt.Sprintf("%d station(s) removed", cmp.StationsRemoved))
	}
	if cmp.StationsAdded > 0 {
		alerts = append(alerts, fmt.Sprintf("%d new station(s)", cmp.StationsAdded))
	}
	if cmp.ModulesDelta > 10 {
		alerts = append(alerts, fmt.Sprintf("+%d production modules", cmp.ModulesDelta))
	} else if cmp.ModulesDelta < -10 {
		alerts = append(alerts, fmt.Sprintf("%d production modules", cmp.ModulesDelta))
	}
	return alerts
}
