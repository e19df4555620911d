package save

import (
	"time"

	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
)

// TradeDirection says which side of a trade offer a station is on.
type TradeDirection int

const (
	TradeBuy TradeDirection = iota
	TradeSell
)

func (d TradeDirection) String() string {
	if d == TradeSell {
		return "sell"
	}
	return "buy"
}

// TradeOrder is a standing buy or sell offer on a station. Buy offers
// approximate variable consumption (shipyards, habitats) where recipe math
// does not apply.
type TradeOrder struct {
	Ware      gamedata.WareID
	Direction TradeDirection
	Amount    int
	Desired   int
}

// Module is an aggregated production module line on a station: Count
// identical modules sharing one macro. Non-production modules are never
// materialized as Module records.
type Module struct {
	Macro string
	Ware  gamedata.WareID // derived from the macro name
	Count int
}

// StationType distinguishes recipe-driven producers from stations whose
// consumption is demand-driven.
type StationType int

const (
	StationProduction StationType = iota
	StationWharf
	StationShipyard
	StationEquipmentDock
	StationDefence
)

func (t StationType) String() string {
	switch t {
	case StationWharf:
		return "wharf"
	case StationShipyard:
		return "shipyard"
	case StationEquipmentDock:
		return "equipmentdock"
	case StationDefence:
		return "defence"
	default:
		return "production"
	}
}

// Station is a player-owned station as found in the save. Ships are
// referenced by ID only; the association is resolved through an index after
// the stream completes, never by object links.
type Station struct {
	ID     string
	Name   string
	Sector string // may be empty; saves do not always carry it
	Type   StationType

	Modules []Module
	Trades  []TradeOrder

	// SubordinateConnIDs are the station's "subordinates" connection IDs.
	// A ship whose commander reference matches one of these is assigned
	// to this station.
	SubordinateConnIDs []string

	// ShipIDs is filled by the assignment index once the stream is done.
	ShipIDs []string
}

// Ship is a player-owned ship record.
type Ship struct {
	ID            string
	Name          string
	Macro         string
	Class         string // ship_xs .. ship_xl
	Purpose       gamedata.ShipPurpose
	PurposeTag    string // raw purpose attribute from the save
	CargoCapacity int

	// CommanderRef is the connection ID of this ship's commander, if any.
	// It matches a station's subordinates connection when the ship is
	// assigned to that station.
	CommanderRef string

	// StationID is resolved through the assignment index; empty means
	// unassigned.
	StationID string
}

// Meta is the save document's bookkeeping header.
type Meta struct {
	Timestamp  time.Time
	PlayerName string
}

// Record is one typed entity emitted by the stream.
type Record interface{ record() }

// StationRecord is emitted when a player station's component closes.
type StationRecord struct{ Station *Station }

// ShipRecord is emitted when a player ship's component closes.
type ShipRecord struct{ Ship *Ship }

// MetaRecord is emitted once, as soon as the save header has been seen.
type MetaRecord struct{ Meta Meta }

func (StationRecord) record() {}
func (ShipRecord) record()    {}
func (MetaRecord) record()    {}

// Diagnostics accumulates recoverable problems found while streaming.
// They ride along with the results instead of aborting the run.
type Diagnostics struct {
	SkippedFragments int
	Notes            []string
}

// Empire is the fully assembled view of one save: every retained record
// plus the resolved ship-station assignments.
type Empire struct {
	Meta        Meta
	Stations    []*Station
	Ships       []*Ship
	Diagnostics Diagnostics
}

// ShipsFor returns the ships assigned to the given station.
func (e *Empire) ShipsFor(stationID string) []*Ship {
	var out []*Ship
	for _, s := range e.Ships {
		if s.StationID == stationID {
			out = append(out, s)
		}
	}
	return out
}

// UnassignedShips returns player ships with no station assignment.
func (e *Empire) UnassignedShips() []*Ship {
	var out []*Ship
	for _, s := range e.Ships {
		if s.StationID == "" {
			out = append(out, s)
		}
	}
	return out
}
