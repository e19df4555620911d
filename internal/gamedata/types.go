package gamedata

import "strings"

// WareID identifies a ware in game definition files and save data.
// X4 ware identifiers are lowercase without separators ("energycells",
// "refinedmetals"); NormalizeWareID folds any loosely formatted input
// into that form so lookups never depend on source formatting.
type WareID string

// NormalizeWareID folds an identifier from any source (macro names, trade
// entries, user input) into canonical ware ID form.
func NormalizeWareID(s string) WareID {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	return WareID(s)
}

// RecipeInput is one input ware consumed per production cycle.
type RecipeInput struct {
	Ware   WareID
	Amount int
}

// ProductionMethod is one way of producing a ware. Most wares have a single
// "default" method; some have race-specific variants with different inputs.
type ProductionMethod struct {
	ID        string
	CycleTime float64 // seconds per cycle
	Amount    int     // units produced per cycle
	Inputs    []RecipeInput
}

// UnitsPerHour is the output rate of a single module running this method.
func (m ProductionMethod) UnitsPerHour() float64 {
	if m.CycleTime <= 0 {
		return 0
	}
	return float64(m.Amount) * 3600 / m.CycleTime
}

// InputPerHour is the hourly consumption of one input ware by a single
// module running this method. Returns 0 for wares the method does not use.
func (m ProductionMethod) InputPerHour(ware WareID) float64 {
	if m.CycleTime <= 0 {
		return 0
	}
	for _, in := range m.Inputs {
		if in.Ware == ware {
			return float64(in.Amount) * 3600 / m.CycleTime
		}
	}
	return 0
}

// WareDefinition is the static definition of a ware from libraries/wares.xml.
// Immutable once loaded.
type WareDefinition struct {
	ID        WareID
	Name      string
	Tier      Tier
	Transport string // container, solid, liquid
	Volume    int
	PriceMin  int
	PriceAvg  int
	PriceMax  int
	Methods   []ProductionMethod
}

// DefaultMethod returns the "default" production method, falling back to the
// first listed one. Nil when the ware is not producible.
func (w *WareDefinition) DefaultMethod() *ProductionMethod {
	for i := range w.Methods {
		if w.Methods[i].ID == "default" {
			return &w.Methods[i]
		}
	}
	if len(w.Methods) > 0 {
		return &w.Methods[0]
	}
	return nil
}

// ShipPurpose is a closed classification of what a ship is for. Save data
// carries open-ended purpose tags; anything we cannot map stays Unrecognized
// instead of breaking matching logic when new game content appears.
type ShipPurpose int

const (
	PurposeUnrecognized ShipPurpose = iota
	PurposeTrader
	PurposeMiner
	PurposeBuilder
	PurposeFighter
	PurposeAuxiliary
)

func (p ShipPurpose) String() string {
	switch p {
	case PurposeTrader:
		return "trader"
	case PurposeMiner:
		return "miner"
	case PurposeBuilder:
		return "builder"
	case PurposeFighter:
		return "fighter"
	case PurposeAuxiliary:
		return "auxiliary"
	default:
		return "unrecognized"
	}
}

// ClassifyShip maps a ship's purpose attribute and macro name to a purpose.
// The purpose attribute is checked first; the macro is a fallback for saves
// where the attribute is absent.
func ClassifyShip(purpose, macro string) ShipPurpose {
	purpose = strings.ToLower(purpose)
	macro = strings.ToLower(macro)

	switch {
	case strings.Contains(purpose, "trade"):
		return PurposeTrader
	case strings.Contains(purpose, "mine"):
		return PurposeMiner
	case strings.Contains(purpose, "build"):
		return PurposeBuilder
	case strings.Contains(purpose, "fight"):
		return PurposeFighter
	case strings.Contains(purpose, "auxiliary"):
		return PurposeAuxiliary
	}

	switch {
	case strings.Contains(macro, "trans"), strings.Contains(macro, "freighter"), strings.Contains(macro, "hauler"):
		return PurposeTrader
	case strings.Contains(macro, "miner"), strings.Contains(macro, "mining"):
		return PurposeMiner
	case strings.Contains(macro, "builder"), strings.Contains(macro, "construct"):
		return PurposeBuilder
	case strings.Contains(macro, "fighter"), strings.Contains(macro, "corvette"), strings.Contains(macro, "frigate"),
		strings.Contains(macro, "destroyer"), strings.Contains(macro, "carrier"), strings.Contains(macro, "battleship"):
		return PurposeFighter
	case strings.Contains(macro, "resupplier"), strings.Contains(macro, "auxiliary"):
		return PurposeAuxiliary
	}

	return PurposeUnrecognized
}

// ShipDefinition is the static definition of a ship macro. Immutable.
type ShipDefinition struct {
	Macro         string
	Class         string // ship_s, ship_m, ship_l, ship_xl
	Purpose       ShipPurpose
	CargoCapacity int
	CargoTags     string // solid, liquid, container
	StorageMacro  string
	Race          string
}

// Definitions bundles the lookup tables built by the loader. Both maps are
// read-only after Load returns.
type Definitions struct {
	Wares map[WareID]*WareDefinition
	Ships map[string]*ShipDefinition
}

// Ware resolves a ware ID through the validated lookup table. The ok result
// distinguishes unknown wares from zero values.
func (d *Definitions) Ware(id WareID) (*WareDefinition, bool) {
	if d == nil {
		return nil, false
	}
	w, ok := d.Wares[id]
	return w, ok
}

// Ship resolves a ship macro. Macro names in saves sometimes carry a
// trailing "_macro" suffix that definition tables omit; try both.
func (d *Definitions) Ship(macro string) (*ShipDefinition, bool) {
	if d == nil {
		return nil, false
	}
	if s, ok := d.Ships[macro]; ok {
		return s, true
	}
	s, ok := d.Ships[strings.TrimSuffix(macro, "_macro")]
	return s, ok
}
