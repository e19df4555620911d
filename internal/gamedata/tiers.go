package gamedata

import "strings"

// Tier is a ware's position in the production chain.
type Tier int

const (
	TierUncategorized Tier = iota
	TierRaw
	Tier1
	Tier2
	Tier3
)

func (t Tier) String() string {
	switch t {
	case TierRaw:
		return "Raw Materials"
	case Tier1:
		return "Tier 1 - Processed"
	case Tier2:
		return "Tier 2 - Components"
	case Tier3:
		return "Tier 3 - Advanced"
	default:
		return "Uncategorized"
	}
}

type wareEntry struct {
	name string
	tier Tier
}

// wareTable is the static ware catalog keyed by normalized ware ID.
// It covers the base-game production chain; wares added by DLC or mods that
// are missing here categorize as Uncategorized rather than being dropped.
var wareTable = map[WareID]wareEntry{
	// Raw materials, mined or collected
	"helium":   {"Helium", TierRaw},
	"hydrogen": {"Hydrogen", TierRaw},
	"ice":      {"Ice", TierRaw},
	"methane":  {"Methane", TierRaw},
	"ore":      {"Ore", TierRaw},
	"rawscrap": {"Raw Scrap", TierRaw},
	"silicon":  {"Silicon", TierRaw},
	"nividium": {"Nividium", TierRaw},

	// Tier 1, basic processed materials
	"antimattercells":      {"Antimatter Cells", Tier1},
	"computronicsubstrate": {"Computronic Substrate", Tier1},
	"energycells":          {"Energy Cells", Tier1},
	"graphene":             {"Graphene", Tier1},
	"metallicmicrolattice": {"Metallic Microlattice", Tier1},
	"proteinpaste":         {"Protein Paste", Tier1},
	"refinedmetals":        {"Refined Metals", Tier1},
	"scrapmetal":           {"Scrap Metal", Tier1},
	"siliconwafers":        {"Silicon Wafers", Tier1},
	"stimulants":           {"Stimulants", Tier1},
	"superfluidcoolant":    {"Superfluid Coolant", Tier1},
	"teladianium":          {"Teladianium", Tier1},
	"water":                {"Water", Tier1},

	// Tier 2, components and intermediate goods
	"advancedcomposites": {"Advanced Composites", Tier2},
	"bogas":              {"BoGas", Tier2},
	"cheltmeat":          {"Chelt Meat", Tier2},
	"engineparts":        {"Engine Parts", Tier2},
	"hullparts":          {"Hull Parts", Tier2},
	"majasnails":         {"Maja Snails", Tier2},
	"meat":               {"Meat", Tier2},
	"microchips":         {"Microchips", Tier2},
	"plankton":           {"Plankton", Tier2},
	"plasmaconductors":   {"Plasma Conductors", Tier2},
	"quantumtubes":       {"Quantum Tubes", Tier2},
	"scanningarrays":     {"Scanning Arrays", Tier2},
	"scruffinfruit":      {"Scruffin Fruit", Tier2},
	"siliconcarbide":     {"Silicon Carbide", Tier2},
	"smartchips":         {"Smart Chips", Tier2},
	"sojabeans":          {"Soja Beans", Tier2},
	"spices":             {"Spices", Tier2},
	"sunriseflowers":     {"Sunrise Flowers", Tier2},
	"swampplant":         {"Swamp Plant", Tier2},
	"terranmre":          {"Terran MRE", Tier2},
	"wheat":              {"Wheat", Tier2},

	// Tier 3, advanced products
	"advancedelectronics":  {"Advanced Electronics", Tier3},
	"antimatterconverters": {"Antimatter Converters", Tier3},
	"bofu":                 {"BoFu", Tier3},
	"claytronics":          {"Claytronics", Tier3},
	"dronecomponents":      {"Drone Components", Tier3},
	"fieldcoils":           {"Field Coils", Tier3},
	"foodrations":          {"Food Rations", Tier3},
	"majadust":             {"Maja Dust", Tier3},
	"medicalsupplies":      {"Medical Supplies", Tier3},
	"missilecomponents":    {"Missile Components", Tier3},
	"nostropoil":           {"Nostrop Oil", Tier3},
	"shieldcomponents":     {"Shield Components", Tier3},
	"sojahusk":             {"Soja Husk", Tier3},
	"spacefuel":            {"Spacefuel", Tier3},
	"spaceweed":            {"Spaceweed", Tier3},
	"turretcomponents":     {"Turret Components", Tier3},
	"weaponcomponents":     {"Weapon Components", Tier3},
}

// rawMaterials is the set of wares obtainable by mining. Used by the mining
// coverage heuristic and the expansion planner.
var rawMaterials = map[WareID]bool{
	"ore": true, "silicon": true, "nividium": true, "rawscrap": true,
	"hydrogen": true, "helium": true, "methane": true, "ice": true,
}

// IsRawMaterial reports whether a ware is a mineable raw material.
func IsRawMaterial(id WareID) bool {
	return rawMaterials[NormalizeWareID(string(id))]
}

// CategorizeWare returns the tier of a ware, TierUncategorized if unknown.
func CategorizeWare(id WareID) Tier {
	if e, ok := wareTable[NormalizeWareID(string(id))]; ok {
		return e.tier
	}
	return TierUncategorized
}

// WareName returns a display name for a ware. Unknown wares get a
// title-cased rendering of their ID so they still display reasonably.
func WareName(id WareID) string {
	if e, ok := wareTable[NormalizeWareID(string(id))]; ok {
		return e.name
	}
	return titleCase(strings.ReplaceAll(string(id), "_", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
