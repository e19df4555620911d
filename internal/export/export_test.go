package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zillatron27/x4-production-analyzer/internal/analysis"
	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		GeneratedAt: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		SaveTime:    time.Date(2026, 8, 27, 21, 30, 0, 0, time.UTC),
		PlayerName:  "Kestrel",
		Wares: map[gamedata.WareID]*analysis.WareBalance{
			"energycells": {
				Ware: "energycells", Name: "Energy Cells",
				Tier: gamedata.CategorizeWare("energycells"), ModuleCount: 2,
				Production: 1200, Consumption: 300, Net: 900,
				Status: analysis.StatusSurplus,
			},
			"ore": {
				Ware: "ore", Name: "Ore",
				Tier:        gamedata.CategorizeWare("ore"),
				Consumption: 120, Net: -120,
				Status: analysis.StatusNotProduced, Estimated: true,
			},
		},
		Stations: map[string]*analysis.StationSummary{
			"HUB-001": {
				ID: "HUB-001", Name: "Energy Hub", Sector: "cluster_14_sector001",
				Type:    "production",
				Modules: []analysis.ModuleSummary{{Ware: "energycells", Count: 2}},
				Ships:   analysis.ShipCounts{Total: 1, Miners: 1},
			},
		},
		Logistics:   analysis.LogisticsSummary{TotalShips: 2, Assigned: 1, Unassigned: 1, CargoCapacity: 48000},
		Mining:      []analysis.MiningReport{{Ware: "ore", Name: "Ore", Consumption: 120, MinerCount: 1, MinerCargo: 40000, Coverage: analysis.MiningSufficient}},
		Diagnostics: []string{"2 malformed save fragments skipped"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleReport()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ware", rows[0][0])
	// Raw materials sort first.
	assert.Equal(t, "ore", rows[1][0])
	assert.Equal(t, "Not Produced", rows[1][7])
	assert.Equal(t, "true", rows[1][8])
	assert.Equal(t, "energycells", rows[2][0])
	assert.Equal(t, "1200.0", rows[2][4])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport()))

	var out struct {
		PlayerName string `json:"player_name"`
		Wares      []struct {
			Ware string  `json:"ware"`
			Net  float64 `json:"net"`
		} `json:"wares"`
		Stations []struct {
			Name  string `json:"name"`
			Ships int    `json:"ships"`
		} `json:"stations"`
		Logistics struct {
			Cargo int `json:"cargo_capacity"`
		} `json:"logistics"`
		Diagnostics []string `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "Kestrel", out.PlayerName)
	require.Len(t, out.Wares, 2)
	assert.Equal(t, "ore", out.Wares[0].Ware)
	assert.InDelta(t, -120.0, out.Wares[0].Net, 1e-9)
	require.Len(t, out.Stations, 1)
	assert.Equal(t, "Energy Hub", out.Stations[0].Name)
	assert.Equal(t, 1, out.Stations[0].Ships)
	assert.Equal(t, 48000, out.Logistics.Cargo)
	assert.Len(t, out.Diagnostics, 1)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "X4 Production Report")
	assert.Contains(t, out, "Kestrel")
	assert.Contains(t, out, "Energy Cells")
	assert.Contains(t, out, "Not Produced (est)")
	assert.Contains(t, out, "Energy Hub")
	assert.Contains(t, out, "Mining Coverage")
	assert.Contains(t, out, "Sufficient")
	assert.Contains(t, out, "2 malformed save fragments skipped")
	assert.NotContains(t, out, "estimates", "estimate banner only in estimate mode")
}

func TestWriteTextEstimateBanner(t *testing.T) {
	r := sampleReport()
	r.EstimateMode = true
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	assert.Contains(t, buf.String(), "stock-based estimates")
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestWriteComparison(t *testing.T) {
	cmp := &analysis.Comparison{
		OldTime:       time.Date(2026, 8, 27, 20, 0, 0, 0, time.UTC),
		NewTime:       time.Date(2026, 8, 27, 23, 0, 0, 0, time.UTC),
		WaresCompared: 3,
		Degraded:      1,
		WareChanges: []analysis.WareChange{{
			Ware: "energycells", Name: "Energy Cells",
			OldStatus: analysis.StatusBalanced, NewStatus: analysis.StatusShortage,
			Change: analysis.ChangeDegraded, BalanceDelta: -500,
		}},
		StationChanges: []analysis.StationChange{{Name: "New Forge", Change: "added", NewModules: 3}},
		StationsAdded:  1,
		Alerts:         []string{"1 ware(s) now in SHORTAGE"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, cmp))
	out := buf.String()

	assert.Contains(t, out, "! 1 ware(s) now in SHORTAGE")
	assert.Contains(t, out, "degraded")
	assert.Contains(t, out, "Balanced -> Shortage")
	assert.Contains(t, out, "station added:   New Forge (3 modules)")
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "Save Comparison"))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	// Localized names are multi-byte; cutting on bytes would split a rune.
	name := strings.Repeat("Größenwahnfabrik ", 4)
	got := truncate(name, 28)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 28, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))

	assert.Equal(t, "kurz", truncate("kurz", 28))
}
