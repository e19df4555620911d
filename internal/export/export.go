// Package export renders a finished report to CSV, JSON, and plain text.
// No rate math happens here; the report is taken as-is.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/Zillatron27/x4-production-analyzer/internal/analysis"
)

// Format names a supported export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Write renders the report in the given format.
func Write(w io.Writer, format Format, r *analysis.Report) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatText:
		return WriteText(w, r)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteCSV emits one row per ware balance.
func WriteCSV(w io.Writer, r *analysis.Report) error {
	cw := csv.NewWriter(w)
	header := []string{"ware", "name", "tier", "modules", "production_per_hr", "consumption_per_hr", "net", "status", "estimated"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, wb := range r.SortedWares() {
		row := []string{
			string(wb.Ware),
			wb.Name,
			wb.Tier.String(),
			strconv.Itoa(wb.ModuleCount),
			formatRate(wb.Production),
			formatRate(wb.Consumption),
			formatRate(wb.Net),
			wb.Status.String(),
			strconv.FormatBool(wb.Estimated),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonReport is the stable wire shape; the in-memory report is free to
// change without breaking consumers of exported files.
type jsonReport struct {
	GeneratedAt  time.Time     `json:"generated_at"`
	SaveTime     time.Time     `json:"save_time"`
	PlayerName   string        `json:"player_name"`
	EstimateMode bool          `json:"estimate_mode"`
	Wares        []jsonWare    `json:"wares"`
	Stations     []jsonStation `json:"stations"`
	Logistics    jsonLogistics `json:"logistics"`
	Diagnostics  []string      `json:"diagnostics,omitempty"`
}

type jsonWare struct {
	Ware        string  `json:"ware"`
	Name        string  `json:"name"`
	Tier        string  `json:"tier"`
	Modules     int     `json:"modules"`
	Production  float64 `json:"production_per_hr"`
	Consumption float64 `json:"consumption_per_hr"`
	Net         float64 `json:"net"`
	Status      string  `json:"status"`
	Estimated   bool    `json:"estimated"`
}

type jsonStation struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Sector  string `json:"sector,omitempty"`
	Type    string `json:"type"`
	Modules int    `json:"modules"`
	Ships   int    `json:"ships"`
}

type jsonLogistics struct {
	TotalShips int `json:"total_ships"`
	Assigned   int `json:"assigned"`
	Unassigned int `json:"unassigned"`
	Cargo      int `json:"cargo_capacity"`
}

// WriteJSON emits the whole report as one indented document.
func WriteJSON(w io.Writer, r *analysis.Report) error {
	out := jsonReport{
		GeneratedAt:  r.GeneratedAt,
		SaveTime:     r.SaveTime,
		PlayerName:   r.PlayerName,
		EstimateMode: r.EstimateMode,
		Diagnostics:  r.Diagnostics,
		Logistics: jsonLogistics{
			TotalShips: r.Logistics.TotalShips,
			Assigned:   r.Logistics.Assigned,
			Unassigned: r.Logistics.Unassigned,
			Cargo:      r.Logistics.CargoCapacity,
		},
	}
	for _, wb := range r.SortedWares() {
		out.Wares = append(out.Wares, jsonWare{
			Ware:        string(wb.Ware),
			Name:        wb.Name,
			Tier:        wb.Tier.String(),
			Modules:     wb.ModuleCount,
			Production:  wb.Production,
			Consumption: wb.Consumption,
			Net:         wb.Net,
			Status:      wb.Status.String(),
			Estimated:   wb.Estimated,
		})
	}
	for _, st := range r.SortedStations() {
		out.Stations = append(out.Stations, jsonStation{
			ID:      st.ID,
			Name:    st.Name,
			Sector:  st.Sector,
			Type:    st.Type,
			Modules: len(st.Modules),
			Ships:   st.Ships.Total,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteText emits a human-readable summary.
func WriteText(w io.Writer, r *analysis.Report) error {
	fmt.Fprintf(w, "X4 Production Report\n")
	fmt.Fprintf(w, "====================\n\n")
	if r.PlayerName != "" {
		fmt.Fprintf(w, "Player:    %s\n", r.PlayerName)
	}
	if !r.SaveTime.IsZero() {
		fmt.Fprintf(w, "Save time: %s\n", r.SaveTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	if r.EstimateMode {
		fmt.Fprintf(w, "NOTE: game definitions unavailable; all rates are stock-based estimates\n")
	}

	fmt.Fprintf(w, "\nWare Balances\n-------------\n")
	fmt.Fprintf(w, "%-28s %8s %12s %12s %12s  %s\n", "Ware", "Modules", "Prod/hr", "Cons/hr", "Net", "Status")
	for _, wb := range r.SortedWares() {
		status := wb.Status.String()
		if wb.Estimated {
			status += " (est)"
		}
		fmt.Fprintf(w, "%-28s %8d %12s %12s %12s  %s\n",
			truncate(wb.Name, 28), wb.ModuleCount,
			formatRate(wb.Production), formatRate(wb.Consumption), formatRate(wb.Net), status)
	}

	fmt.Fprintf(w, "\nStations\n--------\n")
	for _, st := range r.SortedStations() {
		fmt.Fprintf(w, "%-32s %-14s modules=%-3d ships=%d\n",
			truncate(st.Name, 32), st.Type, len(st.Modules), st.Ships.Total)
	}

	ls := r.Logistics
	fmt.Fprintf(w, "\nLogistics\n---------\n")
	fmt.Fprintf(w, "Ships: %d total, %d assigned, %d unassigned, cargo %d\n",
		ls.TotalShips, ls.Assigned, ls.Unassigned, ls.CargoCapacity)

	if len(r.Mining) > 0 {
		fmt.Fprintf(w, "\nMining Coverage\n---------------\n")
		for _, m := range r.Mining {
			fmt.Fprintf(w, "%-20s demand %10s/hr, %d miners (%d cargo): %s\n",
				truncate(m.Name, 20), formatRate(m.Consumption), m.MinerCount, m.MinerCargo, m.Coverage)
		}
	}

	if len(r.Diagnostics) > 0 {
		fmt.Fprintf(w, "\nDiagnostics\n-----------\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "- %s\n", d)
		}
	}
	return nil
}

// WriteComparison renders a save-to-save diff as text.
func WriteComparison(w io.Writer, cmp *analysis.Comparison) error {
	fmt.Fprintf(w, "Save Comparison\n===============\n\n")
	fmt.Fprintf(w, "Old save: %s\n", cmp.OldTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "New save: %s\n\n", cmp.NewTime.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(w, "Wares compared: %d (improved %d, degraded %d, new %d, stopped %d, unchanged %d)\n",
		cmp.WaresCompared, cmp.Improved, cmp.Degraded, cmp.NewProduction, cmp.Stopped, cmp.Unchanged)
	fmt.Fprintf(w, "Stations: +%d / -%d, module delta %+d\n\n",
		cmp.StationsAdded, cmp.StationsRemoved, cmp.ModulesDelta)

	for _, alert := range cmp.Alerts {
		fmt.Fprintf(w, "! %s\n", alert)
	}
	if len(cmp.Alerts) > 0 {
		fmt.Fprintln(w)
	}

	for _, c := range cmp.WareChanges {
		fmt.Fprintf(w, "%-24s %-9s %s -> %s (balance %+.0f/hr)\n",
			truncate(c.Name, 24), c.Change, c.OldStatus, c.NewStatus, c.BalanceDelta)
	}
	for _, s := range cmp.StationChanges {
		switch s.Change {
		case "added":
			fmt.Fprintf(w, "station added:   %s (%d modules)\n", s.Name, s.NewModules)
		case "removed":
			fmt.Fprintf(w, "station removed: %s (%d modules)\n", s.Name, s.OldModules)
		default:
			fmt.Fprintf(w, "station changed: %s (%+d modules)\n", s.Name, s.ModuleDelta)
		}
	}
	return nil
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// truncate shortens display text to n runes. Names come from localized
// game text, so slicing bytes could split a multi-byte rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
