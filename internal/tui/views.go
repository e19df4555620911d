package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Zillatron27/x4-production-analyzer/internal/analysis"
	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
	"github.com/Zillatron27/x4-production-analyzer/internal/theme"
)

func statusColor(s analysis.Status) tcell.Color {
	colors := theme.Current().SupplyColors()
	switch s {
	case analysis.StatusSurplus:
		return colors.Surplus
	case analysis.StatusBalanced:
		return colors.Balanced
	case analysis.StatusShortage:
		return colors.Shortage
	case analysis.StatusNoDemand:
		return colors.NoDemand
	default:
		return colors.NotProduced
	}
}

func newTable(title string) *tview.Table {
	colors := theme.Current().DefaultColors()
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetBorder(true).
		SetTitle(" " + title + " ").
		SetTitleColor(colors.Title).
		SetBorderColor(colors.Border).
		SetBackgroundColor(colors.Background)
	return table
}

func headerCell(text string) *tview.TableCell {
	panel := theme.Current().PanelColors()
	return tview.NewTableCell(text).
		SetTextColor(panel.HeaderFg).
		SetBackgroundColor(panel.HeaderBg).
		SetSelectable(false).
		SetAttributes(tcell.AttrBold)
}

func (a *App) waresView() tview.Primitive {
	table := newTable("Ware Balances")
	headers := []string{"Ware", "Tier", "Modules", "Prod/hr", "Cons/hr", "Net/hr", "Status"}
	if a.chain != nil {
		headers = append(headers, "Blocked By")
	}
	for col, h := range headers {
		table.SetCell(0, col, headerCell(h))
	}

	for row, wb := range a.report.SortedWares() {
		color := statusColor(wb.Status)
		status := wb.Status.String()
		if wb.Estimated {
			status += " ~"
		}
		cells := []string{
			wb.Name,
			wb.Tier.String(),
			fmt.Sprintf("%d", wb.ModuleCount),
			fmt.Sprintf("%.1f", wb.Production),
			fmt.Sprintf("%.1f", wb.Consumption),
			fmt.Sprintf("%+.1f", wb.Net),
			status,
		}
		if a.chain != nil {
			cells = append(cells, joinWares(a.chain.UpstreamShortages(a.report, wb.Ware)))
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text)
			if col == 6 {
				cell.SetTextColor(color)
			}
			table.SetCell(row+1, col, cell)
		}
	}
	return table
}

func (a *App) stationsView() tview.Primitive {
	table := newTable("Stations")
	for col, h := range []string{"Station", "Sector", "Type", "Modules", "Traders", "Miners", "Ships"} {
		table.SetCell(0, col, headerCell(h))
	}
	for row, st := range a.report.SortedStations() {
		moduleCount := 0
		for _, m := range st.Modules {
			moduleCount += m.Count
		}
		cells := []string{
			st.Name,
			st.Sector,
			st.Type,
			fmt.Sprintf("%d", moduleCount),
			fmt.Sprintf("%d", st.Ships.Traders),
			fmt.Sprintf("%d", st.Ships.Miners),
			fmt.Sprintf("%d", st.Ships.Total),
		}
		for col, text := range cells {
			table.SetCell(row+1, col, tview.NewTableCell(text))
		}
	}
	return table
}

func (a *App) logisticsView() tview.Primitive {
	colors := theme.Current().DefaultColors()
	ls := a.report.Logistics

	var b strings.Builder
	fmt.Fprintf(&b, "[aqua]Fleet[-]\n\n")
	fmt.Fprintf(&b, "Total ships:     %d\n", ls.TotalShips)
	fmt.Fprintf(&b, "Assigned:        %d\n", ls.Assigned)
	fmt.Fprintf(&b, "Unassigned:      %d\n", ls.Unassigned)
	fmt.Fprintf(&b, "Cargo capacity:  %d\n\n", ls.CargoCapacity)

	fmt.Fprintf(&b, "[aqua]By purpose[-]\n\n")
	for _, p := range []gamedata.ShipPurpose{
		gamedata.PurposeTrader, gamedata.PurposeMiner, gamedata.PurposeBuilder,
		gamedata.PurposeFighter, gamedata.PurposeAuxiliary, gamedata.PurposeUnrecognized,
	} {
		if n := ls.ByPurpose[p]; n > 0 {
			fmt.Fprintf(&b, "%-12s %d\n", p.String()+":", n)
		}
	}

	if len(ls.UnassignedList) > 0 {
		fmt.Fprintf(&b, "\n[aqua]Unassigned ships[-]\n\n")
		for _, sh := range ls.UnassignedList {
			fmt.Fprintf(&b, "%-28s %-10s cargo %d\n", sh.Name, sh.Purpose, sh.Cargo)
		}
	}

	view := tview.NewTextView().
		SetDynamicColors(true).
		SetText(b.String())
	view.SetBorder(true).
		SetTitle(" Logistics ").
		SetTitleColor(colors.Title).
		SetBorderColor(colors.Border).
		SetBackgroundColor(colors.Background)
	return view
}

func (a *App) miningView() tview.Primitive {
	table := newTable("Mining Coverage")
	for col, h := range []string{"Resource", "Demand/hr", "Miners", "Miner Cargo", "Coverage"} {
		table.SetCell(0, col, headerCell(h))
	}
	supply := theme.Current().SupplyColors()
	for row, m := range a.report.Mining {
		color := supply.Shortage
		switch m.Coverage {
		case analysis.MiningSufficient:
			color = supply.Balanced
		case analysis.MiningMarginal:
			color = supply.Surplus
		}
		cells := []string{
			m.Name,
			fmt.Sprintf("%.1f", m.Consumption),
			fmt.Sprintf("%d", m.MinerCount),
			fmt.Sprintf("%d", m.MinerCargo),
			m.Coverage.String(),
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text)
			if col == 4 {
				cell.SetTextColor(color)
			}
			table.SetCell(row+1, col, cell)
		}
	}
	return table
}

// suggestionsView ranks a remedy for every ware currently short. It reads
// like a to-do list: worst first, one recommended action each.
func (a *App) suggestionsView() tview.Primitive {
	table := newTable("Suggestions")
	for col, h := range []string{"Ware", "Status", "Deficit/hr", "Severity", "Recommended Action"} {
		table.SetCell(0, col, headerCell(h))
	}

	if a.planner == nil {
		cell := tview.NewTableCell("Suggestions need game definitions; rerun with a valid -gamedir.").
			SetSelectable(false)
		table.SetCell(1, 0, cell)
		return table
	}

	supply := theme.Current().SupplyColors()
	row := 1
	for _, wb := range a.report.Shortages() {
		b, ok := a.planner.Remediate(a.report, wb.Ware)
		if !ok {
			continue
		}
		action := "-"
		if b.Recommended != nil {
			action = b.Recommended.Description
		}
		cells := []string{
			wb.Name,
			wb.Status.String(),
			fmt.Sprintf("%.1f", b.Deficit),
			b.Severity.String(),
			action,
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text)
			if col == 1 {
				cell.SetTextColor(statusColor(wb.Status))
			}
			if col == 3 && b.Severity == analysis.SeverityCritical {
				cell.SetTextColor(supply.Shortage)
			}
			table.SetCell(row, col, cell)
		}
		row++
	}
	if row == 1 {
		table.SetCell(1, 0, tview.NewTableCell("No shortages to fix.").SetSelectable(false))
	}
	return table
}

func (a *App) diagnosticsView() tview.Primitive {
	colors := theme.Current().DefaultColors()
	var b strings.Builder
	if a.report.EstimateMode {
		fmt.Fprintf(&b, "[red]Game definitions unavailable: all rates are stock-based estimates.[-]\n\n")
	}
	if len(a.report.Diagnostics) == 0 {
		fmt.Fprintf(&b, "No problems found.\n")
	}
	for _, d := range a.report.Diagnostics {
		fmt.Fprintf(&b, "- %s\n", d)
	}

	view := tview.NewTextView().
		SetDynamicColors(true).
		SetText(b.String())
	view.SetBorder(true).
		SetTitle(" Diagnostics ").
		SetTitleColor(colors.Title).
		SetBorderColor(colors.Border).
		SetBackgroundColor(colors.Background)
	return view
}

func joinWares(ids []gamedata.WareID) string {
	if len(ids) == 0 {
		return ""
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, gamedata.WareName(id))
	}
	return strings.Join(names, ", ")
}
