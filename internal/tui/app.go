// Package tui is the interactive dashboard: a handful of table views over
// one finished report, cycled with number keys.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Zillatron27/x4-production-analyzer/internal/analysis"
	"github.com/Zillatron27/x4-production-analyzer/internal/log"
	"github.com/Zillatron27/x4-production-analyzer/internal/theme"
)

const (
	pageWares       = "wares"
	pageStations    = "stations"
	pageLogistics   = "logistics"
	pageMining      = "mining"
	pageSuggestions = "suggestions"
	pageDiagnostics = "diagnostics"
)

// App wires the report into a tview application.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	status *tview.TextView

	report  *analysis.Report
	chain   *analysis.DependencyChain
	planner *analysis.Planner

	current string
}

// NewApp builds the dashboard for one report. The chain and planner may be
// nil: the wares view then skips the upstream-shortage column, and the
// suggestions page explains itself as unavailable.
func NewApp(report *analysis.Report, chain *analysis.DependencyChain, planner *analysis.Planner) *App {
	a := &App{
		app:     tview.NewApplication(),
		pages:   tview.NewPages(),
		report:  report,
		chain:   chain,
		planner: planner,
	}
	a.setupUI()
	return a
}

func (a *App) setupUI() {
	colors := theme.Current().DefaultColors()

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.status.SetBackgroundColor(colors.Background)

	a.pages.AddPage(pageWares, a.waresView(), true, true)
	a.pages.AddPage(pageStations, a.stationsView(), true, false)
	a.pages.AddPage(pageLogistics, a.logisticsView(), true, false)
	a.pages.AddPage(pageMining, a.miningView(), true, false)
	a.pages.AddPage(pageSuggestions, a.suggestionsView(), true, false)
	a.pages.AddPage(pageDiagnostics, a.diagnosticsView(), true, false)
	a.current = pageWares

	grid := tview.NewGrid().
		SetRows(0, 1).
		SetColumns(0).
		SetBorders(false)
	grid.AddItem(a.pages, 0, 0, 1, 1, 0, 0, true)
	grid.AddItem(a.status, 1, 0, 1, 1, 0, 0, false)

	a.updateStatus()
	a.app.SetRoot(grid, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case '1':
		a.switchTo(pageWares)
	case '2':
		a.switchTo(pageStations)
	case '3':
		a.switchTo(pageLogistics)
	case '4':
		a.switchTo(pageMining)
	case '5':
		a.switchTo(pageSuggestions)
	case '6':
		a.switchTo(pageDiagnostics)
	case 'q', 'Q':
		a.app.Stop()
	default:
		return event
	}
	return nil
}

func (a *App) switchTo(page string) {
	a.current = page
	a.pages.SwitchToPage(page)
	a.updateStatus()
}

func (a *App) updateStatus() {
	mode := ""
	if a.report.EstimateMode {
		mode = " [red]ESTIMATE MODE[-]"
	}
	a.status.SetText(fmt.Sprintf(
		" [yellow]1[-] Wares  [yellow]2[-] Stations  [yellow]3[-] Logistics  [yellow]4[-] Mining  [yellow]5[-] Suggestions  [yellow]6[-] Diagnostics  [yellow]q[-] Quit%s", mode))
}

// Run blocks until the user quits.
func (a *App) Run() error {
	log.Info("Dashboard started")
	defer log.Info("Dashboard stopped")
	return a.app.Run()
}
