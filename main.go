package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/Zillatron27/x4-production-analyzer/internal/analysis"
	"github.com/Zillatron27/x4-production-analyzer/internal/chainmap"
	"github.com/Zillatron27/x4-production-analyzer/internal/config"
	"github.com/Zillatron27/x4-production-analyzer/internal/database"
	"github.com/Zillatron27/x4-production-analyzer/internal/export"
	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
	"github.com/Zillatron27/x4-production-analyzer/internal/log"
	"github.com/Zillatron27/x4-production-analyzer/internal/save"
	"github.com/Zillatron27/x4-production-analyzer/internal/theme"
	"github.com/Zillatron27/x4-production-analyzer/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Error("GLOBAL PANIC recovered", "error", r, "stack", string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "Application crashed. See x4analyzer.log for details.\n")
			os.Exit(1)
		}
	}()

	if err := log.SetFileOutput("x4analyzer.log"); err != nil {
		fmt.Printf("Warning: Could not configure logging to file: %v\n", err)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGSEGV, syscall.SIGABRT, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		log.Error("SIGNAL RECEIVED", "signal", sig.String())
		os.Exit(1)
	}()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		savePath    = flag.String("save", "", "path to the save file (default: newest save found)")
		gameDir     = flag.String("gamedir", "", "X4 installation directory (default: auto-detect)")
		configPath  = flag.String("config", config.DefaultPath(), "config file path")
		exportFmt   = flag.String("export", "", "export the report instead of opening the dashboard: csv, json, or text")
		outPath     = flag.String("out", "", "write export output to this file instead of stdout")
		comparePath = flag.String("compare", "", "older save to diff the current one against")
		compareSnap = flag.Int64("compare-snapshot", 0, "stored snapshot ID to diff against (see -history)")
		expandWare  = flag.String("expand", "", "plan an expansion for this ware")
		expandMods  = flag.Int("modules", 1, "module count for -expand")
		chainPNG    = flag.String("chain-map", "", "render the dependency chain to this PNG file")
		chainSixel  = flag.Bool("sixel", false, "print the dependency chain as sixel graphics")
		dbPath      = flag.String("db", "x4analyzer.db", "snapshot database path, empty to disable history")
		history     = flag.Int("history", 0, "list the N most recent stored snapshots and exit")
		noTUI       = flag.Bool("no-tui", false, "print the text report instead of the dashboard")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("x4-production-analyzer %s (%s, built %s)\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *gameDir != "" {
		cfg.GameDir = *gameDir
	}
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { flagsSet[f.Name] = true })
	if !flagsSet["db"] && cfg.Database != "" {
		*dbPath = cfg.Database
	}
	if cfg.Theme != "" {
		if err := theme.GetManager().Set(cfg.Theme); err != nil {
			log.Warn("Unknown theme, keeping default", "theme", cfg.Theme)
		}
	}

	if *history > 0 {
		if *dbPath == "" {
			return errors.New("-history needs a snapshot database, see -db")
		}
		store, err := database.Open(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		return printHistory(store, *history)
	}

	path := *savePath
	if path == "" {
		if cfg.SaveDir == "" {
			return errors.New("no save file given and no save directory found; use -save")
		}
		path, err = config.LatestSave(cfg.SaveDir)
		if err != nil {
			return fmt.Errorf("finding newest save in %s: %w", cfg.SaveDir, err)
		}
		log.Info("Using newest save", "path", path)
	}

	var store *database.SQLiteStore
	if *dbPath != "" {
		store, err = database.Open(*dbPath)
		if err != nil {
			log.Warn("Snapshot database unavailable", "error", err)
		} else {
			defer store.Close()
		}
	}

	defs, defWarnings := loadDefinitions(cfg, store)
	engine := analysis.NewEngine(defs, cfg.Thresholds)
	engine.NoteDefinitionWarnings(defWarnings)

	empire, err := save.ReadEmpire(path)
	if err != nil {
		return err
	}
	report := engine.Analyze(empire)

	if store != nil {
		if _, err := store.SaveSnapshot(path, report); err != nil {
			log.Warn("Could not store snapshot", "error", err)
		}
	}

	if *compareSnap > 0 {
		if store == nil {
			return errors.New("-compare-snapshot needs a snapshot database, see -db")
		}
		oldReport, err := store.LoadSnapshot(*compareSnap)
		if err != nil {
			return err
		}
		return export.WriteComparison(os.Stdout, analysis.Compare(oldReport, report))
	}

	if *comparePath != "" {
		oldEmpire, err := save.ReadEmpire(*comparePath)
		if err != nil {
			return err
		}
		oldReport := engine.Analyze(oldEmpire)
		return export.WriteComparison(os.Stdout, analysis.Compare(oldReport, report))
	}

	if *expandWare != "" {
		planner := analysis.NewPlanner(defs, cfg.Thresholds)
		plan, err := planner.Plan(report, gamedata.NormalizeWareID(*expandWare), *expandMods)
		if err != nil {
			return err
		}
		printPlan(plan)
		return nil
	}

	if *exportFmt != "" {
		out := os.Stdout
		if *outPath != "" {
			f, err := os.Create(*outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return export.Write(out, export.Format(*exportFmt), report)
	}

	chain, err := analysis.BuildChain(defs, report)
	if err != nil {
		log.Warn("Dependency chain unavailable", "error", err)
	}

	if *chainPNG != "" || *chainSixel {
		if chain == nil {
			return errors.New("dependency chain could not be built")
		}
		renderer := chainmap.NewRenderer(report, chain)
		ctx := context.Background()
		if *chainPNG != "" {
			if err := renderer.WritePNGFile(ctx, *chainPNG); err != nil {
				return err
			}
		}
		if *chainSixel {
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return errors.New("sixel output requires a terminal")
			}
			if err := renderer.PrintSixel(ctx, os.Stdout, 1200); err != nil {
				return err
			}
		}
		return nil
	}

	if *noTUI || !isatty.IsTerminal(os.Stdout.Fd()) {
		return export.WriteText(os.Stdout, report)
	}
	var planner *analysis.Planner
	if defs != nil {
		planner = analysis.NewPlanner(defs, cfg.Thresholds)
	}
	return tui.NewApp(report, chain, planner).Run()
}

func printHistory(store *database.SQLiteStore, limit int) error {
	snaps, err := store.ListSnapshots(limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("No snapshots stored yet.")
		return nil
	}
	for _, sn := range snaps {
		mode := ""
		if sn.Estimated {
			mode = "  (estimated)"
		}
		fmt.Printf("%4d  %s  %-20s %s%s\n",
			sn.ID, sn.SaveTime.Format("2006-01-02 15:04:05"), sn.PlayerName, sn.SavePath, mode)
	}
	return nil
}

// loadDefinitions extracts the game definition tables, going through the
// cache when the install fingerprint matches. Failure is not fatal: the
// engine degrades to estimate mode. Recoverable per-file failures come
// back as warnings so they can ride along in the report diagnostics.
func loadDefinitions(cfg config.Config, store *database.SQLiteStore) (*gamedata.Definitions, []error) {
	if cfg.GameDir == "" {
		log.Warn("No game directory configured, rates will be estimated")
		return nil, nil
	}

	// Resolved ware names depend on the language, so it is part of the
	// cache key.
	cacheKey := ""
	if fp := gamedata.Fingerprint(cfg.GameDir); fp != "" {
		cacheKey = fmt.Sprintf("%s-%d", fp, cfg.Language)
	}
	if store != nil && cacheKey != "" {
		if payload, ok, err := store.LoadDefinitions(cacheKey); err == nil && ok {
			if defs, err := gamedata.DecodeDefinitions(payload); err == nil {
				log.Info("Definitions loaded from cache", "key", cacheKey)
				return defs, nil
			}
		}
	}

	defs, warnings, err := gamedata.Load(cfg.GameDir, cfg.Language)
	if err != nil {
		log.Warn("Game definitions unavailable", "dir", cfg.GameDir, "error", err)
		return nil, warnings
	}
	for _, w := range warnings {
		log.Warn("Definition file skipped", "error", w)
	}

	if store != nil && cacheKey != "" {
		if payload, err := gamedata.EncodeDefinitions(defs); err == nil {
			if err := store.SaveDefinitions(cacheKey, payload); err != nil {
				log.Warn("Could not cache definitions", "error", err)
			}
		}
	}
	return defs, warnings
}

func printPlan(plan *analysis.ExpansionPlan) {
	fmt.Printf("Expansion plan: %s (%d -> %d modules)\n",
		plan.Name, plan.CurrentModules, plan.PlannedModules)
	fmt.Printf("Rate: %.0f -> %.0f units/hr (+%.0f, +%.0f%%)\n\n",
		plan.CurrentRate, plan.PlannedRate, plan.IncreaseAmount, plan.IncreasePercent)

	for _, in := range plan.Inputs {
		fmt.Printf("  %-24s need +%8.1f/hr, headroom %+9.1f/hr  [%s]\n",
			in.Name, in.DeltaDemand, in.SurplusOrDeficit, in.Status)
	}
	fmt.Println()
	for _, rec := range plan.Recommendations {
		fmt.Println(rec)
	}
}
