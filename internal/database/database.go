// Package database keeps analysis history in SQLite so consecutive runs can
// be compared, and caches extracted game definitions between runs.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zillatron27/x4-production-analyzer/internal/analysis"
	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// Store is the persistence surface the rest of the analyzer sees.
type Store interface {
	SaveSnapshot(savePath string, report *analysis.Report) (int64, error)
	ListSnapshots(limit int) ([]Snapshot, error)
	LoadSnapshot(snapshotID int64) (*analysis.Report, error)
	LoadWares(snapshotID int64) ([]WareRow, error)
	LoadStations(snapshotID int64) ([]StationRow, error)

	SaveDefinitions(fingerprint string, payload []byte) error
	LoadDefinitions(fingerprint string) ([]byte, bool, error)

	Close() error
}

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db       *sql.DB
	filename string

	insertWareStmt    *sql.Stmt
	insertStationStmt *sql.Stmt
}

// Open opens (creating if needed) the store and applies pending schema
// migrations.
func Open(filename string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", filename, err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}
	s := &SQLiteStore{db: db, filename: filename}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug("Database open", "file", filename)
	return s, nil
}

func (s *SQLiteStore) prepare() error {
	var err error
	s.insertWareStmt, err = s.db.Prepare(`
		INSERT INTO ware_balances
		(snapshot_id, ware_id, name, tier, production, consumption, status, modules)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	s.insertStationStmt, err = s.db.Prepare(`
		INSERT INTO station_summaries
		(snapshot_id, station_id, name, sector, type, module_count, ship_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	return err
}

func (s *SQLiteStore) Close() error {
	if s.insertWareStmt != nil {
		s.insertWareStmt.Close()
	}
	if s.insertStationStmt != nil {
		s.insertStationStmt.Close()
	}
	return s.db.Close()
}

// SaveSnapshot stores one report's headline figures in a single
// transaction and returns the snapshot ID.
func (s *SQLiteStore) SaveSnapshot(savePath string, report *analysis.Report) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	estimated := 0
	if report.EstimateMode {
		estimated = 1
	}
	res, err := tx.Exec(`
		INSERT INTO snapshots (save_path, save_time, player_name, estimated, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		savePath, report.SaveTime.Unix(), report.PlayerName, estimated, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, wb := range report.SortedWares() {
		_, err := tx.Stmt(s.insertWareStmt).Exec(
			id, string(wb.Ware), wb.Name, int(wb.Tier),
			wb.Production, wb.Consumption, wb.Status.String(), wb.ModuleCount)
		if err != nil {
			return 0, fmt.Errorf("inserting ware %s: %w", wb.Ware, err)
		}
	}
	for _, st := range report.SortedStations() {
		// Aggregate module count, same figure the comparator works on.
		moduleTotal := 0
		for _, m := range st.Modules {
			moduleTotal += m.Count
		}
		_, err := tx.Stmt(s.insertStationStmt).Exec(
			id, st.ID, st.Name, st.Sector, st.Type, moduleTotal, st.Ships.Total)
		if err != nil {
			return 0, fmt.Errorf("inserting station %s: %w", st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Info("Snapshot stored", "id", id, "save", savePath)
	return id, nil
}

// ListSnapshots returns the newest snapshots first.
func (s *SQLiteStore) ListSnapshots(limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, save_path, save_time, player_name, estimated, created_at
		FROM snapshots ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var sn Snapshot
		var saveTime, createdAt int64
		var estimated int
		if err := rows.Scan(&sn.ID, &sn.SavePath, &saveTime, &sn.PlayerName, &estimated, &createdAt); err != nil {
			return nil, err
		}
		sn.SaveTime = time.Unix(saveTime, 0).UTC()
		sn.CreatedAt = time.Unix(createdAt, 0).UTC()
		sn.Estimated = estimated != 0
		out = append(out, sn)
	}
	return out, rows.Err()
}

// LoadSnapshot rebuilds a report from one stored snapshot so it can be
// diffed against a freshly analyzed save. Only the headline figures
// survive storage: module lines collapse into a single aggregate count per
// station, and per-station rate subtotals are gone.
func (s *SQLiteStore) LoadSnapshot(snapshotID int64) (*analysis.Report, error) {
	var (
		saveTime   int64
		playerName string
		estimated  int
	)
	err := s.db.QueryRow(`
		SELECT save_time, player_name, estimated FROM snapshots WHERE id = ?`, snapshotID).
		Scan(&saveTime, &playerName, &estimated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %d not found", snapshotID)
	}
	if err != nil {
		return nil, err
	}

	r := &analysis.Report{
		SaveTime:     time.Unix(saveTime, 0).UTC(),
		PlayerName:   playerName,
		EstimateMode: estimated != 0,
		Wares:        make(map[gamedata.WareID]*analysis.WareBalance),
		Stations:     make(map[string]*analysis.StationSummary),
	}

	wares, err := s.LoadWares(snapshotID)
	if err != nil {
		return nil, err
	}
	for _, row := range wares {
		id := gamedata.WareID(row.WareID)
		r.Wares[id] = &analysis.WareBalance{
			Ware:        id,
			Name:        row.Name,
			Tier:        gamedata.Tier(row.Tier),
			Production:  row.Production,
			Consumption: row.Consumption,
			Net:         row.Production - row.Consumption,
			Status:      analysis.ParseStatus(row.Status),
			Estimated:   estimated != 0,
			ModuleCount: row.Modules,
		}
	}

	stations, err := s.LoadStations(snapshotID)
	if err != nil {
		return nil, err
	}
	for _, row := range stations {
		st := &analysis.StationSummary{
			ID:     row.StationID,
			Name:   row.Name,
			Sector: row.Sector,
			Type:   row.Type,
			Ships:  analysis.ShipCounts{Total: row.ShipCount},
		}
		if row.ModuleCount > 0 {
			st.Modules = []analysis.ModuleSummary{{Count: row.ModuleCount}}
		}
		r.Stations[row.StationID] = st
	}
	return r, nil
}

func (s *SQLiteStore) LoadWares(snapshotID int64) ([]WareRow, error) {
	rows, err := s.db.Query(`
		SELECT snapshot_id, ware_id, name, tier, production, consumption, status, modules
		FROM ware_balances WHERE snapshot_id = ? ORDER BY tier, name`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WareRow
	for rows.Next() {
		var r WareRow
		if err := rows.Scan(&r.SnapshotID, &r.WareID, &r.Name, &r.Tier,
			&r.Production, &r.Consumption, &r.Status, &r.Modules); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LoadStations(snapshotID int64) ([]StationRow, error) {
	rows, err := s.db.Query(`
		SELECT snapshot_id, station_id, name, sector, type, module_count, ship_count
		FROM station_summaries WHERE snapshot_id = ? ORDER BY name`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StationRow
	for rows.Next() {
		var r StationRow
		if err := rows.Scan(&r.SnapshotID, &r.StationID, &r.Name, &r.Sector,
			&r.Type, &r.ModuleCount, &r.ShipCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveDefinitions replaces the cached definition payload for one install
// fingerprint.
func (s *SQLiteStore) SaveDefinitions(fingerprint string, payload []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO definitions_cache (fingerprint, payload, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		fingerprint, payload, time.Now().Unix())
	return err
}

// LoadDefinitions fetches the cached payload for a fingerprint. The second
// return is false on a cache miss.
func (s *SQLiteStore) LoadDefinitions(fingerprint string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM definitions_cache WHERE fingerprint = ?`, fingerprint).
		Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}
