package database

import "fmt"

// Migration is one schema step, applied in ID order exactly once.
type Migration struct {
	ID          int
	Description string
	SQL         string
}

var migrations = []Migration{
	{
		ID:          1,
		Description: "Snapshot and ware balance tables",
		SQL: `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	save_path TEXT NOT NULL,
	save_time INTEGER NOT NULL,
	player_name TEXT NOT NULL DEFAULT '',
	estimated INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ware_balances (
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	ware_id TEXT NOT NULL,
	name TEXT NOT NULL,
	tier INTEGER NOT NULL,
	production REAL NOT NULL,
	consumption REAL NOT NULL,
	status TEXT NOT NULL,
	modules INTEGER NOT NULL,
	PRIMARY KEY (snapshot_id, ware_id)
);`,
	},
	{
		ID:          2,
		Description: "Station summary table",
		SQL: `
CREATE TABLE IF NOT EXISTS station_summaries (
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	station_id TEXT NOT NULL,
	name TEXT NOT NULL,
	sector TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	module_count INTEGER NOT NULL,
	ship_count INTEGER NOT NULL,
	PRIMARY KEY (snapshot_id, station_id)
);`,
	},
	{
		ID:          3,
		Description: "Definitions cache keyed by install fingerprint",
		SQL: `
CREATE TABLE IF NOT EXISTS definitions_cache (
	fingerprint TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`,
	},
}

func (s *SQLiteStore) runMigrations() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	row := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.ID <= current {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d (%s): %w", m.ID, m.Description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
