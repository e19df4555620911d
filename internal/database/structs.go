package database

import "time"

// Snapshot is one stored analysis run: which save it came from and when it
// was analyzed. Ware rows hang off it by ID.
type Snapshot struct {
	ID         int64
	SavePath   string
	SaveTime   time.Time
	PlayerName string
	Estimated  bool
	CreatedAt  time.Time
}

// WareRow is one ware's balance inside a snapshot.
type WareRow struct {
	SnapshotID  int64
	WareID      string
	Name        string
	Tier        int
	Production  float64
	Consumption float64
	Status      string
	Modules     int
}

// StationRow is one station's headline figures inside a snapshot.
type StationRow struct {
	SnapshotID  int64
	StationID   string
	Name        string
	Sector      string
	Type        string
	ModuleCount int
	ShipCount   int
}

// DefinitionsBlob caches an extracted definition table, keyed by a
// fingerprint of the game installation so a patched game invalidates it.
type DefinitionsBlob struct {
	Fingerprint string
	Payload     []byte // gob-encoded definition tables
	CreatedAt   time.Time
}
