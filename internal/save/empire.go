package save

import (
	"io"

	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// ReadEmpire drains one save stream and resolves ship assignments. The
// subordinates/commander connection IDs only line up once both sides have
// been seen, so the join happens here rather than in the stream.
func ReadEmpire(path string) (*Empire, error) {
	stream, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	empire := &Empire{}
	for {
		rec, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch r := rec.(type) {
		case StationRecord:
			empire.Stations = append(empire.Stations, r.Station)
		case ShipRecord:
			empire.Ships = append(empire.Ships, r.Ship)
		case MetaRecord:
			empire.Meta = r.Meta
		}
	}
	empire.Diagnostics = stream.Diagnostics()

	resolveAssignments(empire)
	log.Info("Save loaded",
		"path", path,
		"stations", len(empire.Stations),
		"ships", len(empire.Ships),
		"skipped", empire.Diagnostics.SkippedFragments)
	return empire, nil
}

// resolveAssignments joins ships to stations through the connection index.
// A dangling commander reference leaves the ship unassigned, same as no
// reference at all.
func resolveAssignments(e *Empire) {
	byConn := make(map[string]*Station)
	for _, st := range e.Stations {
		for _, id := range st.SubordinateConnIDs {
			byConn[id] = st
		}
	}
	for _, sh := range e.Ships {
		if sh.CommanderRef == "" {
			continue
		}
		if st, ok := byConn[sh.CommanderRef]; ok {
			sh.StationID = st.ID
			st.ShipIDs = append(st.ShipIDs, sh.ID)
		}
	}
}
