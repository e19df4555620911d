package save

import (
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// ParseError is a fatal save parse failure. Recoverable problems are
// reported through Diagnostics instead.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing save %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var shipClasses = map[string]bool{
	"ship_xs": true,
	"ship_s":  true,
	"ship_m":  true,
	"ship_l":  true,
	"ship_xl": true,
}

// componentFrame tracks one open <component> element. Stations and ships
// nest inside sector and zone components, so the innermost frame decides
// which builder the child elements belong to.
type componentFrame struct {
	station *Station
	ship    *Ship
	modules map[string]*Module // per-macro aggregation, stations only
	order   []string
}

// Stream reads one save file lazily. Records come out as their enclosing
// elements close; nothing ahead of the read position is materialized. The
// caller must Close the stream, including after early termination.
type Stream struct {
	path string
	file *os.File
	gz   *gzip.Reader
	dec  *xml.Decoder

	closed  bool
	emitted bool
	damaged bool

	stack   []string // open element names
	frames  []*componentFrame
	station *Station // innermost player station, nil outside one
	ship    *Ship    // innermost player ship, nil outside one

	awaitCommander bool // inside a <connection connection="commander">

	meta     Meta
	metaSent bool

	pending []Record
	diag    Diagnostics
}

// Open opens a save file for streaming. Both gzip-compressed and plain XML
// saves are accepted; the compression is sniffed, not assumed from the
// extension.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	s := &Stream{path: path, file: f}

	var src io.Reader = f
	gz, err := gzip.NewReader(f)
	switch {
	case err == nil:
		s.gz = gz
		src = gz
	case errors.Is(err, gzip.ErrHeader):
		// Plain XML save. Rewind past the sniffed bytes.
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, &ParseError{Path: path, Err: err}
		}
	default:
		f.Close()
		return nil, &ParseError{Path: path, Err: err}
	}

	s.dec = gamedata.SecureDecoder(src)
	return s, nil
}

// Close releases the underlying file and decompressor. Safe to call more
// than once and required even when the stream was abandoned early.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.gz != nil {
		err = s.gz.Close()
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Diagnostics returns the recoverable problems seen so far. Complete only
// after Next has returned io.EOF.
func (s *Stream) Diagnostics() Diagnostics { return s.diag }

// Next returns the next entity record, or io.EOF when the save is
// exhausted. A fatal *ParseError means the document cannot be trusted at
// all; a truncated document after valid records ends the stream with a
// diagnostic note instead.
func (s *Stream) Next() (Record, error) {
	if s.closed {
		return nil, &ParseError{Path: s.path, Err: errors.New("stream closed")}
	}
	for {
		if len(s.pending) > 0 {
			rec := s.pending[0]
			s.pending = s.pending[1:]
			s.emitted = true
			return rec, nil
		}
		tok, err := s.dec.Token()
		if err != nil {
			ferr := s.finish(err)
			if len(s.pending) > 0 {
				continue
			}
			return nil, ferr
		}
		switch t := tok.(type) {
		case xml.Directive:
			if err := gamedata.CheckDirective(t); err != nil {
				return nil, &ParseError{Path: s.path, Err: err}
			}
		case xml.StartElement:
			s.startElement(t)
		case xml.EndElement:
			s.endElement(t)
		}
	}
}

func (s *Stream) finish(err error) error {
	if errors.Is(err, io.EOF) {
		s.flushMeta()
		return io.EOF
	}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) && s.emitted {
		// Truncated or damaged tail after usable records. Keep what we
		// have and note the damage. The decoder keeps returning the same
		// error, so note it only once.
		if !s.damaged {
			s.damaged = true
			note := fmt.Sprintf("save truncated at line %d: %s", syn.Line, syn.Msg)
			s.diag.Notes = append(s.diag.Notes, note)
			log.Warn("Save stream ended early", "path", s.path, "line", syn.Line)
		}
		s.flushMeta()
		return io.EOF
	}
	return &ParseError{Path: s.path, Err: err}
}

func (s *Stream) flushMeta() {
	if !s.metaSent {
		s.metaSent = true
		s.pending = append(s.pending, MetaRecord{Meta: s.meta})
	}
}

func (s *Stream) startElement(t xml.StartElement) {
	name := t.Name.Local
	s.stack = append(s.stack, name)

	switch name {
	case "component":
		s.startComponent(t)
	case "connection":
		s.startConnection(t)
	case "connected":
		if s.awaitCommander && s.ship != nil {
			s.ship.CommanderRef = attr(t, "connection")
		}
	case "entry":
		if s.station != nil && s.ship == nil {
			s.stationEntry(attr(t, "macro"))
		}
	case "trade":
		if s.station != nil && s.ship == nil {
			s.stationTrade(t)
		}
	case "cargo":
		if s.ship != nil {
			if v, ok := intAttr(t, "max"); ok {
				s.ship.CargoCapacity = v
			} else if attr(t, "max") != "" {
				s.skipFragment("cargo", attr(t, "max"))
			}
		}
	case "location":
		if s.station != nil && s.ship == nil {
			if sector := attr(t, "sector"); sector != "" {
				s.station.Sector = sector
			}
		}
	case "save":
		if s.inInfo() {
			s.metaDate(attr(t, "date"))
		}
	case "player":
		if s.inInfo() && s.meta.PlayerName == "" {
			s.meta.PlayerName = attr(t, "name")
		}
	}
}

func (s *Stream) startComponent(t xml.StartElement) {
	frame := &componentFrame{}
	class := attr(t, "class")
	owner := attr(t, "owner")

	switch {
	case class == "station" && owner == "player":
		st := &Station{
			ID:   componentID(t),
			Name: attr(t, "name"),
			Type: StationProduction,
		}
		if st.Name == "" {
			st.Name = st.ID
		}
		frame.station = st
		frame.modules = make(map[string]*Module)
		s.station = st
	case shipClasses[class] && owner == "player":
		macro := attr(t, "macro")
		sh := &Ship{
			ID:         componentID(t),
			Name:       attr(t, "name"),
			Macro:      macro,
			Class:      class,
			PurposeTag: attr(t, "purpose"),
		}
		sh.Purpose = gamedata.ClassifyShip(sh.PurposeTag, macro)
		if sh.Name == "" {
			sh.Name = sh.ID
		}
		frame.ship = sh
		s.ship = sh
	}
	s.frames = append(s.frames, frame)
}

func (s *Stream) startConnection(t xml.StartElement) {
	conn := attr(t, "connection")
	switch conn {
	case "commander":
		if s.ship != nil {
			s.awaitCommander = true
		}
	case "subordinates":
		if s.station != nil && s.ship == nil {
			if id := attr(t, "id"); id != "" {
				s.station.SubordinateConnIDs = append(s.station.SubordinateConnIDs, id)
			}
		}
	}
}

// stationEntry classifies a module macro on the current station. Production
// macros accumulate per macro; the remaining macros only matter for telling
// shipyards and defence platforms apart from producers.
func (s *Stream) stationEntry(macro string) {
	if macro == "" {
		return
	}
	if gamedata.IsProductionMacro(macro) {
		if m, ok := s.top().modules[macro]; ok {
			m.Count++
			return
		}
		m := &Module{
			Macro: macro,
			Ware:  gamedata.WareFromProductionMacro(macro),
			Count: 1,
		}
		s.top().modules[macro] = m
		s.top().order = append(s.top().order, macro)
		return
	}
	lower := strings.ToLower(macro)
	switch {
	case strings.Contains(lower, "shipyard"):
		s.station.Type = StationShipyard
	case strings.Contains(lower, "wharf"):
		s.station.Type = StationWharf
	case strings.Contains(lower, "equipmentdock"):
		s.station.Type = StationEquipmentDock
	case strings.Contains(lower, "defence"), strings.Contains(lower, "pier"):
		if s.station.Type == StationProduction && len(s.top().modules) == 0 {
			s.station.Type = StationDefence
		}
	}
}

func (s *Stream) stationTrade(t xml.StartElement) {
	ware := attr(t, "ware")
	if ware == "" {
		return
	}
	amount, okA := intAttr(t, "amount")
	// A missing desired attribute means zero restock target, not "as much
	// as the current amount".
	desired, _ := intAttr(t, "desired")
	if !okA && attr(t, "amount") != "" {
		s.skipFragment("trade", ware)
		return
	}
	dir := TradeBuy
	if attr(t, "seller") != "" {
		dir = TradeSell
	}
	s.station.Trades = append(s.station.Trades, TradeOrder{
		Ware:      gamedata.NormalizeWareID(ware),
		Direction: dir,
		Amount:    amount,
		Desired:   desired,
	})
}

func (s *Stream) metaDate(raw string) {
	if raw == "" || !s.meta.Timestamp.IsZero() {
		return
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.skipFragment("save date", raw)
		return
	}
	s.meta.Timestamp = timeUnix(secs)
}

func (s *Stream) endElement(t xml.EndElement) {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	switch t.Name.Local {
	case "connection":
		s.awaitCommander = false
	case "component":
		s.endComponent()
	case "universe":
		// Everything that matters has been seen once the universe closes;
		// the tail of the document is savegame bookkeeping.
		s.flushMeta()
	}
}

func (s *Stream) endComponent() {
	if len(s.frames) == 0 {
		return
	}
	frame := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]

	switch {
	case frame.station != nil:
		for _, macro := range frame.order {
			frame.station.Modules = append(frame.station.Modules, *frame.modules[macro])
		}
		s.pending = append(s.pending, StationRecord{Station: frame.station})
		s.station = s.enclosingStation()
	case frame.ship != nil:
		s.pending = append(s.pending, ShipRecord{Ship: frame.ship})
		s.ship = s.enclosingShip()
	}
}

func (s *Stream) enclosingStation() *Station {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].station != nil {
			return s.frames[i].station
		}
	}
	return nil
}

func (s *Stream) enclosingShip() *Ship {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].ship != nil {
			return s.frames[i].ship
		}
	}
	return nil
}

func (s *Stream) top() *componentFrame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].station == s.station && s.frames[i].station != nil {
			return s.frames[i]
		}
	}
	return &componentFrame{modules: map[string]*Module{}}
}

func (s *Stream) inInfo() bool {
	for _, name := range s.stack {
		if name == "info" {
			return true
		}
	}
	return false
}

func (s *Stream) skipFragment(kind, value string) {
	s.diag.SkippedFragments++
	log.Debug("Skipping malformed save fragment", "kind", kind, "value", value)
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func intAttr(t xml.StartElement, name string) (int, bool) {
	raw := attr(t, name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func timeUnix(secs int64) time.Time { return time.Unix(secs, 0).UTC() }

// componentID prefers the human-visible code over the internal id, matching
// how the game labels objects in the UI.
func componentID(t xml.StartElement) string {
	if code := attr(t, "code"); code != "" {
		return code
	}
	return attr(t, "id")
}
