package gamedata

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

type macroXML struct {
	Name       string `xml:"name,attr"`
	Class      string `xml:"class,attr"`
	Properties struct {
		Ship struct {
			Type string `xml:"type,attr"`
		} `xml:"ship"`
		Purpose struct {
			Primary string `xml:"primary,attr"`
		} `xml:"purpose"`
		Identification struct {
			MakerRace string `xml:"makerrace,attr"`
		} `xml:"identification"`
		Cargo struct {
			Max  string `xml:"max,attr"`
			Tags string `xml:"tags,attr"`
		} `xml:"cargo"`
	} `xml:"properties"`
	Connections struct {
		Connection []struct {
			Ref   string `xml:"ref,attr"`
			Macro struct {
				Ref string `xml:"ref,attr"`
			} `xml:"macro"`
		} `xml:"connection"`
	} `xml:"connections"`
}

// storageInfo is cargo data pulled from a storage macro. Ships reference
// their cargo hold through a storage connection rather than carrying the
// capacity inline.
type storageInfo struct {
	capacity int
	tags     string
}

// ParseStorageMacros extracts cargo capacities from a storage macro file.
func ParseStorageMacros(data []byte, out map[string]storageInfo) error {
	return eachMacro(data, func(m macroXML) {
		if m.Class != "storage" || m.Name == "" {
			return
		}
		tags := m.Properties.Cargo.Tags
		if tags == "" {
			tags = "container"
		}
		out[strings.ToLower(m.Name)] = storageInfo{
			capacity: safeInt(m.Properties.Cargo.Max, 0),
			tags:     tags,
		}
	})
}

// ParseShipMacros extracts ship definitions from a ship macro file, joining
// cargo capacity through the storage table. The "con_storage*" connection is
// the cargo hold; "con_shipstorage" is a dock for smaller ships and must not
// be confused with it.
func ParseShipMacros(data []byte, storage map[string]storageInfo, out map[string]*ShipDefinition) error {
	return eachMacro(data, func(m macroXML) {
		if m.Name == "" || !strings.HasPrefix(m.Class, "ship_") {
			return
		}

		def := &ShipDefinition{
			Macro:     strings.ToLower(m.Name),
			Class:     m.Class,
			Purpose:   ClassifyShip(m.Properties.Purpose.Primary, m.Name),
			CargoTags: "container",
			Race:      m.Properties.Identification.MakerRace,
		}
		if m.Properties.Ship.Type != "" && def.Purpose == PurposeUnrecognized {
			def.Purpose = ClassifyShip(m.Properties.Ship.Type, m.Name)
		}

		for _, conn := range m.Connections.Connection {
			ref := strings.ToLower(conn.Ref)
			if !strings.HasPrefix(ref, "con_storage") || strings.Contains(ref, "shipstorage") {
				continue
			}
			if conn.Macro.Ref == "" {
				continue
			}
			def.StorageMacro = strings.ToLower(conn.Macro.Ref)
			if st, ok := storage[def.StorageMacro]; ok {
				def.CargoCapacity = st.capacity
				def.CargoTags = st.tags
			}
			break
		}

		out[def.Macro] = def
	})
}

func eachMacro(data []byte, fn func(macroXML)) error {
	dec := SecureDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch el := tok.(type) {
		case xml.Directive:
			if err := CheckDirective(el); err != nil {
				return err
			}
		case xml.StartElement:
			if el.Name.Local != "macro" {
				continue
			}
			var m macroXML
			if err := dec.DecodeElement(&m, &el); err != nil {
				log.Warn("skipping malformed macro element", "error", err)
				continue
			}
			fn(m)
		}
	}
}
