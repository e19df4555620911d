package gamedata

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// WaresPath is the location of the ware definitions inside the game archives.
const WaresPath = "libraries/wares.xml"

type wareXML struct {
	ID        string `xml:"id,attr"`
	Name      string `xml:"name,attr"`
	Transport string `xml:"transport,attr"`
	Volume    string `xml:"volume,attr"`
	Price     struct {
		Min     string `xml:"min,attr"`
		Average string `xml:"average,attr"`
		Max     string `xml:"max,attr"`
	} `xml:"price"`
	Production []struct {
		Time    string `xml:"time,attr"`
		Amount  string `xml:"amount,attr"`
		Method  string `xml:"method,attr"`
		Primary struct {
			Wares []struct {
				Ware   string `xml:"ware,attr"`
				Amount string `xml:"amount,attr"`
			} `xml:"ware"`
		} `xml:"primary"`
	} `xml:"production"`
}

// ParseWares parses the contents of libraries/wares.xml into a lookup table.
// resolve maps "{page,text}" name references to display text; pass nil to
// keep references as-is.
func ParseWares(data []byte, resolve func(string) string) (map[WareID]*WareDefinition, error) {
	dec := SecureDecoder(bytes.NewReader(data))
	wares := make(map[WareID]*WareDefinition)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.Directive:
			if err := CheckDirective(el); err != nil {
				return nil, err
			}
		case xml.StartElement:
			if el.Name.Local != "ware" {
				continue
			}
			var w wareXML
			if err := dec.DecodeElement(&w, &el); err != nil {
				log.Warn("skipping malformed ware element", "error", err)
				continue
			}
			if def := buildWareDefinition(w, resolve); def != nil {
				wares[def.ID] = def
			}
		}
	}

	log.Info("wares parsed", "count", len(wares))
	return wares, nil
}

func buildWareDefinition(w wareXML, resolve func(string) string) *WareDefinition {
	if w.ID == "" {
		return nil
	}

	name := w.Name
	if name == "" {
		name = w.ID
	}
	if resolve != nil && strings.HasPrefix(name, "{") {
		name = resolve(name)
	}

	transport := w.Transport
	if transport == "" {
		transport = "container"
	}

	id := WareID(strings.ToLower(w.ID))
	def := &WareDefinition{
		ID:        id,
		Name:      name,
		Tier:      CategorizeWare(id),
		Transport: transport,
		Volume:    safeInt(w.Volume, 1),
		PriceMin:  safeInt(w.Price.Min, 0),
		PriceAvg:  safeInt(w.Price.Average, 0),
		PriceMax:  safeInt(w.Price.Max, 0),
	}

	for _, p := range w.Production {
		method := ProductionMethod{
			ID:        p.Method,
			CycleTime: safeFloat(p.Time, 0),
			Amount:    safeInt(p.Amount, 1),
		}
		if method.ID == "" {
			method.ID = "default"
		}
		for _, res := range p.Primary.Wares {
			if res.Ware == "" {
				continue
			}
			method.Inputs = append(method.Inputs, RecipeInput{
				Ware:   WareID(strings.ToLower(res.Ware)),
				Amount: safeInt(res.Amount, 1),
			})
		}
		def.Methods = append(def.Methods, method)
	}

	return def
}

// WareFromProductionMacro derives the produced ware ID from a production
// module macro name, e.g. "prod_gen_energycells_macro" -> "energycells".
// Returns "" for macros that are not production modules.
func WareFromProductionMacro(macro string) WareID {
	lower := strings.ToLower(macro)
	if !strings.Contains(lower, "prod_") {
		return ""
	}
	for _, prefix := range []string{"prod_gen_", "prod_arg_", "prod_par_", "prod_tel_", "prod_spl_", "prod_ter_", "prod_"} {
		lower = strings.ReplaceAll(lower, prefix, "")
	}
	for _, suffix := range []string{"_macro", "_01", "_02", "_03"} {
		lower = strings.ReplaceAll(lower, suffix, "")
	}
	return WareID(strings.TrimSpace(lower))
}

// IsProductionMacro reports whether a module macro names a production module.
// Other module types (docking, defence, storage) carry no recipe.
func IsProductionMacro(macro string) bool {
	return strings.Contains(strings.ToLower(macro), "prod_")
}

func safeInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func safeFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
