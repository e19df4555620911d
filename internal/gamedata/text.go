package gamedata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// LanguageEnglish is X4's language code for English localization files.
const LanguageEnglish = 44

var textRefPattern = regexp.MustCompile(`^\{(\d+),\s*(\d+)\}$`)

// TextResolver resolves X4 text references like "{20201,701}" against the
// localization pages in t/XXXX-lYYY.xml. References that cannot be resolved
// come back verbatim so callers always have something to display.
type TextResolver struct {
	catalog  *CatalogReader
	language int
	pages    map[int]map[int]string
	loaded   bool
}

// NewTextResolver creates a resolver for the given language.
func NewTextResolver(catalog *CatalogReader, language int) *TextResolver {
	return &TextResolver{catalog: catalog, language: language}
}

// Resolve maps a "{page,text}" reference to its localized text. Plain
// strings pass through untouched.
func (t *TextResolver) Resolve(ref string) string {
	m := textRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return ref
	}
	pageID, _ := strconv.Atoi(m[1])
	textID, _ := strconv.Atoi(m[2])
	if s, ok := t.Text(pageID, textID); ok {
		return s
	}
	log.Debug("text reference not found", "ref", ref)
	return ref
}

// Text looks up a localization entry by page and text ID.
func (t *TextResolver) Text(pageID, textID int) (string, bool) {
	t.load()
	page, ok := t.pages[pageID]
	if !ok {
		return "", false
	}
	s, ok := page[textID]
	return s, ok
}

func (t *TextResolver) load() {
	if t.loaded {
		return
	}
	t.loaded = true
	t.pages = make(map[int]map[int]string)

	suffix := fmt.Sprintf("-l%03d.xml", t.language)
	var files []string
	for _, name := range t.catalog.ListFiles("t/*.xml") {
		if strings.Contains(name, suffix) {
			files = append(files, name)
		}
	}

	for _, name := range files {
		data, err := t.catalog.ReadBaseFile(name)
		if err != nil {
			log.Warn("unreadable localization file", "name", name, "error", err)
			continue
		}
		if err := t.parsePages(data); err != nil {
			log.Warn("malformed localization file", "name", name, "error", err)
		}
	}

	total := 0
	for _, p := range t.pages {
		total += len(p)
	}
	log.Info("localization loaded", "language", t.language, "files", len(files), "entries", total)
}

func (t *TextResolver) parsePages(data []byte) error {
	dec := SecureDecoder(bytes.NewReader(data))

	var pageID int
	var inPage bool
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
			switch el.Name.Local {
			case "page":
				pageID = intAttr(el, "id", -1)
				inPage = pageID >= 0
				if inPage && t.pages[pageID] == nil {
					t.pages[pageID] = make(map[int]string)
				}
			case "t":
				if !inPage {
					continue
				}
				textID := intAttr(el, "id", -1)
				var body string
				if err := dec.DecodeElement(&body, &el); err != nil {
					return err
				}
				if textID >= 0 {
					t.pages[pageID][textID] = body
				}
			}
		case xml.EndElement:
			if el.Name.Local == "page" {
				inPage = false
			}
		}
	}
}

func intAttr(el xml.StartElement, name string, def int) int {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			if n, err := strconv.Atoi(a.Value); err == nil {
				return n
			}
			return def
		}
	}
	return def
}
