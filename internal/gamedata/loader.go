package gamedata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// shipSizeDirs are the unit directories that hold ship macros.
var shipSizeDirs = []string{"size_xs", "size_s", "size_m", "size_l", "size_xl"}

// Load builds the definition tables from a game installation directory.
// Ware names resolve against the given X4 language code; zero or negative
// means English.
//
// Individual malformed files are recoverable: their contributions are
// skipped and reported in warnings. Only when no usable definitions can be
// produced at all does Load fail, and then always with ErrUnavailable so
// the caller can fall back to storage-estimate mode.
func Load(gameDir string, language int) (*Definitions, []error, error) {
	if gameDir == "" {
		return nil, nil, ErrUnavailable
	}
	if _, err := os.Stat(gameDir); err != nil {
		return nil, nil, fmt.Errorf("game directory %s: %w", gameDir, ErrUnavailable)
	}

	catalog, err := NewCatalogReader(gameDir)
	if err != nil {
		return nil, nil, fmt.Errorf("indexing %s: %w", gameDir, ErrUnavailable)
	}

	if language <= 0 {
		language = LanguageEnglish
	}

	var warnings []error
	resolver := NewTextResolver(catalog, language)

	wares, warn := loadWares(catalog, resolver, gameDir)
	warnings = append(warnings, warn...)

	ships, warn := loadShips(catalog)
	warnings = append(warnings, warn...)

	if len(wares) == 0 && len(ships) == 0 {
		return nil, warnings, ErrUnavailable
	}

	log.Info("game definitions loaded", "wares", len(wares), "ships", len(ships), "warnings", len(warnings))
	return &Definitions{Wares: wares, Ships: ships}, warnings, nil
}

func loadWares(catalog *CatalogReader, resolver *TextResolver, gameDir string) (map[WareID]*WareDefinition, []error) {
	var warnings []error

	data, err := catalog.ReadBaseFile(WaresPath)
	if err != nil {
		data, err = catalog.ReadFile(WaresPath)
	}
	if err != nil {
		// Unpacked installations keep the file on disk directly.
		direct := filepath.Join(gameDir, filepath.FromSlash(WaresPath))
		data, err = os.ReadFile(direct)
	}
	if err != nil {
		warnings = append(warnings, &ParseFailure{Path: WaresPath, Err: err})
		return nil, warnings
	}

	wares, err := ParseWares(data, resolver.Resolve)
	if err != nil {
		warnings = append(warnings, &ParseFailure{Path: WaresPath, Err: err})
		return nil, warnings
	}
	return wares, warnings
}

func loadShips(catalog *CatalogReader) (map[string]*ShipDefinition, []error) {
	var warnings []error

	// Storage macros first; ships join cargo capacity through them.
	storage := make(map[string]storageInfo)
	for _, name := range catalog.ListFiles("*storage*macro*.xml") {
		if strings.Contains(strings.ToLower(name), "station") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		data, err := catalog.ReadFile(name)
		if err != nil {
			continue
		}
		if err := ParseStorageMacros(data, storage); err != nil {
			warnings = append(warnings, &ParseFailure{Path: name, Err: err})
		}
	}
	log.Debug("storage macros extracted", "count", len(storage))

	var shipFiles []string
	for _, size := range shipSizeDirs {
		shipFiles = append(shipFiles, catalog.ListFiles("assets/units/"+size+"/macros/ship_*.xml")...)
	}
	shipFiles = append(shipFiles, catalog.ListFiles("assets/legacy/*/macros/ship_*.xml")...)
	sort.Strings(shipFiles)

	ships := make(map[string]*ShipDefinition)
	for _, name := range shipFiles {
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		data, err := catalog.ReadFile(name)
		if err != nil {
			continue
		}
		if err := ParseShipMacros(data, storage, ships); err != nil {
			warnings = append(warnings, &ParseFailure{Path: name, Err: err})
		}
	}

	log.Debug("ship macros extracted", "count", len(ships))
	return ships, warnings
}

// Fingerprint identifies the installed game version by the modification
// times of key catalog files. Cached definitions are invalidated when it
// changes.
func Fingerprint(gameDir string) string {
	var parts []string
	for _, name := range []string{"01.cat", "08.cat"} {
		info, err := os.Stat(filepath.Join(gameDir, name))
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d", name, info.ModTime().UnixNano()))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
