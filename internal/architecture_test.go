package internal_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePrefix = "github.com/Zillatron27/x4-production-analyzer/internal"

// TestAnalysisImportRestrictions keeps the rate engine independent of every
// presentation and persistence surface.
func TestAnalysisImportRestrictions(t *testing.T) {
	forbiddenPrefixes := []string{
		modulePrefix + "/tui",
		modulePrefix + "/export",
		modulePrefix + "/database",
		modulePrefix + "/chainmap",
		modulePrefix + "/theme",
	}
	checkImports(t, "./analysis", nil, forbiddenPrefixes)
}

// TestSaveImportRestrictions keeps the parser a pure producer: it may lean
// on game definitions for classification but never on analysis results.
func TestSaveImportRestrictions(t *testing.T) {
	allowedPrefixes := []string{
		modulePrefix + "/gamedata",
		modulePrefix + "/log",
	}
	checkImports(t, "./save", allowedPrefixes, nil)
}

// TestGamedataImportRestrictions keeps definition loading free of save and
// analysis concerns, so the cache layer can serialize it alone.
func TestGamedataImportRestrictions(t *testing.T) {
	forbiddenPrefixes := []string{
		modulePrefix + "/save",
		modulePrefix + "/analysis",
		modulePrefix + "/database",
	}
	checkImports(t, "./gamedata", nil, forbiddenPrefixes)
}

// TestTUIImportRestrictions ensures the TUI renders finished reports and
// never reaches into parsing or persistence.
func TestTUIImportRestrictions(t *testing.T) {
	allowedPrefixes := []string{
		modulePrefix + "/analysis",
		modulePrefix + "/gamedata",
		modulePrefix + "/theme",
		modulePrefix + "/log",
	}
	checkImports(t, "./tui", allowedPrefixes, nil)
}

func checkImports(t *testing.T, packageDir string, allowedPrefixes, forbiddenPrefixes []string) {
	err := filepath.Walk(packageDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			return nil
		}

		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.HasPrefix(importPath, modulePrefix) {
				continue
			}

			for _, forbidden := range forbiddenPrefixes {
				if strings.HasPrefix(importPath, forbidden) {
					t.Errorf("FORBIDDEN import in %s: %s", path, importPath)
				}
			}

			if len(allowedPrefixes) > 0 {
				allowed := false
				for _, prefix := range allowedPrefixes {
					if strings.HasPrefix(importPath, prefix) {
						allowed = true
						break
					}
				}
				if !allowed {
					t.Errorf("DISALLOWED import in %s: %s (not in allowed list)", path, importPath)
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Errorf("Failed to walk directory %s: %v", packageDir, err)
	}
}
