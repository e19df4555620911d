package gamedata

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// CatalogEntry is one file listed in a .cat index.
type CatalogEntry struct {
	Name      string
	Offset    int64
	Size      int64
	Timestamp int64
}

type catalogVersion struct {
	entry   CatalogEntry
	datPath string
}

// CatalogReader reads X4's paired .cat/.dat archives. The .cat file is a
// plain-text index ("filename size timestamp hash" per line, offsets implicit
// and cumulative); the .dat holds the payload bytes. Later catalogs override
// earlier ones, and extension catalogs load after the root set.
type CatalogReader struct {
	gameDir string
	latest  map[string]catalogVersion   // normalized name -> winning version
	all     map[string][]catalogVersion // normalized name -> every version
	names   []string                    // original names, load order
}

// NewCatalogReader indexes every catalog under the game directory.
func NewCatalogReader(gameDir string) (*CatalogReader, error) {
	cr := &CatalogReader{
		gameDir: gameDir,
		latest:  make(map[string]catalogVersion),
		all:     make(map[string][]catalogVersion),
	}

	catFiles, err := filepath.Glob(filepath.Join(gameDir, "*.cat"))
	if err != nil {
		return nil, fmt.Errorf("scan catalogs in %s: %w", gameDir, err)
	}
	sort.Strings(catFiles)

	extDirs, _ := filepath.Glob(filepath.Join(gameDir, "extensions", "*"))
	sort.Strings(extDirs)
	for _, dir := range extDirs {
		extCats, _ := filepath.Glob(filepath.Join(dir, "*.cat"))
		sort.Strings(extCats)
		catFiles = append(catFiles, extCats...)
	}

	if len(catFiles) == 0 {
		return nil, fmt.Errorf("no catalog files in %s: %w", gameDir, ErrUnavailable)
	}

	for _, cat := range catFiles {
		if err := cr.loadCatalog(cat); err != nil {
			log.Warn("skipping catalog", "path", cat, "error", err)
		}
	}

	log.Info("catalogs indexed", "files", len(cr.latest), "catalogs", len(catFiles))
	return cr, nil
}

func (cr *CatalogReader) loadCatalog(catPath string) error {
	datPath := strings.TrimSuffix(catPath, filepath.Ext(catPath)) + ".dat"
	if _, err := os.Stat(datPath); err != nil {
		return fmt.Errorf("missing .dat for %s", catPath)
	}

	content, err := os.ReadFile(catPath)
	if err != nil {
		return err
	}

	var offset int64
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Filenames may contain spaces; the trailing fields never do, so
		// split from the right: name, size, timestamp, hash.
		name, size, timestamp, ok := splitCatalogLine(line)
		if !ok {
			continue
		}

		entry := CatalogEntry{Name: name, Offset: offset, Size: size, Timestamp: timestamp}
		offset += size

		key := normalizeCatalogName(name)
		if _, seen := cr.latest[key]; !seen {
			cr.names = append(cr.names, name)
		}
		v := catalogVersion{entry: entry, datPath: datPath}
		cr.latest[key] = v
		cr.all[key] = append(cr.all[key], v)
	}
	return nil
}

func splitCatalogLine(line string) (name string, size, timestamp int64, ok bool) {
	rest := line
	var tail [3]string
	for i := 2; i >= 0; i-- {
		idx := strings.LastIndex(rest, " ")
		if idx < 0 {
			return "", 0, 0, false
		}
		tail[i] = rest[idx+1:]
		rest = rest[:idx]
	}
	size, err := strconv.ParseInt(tail[0], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	timestamp, err = strconv.ParseInt(tail[1], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	// tail[2] is the hash, unused
	return rest, size, timestamp, true
}

func normalizeCatalogName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}

// ListFiles returns catalog file names, optionally filtered by a glob
// pattern where '*' also crosses path separators.
func (cr *CatalogReader) ListFiles(pattern string) []string {
	out := make([]string, 0, len(cr.names))
	var re *regexp.Regexp
	if pattern != "" {
		re = globToRegexp(pattern)
	}
	for _, name := range cr.names {
		if re == nil || re.MatchString(normalizeCatalogName(name)) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func globToRegexp(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range strings.ToLower(pattern) {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}

// FileExists reports whether a file is present in any catalog.
func (cr *CatalogReader) FileExists(name string) bool {
	_, ok := cr.latest[normalizeCatalogName(name)]
	return ok
}

// ReadFile reads the winning (last loaded) version of a file.
func (cr *CatalogReader) ReadFile(name string) ([]byte, error) {
	v, ok := cr.latest[normalizeCatalogName(name)]
	if !ok {
		return nil, fmt.Errorf("file not found in catalogs: %s", name)
	}
	return readDatSlice(v.datPath, v.entry)
}

// ReadBaseFile reads the base (non-diff) version of a file. Extensions ship
// <diff> patches for XML files; the base document is wanted here, and it is
// usually the largest version on record.
func (cr *CatalogReader) ReadBaseFile(name string) ([]byte, error) {
	versions := cr.all[normalizeCatalogName(name)]
	if len(versions) == 0 {
		return nil, fmt.Errorf("file not found in catalogs: %s", name)
	}

	sorted := make([]catalogVersion, len(versions))
	copy(sorted, versions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].entry.Size > sorted[j].entry.Size })

	for _, v := range sorted {
		data, err := readDatSlice(v.datPath, v.entry)
		if err != nil {
			log.Warn("unreadable catalog entry", "name", name, "dat", v.datPath, "error", err)
			continue
		}
		head := data
		if len(head) > 100 {
			head = head[:100]
		}
		if !bytes.Contains(head, []byte("<diff>")) && !bytes.Contains(head, []byte("<diff ")) {
			return data, nil
		}
	}

	// Everything was a diff; return the largest as a best effort.
	log.Warn("no non-diff version found", "name", name)
	return readDatSlice(sorted[0].datPath, sorted[0].entry)
}

func readDatSlice(datPath string, entry CatalogEntry) ([]byte, error) {
	f, err := os.Open(datPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data := make([]byte, entry.Size)
	if _, err := f.ReadAt(data, entry.Offset); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s from %s: %w", entry.Name, datPath, err)
	}

	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", entry.Name, err)
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return data, nil
}
