package gamedata

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCatalogLine(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantSize int64
		wantOK   bool
	}{
		{"libraries/wares.xml 1024 1600000000 deadbeef", "libraries/wares.xml", 1024, true},
		{"assets/some file with spaces.xml 42 1600000001 cafebabe", "assets/some file with spaces.xml", 42, true},
		{"not-enough-fields 12", "", 0, false},
		{"name notanumber 1600000000 hash", "", 0, false},
	}
	for _, tt := range tests {
		name, size, _, ok := splitCatalogLine(tt.line)
		assert.Equal(t, tt.wantOK, ok, "line %q", tt.line)
		if ok {
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantSize, size)
		}
	}
}

// writeCatalog lays down a paired .cat/.dat with the given files appended
// in order, offsets cumulative.
func writeCatalog(t *testing.T, dir, base string, files map[string]string, order []string) {
	t.Helper()
	var cat, dat []byte
	for _, name := range order {
		content := files[name]
		cat = append(cat, []byte(name+" "+strconv.Itoa(len(content))+" 1600000000 0123456789abcdef\n")...)
		dat = append(dat, []byte(content)...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, base+".cat"), cat, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, base+".dat"), dat, 0644))
}

func TestCatalogReader(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "01", map[string]string{
		"libraries/wares.xml": "<wares>old</wares>",
		"t/0001-l044.xml":     "<language/>",
	}, []string{"libraries/wares.xml", "t/0001-l044.xml"})
	writeCatalog(t, dir, "02", map[string]string{
		"libraries\\wares.xml": "<wares>newer and longer</wares>",
	}, []string{"libraries\\wares.xml"})

	cr, err := NewCatalogReader(dir)
	require.NoError(t, err)

	// Later catalogs override, and backslash names normalize.
	data, err := cr.ReadFile("libraries/wares.xml")
	require.NoError(t, err)
	assert.Equal(t, "<wares>newer and longer</wares>", string(data))

	assert.True(t, cr.FileExists("t/0001-l044.xml"))
	assert.False(t, cr.FileExists("t/0002-l044.xml"))

	matches := cr.ListFiles("t/*.xml")
	assert.Equal(t, []string{"t/0001-l044.xml"}, matches)
}

func TestCatalogCumulativeOffsets(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "01", map[string]string{
		"a.xml": "first",
		"b.xml": "second-file",
		"c.xml": "third",
	}, []string{"a.xml", "b.xml", "c.xml"})

	cr, err := NewCatalogReader(dir)
	require.NoError(t, err)

	for name, want := range map[string]string{"a.xml": "first", "b.xml": "second-file", "c.xml": "third"} {
		data, err := cr.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, want, string(data), name)
	}
}

func TestReadBaseFileSkipsDiffs(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "01", map[string]string{
		"libraries/wares.xml": "<wares>base content here</wares>",
	}, []string{"libraries/wares.xml"})
	extDir := filepath.Join(dir, "extensions", "ego_dlc")
	require.NoError(t, os.MkdirAll(extDir, 0755))
	writeCatalog(t, extDir, "ext_01", map[string]string{
		"libraries/wares.xml": "<diff><add sel=\"/wares\"><ware id=\"x\"/></add></diff>",
	}, []string{"libraries/wares.xml"})

	cr, err := NewCatalogReader(dir)
	require.NoError(t, err)

	// The winning version is the extension diff...
	data, err := cr.ReadFile("libraries/wares.xml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<diff>")

	// ...but the base read skips diffs.
	base, err := cr.ReadBaseFile("libraries/wares.xml")
	require.NoError(t, err)
	assert.Equal(t, "<wares>base content here</wares>", string(base))
}

func TestNewCatalogReaderNoCatalogs(t *testing.T) {
	_, err := NewCatalogReader(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}
