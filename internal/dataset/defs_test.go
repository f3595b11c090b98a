package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefs(t *testing.T) {
	defs, err := LoadDefs(writeDefs(t, `
- column: population
  label: Population
  palette: YlOrRd
  bins: 5
  pretty: true
  precision: 2
- column: sales
  label: Sales
  palette: Blues
  bins: 6
`))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "population", defs[0].Column)
	assert.Equal(t, "Population", defs[0].Label)
	assert.True(t, defs[0].Pretty)
	assert.Equal(t, 2, defs[0].Precision)
	assert.Equal(t, 6, defs[1].Bins)
}

func TestLoadDefs_UnknownColumn(t *testing.T) {
	_, err := LoadDefs(writeDefs(t, `
- column: revenue
  label: Revenue
`))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataLoad))
	assert.Contains(t, err.Error(), "revenue")
}

func TestLoadDefs_MissingLabel(t *testing.T) {
	_, err := LoadDefs(writeDefs(t, `
- column: sales
`))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataLoad))
}

func TestLoadDefs_Empty(t *testing.T) {
	_, err := LoadDefs(writeDefs(t, ""))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataLoad))
}

func TestLoadDefs_MissingFile(t *testing.T) {
	_, err := LoadDefs(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataLoad))
}
