package tableview

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tableview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, RankMatches, cfg.Threshold())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfigFile(t, `
page_size: 20
page_size_options: [20, 40]
debounce: 250ms
fuzzy_threshold: contains
export:
  sheet_name: People
columns:
  - id: name
    label: Name
  - id: age
    label: Age
    filter: range
    hidden: true
  - id: city
    filter: select
    disable_global_filter: true
`)
	t.Setenv("TABLEVIEW_PAGE_SIZE", "30")
	t.Setenv("TABLEVIEW_EXPORT__FILE_NAME", "people.xlsx")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.PageSize)
	assert.Equal(t, []int{20, 40}, cfg.PageSizeOptions)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, RankContains, cfg.Threshold())
	assert.Equal(t, ExportConfig{FileName: "people.xlsx", SheetName: "People"}, cfg.Export)
	require.Len(t, cfg.Columns, 3)

	columns, err := cfg.NewColumns()
	require.NoError(t, err)
	assert.Equal(t, &Column{ID: "name", Label: "Name"}, columns[0])
	assert.Equal(t, &Column{ID: "age", Label: "Age", Filter: FilterRange, Hidden: true}, columns[1])
	assert.Equal(t, &Column{ID: "city", Filter: FilterSelect, DisableGlobalFilter: true}, columns[2])

	vm, err := NewFromConfig(testPeople(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 30, vm.State().Pagination.PageSize)
	assert.False(t, vm.IsColumnVisible("age"))
	assert.Equal(t, "People", vm.ExportVisible().Title())

	vm.SetGlobalFilter("crl")
	assert.Empty(t, vm.Projection().Rows)
	vm.SetGlobalFilter("berlin")
	assert.Empty(t, vm.Projection().Rows)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "page size", content: "page_size: -1"},
		{name: "page size option", content: "page_size_options: [10, 0]"},
		{name: "debounce", content: "debounce: -1s"},
		{name: "threshold", content: "fuzzy_threshold: best"},
		{name: "filter kind", content: "columns:\n  - id: name\n    filter: fuzzy"},
		{name: "duplicate column", content: "columns:\n  - id: name\n  - id: name"},
		{name: "column without id", content: "columns:\n  - label: Name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.content))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
