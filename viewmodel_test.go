package tableview

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestViewModel(t *testing.T, options ...Option) *ViewModel {
	t.Helper()
	vm, err := New(testPeople(), testPeopleColumns(), options...)
	require.NoError(t, err)
	return vm
}

func TestNew_InvalidColumns(t *testing.T) {
	_, err := New(nil, []*Column{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New(nil, []*Column{{ID: ""}})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = New(nil, []*Column{nil})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = New(nil, []*Column{{ID: "a", Filter: FilterKind(7)}})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	vm, err := New(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, vm.Projection().Rows)
	assert.Empty(t, vm.ExportVisible().Rows)
}

func TestViewModel_InitialState(t *testing.T) {
	columns := testPeopleColumns()
	columns[2].Hidden = true
	vm, err := New(testPeople(), columns, WithPageSize(2))
	require.NoError(t, err)

	state := vm.State()
	assert.Equal(t, Pagination{PageIndex: 0, PageSize: 2}, state.Pagination)
	assert.Empty(t, state.GlobalFilter)
	assert.Empty(t, state.ColumnFilters)
	assert.Empty(t, state.Sorting)
	assert.False(t, vm.IsColumnVisible("city"))
	assert.False(t, vm.AllColumnsVisible())

	proj := vm.Projection()
	assert.Equal(t, []string{"Alice", "Bob"}, rowNames(proj.Rows))
	assert.Equal(t, 3, proj.Page.PageCount)
	require.Len(t, proj.Columns, 2)
	assert.Len(t, vm.Columns(), 3)
}

func TestViewModel_UnknownColumn(t *testing.T) {
	vm := newTestViewModel(t)

	assert.ErrorIs(t, vm.SetColumnFilter("zip", "1"), ErrColumnNotFound)
	assert.ErrorIs(t, vm.ToggleSort("zip"), ErrColumnNotFound)
	assert.ErrorIs(t, vm.SetColumnVisibility("zip", false), ErrColumnNotFound)
	_, err := vm.FacetedUniqueValues("zip")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	_, _, _, err = vm.FacetedMinMax("zip")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.False(t, vm.IsColumnVisible("zip"))
	assert.Empty(t, vm.State().ColumnFilters)
}

func TestViewModel_GlobalFilterResetsPage(t *testing.T) {
	vm, err := New(
		numberedRecords(23),
		[]*Column{{ID: "n", Filter: FilterRange}, {ID: "name"}},
		WithGlobalFilterThreshold(RankContains),
	)
	require.NoError(t, err)
	vm.SetPageIndex(2)
	require.Equal(t, 2, vm.Projection().Page.PageIndex)

	vm.SetGlobalFilter("row 1")
	assert.Equal(t, "row 1", vm.GlobalFilter())
	proj := vm.Projection()
	assert.Equal(t, 0, proj.Page.PageIndex)
	// row 1 and row 10 to row 19
	assert.Equal(t, 11, proj.Page.FilteredRows)

	vm.SetGlobalFilter("")
	assert.Equal(t, 23, vm.Projection().Page.FilteredRows)
}

func TestViewModel_GlobalFilterWithoutFilterableColumns(t *testing.T) {
	vm, err := New(numberedRecords(23), []*Column{
		{ID: "n", DisableGlobalFilter: true},
		{ID: "name", DisableGlobalFilter: true},
	})
	require.NoError(t, err)
	vm.SetGlobalFilter("n1")
	assert.Equal(t, 23, vm.Projection().Page.FilteredRows)
	assert.Equal(t, "n1", vm.GlobalFilter())
}

func TestViewModel_ColumnFilter(t *testing.T) {
	vm := newTestViewModel(t, WithPageSize(2))
	vm.SetPageIndex(1)

	require.NoError(t, vm.SetColumnFilter("age", Between(18, 30)))
	assert.Equal(t, Between(18, 30), vm.ColumnFilter("age"))
	proj := vm.Projection()
	assert.Equal(t, 0, proj.Page.PageIndex)
	assert.Equal(t, []string{"Alice", "Carol", "Dave"}, rowNames(proj.FilteredRows))

	// Wrong shape is kept but has no effect
	require.NoError(t, vm.SetColumnFilter("city", 42))
	assert.Equal(t, 42, vm.ColumnFilter("city"))
	assert.Equal(t, 3, vm.Projection().Page.FilteredRows)

	require.NoError(t, vm.SetColumnFilter("age", nil))
	assert.Nil(t, vm.ColumnFilter("age"))
	assert.Equal(t, 5, vm.Projection().Page.FilteredRows)

	require.NoError(t, vm.SetColumnFilter("name", "e"))
	vm.ResetColumnFilters()
	assert.Empty(t, vm.State().ColumnFilters)
	assert.Equal(t, 5, vm.Projection().Page.FilteredRows)
}

func TestViewModel_ToggleSort(t *testing.T) {
	vm := newTestViewModel(t)

	require.NoError(t, vm.ToggleSort("age"))
	assert.Equal(t, SortAscending, vm.Projection().SortDirection("age"))
	assert.Equal(t, []string{"Carol", "Alice", "Dave", "Bob", "Eve"}, rowNames(vm.Projection().Rows))

	require.NoError(t, vm.ToggleSort("age"))
	assert.Equal(t, SortDescending, vm.Projection().SortDirection("age"))
	assert.Equal(t, []string{"Bob", "Dave", "Alice", "Carol", "Eve"}, rowNames(vm.Projection().Rows))

	require.NoError(t, vm.ToggleSort("age"))
	assert.Equal(t, SortNone, vm.Projection().SortDirection("age"))
	assert.Empty(t, vm.State().Sorting)
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave", "Eve"}, rowNames(vm.Projection().Rows))

	// Another column replaces the sort
	require.NoError(t, vm.ToggleSort("age"))
	require.NoError(t, vm.ToggleSort("name"))
	assert.Equal(t, SortState{{ColumnID: "name", Direction: SortAscending}}, vm.State().Sorting)
	assert.Equal(t, SortNone, vm.Projection().SortDirection("age"))

	vm.ResetSorting()
	assert.Empty(t, vm.State().Sorting)
}

func TestViewModel_ToggleSortDisabled(t *testing.T) {
	columns := testPeopleColumns()
	columns[0].DisableSorting = true
	vm, err := New(testPeople(), columns)
	require.NoError(t, err)

	assert.ErrorIs(t, vm.ToggleSort("name"), ErrSortingDisabled)
	assert.Empty(t, vm.State().Sorting)
}

func TestViewModel_ToggleSortKeepsPage(t *testing.T) {
	vm, err := New(numberedRecords(23), []*Column{{ID: "n", Filter: FilterRange}, {ID: "name"}})
	require.NoError(t, err)
	vm.SetPageIndex(1)
	require.NoError(t, vm.ToggleSort("n"))
	require.NoError(t, vm.ToggleSort("n"))
	proj := vm.Projection()
	assert.Equal(t, 1, proj.Page.PageIndex)
	assert.Equal(t, 13, proj.Rows[0].Record["n"])
}

func TestViewModel_SetPageSize(t *testing.T) {
	vm, err := New(numberedRecords(23), []*Column{{ID: "n", Filter: FilterRange}, {ID: "name"}})
	require.NoError(t, err)
	vm.SetPageIndex(2)
	require.Equal(t, 3, vm.Projection().Page.PageCount)

	vm.SetPageSize(50)
	proj := vm.Projection()
	assert.Equal(t, 50, proj.Page.PageSize)
	assert.Equal(t, 1, proj.Page.PageCount)
	assert.Equal(t, 0, proj.Page.PageIndex)
	assert.Len(t, proj.Rows, 23)

	vm.SetPageSize(5)
	vm.SetPageIndex(3)
	vm.SetPageSize(10)
	// First row 16 of page 3 stays visible on page 1
	assert.Equal(t, Pagination{PageIndex: 1, PageSize: 10}, vm.State().Pagination)

	vm.SetPageSize(0)
	assert.Equal(t, DefaultPageSize, vm.State().Pagination.PageSize)
}

func TestViewModel_PageNavigation(t *testing.T) {
	vm, err := New(numberedRecords(23), []*Column{{ID: "n", Filter: FilterRange}})
	require.NoError(t, err)

	vm.PreviousPage()
	assert.Equal(t, 0, vm.Projection().Page.PageIndex)
	vm.NextPage()
	assert.Equal(t, 1, vm.Projection().Page.PageIndex)
	vm.LastPage()
	assert.Equal(t, 2, vm.Projection().Page.PageIndex)
	vm.NextPage()
	assert.Equal(t, 2, vm.Projection().Page.PageIndex)
	assert.False(t, vm.Projection().Page.CanNextPage())
	vm.PreviousPage()
	assert.Equal(t, 1, vm.Projection().Page.PageIndex)
	vm.FirstPage()
	assert.Equal(t, 0, vm.Projection().Page.PageIndex)
	vm.SetPageIndex(100)
	assert.Equal(t, 2, vm.State().Pagination.PageIndex)
	vm.SetPageIndex(-5)
	assert.Equal(t, 0, vm.State().Pagination.PageIndex)
}

func TestViewModel_PageClampedAfterFilter(t *testing.T) {
	vm, err := New(numberedRecords(23), []*Column{{ID: "n", Filter: FilterRange}})
	require.NoError(t, err)
	vm.SetPageSize(5)
	vm.LastPage()
	require.Equal(t, 4, vm.State().Pagination.PageIndex)

	require.NoError(t, vm.SetColumnFilter("n", AtMost(3)))
	assert.Equal(t, 0, vm.State().Pagination.PageIndex)
	assert.Equal(t, 1, vm.Projection().Page.PageCount)
}

func TestViewModel_Visibility(t *testing.T) {
	vm := newTestViewModel(t)
	assert.True(t, vm.AllColumnsVisible())

	require.NoError(t, vm.SetColumnVisibility("age", false))
	assert.False(t, vm.IsColumnVisible("age"))
	assert.False(t, vm.AllColumnsVisible())
	assert.Len(t, vm.Projection().Columns, 2)

	vm.SetAllColumnsVisibility(false)
	assert.Empty(t, vm.Projection().Columns)
	// Rows are unaffected by visibility
	assert.Len(t, vm.Projection().Rows, 5)

	vm.SetAllColumnsVisibility(true)
	assert.True(t, vm.AllColumnsVisible())
	assert.Len(t, vm.Projection().Columns, 3)
}

func TestViewModel_HiddenColumnStillFilters(t *testing.T) {
	vm := newTestViewModel(t)
	require.NoError(t, vm.SetColumnVisibility("city", false))
	require.NoError(t, vm.SetColumnFilter("city", "Berlin"))
	assert.Equal(t, []string{"Alice", "Carol"}, rowNames(vm.Projection().Rows))
}

func TestViewModel_ExportVisible(t *testing.T) {
	records := make([]Record, 23)
	for i := range records {
		records[i] = Record{
			"id":    i,
			"name":  fmt.Sprintf("Person %d", i),
			"age":   15 + i,
			"email": fmt.Sprintf("p%d@example.com", i),
			"score": float64(i) / 4,
		}
	}
	columns := []*Column{
		{ID: "id", Label: "ID", Filter: FilterRange},
		{ID: "name", Label: "Name"},
		{ID: "age", Label: "Age", Filter: FilterRange},
		{ID: "email", Label: "Email"},
		{ID: "score", Format: func(v any) any { return fmt.Sprintf("%.2f", v) }},
	}
	vm, err := New(records, columns, WithTitle("People"))
	require.NoError(t, err)
	require.NoError(t, vm.SetColumnVisibility("id", false))
	require.NoError(t, vm.SetColumnVisibility("email", false))
	require.NoError(t, vm.SetColumnFilter("age", Between(18, 30)))
	require.NoError(t, vm.ToggleSort("age"))
	require.NoError(t, vm.ToggleSort("age"))

	view := vm.ExportVisible()
	assert.Equal(t, "People", view.Title())
	assert.Equal(t, []string{"Name", "Age", "score"}, view.Columns())
	// All 13 filtered rows, not just the current page of 10
	require.Equal(t, 13, view.NumRows())
	assert.Equal(t, []any{"Person 15", 30, "3.75"}, view.Rows[0])
	assert.Equal(t, []any{"Person 3", 18, "0.75"}, view.Rows[12])
	assert.Len(t, vm.Projection().Rows, 10)
}

func TestViewModel_CurrentPage(t *testing.T) {
	vm, err := New(numberedRecords(23), []*Column{{ID: "n", Label: "N"}, {ID: "name"}}, WithTitle("Rows"))
	require.NoError(t, err)
	vm.SetPageIndex(2)
	require.NoError(t, vm.SetColumnVisibility("name", false))

	view := vm.CurrentPage()
	assert.Equal(t, "Rows", view.Title())
	assert.Equal(t, []string{"N"}, view.Columns())
	assert.Equal(t, [][]any{{21}, {22}, {23}}, view.Rows)
	assert.Equal(t, 23, vm.ExportVisible().NumRows())
}

func TestViewModel_ExportVisibleEmpty(t *testing.T) {
	vm := newTestViewModel(t)
	require.NoError(t, vm.SetColumnFilter("name", "nobody"))
	view := vm.ExportVisible()
	assert.Equal(t, []string{"Name", "Age", "City"}, view.Columns())
	assert.Equal(t, 0, view.NumRows())

	vm.SetAllColumnsVisibility(false)
	vm.ResetColumnFilters()
	view = vm.ExportVisible()
	assert.Empty(t, view.Columns())
	assert.Equal(t, 5, view.NumRows())
	assert.Empty(t, view.Rows[0])
}

func TestViewModel_Facets(t *testing.T) {
	vm := newTestViewModel(t)
	require.NoError(t, vm.SetColumnFilter("city", "Berlin"))

	facets, err := vm.FacetedUniqueValues("city")
	require.NoError(t, err)
	assert.Equal(t, []FacetValue{{Value: "Berlin", Count: 2}, {Value: "Paris", Count: 1}, {Value: "Vienna", Count: 1}}, facets)

	lo, hi, ok, err := vm.FacetedMinMax("age")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 18.0, lo)
	assert.Equal(t, 25.0, hi)
}

func TestViewModel_OnChange(t *testing.T) {
	var calls []*Projection
	vm := newTestViewModel(t, WithOnChange(func(p *Projection) { calls = append(calls, p) }))
	require.Len(t, calls, 1)

	vm.SetGlobalFilter("berlin")
	require.Len(t, calls, 2)
	assert.Same(t, vm.Projection(), calls[1])
	assert.Equal(t, 2, calls[1].Page.FilteredRows)
}

func TestViewModel_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	vm := newTestViewModel(t, WithLogger(zap.New(core)))

	require.NoError(t, vm.SetColumnFilter("age", "old"))
	assert.NotZero(t, logs.FilterMessage("Ignoring inactive column filter").Len())

	vm.ExportVisible()
	exports := logs.FilterMessage("Exporting visible rows").All()
	require.Len(t, exports, 1)
	assert.Equal(t, int64(5), exports[0].ContextMap()["rows"])
}

func TestViewModel_Concurrent(t *testing.T) {
	vm, err := New(numberedRecords(100), []*Column{{ID: "n", Filter: FilterRange}, {ID: "name"}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				vm.SetGlobalFilter(fmt.Sprint(j))
				_ = vm.SetColumnFilter("n", AtLeast(float64(i)))
				_ = vm.ToggleSort("n")
				vm.NextPage()
				_ = vm.Projection()
				_ = vm.ExportVisible()
			}
		}(i)
	}
	wg.Wait()

	vm.SetGlobalFilter("")
	vm.ResetColumnFilters()
	assert.Equal(t, 100, vm.Projection().Page.FilteredRows)
}
