package tableview

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// ViewModel owns a dataset with its column definitions and
// the mutable table state. Every mutating method recomputes
// the Projection before it returns.
//
// A ViewModel is safe for concurrent use so that debounced
// inputs may apply their values from timer goroutines.
type ViewModel struct {
	records []Record
	columns []*Column
	byID    map[string]*Column
	title   string
	opts    DeriveOptions
	log     *zap.Logger

	onChange []func(*Projection)

	mtx   sync.Mutex
	state State
	proj  *Projection
}

// Option configures a ViewModel.
type Option func(*ViewModel)

// WithLogger sets the logger, the default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(vm *ViewModel) {
		if log != nil {
			vm.log = log
		}
	}
}

// WithPageSize sets the initial and default page size.
func WithPageSize(pageSize int) Option {
	return func(vm *ViewModel) {
		if pageSize > 0 {
			vm.opts.DefaultPageSize = pageSize
		}
	}
}

// WithGlobalFilterThreshold sets the minimum Ranking
// for rows to pass the global filter.
func WithGlobalFilterThreshold(threshold Ranking) Option {
	return func(vm *ViewModel) {
		vm.opts.GlobalFilterThreshold = threshold
	}
}

// WithTitle sets the title of exported views.
func WithTitle(title string) Option {
	return func(vm *ViewModel) {
		vm.title = title
	}
}

// WithOnChange registers a callback that is called with
// the new Projection after every recomputation.
// Callbacks are called without the ViewModel being locked.
func WithOnChange(callback func(*Projection)) Option {
	return func(vm *ViewModel) {
		if callback != nil {
			vm.onChange = append(vm.onChange, callback)
		}
	}
}

// New returns a ViewModel for records and columns.
// Column IDs must be unique and non empty.
// The records slice is not copied and must not
// be modified during the lifetime of the ViewModel.
func New(records []Record, columns []*Column, options ...Option) (*ViewModel, error) {
	byID, err := validateColumns(columns)
	if err != nil {
		return nil, err
	}
	vm := &ViewModel{
		records: records,
		columns: slices.Clone(columns),
		byID:    byID,
		opts:    DeriveOptions{DefaultPageSize: DefaultPageSize},
		log:     zap.NewNop(),
	}
	for _, option := range options {
		option(vm)
	}
	vm.opts.OnInactiveFilter = func(columnID string, value any) {
		vm.log.Debug("Ignoring inactive column filter",
			zap.String("column", columnID),
			zap.Any("value", value),
		)
	}
	vm.state = initialState(vm.columns, vm.opts.DefaultPageSize)
	vm.update(func(*State) {})
	return vm, nil
}

// update applies mutate to the state, recomputes the projection,
// writes the clamped pagination back and notifies the listeners.
func (vm *ViewModel) update(mutate func(*State)) {
	vm.mtx.Lock()
	mutate(&vm.state)
	proj := Derive(vm.records, vm.columns, vm.state, vm.opts)
	vm.state.Pagination = Pagination{PageIndex: proj.Page.PageIndex, PageSize: proj.Page.PageSize}
	vm.proj = proj
	vm.mtx.Unlock()

	vm.log.Debug("Table view recomputed",
		zap.Int("total", proj.Page.TotalRows),
		zap.Int("filtered", proj.Page.FilteredRows),
		zap.Int("page_index", proj.Page.PageIndex),
		zap.Int("page_count", proj.Page.PageCount),
		zap.Stringer("sorting", sortingField(proj.Sorting)),
	)
	for _, callback := range vm.onChange {
		callback(proj)
	}
}

type sortingField SortState

func (s sortingField) String() string {
	return fmt.Sprint([]ColumnSort(s))
}

func (vm *ViewModel) column(columnID string) (*Column, error) {
	col, ok := vm.byID[columnID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, columnID)
	}
	return col, nil
}

// Columns returns all column definitions including hidden ones.
func (vm *ViewModel) Columns() []*Column {
	return slices.Clone(vm.columns)
}

// Projection returns the current derived projection.
// The returned value must not be modified.
func (vm *ViewModel) Projection() *Projection {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	return vm.proj
}

// State returns a copy of the current state.
func (vm *ViewModel) State() State {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	return vm.state.Clone()
}

// SetGlobalFilter replaces the global search query
// and resets the page index to 0.
func (vm *ViewModel) SetGlobalFilter(query string) {
	vm.update(func(s *State) {
		s.GlobalFilter = query
		s.Pagination.PageIndex = 0
	})
}

// GlobalFilter returns the current global search query.
func (vm *ViewModel) GlobalFilter() string {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	return vm.state.GlobalFilter
}

// SetColumnFilter sets the filter value of a column,
// a nil value removes the filter.
// The page index is reset to 0.
// Values of the wrong shape for the column's FilterKind
// are stored but have no effect.
func (vm *ViewModel) SetColumnFilter(columnID string, value any) error {
	if _, err := vm.column(columnID); err != nil {
		return err
	}
	vm.update(func(s *State) {
		if value == nil {
			delete(s.ColumnFilters, columnID)
		} else {
			s.ColumnFilters[columnID] = value
		}
		s.Pagination.PageIndex = 0
	})
	return nil
}

// updateColumnFilter atomically replaces the filter value of a
// validated column with the result of change, nil removes the filter.
func (vm *ViewModel) updateColumnFilter(columnID string, change func(old any) any) {
	vm.update(func(s *State) {
		if value := change(s.ColumnFilters[columnID]); value != nil {
			s.ColumnFilters[columnID] = value
		} else {
			delete(s.ColumnFilters, columnID)
		}
		s.Pagination.PageIndex = 0
	})
}

// ColumnFilter returns the filter value of a column or nil.
func (vm *ViewModel) ColumnFilter(columnID string) any {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	return vm.state.ColumnFilters[columnID]
}

// ResetColumnFilters removes all column filters
// and resets the page index to 0.
func (vm *ViewModel) ResetColumnFilters() {
	vm.update(func(s *State) {
		clear(s.ColumnFilters)
		s.Pagination.PageIndex = 0
	})
}

// ToggleSort cycles the sort direction of a column through
// ascending, descending and none. The sort of all other
// columns is cleared. The page index is not changed.
func (vm *ViewModel) ToggleSort(columnID string) error {
	col, err := vm.column(columnID)
	if err != nil {
		return err
	}
	if col.DisableSorting {
		return fmt.Errorf("%w: %q", ErrSortingDisabled, columnID)
	}
	vm.update(func(s *State) {
		next := s.Sorting.Direction(columnID).next()
		if next == SortNone {
			s.Sorting = nil
		} else {
			s.Sorting = SortState{{ColumnID: columnID, Direction: next}}
		}
	})
	return nil
}

// ResetSorting restores the input order.
func (vm *ViewModel) ResetSorting() {
	vm.update(func(s *State) {
		s.Sorting = nil
	})
}

// SetColumnVisibility shows or hides a column.
func (vm *ViewModel) SetColumnVisibility(columnID string, visible bool) error {
	if _, err := vm.column(columnID); err != nil {
		return err
	}
	vm.update(func(s *State) {
		s.Visibility[columnID] = visible
	})
	return nil
}

// SetAllColumnsVisibility shows or hides all columns.
func (vm *ViewModel) SetAllColumnsVisibility(visible bool) {
	vm.update(func(s *State) {
		for _, col := range vm.columns {
			s.Visibility[col.ID] = visible
		}
	})
}

// IsColumnVisible returns the visibility of a column,
// false for an unknown column.
func (vm *ViewModel) IsColumnVisible(columnID string) bool {
	if _, ok := vm.byID[columnID]; !ok {
		return false
	}
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	return vm.state.Visibility.IsVisible(columnID)
}

// AllColumnsVisible returns true if no column is hidden.
func (vm *ViewModel) AllColumnsVisible() bool {
	vm.mtx.Lock()
	defer vm.mtx.Unlock()

	for _, col := range vm.columns {
		if !vm.state.Visibility.IsVisible(col.ID) {
			return false
		}
	}
	return true
}

// SetPageIndex sets the zero based page index
// clamped to the range of available pages.
func (vm *ViewModel) SetPageIndex(pageIndex int) {
	vm.update(func(s *State) {
		s.Pagination.PageIndex = pageIndex
	})
}

// SetPageSize changes the number of rows per page.
// The page index is recomputed so that the first row
// of the current page stays visible and then clamped.
// A pageSize <= 0 restores the default page size.
func (vm *ViewModel) SetPageSize(pageSize int) {
	if pageSize <= 0 {
		pageSize = vm.opts.pageSize(0)
	}
	vm.update(func(s *State) {
		topRow := s.Pagination.PageIndex * s.Pagination.PageSize
		s.Pagination = Pagination{PageIndex: topRow / pageSize, PageSize: pageSize}
	})
}

// NextPage moves to the next page if there is one.
func (vm *ViewModel) NextPage() {
	vm.update(func(s *State) {
		s.Pagination.PageIndex++
	})
}

// PreviousPage moves to the previous page if there is one.
func (vm *ViewModel) PreviousPage() {
	vm.update(func(s *State) {
		s.Pagination.PageIndex = max(s.Pagination.PageIndex-1, 0)
	})
}

// FirstPage moves to the first page.
func (vm *ViewModel) FirstPage() {
	vm.SetPageIndex(0)
}

// LastPage moves to the last page.
func (vm *ViewModel) LastPage() {
	vm.update(func(s *State) {
		s.Pagination.PageIndex = vm.proj.Page.PageCount - 1
	})
}

// FacetedUniqueValues returns the distinct values of a column
// with their row counts, as options for a select filter.
// The column's own filter is not applied.
func (vm *ViewModel) FacetedUniqueValues(columnID string) ([]FacetValue, error) {
	col, err := vm.column(columnID)
	if err != nil {
		return nil, err
	}
	state := vm.State()
	return facetedUniqueValues(vm.records, vm.columns, state, vm.opts, col), nil
}

// FacetedMinMax returns the numeric bounds of a column,
// as placeholders for a range filter.
// The column's own filter is not applied.
// The result ok is false if there are no numeric values.
func (vm *ViewModel) FacetedMinMax(columnID string) (lo, hi float64, ok bool, err error) {
	col, err := vm.column(columnID)
	if err != nil {
		return 0, 0, false, err
	}
	state := vm.State()
	lo, hi, ok = facetedMinMax(vm.records, vm.columns, state, vm.opts, col)
	return lo, hi, ok, nil
}

// ExportVisible returns all filtered and sorted rows of all pages
// restricted to the visible columns. Column titles are the column
// labels and cells are the rendered values.
// Without rows or visible columns the result is an empty view.
func (vm *ViewModel) ExportVisible() *AnyValuesView {
	proj := vm.Projection()
	view := vm.renderRows(proj, proj.FilteredRows)

	vm.log.Info("Exporting visible rows",
		zap.Int("rows", len(view.Rows)),
		zap.Strings("columns", view.Cols),
	)
	return view
}

// CurrentPage returns the rows of the current page
// like ExportVisible returns the rows of all pages.
func (vm *ViewModel) CurrentPage() *AnyValuesView {
	proj := vm.Projection()
	return vm.renderRows(proj, proj.Rows)
}

func (vm *ViewModel) renderRows(proj *Projection, rows []Row) *AnyValuesView {
	view := &AnyValuesView{
		Tit:  vm.title,
		Cols: make([]string, len(proj.Columns)),
		Rows: make([][]any, len(rows)),
	}
	for i, col := range proj.Columns {
		view.Cols[i] = col.Header()
	}
	for r, row := range rows {
		values := make([]any, len(proj.Columns))
		for c, col := range proj.Columns {
			values[c] = col.Rendered(row.Record)
		}
		view.Rows[r] = values
	}
	return view
}
