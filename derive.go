package tableview

import (
	"cmp"
	"slices"
)

// DefaultPageSize is used for a Pagination.PageSize <= 0
// if DeriveOptions.DefaultPageSize is not set.
const DefaultPageSize = 10

// DeriveOptions configure Derive.
type DeriveOptions struct {
	// GlobalFilterThreshold is the minimum Ranking a cell value
	// must reach for the global filter to keep its row.
	// The zero value RankNoMatch is treated as RankMatches.
	GlobalFilterThreshold Ranking
	// DefaultPageSize replaces a Pagination.PageSize <= 0,
	// if <= 0 itself then DefaultPageSize is used.
	DefaultPageSize int
	// OnInactiveFilter is called for every set column filter value
	// that is empty or has the wrong shape for its column.
	OnInactiveFilter func(columnID string, value any)
}

func (o *DeriveOptions) threshold() Ranking {
	if o.GlobalFilterThreshold <= RankNoMatch {
		return RankMatches
	}
	return o.GlobalFilterThreshold
}

func (o *DeriveOptions) pageSize(size int) int {
	switch {
	case size > 0:
		return size
	case o.DefaultPageSize > 0:
		return o.DefaultPageSize
	default:
		return DefaultPageSize
	}
}

// Row is a record that passed all filters.
type Row struct {
	// Index of the record in the input slice.
	Index  int
	Record Record
	// Rank is the best global filter rank of
	// the row's cells, zero without global filter.
	Rank RankInfo
}

// PageInfo summarizes the pagination of a Projection.
type PageInfo struct {
	PageIndex    int
	PageSize     int
	PageCount    int
	TotalRows    int
	FilteredRows int
	// FirstRow and LastRow are the one based numbers
	// of the filtered rows on the page, zero for an empty page.
	FirstRow int
	LastRow  int
}

func (p PageInfo) CanPreviousPage() bool { return p.PageIndex > 0 }
func (p PageInfo) CanNextPage() bool     { return p.PageIndex < p.PageCount-1 }

// Projection is the derived, read-only result of Derive.
type Projection struct {
	// Rows of the current page.
	Rows []Row
	// FilteredRows are all filtered and sorted rows of all pages.
	FilteredRows []Row
	// Columns are the visible columns in definition order.
	Columns []*Column
	// Sorting is the effective sort state
	// without unknown or not sortable columns.
	Sorting SortState
	Page    PageInfo
}

// SortDirection returns the sort indicator of a column.
func (p *Projection) SortDirection(columnID string) SortDirection {
	return p.Sorting.Direction(columnID)
}

// Values returns the cell values of row for the visible columns.
func (p *Projection) Values(row Row) []any {
	values := make([]any, len(p.Columns))
	for i, col := range p.Columns {
		values[i] = col.Value(row.Record)
	}
	return values
}

// Derive computes the Projection of records for columns and state.
// It is a pure function that neither modifies records, columns
// nor state. The returned Projection reflects the clamped page index
// and the effective page size in its PageInfo.
func Derive(records []Record, columns []*Column, state State, opts DeriveOptions) *Projection {
	filtered := filterRows(records, columns, state, &opts, "")
	sorting := sortRows(filtered, columns, state.Sorting)

	pageSize := opts.pageSize(state.Pagination.PageSize)
	pageCount := pageCountFor(len(filtered), pageSize)
	pageIndex := clampPageIndex(state.Pagination.PageIndex, pageCount)
	start := min(pageIndex*pageSize, len(filtered))
	end := min(start+pageSize, len(filtered))

	page := PageInfo{
		PageIndex:    pageIndex,
		PageSize:     pageSize,
		PageCount:    pageCount,
		TotalRows:    len(records),
		FilteredRows: len(filtered),
	}
	if end > start {
		page.FirstRow = start + 1
		page.LastRow = end
	}

	visible := make([]*Column, 0, len(columns))
	for _, col := range columns {
		if state.Visibility.IsVisible(col.ID) {
			visible = append(visible, col)
		}
	}

	return &Projection{
		Rows:         filtered[start:end:end],
		FilteredRows: filtered,
		Columns:      visible,
		Sorting:      sorting,
		Page:         page,
	}
}

func pageCountFor(numRows, pageSize int) int {
	if numRows <= 0 || pageSize <= 0 {
		return 0
	}
	return (numRows + pageSize - 1) / pageSize
}

func clampPageIndex(pageIndex, pageCount int) int {
	if pageCount <= 0 || pageIndex < 0 {
		return 0
	}
	return min(pageIndex, pageCount-1)
}

// filterRows applies the global filter and all column filters
// except the one of column excludeID, keeping the input order.
func filterRows(records []Record, columns []*Column, state State, opts *DeriveOptions, excludeID string) []Row {
	var inactive func(*Column, any)
	if opts.OnInactiveFilter != nil {
		inactive = func(col *Column, value any) { opts.OnInactiveFilter(col.ID, value) }
	}
	filters := activeColumnFilters(columns, state.ColumnFilters, excludeID, inactive)

	var globalColumns []*Column
	if state.GlobalFilter != "" {
		for _, col := range columns {
			if !col.DisableGlobalFilter {
				globalColumns = append(globalColumns, col)
			}
		}
	}
	// Without globally filterable columns the query has no effect
	globalFilter := len(globalColumns) > 0
	threshold := opts.threshold()

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		row := Row{Index: i, Record: record}
		if globalFilter {
			rank, passed := rankRecord(record, globalColumns, state.GlobalFilter, threshold)
			if !passed {
				continue
			}
			row.Rank = rank
		}
		if matchesAll(record, filters) {
			rows = append(rows, row)
		}
	}
	return rows
}

func matchesAll(record Record, filters []columnFilter) bool {
	for _, f := range filters {
		if !f.pred.match(f.column.Value(record)) {
			return false
		}
	}
	return true
}

// rankRecord returns the best passing rank of the
// record's cells for query.
func rankRecord(record Record, columns []*Column, query string, threshold Ranking) (best RankInfo, passed bool) {
	for _, col := range columns {
		value := col.Value(record)
		if value == nil {
			continue
		}
		info := RankItem(CellString(value), query, threshold)
		if !info.Passed {
			continue
		}
		if !passed || info.Rank > best.Rank || (info.Rank == best.Rank && info.Score > best.Score) {
			best = info
			passed = true
		}
	}
	return best, passed
}

type sortKey struct {
	column *Column
	desc   bool
}

// sortRows sorts rows in place by sorting and returns
// the effective sort state. Ties keep the input order,
// nil values sort last for both directions.
func sortRows(rows []Row, columns []*Column, sorting SortState) SortState {
	var (
		keys      []sortKey
		effective SortState
	)
	for _, cs := range sorting {
		if cs.Direction == SortNone {
			continue
		}
		col := findColumn(columns, cs.ColumnID)
		if col == nil || col.DisableSorting {
			continue
		}
		keys = append(keys, sortKey{column: col, desc: cs.Direction == SortDescending})
		effective = append(effective, cs)
	}
	if len(keys) == 0 || len(rows) < 2 {
		return effective
	}

	// Read every sort value only once
	values := make(map[int][]any, len(rows))
	for _, row := range rows {
		vals := make([]any, len(keys))
		for k, key := range keys {
			vals[k] = key.column.Value(row.Record)
		}
		values[row.Index] = vals
	}

	vc := newValueComparer()
	slices.SortStableFunc(rows, func(a, b Row) int {
		va, vb := values[a.Index], values[b.Index]
		for k, key := range keys {
			x, y := va[k], vb[k]
			switch {
			case x == nil && y == nil:
				continue
			case x == nil:
				return 1
			case y == nil:
				return -1
			}
			var c int
			if key.column.Compare != nil {
				c = key.column.Compare(x, y)
			} else {
				c = vc.compare(x, y)
			}
			if key.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return effective
}

func findColumn(columns []*Column, id string) *Column {
	for _, col := range columns {
		if col.ID == id {
			return col
		}
	}
	return nil
}

// FacetValue is a distinct cell value with its number of rows.
type FacetValue struct {
	Value string
	Count int
}

// facetedUniqueValues returns the distinct non nil string values
// of column over the rows passing all filters except the column's own,
// ordered like CompareValues orders strings.
func facetedUniqueValues(records []Record, columns []*Column, state State, opts DeriveOptions, col *Column) []FacetValue {
	counts := make(map[string]int)
	for _, row := range filterRows(records, columns, state, &opts, col.ID) {
		if value := col.Value(row.Record); value != nil {
			counts[CellString(value)]++
		}
	}
	facets := make([]FacetValue, 0, len(counts))
	for value, count := range counts {
		facets = append(facets, FacetValue{Value: value, Count: count})
	}
	vc := newValueComparer()
	slices.SortFunc(facets, func(a, b FacetValue) int {
		if c := vc.compare(a.Value, b.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return facets
}

// facetedMinMax returns the numeric bounds of column over the
// rows passing all filters except the column's own.
func facetedMinMax(records []Record, columns []*Column, state State, opts DeriveOptions, col *Column) (lo, hi float64, ok bool) {
	for _, row := range filterRows(records, columns, state, &opts, col.ID) {
		f, isNum := numericValue(col.Value(row.Record))
		if !isNum {
			continue
		}
		if !ok {
			lo, hi, ok = f, f, true
			continue
		}
		lo = min(lo, f)
		hi = max(hi, f)
	}
	return lo, hi, ok
}
