package tableview

import (
	"fmt"
	"maps"
	"slices"
)

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "none"
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return fmt.Sprintf("SortDirection(%d)", int(sd))
	}
}

// next returns the next direction of the
// ascending, descending, none toggle cycle.
func (sd SortDirection) next() SortDirection {
	switch sd {
	case SortNone:
		return SortAscending
	case SortAscending:
		return SortDescending
	default:
		return SortNone
	}
}

// ColumnSort is the sort direction of one column.
type ColumnSort struct {
	ColumnID  string
	Direction SortDirection
}

// SortState is an ordered sequence of column sorts,
// the first entry being the primary sort key.
// An empty SortState preserves the input order.
type SortState []ColumnSort

// Direction returns the sort direction of a column.
func (s SortState) Direction(columnID string) SortDirection {
	for _, cs := range s {
		if cs.ColumnID == columnID {
			return cs.Direction
		}
	}
	return SortNone
}

// Pagination holds the zero based page index and the page size.
type Pagination struct {
	PageIndex int
	PageSize  int
}

// ColumnVisibility maps column IDs to their visibility.
// Columns without an entry are visible.
type ColumnVisibility map[string]bool

// IsVisible returns false only for an explicit false entry.
func (v ColumnVisibility) IsVisible(columnID string) bool {
	visible, ok := v[columnID]
	return !ok || visible
}

// State is the complete mutable state of a table view.
// Derive computes a Projection as pure function of a State.
type State struct {
	GlobalFilter  string
	ColumnFilters FilterState
	Sorting       SortState
	Pagination    Pagination
	Visibility    ColumnVisibility
}

// Clone returns a deep copy of the state maps and slices.
// Filter values themselves are not copied.
func (s State) Clone() State {
	return State{
		GlobalFilter:  s.GlobalFilter,
		ColumnFilters: maps.Clone(s.ColumnFilters),
		Sorting:       slices.Clone(s.Sorting),
		Pagination:    s.Pagination,
		Visibility:    maps.Clone(s.Visibility),
	}
}

// initialState returns the state of a new session
// with the Hidden columns marked invisible.
func initialState(columns []*Column, pageSize int) State {
	state := State{
		ColumnFilters: make(FilterState),
		Pagination:    Pagination{PageSize: pageSize},
		Visibility:    make(ColumnVisibility, len(columns)),
	}
	for _, col := range columns {
		if col.Hidden {
			state.Visibility[col.ID] = false
		}
	}
	return state
}
