package tableview

import (
	"fmt"
	"reflect"
	"strings"
)

// FilterKind selects how a column filter value is interpreted.
type FilterKind int

const (
	// FilterText matches the case-insensitive substring
	// of the cell's string representation.
	FilterText FilterKind = iota
	// FilterRange keeps numeric cells within inclusive bounds.
	FilterRange
	// FilterSelect keeps cells whose string representation
	// equals the filter value exactly.
	FilterSelect
)

// String returns the string representation of a FilterKind.
func (k FilterKind) String() string {
	switch k {
	case FilterText:
		return "text"
	case FilterRange:
		return "range"
	case FilterSelect:
		return "select"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// Valid returns true if k is one of the defined filter kinds.
func (k FilterKind) Valid() bool {
	return k >= FilterText && k <= FilterSelect
}

// ParseFilterKind parses the result of FilterKind.String.
// An empty string returns FilterText.
func ParseFilterKind(s string) (FilterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FilterText, nil
	case "range":
		return FilterRange, nil
	case "select":
		return FilterSelect, nil
	}
	return 0, fmt.Errorf("%w: unknown filter kind %q", ErrInvalidColumn, s)
}

// Comparator orders two cell values.
// It returns a negative number if a < b,
// zero if a == b and a positive number if a > b.
type Comparator func(a, b any) int

// Column describes one field of the records displayed by a ViewModel.
type Column struct {
	// ID identifies the column in FilterState, SortState and ColumnVisibility.
	ID string
	// Label is the header text, ID is used if empty.
	Label string
	// Accessor reads the cell value from a Record.
	// If nil, then the Record field named ID is used.
	Accessor func(Record) any
	// Compare orders cell values for sorting.
	// If nil, then CompareValues ordering is used.
	Compare Comparator
	// Format returns the rendered value of a cell for exports.
	// If nil, then the raw cell value is exported.
	Format func(any) any
	// Filter is the kind of column filter.
	Filter FilterKind
	// Hidden makes the column initially invisible.
	Hidden bool

	DisableSorting      bool
	DisableFiltering    bool
	DisableGlobalFilter bool
}

// Header returns Label or ID if Label is empty.
func (c *Column) Header() string {
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}

// Value returns the cell value of the column for the passed record.
func (c *Column) Value(record Record) any {
	if c.Accessor != nil {
		return c.Accessor(record)
	}
	return record.Get(c.ID)
}

// Rendered returns the cell value passed through Format.
func (c *Column) Rendered(record Record) any {
	val := c.Value(record)
	if c.Format != nil {
		return c.Format(val)
	}
	return val
}

// String implements the fmt.Stringer interface for Column.
func (c *Column) String() string {
	return fmt.Sprintf("Column{ID: %q, Filter: %s}", c.ID, c.Filter)
}

func validateColumns(columns []*Column) (map[string]*Column, error) {
	byID := make(map[string]*Column, len(columns))
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("%w: column %d is nil", ErrInvalidColumn, i)
		}
		if col.ID == "" {
			return nil, fmt.Errorf("%w: column %d has no ID", ErrInvalidColumn, i)
		}
		if !col.Filter.Valid() {
			return nil, fmt.Errorf("%w: column %q has %s", ErrInvalidColumn, col.ID, col.Filter)
		}
		if _, exists := byID[col.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.ID)
		}
		byID[col.ID] = col
	}
	return byID, nil
}

// ColumnsFromStruct returns a column for every not ignored exported
// field of the struct type T as named by naming.
//
// The struct tag "label" overrides the default label
// SpacePascalCase(fieldName) and the struct tag "filter"
// sets the FilterKind. Untagged numeric fields get FilterRange,
// all other fields FilterText.
func ColumnsFromStruct[T any](naming *StructFieldNaming) ([]*Column, error) {
	structType := derefType(reflect.TypeFor[T]())
	if structType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: expected struct type, got %s", ErrInvalidColumn, structType)
	}
	var columns []*Column
	for _, field := range StructFieldTypes(structType) {
		id := naming.StructFieldColumn(field)
		if naming.IsIgnored(id) {
			continue
		}
		col := &Column{
			ID:    id,
			Label: SpacePascalCase(field.Name),
		}
		if label, ok := field.Tag.Lookup("label"); ok && label != "" {
			col.Label = label
		}
		if filter, ok := field.Tag.Lookup("filter"); ok {
			kind, err := ParseFilterKind(filter)
			if err != nil {
				return nil, fmt.Errorf("struct field %s: %w", field.Name, err)
			}
			col.Filter = kind
		} else if isNumericKind(derefType(field.Type).Kind()) {
			col.Filter = FilterRange
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func isNumericKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
