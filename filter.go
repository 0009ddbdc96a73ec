package tableview

import (
	"fmt"
	"math"
	"strings"
)

// FilterState maps column IDs to filter values.
// The expected shape of a value depends on the FilterKind of the column:
// a string for FilterText and FilterSelect, a Range (or a two element
// array or slice of optional bounds) for FilterRange.
// Values of an unexpected shape are treated as no filter.
type FilterState map[string]any

// Range is the value of a FilterRange column filter.
// A nil bound is unbounded.
type Range struct {
	Min *float64
	Max *float64
}

// Between returns a Range with both bounds set.
func Between(min, max float64) Range {
	return Range{Min: &min, Max: &max}
}

// AtLeast returns a Range with only a lower bound.
func AtLeast(min float64) Range {
	return Range{Min: &min}
}

// AtMost returns a Range with only an upper bound.
func AtMost(max float64) Range {
	return Range{Max: &max}
}

// Active returns true if at least one bound is set.
func (r Range) Active() bool {
	return r.Min != nil || r.Max != nil
}

// Contains returns true if v lies within the inclusive bounds.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r Range) String() string {
	bound := func(f *float64) string {
		if f == nil {
			return ""
		}
		return fmt.Sprint(*f)
	}
	return fmt.Sprintf("[%s, %s]", bound(r.Min), bound(r.Max))
}

// predicate is a normalized, active column filter.
type predicate interface {
	match(value any) bool
}

type textPredicate string

func (p textPredicate) match(value any) bool {
	return strings.Contains(strings.ToLower(CellString(value)), string(p))
}

type rangePredicate Range

func (p rangePredicate) match(value any) bool {
	f, ok := numericValue(value)
	return ok && Range(p).Contains(f)
}

type selectPredicate string

func (p selectPredicate) match(value any) bool {
	return value != nil && CellString(value) == string(p)
}

// newPredicate normalizes a filter value for a column of the passed kind.
// It returns false if the value is empty or has the wrong shape.
func newPredicate(kind FilterKind, value any) (predicate, bool) {
	switch kind {
	case FilterText:
		s, ok := value.(string)
		if !ok || s == "" {
			return nil, false
		}
		return textPredicate(strings.ToLower(s)), true

	case FilterRange:
		r, ok := NormalizeRange(value)
		if !ok || !r.Active() {
			return nil, false
		}
		return rangePredicate(r), true

	case FilterSelect:
		s, ok := value.(string)
		if !ok || s == "" {
			return nil, false
		}
		return selectPredicate(s), true
	}
	return nil, false
}

// NormalizeRange converts the accepted shapes of a range filter value
// into a Range. Accepted are Range, *Range, [2]float64, [2]*float64,
// [2]any, []any and []float64 with at most two elements.
// Bound elements may be nil, empty strings, Go numbers, *float64
// or strings that parse as numbers. If Min is greater than Max
// the bounds are swapped.
// The result is false if value has none of the accepted shapes.
func NormalizeRange(value any) (r Range, ok bool) {
	switch v := value.(type) {
	case Range:
		r = v
	case *Range:
		if v == nil {
			return Range{}, false
		}
		r = *v
	case [2]float64:
		r = Between(v[0], v[1])
	case [2]*float64:
		r = Range{Min: v[0], Max: v[1]}
	case [2]any:
		r, ok = rangeFromBounds(v[:])
		if !ok {
			return Range{}, false
		}
	case []any:
		r, ok = rangeFromBounds(v)
		if !ok {
			return Range{}, false
		}
	case []float64:
		bounds := make([]any, len(v))
		for i := range v {
			bounds[i] = v[i]
		}
		r, ok = rangeFromBounds(bounds)
		if !ok {
			return Range{}, false
		}
	default:
		return Range{}, false
	}
	if r.Min != nil && math.IsNaN(*r.Min) {
		r.Min = nil
	}
	if r.Max != nil && math.IsNaN(*r.Max) {
		r.Max = nil
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r, true
}

func rangeFromBounds(bounds []any) (r Range, ok bool) {
	if len(bounds) > 2 {
		return Range{}, false
	}
	var parsed [2]*float64
	for i, b := range bounds {
		parsed[i], ok = rangeBound(b)
		if !ok {
			return Range{}, false
		}
	}
	return Range{Min: parsed[0], Max: parsed[1]}, true
}

func rangeBound(b any) (*float64, bool) {
	switch v := b.(type) {
	case nil:
		return nil, true
	case *float64:
		return v, true
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, true
		}
	}
	f, ok := numericValue(b)
	if !ok {
		return nil, false
	}
	return &f, true
}

// columnFilter is an active predicate bound to its column.
type columnFilter struct {
	column *Column
	pred   predicate
}

// activeColumnFilters returns the active filters of state
// for filterable columns, skipping the column excludeID.
// The inactive callback is called for every set filter value
// that is empty or has the wrong shape for its column.
func activeColumnFilters(columns []*Column, state FilterState, excludeID string, inactive func(col *Column, value any)) []columnFilter {
	var filters []columnFilter
	for _, col := range columns {
		if col.DisableFiltering || col.ID == excludeID {
			continue
		}
		value, ok := state[col.ID]
		if !ok || value == nil {
			continue
		}
		pred, ok := newPredicate(col.Filter, value)
		if !ok {
			if inactive != nil {
				inactive(col, value)
			}
			continue
		}
		filters = append(filters, columnFilter{column: col, pred: pred})
	}
	return filters
}
