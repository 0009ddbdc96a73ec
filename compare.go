package tableview

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CompareValues is the default ordering of cell values:
//   - nil sorts after all other values
//   - numbers compare numerically
//   - time.Time values compare chronologically
//   - false sorts before true
//   - everything else compares by string representation
//     case-insensitive with natural ordering of embedded numbers,
//     so that "item 9" sorts before "item 10".
func CompareValues(a, b any) int {
	return newValueComparer().compare(a, b)
}

// valueComparer is not safe for concurrent use
// because the collator re-uses internal buffers.
type valueComparer struct {
	collator *collate.Collator
}

func newValueComparer() *valueComparer {
	return &valueComparer{
		collator: collate.New(language.Und, collate.IgnoreCase, collate.Numeric),
	}
}

func (c *valueComparer) compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if fa, ok := numberValue(a); ok {
		if fb, ok := numberValue(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}
	return c.collator.CompareString(CellString(a), CellString(b))
}

// numberValue returns the float64 value of Go number types.
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n)
	}
	return 0, false
}

// numericValue returns the float64 value of Go number types
// and of strings that parse as floating point numbers.
func numericValue(v any) (float64, bool) {
	if f, ok := numberValue(v); ok {
		return f, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// CellString returns the string representation of a cell value
// used for text matching and string ordering.
func CellString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
