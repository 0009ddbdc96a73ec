package tableview

import (
	"fmt"
	"reflect"
	"strings"
)

// DefaultStructFieldNaming uses the "col" struct tag as column ID,
// ignores "-" tagged fields and uses the field name for untagged fields.
var DefaultStructFieldNaming = StructFieldNaming{
	Tag:    "col",
	Ignore: "-",
}

// StructFieldNaming defines how struct fields
// are mapped to column IDs and Record field names.
//
// nil is a valid value for *StructFieldNaming
// and is equal to the zero value
// which will use all exported struct fields
// with their field name as column ID.
type StructFieldNaming struct {
	// Tag is the struct field tag to be used as column ID.
	// If Tag is empty, then every struct field will be treated as untagged.
	Tag string
	// Ignore is a column ID that excludes a field from
	// RecordsFromStructs and ColumnsFromStruct.
	Ignore string
	// Untagged will be called with the struct field name to
	// return an ID in case the struct field has no tag named Tag.
	// If Untagged is nil, then the struct field name will be used.
	Untagged func(fieldName string) (columnID string)
}

// String implements the fmt.Stringer interface for StructFieldNaming.
func (n *StructFieldNaming) String() string {
	if n == nil {
		return `StructFieldNaming{Tag: "", Ignore: ""}`
	}
	return fmt.Sprintf("StructFieldNaming{Tag: %#v, Ignore: %#v}", n.Tag, n.Ignore)
}

// StructFieldColumn returns the column ID for a struct field.
func (n *StructFieldNaming) StructFieldColumn(structField reflect.StructField) string {
	if n == nil {
		return structField.Name
	}
	if n.Tag != "" {
		if tag, ok := structField.Tag.Lookup(n.Tag); ok {
			if i := strings.IndexByte(tag, ','); i != -1 {
				tag = tag[:i]
			}
			if tag != "" {
				return tag
			}
		}
	}
	if n.Untagged == nil {
		return structField.Name
	}
	return n.Untagged(structField.Name)
}

// IsIgnored returns true if columnID equals the non empty Ignore
// value or if columnID is empty.
func (n *StructFieldNaming) IsIgnored(columnID string) bool {
	if columnID == "" {
		return true
	}
	return n != nil && n.Ignore != "" && columnID == n.Ignore
}

// Columns returns the column IDs of all not ignored
// exported fields of the passed struct or struct pointer.
func (n *StructFieldNaming) Columns(strct any) []string {
	structType := reflect.TypeOf(strct)
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	columns := make([]string, 0, structType.NumField())
	for _, field := range StructFieldTypes(structType) {
		if id := n.StructFieldColumn(field); !n.IsIgnored(id) {
			columns = append(columns, id)
		}
	}
	return columns
}
