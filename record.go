package tableview

import (
	"reflect"
)

// Record is one row of domain data
// mapping field names to values.
type Record map[string]any

// Get returns the value of field or nil.
// Get is safe to call on a nil Record.
func (r Record) Get(field string) any {
	return r[field]
}

// RecordsFromStructs converts a slice of structs or struct pointers
// into records using the field names as returned by naming.
// Nil pointer values result in empty records.
// Non-nil pointer fields are dereferenced, nil pointer fields become nil.
func RecordsFromStructs[T any](rows []T, naming *StructFieldNaming) []Record {
	structType := derefType(reflect.TypeFor[T]())
	if structType.Kind() != reflect.Struct {
		panic("RecordsFromStructs: expected struct type, got " + structType.String())
	}
	fields := StructFieldTypes(structType)
	ids := make([]string, len(fields))
	for i, field := range fields {
		ids[i] = naming.StructFieldColumn(field)
	}

	records := make([]Record, len(rows))
	for i := range rows {
		record := make(Record, len(fields))
		records[i] = record
		rowVal := reflect.ValueOf(&rows[i]).Elem()
		if rowVal.Kind() == reflect.Pointer && rowVal.IsNil() {
			continue
		}
		for f, val := range StructFieldValues(rowVal) {
			if naming.IsIgnored(ids[f]) {
				continue
			}
			if val.Kind() == reflect.Pointer && !val.IsNil() {
				val = val.Elem()
			}
			if ValueIsNil(val) {
				record[ids[f]] = nil
				continue
			}
			record[ids[f]] = val.Interface()
		}
	}
	return records
}

// RecordsFromView converts all rows of a View into records
// using the column titles of the view as field names.
func RecordsFromView(view View) []Record {
	columns := view.Columns()
	records := make([]Record, view.NumRows())
	for row := range records {
		record := make(Record, len(columns))
		for col, title := range columns {
			record[title] = view.Cell(row, col)
		}
		records[row] = record
	}
	return records
}

// ColumnsFromView returns a text filtered column for every
// column title of the view.
func ColumnsFromView(view View) []*Column {
	titles := view.Columns()
	columns := make([]*Column, len(titles))
	for i, title := range titles {
		columns[i] = &Column{ID: title, Label: title}
	}
	return columns
}
