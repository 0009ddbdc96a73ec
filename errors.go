package tableview

import "errors"

var (
	// ErrColumnNotFound is returned when an operation
	// references a column ID that is not defined.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn is returned when two column
	// definitions share the same ID.
	ErrDuplicateColumn = errors.New("duplicate column ID")

	// ErrInvalidColumn is returned for a column definition
	// without an ID or with an unknown filter kind.
	ErrInvalidColumn = errors.New("invalid column definition")

	// ErrSortingDisabled is returned by ToggleSort
	// for a column with DisableSorting set.
	ErrSortingDisabled = errors.New("sorting disabled for column")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)
