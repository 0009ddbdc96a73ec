package exceltable

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode/utf8"

	fs "github.com/ungerik/go-fs"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/domonda/go-tableview"
)

const (
	// DefaultFileName is the file name offered for exports.
	DefaultFileName = "filtered_data.xlsx"
	// DefaultSheetName is used if neither the Writer
	// nor the written view have a title.
	DefaultSheetName = "Filtered Data"

	maxSheetNameLen = 31
)

// Writer writes a tableview.View as a workbook with a single sheet.
// The first row holds the column titles, followed by one row per view row.
// The With methods return a modified copy of the Writer.
type Writer struct {
	sheetName string
	headerRow bool
	log       *zap.Logger
}

// NewWriter returns a Writer with a header row
// that names the sheet after the view title.
func NewWriter() *Writer {
	return &Writer{
		headerRow: true,
		log:       zap.NewNop(),
	}
}

func (w *Writer) clone() *Writer {
	c := new(Writer)
	*c = *w
	return c
}

// WithSheetName sets the sheet name, an empty name uses the view title.
func (w *Writer) WithSheetName(sheetName string) *Writer {
	mod := w.clone()
	mod.sheetName = sheetName
	return mod
}

func (w *Writer) WithHeaderRow(headerRow bool) *Writer {
	mod := w.clone()
	mod.headerRow = headerRow
	return mod
}

func (w *Writer) WithLogger(log *zap.Logger) *Writer {
	mod := w.clone()
	if log == nil {
		log = zap.NewNop()
	}
	mod.log = log
	return mod
}

// SheetName returns the name of the sheet written for view.
func (w *Writer) SheetName(view tableview.View) string {
	name := w.sheetName
	if name == "" {
		name = view.Title()
	}
	return sanitizeSheetName(name)
}

// Write writes the view as .xlsx workbook to dest.
// A view without columns results in an empty sheet.
func (w *Writer) Write(ctx context.Context, dest io.Writer, view tableview.View) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	sheet := w.SheetName(view)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	columns := view.Columns()
	row := 1
	if w.headerRow && len(columns) > 0 {
		header := make([]any, len(columns))
		for col, title := range columns {
			header[col] = title
		}
		if err := setRow(f, sheet, row, header); err != nil {
			return err
		}
		row++
	}
	for r, numRows := 0, view.NumRows(); r < numRows && len(columns) > 0; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		values := make([]any, len(columns))
		for col := range columns {
			values[col] = cellValue(view.Cell(r, col))
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	if _, err := f.WriteTo(dest); err != nil {
		return err
	}
	w.log.Debug("Wrote workbook",
		zap.String("sheet", sheet),
		zap.Int("rows", view.NumRows()),
		zap.Int("columns", len(columns)),
	)
	return nil
}

// WriteFile writes the view as .xlsx workbook to file.
func (w *Writer) WriteFile(ctx context.Context, file fs.File, view tableview.View) error {
	var buf bytes.Buffer
	if err := w.Write(ctx, &buf, view); err != nil {
		return err
	}
	if err := file.WriteAll(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	w.log.Info("Exported workbook",
		zap.String("file", string(file)),
		zap.Int("rows", view.NumRows()),
	)
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cellValue dereferences pointers, nil like values become nil.
func cellValue(value any) any {
	v := reflect.ValueOf(value)
	if tableview.ValueIsNil(v) {
		return nil
	}
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return value
}

// sanitizeSheetName replaces the characters Excel does not allow
// in sheet names and truncates the name to 31 characters.
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		return r
	}, name)
	name = strings.TrimSpace(strings.Trim(name, "'"))
	if utf8.RuneCountInString(name) > maxSheetNameLen {
		name = strings.TrimSpace(string([]rune(name)[:maxSheetNameLen]))
	}
	if name == "" {
		return DefaultSheetName
	}
	return name
}
