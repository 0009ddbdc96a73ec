package csvtable

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/domonda/go-types/charset"
	fs "github.com/ungerik/go-fs"

	"github.com/domonda/go-tableview"
)

// Encoder converts UTF-8 bytes to the target encoding.
type Encoder interface {
	Bytes([]byte) ([]byte, error)
}

// EncoderFunc implements Encoder for a function.
type EncoderFunc func([]byte) ([]byte, error)

func (f EncoderFunc) Bytes(data []byte) ([]byte, error) {
	return f(data)
}

// PassthroughEncoder returns an Encoder that returns the data unchanged.
func PassthroughEncoder() Encoder {
	return EncoderFunc(func(data []byte) ([]byte, error) {
		return data, nil
	})
}

// Padding of fields to the width of their column.
type Padding int

const (
	NoPadding Padding = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// Writer writes a tableview.View as CSV.
// The With methods return a modified copy of the Writer.
type Writer struct {
	columnFormatters map[int]func(any) string
	padding          Padding
	headerRow        bool
	quoteAllFields   bool
	quoteEmptyFields bool
	escapeQuotes     string
	nilValue         string
	delimiter        rune
	newLine          string
	encoder          Encoder
}

// NewWriter returns a Writer with a header row,
// semicolon delimiter and "\r\n" line endings.
func NewWriter() *Writer {
	return &Writer{
		padding:      NoPadding,
		headerRow:    true,
		escapeQuotes: `""`,
		nilValue:     "",
		delimiter:    ';',
		newLine:      "\r\n",
	}
}

func (w *Writer) clone() *Writer {
	c := new(Writer)
	*c = *w
	return c
}

// Write writes the view to dest.
func (w *Writer) Write(ctx context.Context, dest io.Writer, view tableview.View) error {
	rows, err := w.ViewStrings(ctx, view)
	if err != nil {
		return err
	}

	var colRuneCount []int
	if w.padding != NoPadding {
		colRuneCount = columnWidths(rows, len(view.Columns()))
	}

	rowBuf := bytes.NewBuffer(make([]byte, 0, 1024))
	for _, rowStrs := range rows {
		for col, str := range rowStrs {
			if col > 0 {
				rowBuf.WriteRune(w.delimiter)
			}
			if colRuneCount == nil {
				rowBuf.WriteString(str)
				continue
			}
			padLeft, padRight := w.pad(colRuneCount[col] - utf8.RuneCountInString(str))
			rowBuf.WriteString(strings.Repeat(" ", padLeft))
			rowBuf.WriteString(str)
			rowBuf.WriteString(strings.Repeat(" ", padRight))
		}
		rowBuf.WriteString(w.newLine)

		data := rowBuf.Bytes()
		if w.encoder != nil {
			data, err = w.encoder.Bytes(data)
			if err != nil {
				return err
			}
		}
		if _, err = dest.Write(data); err != nil {
			return err
		}
		rowBuf.Reset()
	}
	return nil
}

// WriteFile writes the view to file.
func (w *Writer) WriteFile(ctx context.Context, file fs.File, view tableview.View) error {
	var buf bytes.Buffer
	if err := w.Write(ctx, &buf, view); err != nil {
		return err
	}
	if err := file.WriteAll(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

func (w *Writer) pad(padTotal int) (left, right int) {
	switch w.padding {
	case AlignLeft:
		return 0, padTotal
	case AlignRight:
		return padTotal, 0
	case AlignCenter:
		return padTotal / 2, (padTotal + 1) / 2
	}
	return 0, 0
}

// ViewStrings returns the escaped field strings of the view
// including the header row if enabled.
func (w *Writer) ViewStrings(ctx context.Context, view tableview.View) ([][]string, error) {
	var (
		numRows = view.NumRows()
		rows    = make([][]string, 0, numRows+1)
	)
	if w.headerRow && len(view.Columns()) > 0 {
		header := make([]string, len(view.Columns()))
		for col, title := range view.Columns() {
			header[col] = w.escapeString(title)
		}
		rows = append(rows, header)
	}
	for row := 0; row < numRows; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rowStrs := make([]string, len(view.Columns()))
		for col := range rowStrs {
			rowStrs[col] = w.escapeString(w.cellString(view.Cell(row, col), col))
		}
		rows = append(rows, rowStrs)
	}
	return rows, nil
}

func (w *Writer) cellString(value any, col int) string {
	if format, ok := w.columnFormatters[col]; ok {
		return format(value)
	}
	v := reflect.ValueOf(value)
	if tableview.ValueIsNil(v) {
		return w.nilValue
	}
	if v.Kind() == reflect.Pointer {
		value = v.Elem().Interface()
	}
	return tableview.CellString(value)
}

func (w *Writer) escapeString(str string) string {
	str = strings.ReplaceAll(str, "\r", "")
	switch {
	case w.quoteAllFields || strings.ContainsRune(str, w.delimiter) || strings.ContainsRune(str, '\n'):
		return `"` + strings.ReplaceAll(str, `"`, w.escapeQuotes) + `"`
	case w.quoteEmptyFields && str == "":
		return `""`
	}
	return strings.ReplaceAll(str, `"`, w.escapeQuotes)
}

// columnWidths returns the maximum rune count per column.
func columnWidths(rows [][]string, numCols int) []int {
	widths := make([]int, numCols)
	for _, row := range rows {
		for col := 0; col < numCols && col < len(row); col++ {
			widths[col] = max(widths[col], utf8.RuneCountInString(row[col]))
		}
	}
	return widths
}

func (w *Writer) WithHeaderRow(headerRow bool) *Writer {
	mod := w.clone()
	mod.headerRow = headerRow
	return mod
}

// WithColumnFormatter sets a function that formats the cell values
// of the column with the index columnIndex, nil removes it.
// The result is escaped like any other field.
func (w *Writer) WithColumnFormatter(columnIndex int, format func(value any) string) *Writer {
	mod := w.clone()
	mod.columnFormatters = maps.Clone(w.columnFormatters)
	if mod.columnFormatters == nil {
		mod.columnFormatters = make(map[int]func(any) string)
	}
	if format != nil {
		mod.columnFormatters[columnIndex] = format
	} else {
		delete(mod.columnFormatters, columnIndex)
	}
	return mod
}

func (w *Writer) WithPadding(padding Padding) *Writer {
	mod := w.clone()
	mod.padding = padding
	return mod
}

func (w *Writer) WithQuoteAllFields(quoteAllFields bool) *Writer {
	mod := w.clone()
	mod.quoteAllFields = quoteAllFields
	return mod
}

func (w *Writer) WithQuoteEmptyFields(quoteEmptyFields bool) *Writer {
	mod := w.clone()
	mod.quoteEmptyFields = quoteEmptyFields
	return mod
}

func (w *Writer) WithNilValue(nilValue string) *Writer {
	mod := w.clone()
	mod.nilValue = nilValue
	return mod
}

func (w *Writer) WithEscapeQuotes(escapeQuotes string) *Writer {
	mod := w.clone()
	mod.escapeQuotes = escapeQuotes
	return mod
}

func (w *Writer) WithDelimiter(delimiter rune) *Writer {
	mod := w.clone()
	mod.delimiter = delimiter
	return mod
}

func (w *Writer) WithNewLine(newLine string) *Writer {
	mod := w.clone()
	mod.newLine = newLine
	return mod
}

func (w *Writer) WithEncoder(encoder Encoder) *Writer {
	mod := w.clone()
	mod.encoder = encoder
	return mod
}

// WithEncoding returns a Writer that encodes its output
// with the charset of the passed name, see charset.GetEncoding.
func (w *Writer) WithEncoding(name string) (*Writer, error) {
	enc, err := charset.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	return w.WithEncoder(EncoderFunc(enc.Encode)), nil
}

func (w *Writer) QuoteAllFields() bool   { return w.quoteAllFields }
func (w *Writer) QuoteEmptyFields() bool { return w.quoteEmptyFields }
func (w *Writer) Delimiter() rune        { return w.delimiter }
func (w *Writer) EscapeQuotes() string   { return w.escapeQuotes }
func (w *Writer) NilValue() string       { return w.nilValue }
func (w *Writer) NewLine() string        { return w.newLine }
func (w *Writer) Encoder() Encoder       { return w.encoder }
