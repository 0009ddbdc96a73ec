// Package texttable renders a tableview.View as text table
// for terminals, as Markdown or as HTML table.
//
// Example usage:
//
//	err := texttable.NewWriter().
//	    WithFormat(texttable.FormatMarkdown).
//	    Write(ctx, os.Stdout, vm.CurrentPage())
package texttable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"reflect"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	fs "github.com/ungerik/go-fs"

	"github.com/domonda/go-tableview"
)

// Format of the rendered table.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat parses the name of a Format,
// "md" is accepted for FormatMarkdown.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "table":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, name)
}

// ErrInvalidFormat is returned by ParseFormat for an unknown name.
var ErrInvalidFormat = errors.New("invalid texttable format")

// Writer renders a tableview.View.
// The With methods return a modified copy of the Writer.
type Writer struct {
	format    Format
	style     table.Style
	title     bool
	rowCount  bool
	nilValue  string
	cssClass  string
	formatter map[int]func(any) string
}

// NewWriter returns a Writer for FormatText
// with table.StyleLight and the view title.
// Header and footer texts are rendered unchanged.
func NewWriter() *Writer {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	return &Writer{
		format: FormatText,
		style:  style,
		title:  true,
	}
}

func (w *Writer) clone() *Writer {
	c := new(Writer)
	*c = *w
	return c
}

// Render returns the rendered view.
// A view without columns renders as empty string.
func (w *Writer) Render(ctx context.Context, view tableview.View) (string, error) {
	columns := view.Columns()
	if len(columns) == 0 {
		return "", nil
	}

	t := table.NewWriter()
	style := w.style
	if w.cssClass != "" {
		style.HTML.CSSClass = w.cssClass
	}
	t.SetStyle(style)
	if w.title && view.Title() != "" {
		t.SetTitle(view.Title())
	}

	header := make(table.Row, len(columns))
	for i, title := range columns {
		header[i] = title
	}
	t.AppendHeader(header)

	numRows := view.NumRows()
	for row := 0; row < numRows; row++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r := make(table.Row, len(columns))
		for col := range r {
			r[col] = w.cellString(view.Cell(row, col), col)
		}
		t.AppendRow(r)
	}

	var out string
	switch w.format {
	case FormatMarkdown:
		out = t.RenderMarkdown()
	case FormatHTML:
		out = t.RenderHTML()
	default:
		out = t.Render()
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if w.rowCount {
		out += fmt.Sprintf("(%d rows)\n", numRows)
	}
	return out, nil
}

// Write writes the rendered view to dest.
func (w *Writer) Write(ctx context.Context, dest io.Writer, view tableview.View) error {
	out, err := w.Render(ctx, view)
	if err != nil {
		return err
	}
	_, err = io.WriteString(dest, out)
	return err
}

// WriteFile writes the rendered view to file.
func (w *Writer) WriteFile(ctx context.Context, file fs.File, view tableview.View) error {
	out, err := w.Render(ctx, view)
	if err != nil {
		return err
	}
	if err := file.WriteAll([]byte(out)); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

func (w *Writer) cellString(value any, col int) string {
	if format, ok := w.formatter[col]; ok {
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

func (w *Writer) WithFormat(format Format) *Writer {
	mod := w.clone()
	mod.format = format
	return mod
}

// WithStyle sets the go-pretty style of FormatText.
func (w *Writer) WithStyle(style table.Style) *Writer {
	mod := w.clone()
	mod.style = style
	return mod
}

// WithTitle enables rendering the view title above the table.
func (w *Writer) WithTitle(title bool) *Writer {
	mod := w.clone()
	mod.title = title
	return mod
}

// WithRowCount appends a "(N rows)" line.
func (w *Writer) WithRowCount(rowCount bool) *Writer {
	mod := w.clone()
	mod.rowCount = rowCount
	return mod
}

func (w *Writer) WithNilValue(nilValue string) *Writer {
	mod := w.clone()
	mod.nilValue = nilValue
	return mod
}

// WithCSSClass sets the class attribute of the HTML table.
func (w *Writer) WithCSSClass(class string) *Writer {
	mod := w.clone()
	mod.cssClass = class
	return mod
}

// WithColumnFormatter sets the function that
// renders the cells of the column with columnIndex.
func (w *Writer) WithColumnFormatter(columnIndex int, format func(value any) string) *Writer {
	mod := w.clone()
	mod.formatter = maps.Clone(w.formatter)
	if mod.formatter == nil {
		mod.formatter = make(map[int]func(any) string)
	}
	if format != nil {
		mod.formatter[columnIndex] = format
	} else {
		delete(mod.formatter, columnIndex)
	}
	return mod
}

func (w *Writer) Format() Format { return w.format }
