// Package exceltable reads and writes Excel files (.xlsx, .xlsm, .xltm, .xltx)
// as tableview.View tables using github.com/xuri/excelize/v2.
//
// Writer exports a View, usually the result of ViewModel.ExportVisible,
// as a single sheet workbook with a header row of column titles.
// The read functions return every sheet as a tableview.StringsView
// with the first row as column titles, or directly as records
// that can be loaded into a ViewModel.
//
// Example usage:
//
//	// Export the filtered rows of a view-model
//	err := exceltable.NewWriter().WriteFile(ctx, exceltable.DefaultFileName, vm.ExportVisible())
//
//	// Read all sheets from a file
//	views, err := exceltable.ReadLocalFile("data.xlsx", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, view := range views {
//	    fmt.Printf("Sheet: %s, Rows: %d\n", view.Title(), view.NumRows())
//	}
package exceltable

import (
	"bytes"
	"errors"
	"io"

	fs "github.com/ungerik/go-fs"
	"github.com/xuri/excelize/v2"

	"github.com/domonda/go-tableview"
)

// ReadFirstSheet reads the first sheet from an Excel file provided via io.Reader.
//
// The first row of the sheet is used as column titles and the following rows
// as data. Empty rows and columns are removed from the edges of the data range.
// If rawCellStrings is true, cell values are returned without
// the number format of the cell applied.
//
// ErrEmptySheet is returned if the sheet has no data after cleanup.
func ReadFirstSheet(reader io.Reader, rawCellStrings bool) (sheetView *tableview.StringsView, err error) {
	f, e := excelize.OpenReader(reader)
	if e != nil {
		return nil, e
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrSheetNotExist{SheetName: "<FirstSheet>"}
	}
	return readSheet(f, sheet, rawCellStrings)
}

// Read reads all non empty sheets from an Excel file provided via io.Reader.
// The Title of every returned view is the sheet name.
func Read(reader io.Reader, rawCellStrings bool) (sheetViews []*tableview.StringsView, err error) {
	f, e := excelize.OpenReader(reader)
	if e != nil {
		return nil, e
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return readSheets(f, rawCellStrings)
}

// ReadLocalFile reads all non empty sheets from the Excel file at filename.
func ReadLocalFile(filename string, rawCellStrings bool) (sheetViews []*tableview.StringsView, err error) {
	f, e := excelize.OpenFile(filename)
	if e != nil {
		return nil, e
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return readSheets(f, rawCellStrings)
}

// ReadLocalFileFirstSheet reads the first sheet from the Excel file at filename.
func ReadLocalFileFirstSheet(filename string, rawCellStrings bool) (sheetView *tableview.StringsView, err error) {
	f, e := excelize.OpenFile(filename)
	if e != nil {
		return nil, e
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrSheetNotExist{SheetName: "<FirstSheet>"}
	}
	return readSheet(f, sheet, rawCellStrings)
}

// ReadRecords reads the first sheet from an Excel file provided via io.Reader
// and returns its rows as records with one text column per sheet column.
// Record keys and column IDs are the sheet's column titles.
func ReadRecords(reader io.Reader, rawCellStrings bool) ([]tableview.Record, []*tableview.Column, error) {
	view, err := ReadFirstSheet(reader, rawCellStrings)
	if err != nil {
		return nil, nil, err
	}
	return tableview.RecordsFromView(view), tableview.ColumnsFromView(view), nil
}

// ReadFileRecords reads the records of the first sheet of file,
// see ReadRecords.
func ReadFileRecords(file fs.FileReader, rawCellStrings bool) ([]tableview.Record, []*tableview.Column, error) {
	data, err := file.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return ReadRecords(bytes.NewReader(data), rawCellStrings)
}

func readSheets(f *excelize.File, rawCellStrings bool) (sheetViews []*tableview.StringsView, err error) {
	for _, sheet := range f.GetSheetList() {
		view, err := readSheet(f, sheet, rawCellStrings)
		if err != nil {
			if errors.Is(err, ErrEmptySheet) {
				continue
			}
			return nil, err
		}
		sheetViews = append(sheetViews, view)
	}
	return sheetViews, nil
}

// readSheet returns ErrEmptySheet if no data remains
// after removing empty rows and columns.
func readSheet(f *excelize.File, sheet string, rawCellStrings bool) (*tableview.StringsView, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: rawCellStrings})
	if err != nil {
		return nil, err
	}
	rows = tableview.RemoveEmptyStringRows(rows)
	numCols := tableview.RemoveEmptyStringColumns(rows)
	if len(rows) == 0 || numCols == 0 {
		return nil, ErrEmptySheet
	}
	columns := rows[0]
	if len(columns) < numCols {
		columns = append(columns, make([]string, numCols-len(columns))...)
	}
	return tableview.NewStringsView(sheet, rows[1:], columns...), nil
}
