package csvtable

import (
	fs "github.com/ungerik/go-fs"

	"github.com/domonda/go-tableview"
)

// ReadView parses CSV data with a detected format, see ParseDetectFormat,
// and returns a view with the first non empty row as column titles.
// Empty rows and trailing empty columns are removed.
func ReadView(data []byte, configOrNil *FormatDetectionConfig) (*tableview.StringsView, *Format, error) {
	rows, format, err := ParseDetectFormat(data, configOrNil)
	if err != nil {
		return nil, format, err
	}
	return rowsView(rows), format, nil
}

// ReadViewWithFormat parses CSV data with format
// and returns a view like ReadView.
func ReadViewWithFormat(data []byte, format *Format) (*tableview.StringsView, error) {
	rows, err := ParseWithFormat(data, format)
	if err != nil {
		return nil, err
	}
	return rowsView(rows), nil
}

// ReadRecords parses CSV data with a detected format and returns
// its rows as records with one text column per CSV column.
// Record keys and column IDs are the titles of the header row.
func ReadRecords(data []byte, configOrNil *FormatDetectionConfig) ([]tableview.Record, []*tableview.Column, *Format, error) {
	view, format, err := ReadView(data, configOrNil)
	if err != nil {
		return nil, nil, format, err
	}
	return tableview.RecordsFromView(view), tableview.ColumnsFromView(view), format, nil
}

// ReadFileRecords reads and parses file, see ReadRecords.
func ReadFileRecords(file fs.FileReader, configOrNil *FormatDetectionConfig) ([]tableview.Record, []*tableview.Column, *Format, error) {
	data, err := file.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	return ReadRecords(data, configOrNil)
}

func rowsView(rows [][]string) *tableview.StringsView {
	rows = tableview.RemoveEmptyStringRows(rows)
	tableview.RemoveEmptyStringColumns(rows)
	return tableview.NewStringsView("", rows)
}
