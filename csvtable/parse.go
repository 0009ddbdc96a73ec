package csvtable

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/domonda/go-types/charset"
)

// ParseDetectFormat parses CSV data with automatic detection
// of the encoding, line endings and separator.
//
// The encoding is the first of config.Encodings that decodes
// all config.EncodingTests characters. "\r\n" line endings are
// used if present, else "\n". The separator is taken from a
// "sep=X" header line or else is the most frequent one of
// comma, semicolon and tab, defaulting to comma.
// If config is nil, NewDefaultFormatDetectionConfig() is used.
//
// Example:
//
//	rows, format, err := ParseDetectFormat([]byte("Name;Age\r\nJohn;30\r\nJane;25"), nil)
//	// format.Separator == ";"
//	// format.Encoding == "UTF-8"
//	// format.Newline == "\r\n"
//	// rows == [][]string{{"Name", "Age"}, {"John", "30"}, {"Jane", "25"}}
func ParseDetectFormat(data []byte, config *FormatDetectionConfig) (rows [][]string, format *Format, err error) {
	if config == nil {
		config = NewDefaultFormatDetectionConfig()
	}
	format = new(Format)

	encodings := make([]charset.Encoding, 0, len(config.Encodings))
	for _, name := range config.Encodings {
		enc, err := charset.GetEncoding(name)
		if err != nil {
			return nil, nil, err
		}
		encodings = append(encodings, enc)
	}
	data, format.Encoding, err = charset.AutoDecode(data, encodings, config.EncodingTests)
	if err != nil {
		return nil, nil, err
	}
	if format.Encoding == "" {
		format.Encoding = "UTF-8"
	}
	data = sanitizeUTF8(data)

	if bytes.Contains(data, []byte{'\r', '\n'}) {
		format.Newline = "\r\n"
	} else {
		format.Newline = "\n"
	}

	firstLine, rest, _ := bytes.Cut(data, []byte(format.Newline))
	if sep := parseSepHeaderLine(firstLine); sep != "" {
		format.Separator = sep
		data = rest
	} else {
		format.Separator = detectSeparator(data)
	}

	rows, err = readRows(data, format.Separator)
	if err != nil {
		return nil, format, err
	}
	return rows, format, nil
}

// ParseWithFormat parses CSV data encoded as specified by format.
// A "sep=X" header line is removed and must match format.Separator.
func ParseWithFormat(data []byte, format *Format) (rows [][]string, err error) {
	if err = format.Validate(); err != nil {
		return nil, err
	}
	if strings.EqualFold(format.Encoding, "UTF-8") {
		data = charset.TrimBOM(data, charset.BOMUTF8)
	} else {
		enc, err := charset.GetEncoding(format.Encoding)
		if err != nil {
			return nil, err
		}
		data, err = enc.Decode(data)
		if err != nil {
			return nil, err
		}
	}
	data = sanitizeUTF8(data)

	firstLine, rest, _ := bytes.Cut(data, []byte(format.Newline))
	if headerSep := parseSepHeaderLine(firstLine); headerSep != "" {
		if headerSep != format.Separator {
			return nil, fmt.Errorf("separator '%s' in header line is different from format.Separator '%s'", headerSep, format.Separator)
		}
		data = rest
	}
	return readRows(data, format.Separator)
}

// detectSeparator returns the most frequent
// of comma, semicolon and tab, or comma for a tie.
func detectSeparator(data []byte) string {
	var (
		commas     = bytes.Count(data, []byte{','})
		semicolons = bytes.Count(data, []byte{';'})
		tabs       = bytes.Count(data, []byte{'\t'})
	)
	switch {
	case semicolons > commas && semicolons > tabs:
		return ";"
	case tabs > commas && tabs > semicolons:
		return "\t"
	default:
		return ","
	}
}

func parseSepHeaderLine(line []byte) (sep string) {
	line = bytes.TrimRight(line, "\r")
	if len(line) >= 2 && line[0] == '"' && line[len(line)-1] == '"' {
		line = line[1 : len(line)-1]
	}
	if len(line) != 5 {
		return ""
	}
	if !bytes.HasPrefix(line, []byte("sep=")) && !bytes.HasPrefix(line, []byte("SEP=")) {
		return ""
	}
	return string(line[4:5])
}

// readRows reads quoted and multi-line fields.
// Empty lines are skipped and rows may have
// different numbers of fields.
func readRows(data []byte, separator string) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = rune(separator[0])
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func sanitizeUTF8(str []byte) []byte {
	return bytes.Map(
		func(r rune) rune {
			switch r {
			// \u00a0 is No-Break Space (NBSP)
			case '\uFFFD', '\u00a0':
				return ' '
			default:
				return r
			}
		},
		str,
	)
}
