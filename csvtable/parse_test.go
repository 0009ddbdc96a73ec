package csvtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDetectFormat(t *testing.T) {
	tests := []struct {
		name       string
		csv        string
		wantRows   [][]string
		wantFormat Format
	}{
		{
			name:       "semicolon CRLF",
			csv:        "Name;Age\r\nJohn;30\r\nJane;25",
			wantRows:   [][]string{{"Name", "Age"}, {"John", "30"}, {"Jane", "25"}},
			wantFormat: Format{Separator: ";", Newline: "\r\n"},
		},
		{
			name:       "comma LF",
			csv:        "a,b,c\n1,2,3\n",
			wantRows:   [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
			wantFormat: Format{Separator: ",", Newline: "\n"},
		},
		{
			name:       "tab",
			csv:        "a\tb\n1\t2\n",
			wantRows:   [][]string{{"a", "b"}, {"1", "2"}},
			wantFormat: Format{Separator: "\t", Newline: "\n"},
		},
		{
			name:       "sep header line",
			csv:        "sep=,\na;b,c\n",
			wantRows:   [][]string{{"a;b", "c"}},
			wantFormat: Format{Separator: ",", Newline: "\n"},
		},
		{
			name:       "quoted multi-line field",
			csv:        "a;b\r\n\"x;\r\ny\";\"say \"\"hi\"\"\"\r\n",
			wantRows:   [][]string{{"a", "b"}, {"x;\ny", `say "hi"`}},
			wantFormat: Format{Separator: ";", Newline: "\r\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, format, err := ParseDetectFormat([]byte(tt.csv), nil)
			require.NoError(t, err)
			require.Equal(t, tt.wantRows, rows)
			require.NotEmpty(t, format.Encoding)
			require.Equal(t, tt.wantFormat.Separator, format.Separator)
			require.Equal(t, tt.wantFormat.Newline, format.Newline)
		})
	}
}

func TestParseWithFormat(t *testing.T) {
	t.Run("UTF-8 BOM", func(t *testing.T) {
		rows, err := ParseWithFormat([]byte("\xEF\xBB\xBFName;Age\r\nJohn;30\r\n"), NewFormat(";"))
		require.NoError(t, err)
		require.Equal(t, [][]string{{"Name", "Age"}, {"John", "30"}}, rows)
	})
	t.Run("header separator mismatch", func(t *testing.T) {
		_, err := ParseWithFormat([]byte("sep=,\r\na;b\r\n"), NewFormat(";"))
		require.Error(t, err)
	})
	t.Run("invalid format", func(t *testing.T) {
		_, err := ParseWithFormat([]byte("a;b"), &Format{Separator: ";;", Newline: "\n"})
		require.Error(t, err)
		_, err = ParseWithFormat([]byte("a;b"), nil)
		require.Error(t, err)
	})
}

func TestReadRecords(t *testing.T) {
	csv := "\r\nName;Age;;\r\nAlice;25;;\r\n;;;\r\nBob;;;\r\n"
	records, columns, format, err := ReadRecords([]byte(csv), nil)
	require.NoError(t, err)
	require.Equal(t, ";", format.Separator)
	require.Len(t, columns, 2)
	require.Equal(t, "Name", columns[0].ID)
	require.Equal(t, "Age", columns[1].ID)
	require.Equal(t, "Alice", records[0]["Name"])
	require.Equal(t, "25", records[0]["Age"])
	require.Equal(t, "Bob", records[1]["Name"])
	require.Equal(t, "", records[1]["Age"])
	require.Len(t, records, 2)
}
