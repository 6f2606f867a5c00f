package ingest

// reader.go selects a format reader from the file extension and reduces every
// supported format to the same Table shape.
//
// All readers keep cells as raw strings; typing happens later in Coerce.
// Entirely blank rows are dropped so trailing spreadsheet filler and blank
// CSV lines never reach validation.

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a supported source file format.
type Format string

const (
	FormatDelimited Format = "delimited"
	FormatXLSX      Format = "xlsx"
	FormatXLS       Format = "xls"
	FormatODS       Format = "ods"
	FormatJSON      Format = "json"
)

var formatsByExt = map[string]Format{
	".csv":  FormatDelimited,
	".txt":  FormatDelimited,
	".xlsx": FormatXLSX,
	".xls":  FormatXLS,
	".ods":  FormatODS,
	".json": FormatJSON,
}

// SupportedExtensions returns the accepted file extensions.
func SupportedExtensions() []string {
	return []string{".csv", ".txt", ".xlsx", ".xls", ".ods", ".json"}
}

// stringColumns are read from the raw cell value in spreadsheets so long
// reference numbers are not rounded or rendered in scientific notation.
var stringColumns = map[string]bool{
	"irctcorderno":     true,
	"bankbookingrefno": true,
	"bankrefundrefno":  true,
}

// DetectFormat returns the reader format for fileName.
func DetectFormat(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	f, ok := formatsByExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileName)
	}
	return f, nil
}

// ReadTable decodes data according to the format implied by fileName.
func ReadTable(data []byte, fileName string) (*Table, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	var t *Table
	switch format {
	case FormatDelimited:
		t, err = readDelimited(data)
	case FormatXLSX:
		t, err = readXLSX(data)
	case FormatXLS:
		t, err = readXLS(data)
	case FormatODS:
		t, err = readODS(data)
	case FormatJSON:
		t, err = readJSON(data)
	}
	if err != nil {
		return nil, parseError(format, err)
	}
	return t, nil
}

// tableFromRecords treats the first non-blank record as the header and drops
// blank rows.
func tableFromRecords(records [][]string) (*Table, error) {
	skipped := 0
	for len(records) > 0 && isEmptyRow(records[0]) {
		records = records[1:]
		skipped++
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	t := &Table{Columns: records[0]}
	for i, row := range records[1:] {
		if isEmptyRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
		t.RowNumbers = append(t.RowNumbers, skipped+i+2)
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
