package ingest

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// candidateDelimiters is tried in order; the first one present in the text
// is used.
var candidateDelimiters = []rune{',', ';', '\t', '|', ' ', '.', '_'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectDelimiter returns the first candidate delimiter that occurs in text,
// or ',' when none does.
func DetectDelimiter(text string) rune {
	for _, d := range candidateDelimiters {
		if strings.ContainsRune(text, d) {
			return d
		}
	}
	return ','
}

// decodeText drops a UTF-8 BOM and any invalid byte sequences.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(data), "")
}

func readDelimited(data []byte) (*Table, error) {
	text := decodeText(data)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = DetectDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return tableFromRecords(records)
}
