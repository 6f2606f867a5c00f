package ingest

import (
	"strings"
	"unicode"
)

// NormalizeColumn trims name and drops every rune that is not a letter,
// digit or underscore. NormalizeColumn(NormalizeColumn(s)) == NormalizeColumn(s).
func NormalizeColumn(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
}

// NormalizeColumns rewrites every column name in place.
func (t *Table) NormalizeColumns() {
	for i, name := range t.Columns {
		t.Columns[i] = NormalizeColumn(name)
	}
}
