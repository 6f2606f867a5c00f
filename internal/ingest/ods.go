package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxRepeat caps number-*-repeated attributes on non-empty content. Office
// suites write huge repeat counts for trailing filler; those are always
// empty and never expanded.
const maxRepeat = 1 << 14

// readODS reads the first table of an OpenDocument spreadsheet.
func readODS(data []byte) (*Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var content *zip.File
	for _, f := range zr.File {
		if f.Name == "content.xml" {
			content = f
			break
		}
	}
	if content == nil {
		return nil, fmt.Errorf("content.xml not found")
	}

	rc, err := content.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	records, err := readODSTable(xml.NewDecoder(rc))
	if err != nil {
		return nil, err
	}
	return tableFromRecords(records)
}

// readODSTable streams the first table:table element and returns its
// non-empty rows.
func readODSTable(dec *xml.Decoder) ([][]string, error) {
	var (
		records [][]string
		inTable bool
		row     *odsRow
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if !inTable {
				return nil, fmt.Errorf("no table found")
			}
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "table":
				if inTable {
					// nested tables are not row data
					if err := dec.Skip(); err != nil {
						return nil, err
					}
					continue
				}
				inTable = true
			case "table-row":
				if inTable {
					row = &odsRow{repeat: repeatAttr(el, "number-rows-repeated")}
				}
			case "table-cell", "covered-table-cell":
				if row == nil {
					continue
				}
				value, err := readODSCell(dec, el)
				if err != nil {
					return nil, err
				}
				row.add(value, repeatAttr(el, "number-columns-repeated"))
			}

		case xml.EndElement:
			switch el.Name.Local {
			case "table-row":
				if row != nil && len(row.cells) > 0 {
					for i := 0; i < min(row.repeat, maxRepeat); i++ {
						records = append(records, row.cells)
					}
				}
				row = nil
			case "table":
				if inTable {
					return records, nil
				}
			}
		}
	}
}

type odsRow struct {
	cells        []string
	pendingEmpty int
	repeat       int
}

// add appends value repeat times. Empty cells are only materialized once a
// non-empty cell follows them.
func (r *odsRow) add(value string, repeat int) {
	if value == "" {
		r.pendingEmpty += repeat
		return
	}
	for ; r.pendingEmpty > 0; r.pendingEmpty-- {
		r.cells = append(r.cells, "")
	}
	for i := 0; i < min(repeat, maxRepeat); i++ {
		r.cells = append(r.cells, value)
	}
}

// readODSCell consumes a cell element and returns its value. Numeric cells
// use the office:value attribute; everything else uses the displayed text.
func readODSCell(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var valueType, value string
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "value-type":
			valueType = a.Value
		case "value":
			value = a.Value
		}
	}

	var (
		text       strings.Builder
		paragraphs int
		depth      = 1
	)
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch el.Name.Local {
			case "p":
				if paragraphs > 0 {
					text.WriteByte('\n')
				}
				paragraphs++
			case "s":
				text.WriteString(strings.Repeat(" ", repeatAttr(el, "c")))
			case "tab":
				text.WriteByte('\t')
			case "line-break":
				text.WriteByte('\n')
			}
		case xml.EndElement:
			depth--
		case xml.CharData:
			text.Write(el)
		}
	}

	switch valueType {
	case "float", "currency", "percentage":
		if value != "" {
			return value, nil
		}
	}
	return text.String(), nil
}

func repeatAttr(el xml.StartElement, name string) int {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			n, err := strconv.Atoi(a.Value)
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}
