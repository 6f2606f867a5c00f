package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of an Office Open XML workbook.
// Reference-number columns take the raw stored value instead of the display
// format.
func readXLSX(data []byte) (*Table, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := xl.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := 0
	for header < len(rows)-1 && isEmptyRow(rows[header]) {
		header++
	}

	rawCols := rawColumnPositions(rows[header])
	if len(rawCols) > 0 {
		raw, err := xl.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read raw values of sheet %q: %w", sheet, err)
		}
		for i := header + 1; i < len(rows) && i < len(raw); i++ {
			for _, col := range rawCols {
				if col < len(rows[i]) && col < len(raw[i]) {
					rows[i][col] = raw[i][col]
				}
			}
		}
	}

	return tableFromRecords(rows)
}

// openXLS opens a BIFF workbook. Tests replace it to simulate decoder
// panics.
var openXLS = func(rs io.ReadSeeker) (*xls.WorkBook, error) {
	return xls.OpenReader(rs, "utf-8")
}

// readXLS reads the first sheet of a legacy BIFF workbook.
func readXLS(data []byte) (t *Table, err error) {
	// the BIFF decoder panics on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("corrupt workbook: %v", r)
		}
	}()

	wb, err := openXLS(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("cannot open first sheet")
	}

	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		records = append(records, cells)
	}

	return tableFromRecords(records)
}

// rawColumnPositions returns header positions that must bypass cell
// formatting.
func rawColumnPositions(header []string) []int {
	var cols []int
	for i, h := range header {
		if stringColumns[strings.ToLower(NormalizeColumn(h))] {
			cols = append(cols, i)
		}
	}
	return cols
}
