package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// readJSON flattens a JSON document into a table. A top-level array yields
// one row per element; a single object yields one row. Nested object keys
// are joined with "." and columns appear in first-seen order.
func readJSON(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	f := &flattener{index: map[string]int{}}
	switch firstByte(doc) {
	case '[':
		dec := json.NewDecoder(bytes.NewReader(doc))
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		for n := 0; dec.More(); n++ {
			var elem json.RawMessage
			if err := dec.Decode(&elem); err != nil {
				return nil, err
			}
			if firstByte(elem) != '{' {
				return nil, fmt.Errorf("element %d is not an object", n)
			}
			if err := f.record(elem); err != nil {
				return nil, err
			}
		}
	case '{':
		if err := f.record(doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("top-level value must be an object or an array of objects")
	}

	if len(f.columns) == 0 {
		return nil, fmt.Errorf("no records")
	}

	records := make([][]string, 0, len(f.rows)+1)
	records = append(records, f.columns)
	for _, r := range f.rows {
		cells := make([]string, len(f.columns))
		for name, v := range r {
			cells[f.index[name]] = v
		}
		records = append(records, cells)
	}
	return tableFromRecords(records)
}

type flattener struct {
	columns []string
	index   map[string]int
	rows    []map[string]string
}

func (f *flattener) record(obj json.RawMessage) error {
	row := map[string]string{}
	if err := f.object(obj, "", row); err != nil {
		return err
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *flattener) object(obj json.RawMessage, prefix string, row map[string]string) error {
	dec := json.NewDecoder(bytes.NewReader(obj))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return err
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return err
		}

		name := prefix + key
		switch firstByte(val) {
		case '{':
			if err := f.object(val, name+".", row); err != nil {
				return err
			}
			continue
		case '[':
			var buf bytes.Buffer
			if err := json.Compact(&buf, val); err != nil {
				return err
			}
			f.set(row, name, buf.String())
		case 'n':
			f.set(row, name, "")
		case '"':
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return err
			}
			f.set(row, name, s)
		default:
			// numbers and booleans keep their literal text
			f.set(row, name, string(val))
		}
	}
	return nil
}

func (f *flattener) set(row map[string]string, name, value string) {
	if _, ok := f.index[name]; !ok {
		f.index[name] = len(f.columns)
		f.columns = append(f.columns, name)
	}
	row[name] = value
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
