package ingest

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var defaultSchemas string

// Column maps one normalized source column to a target field.
type Column struct {
	Source string
	Field  Field
}

// Schema describes the layout of one bank's statement for one transaction
// type. Schemas are immutable once the registry is built.
type Schema struct {
	Bank    string
	Type    TransactionType
	Columns []Column
}

// RequiredColumns returns the normalized source column names a table must
// contain, in declaration order.
func (s Schema) RequiredColumns() []string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.Source
	}
	return cols
}

// CheckColumns returns a *MissingColumnsError naming every required column
// absent from t. t must already be normalized.
func (s Schema) CheckColumns(t *Table) error {
	idx := t.Index()
	var missing []string
	for _, c := range s.Columns {
		if _, ok := idx[strings.ToLower(c.Source)]; !ok {
			missing = append(missing, c.Source)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Bank: s.Bank, Type: s.Type, Missing: missing}
	}
	return nil
}

// source returns the source column mapped to f.
func (s Schema) source(f Field) (string, bool) {
	for _, c := range s.Columns {
		if c.Field == f {
			return c.Source, true
		}
	}
	return "", false
}

type schemaKey struct {
	bank string
	typ  TransactionType
}

// Registry holds the bank code table and the per (bank, type) schemas.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	bankCodes map[string]int32
	schemas   map[schemaKey]Schema
}

// NewRegistry validates and indexes the given bank codes and schemas.
// Source column names are normalized.
func NewRegistry(bankCodes map[string]int32, schemas []Schema) (*Registry, error) {
	r := &Registry{
		bankCodes: make(map[string]int32, len(bankCodes)),
		schemas:   make(map[schemaKey]Schema, len(schemas)),
	}

	var errs []error
	for name, code := range bankCodes {
		key := bankKey(name)
		if key == "" {
			errs = append(errs, fmt.Errorf("bank code %d has an empty bank name", code))
			continue
		}
		r.bankCodes[key] = code
	}

	for i, s := range schemas {
		s.Bank = bankKey(s.Bank)
		label := fmt.Sprintf("schema %d (%s/%s)", i, s.Bank, s.Type)

		if s.Bank == "" {
			errs = append(errs, fmt.Errorf("%s: bank is required", label))
			continue
		}
		fields, ok := fieldsByType[s.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown transaction type %q", label, s.Type))
			continue
		}
		key := schemaKey{bank: s.Bank, typ: s.Type}
		if _, dup := r.schemas[key]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate schema", label))
			continue
		}

		cols := make([]Column, 0, len(s.Columns))
		seenSource := map[string]bool{}
		seenField := map[Field]bool{}
		for _, c := range s.Columns {
			src := NormalizeColumn(c.Source)
			switch {
			case src == "":
				errs = append(errs, fmt.Errorf("%s: column %q normalizes to nothing", label, c.Source))
				continue
			case seenSource[strings.ToLower(src)]:
				errs = append(errs, fmt.Errorf("%s: source column %q listed twice", label, src))
				continue
			case seenField[c.Field]:
				errs = append(errs, fmt.Errorf("%s: field %q mapped twice", label, c.Field))
				continue
			}
			if _, ok := fields[c.Field]; !ok {
				errs = append(errs, fmt.Errorf("%s: field %q is not valid for %s", label, c.Field, s.Type))
				continue
			}
			seenSource[strings.ToLower(src)] = true
			seenField[c.Field] = true
			cols = append(cols, Column{Source: src, Field: c.Field})
		}

		for f, role := range fields {
			if role.mandatory && !seenField[f] {
				errs = append(errs, fmt.Errorf("%s: mandatory field %q is not mapped", label, f))
			}
		}

		s.Columns = cols
		r.schemas[key] = s
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema registry: %w", errors.Join(errs...))
	}
	return r, nil
}

type registryFile struct {
	BankCodes map[string]int32 `yaml:"bank_codes"`
	Schemas   []struct {
		Bank    string `yaml:"bank"`
		Type    string `yaml:"type"`
		Columns []struct {
			Source string `yaml:"source"`
			Field  string `yaml:"field"`
		} `yaml:"columns"`
	} `yaml:"schemas"`
}

// LoadRegistry reads a registry definition in YAML.
func LoadRegistry(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file registryFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode schema registry: %w", err)
	}

	schemas := make([]Schema, 0, len(file.Schemas))
	for _, fs := range file.Schemas {
		s := Schema{Bank: fs.Bank, Type: TransactionType(strings.ToLower(fs.Type))}
		for _, c := range fs.Columns {
			s.Columns = append(s.Columns, Column{Source: c.Source, Field: Field(c.Field)})
		}
		schemas = append(schemas, s)
	}
	return NewRegistry(file.BankCodes, schemas)
}

// DefaultRegistry returns the registry compiled into the binary.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(strings.NewReader(defaultSchemas))
}

// Lookup returns the schema for (bank, typ).
func (r *Registry) Lookup(bank string, typ TransactionType) (Schema, error) {
	s, ok := r.schemas[schemaKey{bank: bankKey(bank), typ: typ}]
	if !ok {
		return Schema{}, fmt.Errorf("%w: bank %q, type %q", ErrUnknownSchema, bank, typ)
	}
	return s, nil
}

// BankCode resolves a bank identifier to its numeric code.
func (r *Registry) BankCode(bank string) (int32, error) {
	code, ok := r.bankCodes[bankKey(bank)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBank, bank)
	}
	return code, nil
}

// Banks returns every bank that has at least one schema, sorted.
func (r *Registry) Banks() []string {
	seen := map[string]bool{}
	var banks []string
	for k := range r.schemas {
		if !seen[k.bank] {
			seen[k.bank] = true
			banks = append(banks, k.bank)
		}
	}
	sort.Strings(banks)
	return banks
}

func bankKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
