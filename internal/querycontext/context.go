package querycontext

import (
	"os"
	"strings"

	"docgen-converter/internal/common"
	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/mapping"
)

// Reader errors.
var (
	ErrNotFound    = errors.New("query context not found")
	ErrMalformed   = errors.New("malformed query context")
	ErrInvalid     = errors.New("invalid query context")
	ErrUnsupported = errors.New("unsupported query context format")
)

// Kind identifies which reader produced a Context.
type Kind int

const (
	KindNone Kind = iota
	KindCSV
	KindSQL
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCSV:
		return "csv"
	case KindSQL:
		return "sql"
	default:
		return common.UnknownStr
	}
}

// Row is one row of a CSV query context.
type Row struct {
	CongaField      string `csv:"CongaField"      json:"conga_field"                 yaml:"conga_field"`
	RelatedBoxField string `csv:"RelatedBoxField" json:"related_box_field,omitempty" yaml:"related_box_field,omitempty"`
	DataType        string `csv:"DataType"        json:"data_type,omitempty"         yaml:"data_type,omitempty"`
	SourceTable     string `csv:"SourceTable"     json:"source_table,omitempty"      yaml:"source_table,omitempty"`
}

// SQLContext holds the field names selected by a SQL query context.
type SQLContext struct {
	SelectedFields []string `json:"selected_fields" yaml:"selected_fields"`
	// Diagnostics holds warnings about statements read without the parser.
	Diagnostics diagnostic.Diagnostics `json:"-" yaml:"-"`
}

// Context is a loaded query context. At most one of Rows and SQL is set.
type Context struct {
	Rows []Row
	SQL  *SQLContext
}

// Kind reports which kind of context c holds.
func (c *Context) Kind() Kind {
	switch {
	case c == nil:
		return KindNone
	case c.SQL != nil:
		return KindSQL
	case c.Rows != nil:
		return KindCSV
	default:
		return KindNone
	}
}

// Load reads a query context, choosing the reader by file extension.
func Load(path string) (*Context, error) {
	switch common.Ext(path) {
	case ".csv":
		rows, err := LoadCSV(path)
		if err != nil {
			return nil, err
		}

		if rows == nil {
			rows = []Row{}
		}

		return &Context{Rows: rows}, nil
	case ".sql":
		sql, err := LoadSQL(path)
		if err != nil {
			return nil, err
		}

		return &Context{SQL: sql}, nil
	default:
		return nil, errors.WithHint(
			errors.Wrapf(ErrUnsupported, "query context %s", path),
			"use a .csv or .sql file",
		)
	}
}

// Lookup returns the first CSV row whose CongaField equals tag and that
// names a Box field. "Name" and "{{Name}}" are treated as the same field.
func (c *Context) Lookup(tag string) (Row, bool) {
	if c == nil {
		return Row{}, false
	}

	want := mapping.NormalizeTag(tag)

	for _, row := range c.Rows {
		if mapping.NormalizeTag(row.CongaField) == want && row.RelatedBoxField != "" {
			return row, true
		}
	}

	return Row{}, false
}

// LookupSQL returns the selected field matching name. Comparison ignores
// case and the separators "_", "-", "." and spaces.
func (c *Context) LookupSQL(name string) (string, bool) {
	if c == nil || c.SQL == nil {
		return "", false
	}

	key := sqlKey(name)
	if key == "" {
		return "", false
	}

	for _, field := range c.SQL.SelectedFields {
		if sqlKey(field) == key {
			return field, true
		}
	}

	return "", false
}

// DataType returns the CSV data type recorded for a Box field, if any.
func (c *Context) DataType(boxField string) (string, bool) {
	if c == nil {
		return "", false
	}

	for _, row := range c.Rows {
		if row.RelatedBoxField == boxField && row.DataType != "" {
			return row.DataType, true
		}
	}

	return "", false
}

// Names returns the candidate names the context offers for fuzzy matching:
// CSV CongaFields that map somewhere and SQL selected fields.
func (c *Context) Names() []string {
	if c == nil {
		return nil
	}

	var names []string

	for _, row := range c.Rows {
		if row.RelatedBoxField != "" {
			names = append(names, row.CongaField)
		}
	}

	if c.SQL != nil {
		names = append(names, c.SQL.SelectedFields...)
	}

	return names
}

func sqlKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.', ' ', '{', '}':
			return -1
		}

		return r
	}, strings.ToLower(s))
}

func readFile(path, what string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s file not found at %s", what, path)
		}

		return nil, errors.Wrapf(err, "could not read %s file %s", what, path)
	}

	return data, nil
}
