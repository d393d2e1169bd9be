package querycontext

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"

	"docgen-converter/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV reads a CSV query context file.
func LoadCSV(path string) ([]Row, error) {
	data, err := readFile(path, "query context")
	if err != nil {
		return nil, err
	}

	rows, err := ParseCSV(data)
	if err != nil {
		return nil, errors.Wrapf(err, "query context file %s", path)
	}

	return rows, nil
}

// ParseCSV parses CSV query context data. An empty document yields no rows.
// Every row must carry a CongaField; all failing rows are reported together
// with their line numbers.
func ParseCSV(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return []Row{}, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []Row

	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []Row{}, nil
		}

		return nil, errors.WithHint(
			errors.Mark(errors.Wrap(err, "malformed CSV"), ErrMalformed),
			"expected a header row with CongaField,RelatedBoxField,DataType,SourceTable",
		)
	}

	var failed []string

	for i := range rows {
		row := &rows[i]
		row.CongaField = strings.TrimSpace(row.CongaField)
		row.RelatedBoxField = strings.TrimSpace(row.RelatedBoxField)
		row.DataType = strings.TrimSpace(row.DataType)
		row.SourceTable = strings.TrimSpace(row.SourceTable)

		if row.CongaField == "" {
			failed = append(failed, fmt.Sprintf("row %d: CongaField is required", i+2))
		}
	}

	if len(failed) > 0 {
		return nil, errors.WithDetail(
			errors.Mark(errors.Newf("%d row(s) failed validation: %s", len(failed), strings.Join(failed, "; ")), ErrInvalid),
			strings.Join(failed, "\n"),
		)
	}

	if rows == nil {
		rows = []Row{}
	}

	return rows, nil
}
