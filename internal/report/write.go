package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"docgen-converter/internal/common"
	"docgen-converter/internal/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Format is the serialization of a report file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name used in configuration.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return common.UnknownStr
	}
}

// FormatFor picks the format from the file extension. Paths without a
// known extension use fallback.
func FormatFor(path string, fallback Format) Format {
	switch {
	case common.HasExt(path, ".yaml", ".yml"):
		return FormatYAML
	case common.HasExt(path, ".json"):
		return FormatJSON
	default:
		return fallback
	}
}

// ParseFormat parses a format name; the empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatJSON, errors.WithHint(
			errors.Newf("unknown report format %q", s),
			`use "json" or "yaml"`,
		)
	}
}

// Marshal serializes the report in the given format.
func (d *Document) Marshal(f Format) ([]byte, error) {
	if f == FormatYAML {
		return yaml.Marshal(d)
	}

	return json.MarshalIndent(d, "", "  ")
}

// WriteFile writes the report to path. The extension selects the format;
// paths without a known extension use fallback.
func (d *Document) WriteFile(path string, fallback Format) error {
	data, err := d.Marshal(FormatFor(path, fallback))
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.Wrap(err, "creating report directory")
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return errors.Wrapf(err, "failed to write report %s", path)
	}

	return nil
}

// ReadFile loads a report written by WriteFile.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read report %s", path)
	}

	var doc Document

	if FormatFor(path, FormatJSON) == FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse report %s", path)
	}

	return &doc, nil
}
