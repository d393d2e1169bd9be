package mapping

import (
	"bytes"
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

// Loader errors.
var (
	ErrNotFound  = errors.New("schema mapping not found")
	ErrMalformed = errors.New("malformed schema mapping")
	ErrInvalid   = errors.New("invalid schema mapping")
)

// LoadFile loads, normalizes and validates a schema mapping file.
// Files ending in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*SchemaMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "schema mapping file not found at %s", path)
		}

		return nil, errors.Wrapf(err, "failed to read mapping file %s", path)
	}

	parse := Parse
	if isYAML(path) {
		parse = ParseYAML
	}

	sm, err := parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping file %s", path)
	}

	if diags := Validate(sm); diags.HasErrors() {
		return nil, errors.WithHint(
			errors.Mark(errors.Wrapf(diags.Error(), "mapping file %s", path), ErrInvalid),
			"every nested path needs a source_path and at least one field",
		)
	}

	return sm, nil
}

// Parse parses JSON data into a normalized SchemaMapping.
func Parse(data []byte) (*SchemaMapping, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Mark(errors.New("empty mapping document"), ErrMalformed)
	}

	var sm SchemaMapping

	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, errors.WithHint(
			errors.Mark(errors.Wrap(err, "failed to parse mapping JSON"), ErrMalformed),
			"the mapping must be a JSON object with direct_mappings, type_rules and nested_paths",
		)
	}

	sm.normalize()

	return &sm, nil
}

// ParseYAML parses YAML data into a normalized SchemaMapping.
func ParseYAML(data []byte) (*SchemaMapping, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Mark(errors.New("empty mapping document"), ErrMalformed)
	}

	var sm SchemaMapping

	if err := yaml.Unmarshal(data, &sm); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse mapping YAML"), ErrMalformed)
	}

	sm.normalize()

	return &sm, nil
}

// Marshal serializes a SchemaMapping to YAML.
func Marshal(sm *SchemaMapping) ([]byte, error) {
	return yaml.Marshal(sm)
}

// MarshalJSON serializes a SchemaMapping to indented JSON.
func MarshalJSON(sm *SchemaMapping) ([]byte, error) {
	return json.MarshalIndent(sm, "", "  ")
}

// WriteFile writes a SchemaMapping to path, as YAML for .yaml/.yml and as
// JSON otherwise.
func WriteFile(sm *SchemaMapping, path string) error {
	marshal := MarshalJSON
	if isYAML(path) {
		marshal = Marshal
	}

	data, err := marshal(sm)
	if err != nil {
		return errors.Wrap(err, "failed to marshal mapping")
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return errors.Wrapf(err, "failed to write mapping file %s", path)
	}

	return nil
}

func isYAML(path string) bool {
	return common.HasExt(path, ".yaml", ".yml")
}
