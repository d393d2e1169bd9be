package template

import (
	"docgen-converter/internal/common"
)

// ElementKind identifies what a template element is.
type ElementKind int

const (
	// KindText is plain document text between tags.
	KindText ElementKind = iota
	// KindMergeField is a {{FieldName}} tag.
	KindMergeField
	// KindControlTag is a {{Type:Parameter}} tag or a bare block keyword.
	KindControlTag
)

// String returns the serialized kind name.
func (k ElementKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMergeField:
		return "merge_field"
	case KindControlTag:
		return "control_tag"
	default:
		return common.UnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Element is a single piece of a Conga template.
type Element struct {
	// Kind of the element.
	Kind ElementKind `json:"element_type"  yaml:"element_type"`
	// OriginalTag is the full source text, e.g. "{{TableStart:Contacts}}".
	// For text elements it equals Content.
	OriginalTag string `json:"original_tag" yaml:"original_tag"`
	// FieldName is the trimmed inner content of a merge field.
	FieldName string `json:"field_name,omitempty" yaml:"field_name,omitempty"`
	// ControlType is the part before ':' of a control tag, e.g. "TableStart".
	ControlType string `json:"control_type,omitempty" yaml:"control_type,omitempty"`
	// Parameter is the part after ':' of a control tag. Empty when absent.
	Parameter string `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	// Content is the text of a text element.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// IsTag reports whether the element is a merge field or control tag.
func (e Element) IsTag() bool {
	return e.Kind == KindMergeField || e.Kind == KindControlTag
}

// Text builds a text element.
func Text(content string) Element {
	return Element{Kind: KindText, OriginalTag: content, Content: content}
}

// Counts tallies elements by kind.
type Counts struct {
	MergeFields int `json:"merge_fields" yaml:"merge_fields"`
	ControlTags int `json:"control_tags" yaml:"control_tags"`
	Text        int `json:"text"         yaml:"text"`
}

// Count tallies the given elements by kind.
func Count(elements []Element) Counts {
	var c Counts

	for _, e := range elements {
		switch e.Kind {
		case KindMergeField:
			c.MergeFields++
		case KindControlTag:
			c.ControlTags++
		case KindText:
			c.Text++
		}
	}

	return c
}
