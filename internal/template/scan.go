package template

import (
	"regexp"
	"strings"
)

// TagPattern matches a Conga tag and captures its inner content.
var TagPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// bareControls are block keywords recognized without a ':' parameter.
var bareControls = map[string]struct{}{
	"endif":    {},
	"else":     {},
	"tableend": {},
}

// ParseTag classifies a single tag given its full text and inner content.
// Inner content containing ':' is a control tag split at the first colon;
// a bare ENDIF, ELSE or TableEnd is a control tag without parameter;
// anything else is a merge field.
func ParseTag(full, inner string) Element {
	trimmed := strings.TrimSpace(inner)

	if controlType, parameter, ok := strings.Cut(trimmed, ":"); ok {
		return Element{
			Kind:        KindControlTag,
			OriginalTag: full,
			ControlType: strings.TrimSpace(controlType),
			Parameter:   strings.TrimSpace(parameter),
		}
	}

	if _, ok := bareControls[strings.ToLower(trimmed)]; ok {
		return Element{Kind: KindControlTag, OriginalTag: full, ControlType: trimmed}
	}

	return Element{Kind: KindMergeField, OriginalTag: full, FieldName: trimmed}
}

// ScanText extracts tags and text segments from text.
// Whitespace-only text between or after tags is dropped.
func ScanText(text string) []Element {
	var elements []Element

	lastEnd := 0

	for _, loc := range TagPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > lastEnd {
			appendText(&elements, text[lastEnd:loc[0]])
		}

		elements = append(elements, ParseTag(text[loc[0]:loc[1]], text[loc[2]:loc[3]]))
		lastEnd = loc[1]
	}

	if lastEnd < len(text) {
		appendText(&elements, text[lastEnd:])
	}

	return elements
}

func appendText(elements *[]Element, s string) {
	if strings.TrimSpace(s) == "" {
		return
	}

	*elements = append(*elements, Text(s))
}
