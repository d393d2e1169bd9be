package convert

import (
	"fmt"
	"strings"

	"docgen-converter/internal/common"
	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/mapping"
	"docgen-converter/internal/template"
)

// Conga control types, compared case-insensitively.
const (
	ctlTableStart = "tablestart"
	ctlTableEnd   = "tableend"
	ctlIf         = "if"
	ctlEndIf      = "endif"
	ctlElse       = "else"
)

type blockKind int

const (
	blockTable blockKind = iota
	blockIf
)

func (k blockKind) opener() string {
	if k == blockTable {
		return "TableStart"
	}

	return "IF"
}

func (k blockKind) closer() string {
	if k == blockTable {
		return "TableEnd"
	}

	return "ENDIF"
}

// block is an open TableStart or IF section.
type block struct {
	kind  blockKind
	param string
	// sawElse is set once an ELSE switched the block to its inverted branch.
	sawElse bool
	// nested is the schema's nested path for this table, if any.
	nested    *mapping.NestedPath
	nestedKey string
}

type blockStack []*block

func (s *blockStack) push(b *block) { *s = append(*s, b) }

func (s *blockStack) pop() *block {
	if len(*s) == 0 {
		return nil
	}

	b := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]

	return b
}

func (s blockStack) top() *block {
	b, _ := common.Last(s)

	return b
}

// nestedScope returns the open table blocks with a nested path,
// innermost first.
func (s blockStack) nestedScope() []*block {
	var out []*block

	for i := len(s) - 1; i >= 0; i-- {
		if s[i].kind == blockTable && s[i].nested != nil {
			out = append(out, s[i])
		}
	}

	return out
}

func (c *Converter) convertControlTag(r *run, el template.Element) {
	entry := Entry{
		Kind:     template.KindControlTag,
		CongaTag: el.OriginalTag,
		Method:   MethodControlUnhandled,
	}

	switch strings.ToLower(el.ControlType) {
	case ctlTableStart:
		c.openBlock(r, el, blockTable, &entry)
	case ctlIf:
		c.openBlock(r, el, blockIf, &entry)
	case ctlTableEnd:
		c.closeBlock(r, el, blockTable, &entry)
	case ctlEndIf:
		c.closeBlock(r, el, blockIf, &entry)
	case ctlElse:
		c.elseBlock(r, el, &entry)
	default:
		r.emit(el.OriginalTag)
		entry.Notes = fmt.Sprintf("Unhandled control tag type: %s", el.ControlType)
		r.out.Diagnostics.AddInfo(diagnostic.CodeUnhandledControl,
			fmt.Sprintf("Control tag '%s' of type '%s' was kept unchanged.", el.OriginalTag, el.ControlType),
			el.OriginalTag)
	}

	r.out.Entries = append(r.out.Entries, entry)
}

func (c *Converter) openBlock(r *run, el template.Element, kind blockKind, entry *Entry) {
	if el.Parameter == "" {
		r.emit(el.OriginalTag)
		entry.Notes = fmt.Sprintf("Missing parameter for %s tag.", el.ControlType)
		r.out.Diagnostics.AddError(diagnostic.CodeMissingParameter,
			fmt.Sprintf("%s tag '%s' is missing its required parameter.", el.ControlType, el.OriginalTag),
			el.OriginalTag)

		return
	}

	b := &block{kind: kind, param: el.Parameter}

	if kind == blockTable {
		if key, np, ok := c.schema.Nested(el.Parameter); ok {
			b.nested = &np
			b.nestedKey = key
		}
	}

	r.blocks.push(b)

	var what string

	switch kind {
	case blockTable:
		entry.Method = MethodTableStart
		what = "Table Section Start"

		if c.config.BlockStyle == StyleDocGen {
			entry.BoxTag = fmt.Sprintf("{{tablerow item in %s}}", b.param)
		}
	case blockIf:
		entry.Method = MethodIfStart
		what = "Conditional Block Start"

		if c.config.BlockStyle == StyleDocGen {
			entry.BoxTag = fmt.Sprintf("{{if %s}}", b.param)
		}
	}

	if entry.BoxTag == "" {
		entry.BoxTag = fmt.Sprintf("{{#%s}}", b.param)
	}

	entry.Notes = fmt.Sprintf("Maps to Box %s for '%s'.", what, b.param)
	if b.nested != nil {
		entry.Notes += fmt.Sprintf(" Fields use nested path '%s'.", b.nestedKey)
	}

	r.emit(entry.BoxTag)
	c.log.Debugw("opened block", "tag", el.OriginalTag, "param", b.param, "depth", len(r.blocks))
}

func (c *Converter) closeBlock(r *run, el template.Element, kind blockKind, entry *Entry) {
	expected := "Table"
	if kind == blockIf {
		expected = "IF"
	}

	b := r.blocks.pop()
	if b == nil {
		r.emit(el.OriginalTag)
		entry.Notes = fmt.Sprintf("Unexpected %s end tag.", expected)
		r.out.Diagnostics.AddError(diagnostic.CodeUnexpectedBlockEnd,
			fmt.Sprintf("%s tag '%s' found without a matching open block.", el.ControlType, el.OriginalTag),
			el.OriginalTag)

		return
	}

	switch {
	case kind == blockTable && el.Parameter != "" && el.Parameter != b.param:
		entry.Notes = fmt.Sprintf("Mismatched %s end parameter. Expected '%s', got '%s'. Closed '%s'.",
			expected, b.param, el.Parameter, b.param)
		r.out.Diagnostics.AddWarning(diagnostic.CodeMismatchedBlockEnd,
			fmt.Sprintf("%s tag '%s' parameter '%s' does not match open block '%s'. Using '%s'.",
				el.ControlType, el.OriginalTag, el.Parameter, b.param, b.param),
			el.OriginalTag)
	case kind != b.kind:
		entry.Notes = fmt.Sprintf("%s closes %s block '%s'.", el.ControlType, b.kind.opener(), b.param)
		r.out.Diagnostics.AddWarning(diagnostic.CodeMismatchedBlockEnd,
			fmt.Sprintf("%s tag '%s' closes a %s block '%s'; expected %s.",
				el.ControlType, el.OriginalTag, b.kind.opener(), b.param, b.kind.closer()),
			el.OriginalTag)
	default:
		entry.Notes = fmt.Sprintf("Closes %s block for '%s'.", expected, b.param)
	}

	if kind == blockTable {
		entry.Method = MethodTableEnd
	} else {
		entry.Method = MethodEndIf
	}

	entry.BoxTag = c.endTag(b)
	r.emit(entry.BoxTag)
	c.log.Debugw("closed block", "tag", el.OriginalTag, "param", b.param, "depth", len(r.blocks))
}

// endTag renders the closing tag of b in the configured style. The tag
// follows the kind of the block being closed, not the closing keyword.
func (c *Converter) endTag(b *block) string {
	if c.config.BlockStyle == StyleDocGen {
		if b.kind == blockTable {
			return "{{endtablerow}}"
		}

		return "{{endif}}"
	}

	return fmt.Sprintf("{{/%s}}", b.param)
}

func (c *Converter) elseBlock(r *run, el template.Element, entry *Entry) {
	b := r.blocks.top()
	if b == nil || b.kind != blockIf || b.sawElse {
		r.emit(el.OriginalTag)
		entry.Notes = "ELSE outside of an IF block."
		r.out.Diagnostics.AddError(diagnostic.CodeUnexpectedElse,
			fmt.Sprintf("ELSE tag '%s' found outside of an open IF block.", el.OriginalTag),
			el.OriginalTag)

		return
	}

	b.sawElse = true
	entry.Method = MethodElse

	if c.config.BlockStyle == StyleDocGen {
		entry.BoxTag = "{{else}}"
	} else {
		entry.BoxTag = fmt.Sprintf("{{/%s}}{{^%s}}", b.param, b.param)
	}

	entry.Notes = fmt.Sprintf("Switches block '%s' to its else branch.", b.param)
	r.emit(entry.BoxTag)
}
