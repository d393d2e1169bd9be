package match

import (
	"strings"
	"unicode"
)

// salesforceSuffixes mark custom objects, fields and relationships.
var salesforceSuffixes = []string{"__c", "__r"}

// NormalizeIdent normalizes a tag or identifier for fuzzy matching.
// The normalization pipeline:
// 1. Strip surrounding {{ }} braces.
// 2. Tokenize CamelCase and split on separators (_, -, ., spaces).
// 3. Case-fold to lower and join.
func NormalizeIdent(s string) string {
	tokens := tokenizeCamelCase(stripBraces(s))

	return strings.ToLower(strings.Join(tokens, ""))
}

// NormalizeIdentWithSuffixStrip normalizes and strips common suffixes.
// Salesforce custom suffixes (__c, __r) are removed first, then one of the
// tokens ids or id.
func NormalizeIdentWithSuffixStrip(s string) string {
	raw := stripBraces(s)
	for _, suffix := range salesforceSuffixes {
		if trimmed, ok := strings.CutSuffix(raw, suffix); ok && trimmed != "" {
			raw = trimmed

			break
		}
	}

	normalized := NormalizeIdent(raw)

	for _, suffix := range []string{"ids", "id"} {
		if strings.HasSuffix(normalized, suffix) && len(normalized) > len(suffix) {
			normalized = strings.TrimSuffix(normalized, suffix)

			break
		}
	}

	return normalized
}

// stripBraces removes surrounding {{ }} and whitespace.
func stripBraces(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 4 && strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		s = s[2 : len(s)-2]
	}

	return strings.TrimSpace(s)
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "OpportunityID" -> ["Opportunity", "ID"]
//   - "closeDate" -> ["close", "Date"]
//   - "PDFLink" -> ["PDF", "Link"]
//   - "Account_Name" -> ["Account", "Name"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator returns true if the rune separates words in a field name.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// "closeDate" -> split before 'D'
	if isUpper && !isPrevUpper && !isSeparator(prevRune) {
		return true
	}

	// "PDFLink" -> split before 'L'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}
