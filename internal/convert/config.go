package convert

import (
	"strings"

	"docgen-converter/internal/common"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/match"
)

// BlockStyle selects the Box tag syntax emitted for control blocks.
type BlockStyle int

const (
	// StyleSection emits mustache sections: {{#p}}, {{^p}}, {{/p}}.
	StyleSection BlockStyle = iota
	// StyleDocGen emits Box DocGen keywords: {{tablerow item in p}}, {{if p}}.
	StyleDocGen
)

// String returns the style name used in configuration.
func (s BlockStyle) String() string {
	switch s {
	case StyleSection:
		return "section"
	case StyleDocGen:
		return "docgen"
	default:
		return common.UnknownStr
	}
}

// ParseBlockStyle parses a style name. The empty string selects StyleSection.
func ParseBlockStyle(s string) (BlockStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "section":
		return StyleSection, nil
	case "docgen":
		return StyleDocGen, nil
	default:
		return StyleSection, errors.WithHint(
			errors.Newf("unknown block style %q", s),
			`use "section" or "docgen"`,
		)
	}
}

// Config holds configuration for the conversion.
type Config struct {
	// MinConfidence is the minimum score for auto-accepting a fuzzy match.
	MinConfidence float64
	// MinGap is the minimum score gap between top candidates for auto-accept.
	MinGap float64
	// AmbiguityThreshold marks the top two candidates as ambiguous if within this difference.
	AmbiguityThreshold float64
	// MaxSuggestions is the maximum number of candidates included in suggestions.
	MaxSuggestions int
	// AutoMatch enables fuzzy matching of fields no rule resolves.
	AutoMatch bool
	// StrictMode fails on any error diagnostic or unmapped field.
	StrictMode bool
	// BlockStyle selects the syntax of converted control blocks.
	BlockStyle BlockStyle
}

// DefaultConfig returns the default conversion configuration.
func DefaultConfig() Config {
	return Config{
		MinConfidence:      match.DefaultMinScore,
		MinGap:             match.DefaultMinGap,
		AmbiguityThreshold: match.DefaultAmbiguityThreshold,
		MaxSuggestions:     3,
		AutoMatch:          true,
		StrictMode:         false,
		BlockStyle:         StyleSection,
	}
}
