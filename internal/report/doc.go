// Package report turns a conversion output into the mapping report.
//
// The report carries one entry per template tag, the validation
// diagnostics, run metrics and a Box field schema export listing every
// resolved field with its data type. It is written as JSON or YAML and can
// be summarized for humans with pterm tables.
//
// SuggestMapping derives a reviewable schema mapping from the fuzzy and
// unmapped entries of a run, the way the suggest command exports it.
package report
