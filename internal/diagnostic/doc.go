// Package diagnostic provides structured warnings, errors, and
// informational notes produced while converting a template.
//
// Key capabilities:
//   - Unmapped and ambiguous merge field warnings with suggestions
//   - Block structure errors (unexpected, mismatched, unclosed blocks)
//   - Input validation errors for the schema mapping and query context
package diagnostic
