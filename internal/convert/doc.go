// Package convert resolves Conga template elements into Box DocGen tags.
//
// Conversion pipeline:
//  1. Walk the template elements once, in document order
//  2. Pass text through unchanged
//  3. For each merge field, apply the first matching rule:
//     - Stored manual override
//     - Nested path of an enclosing table block
//     - Schema direct mapping
//     - CSV query context row
//     - SQL selected field
//     - Fuzzy match, auto-accepted only on high confidence
//  4. Translate TableStart/IF/ELSE/ENDIF/TableEnd into Box block tags,
//     tracking open blocks on a stack
//  5. Emit diagnostics (unmapped and ambiguous fields, block structure errors)
package convert
