// Package match provides name normalization, Levenshtein similarity and
// candidate ranking for fuzzy field matching.
//
// Conga merge fields rarely spell a name exactly the way the schema mapping
// or query context does: "{{Account_Name}}", "AccountName" and
// "account.name" all refer to the same thing. Names are normalized before
// they are compared, and candidates are ranked by normalized similarity.
//
// Key functions:
//   - NormalizeIdent: normalizes tags and identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Rank: ranks known names against an unresolved tag
package match
