// Package store persists manual overrides and run history in SQLite.
//
// Overrides pin a Conga tag to a Box tag and win over every other
// resolution rule. The run history keeps the summary and JSON report of
// each conversion so earlier results can be listed and compared.
//
// The database uses the pure Go modernc.org/sqlite driver.
package store
