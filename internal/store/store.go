package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"docgen-converter/internal/errors"
	"docgen-converter/internal/mapping"
)

const (
	driverName = "sqlite"
	dirPerm    = 0o755
	// timeLayout is fixed width so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrNotFound is returned when an override or run does not exist.
var ErrNotFound = errors.New("not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS overrides (
		conga_tag  TEXT PRIMARY KEY,
		box_tag    TEXT NOT NULL,
		note       TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		template    TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		mapped      INTEGER NOT NULL,
		unmapped    INTEGER NOT NULL,
		errors      INTEGER NOT NULL,
		report_json TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
}

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema.
// The special path ":memory:" opens a private in-memory database.
func Open(path string, logger *zap.SugaredLogger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
			return nil, errors.Wrap(err, "failed to create store directory")
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open store %s", path)
	}

	if path == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}

	s, err := New(db, logger)
	if err != nil {
		db.Close()
		return nil, errors.WithHintf(err, "delete or move %s to start with an empty store", path)
	}

	s.log.Debugw("store opened", "path", path)

	return s, nil
}

// New wraps an open database and applies the schema.
func New(db *sql.DB, logger *zap.SugaredLogger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, errors.Wrap(err, "failed to apply store schema")
		}
	}

	return &Store{db: db, log: logger, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Override pins a Conga tag to a Box tag.
type Override struct {
	CongaTag  string    `json:"conga_tag"      yaml:"conga_tag"`
	BoxTag    string    `json:"box_tag"        yaml:"box_tag"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"     yaml:"updated_at"`
}

// SetOverride creates or replaces the override of a Conga tag. The tag is
// stored in {{Name}} form.
func (s *Store) SetOverride(congaTag, boxTag, note string) error {
	tag := mapping.NormalizeTag(congaTag)
	boxTag = strings.TrimSpace(boxTag)

	if tag == "{{}}" || boxTag == "" {
		return errors.WithHint(errors.New("override needs a Conga tag and a Box tag"),
			"example: override set {{Account_Name}} account.name")
	}

	_, err := s.db.Exec(`
		INSERT INTO overrides (conga_tag, box_tag, note, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(conga_tag) DO UPDATE SET
			box_tag = excluded.box_tag,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		tag, boxTag, note, formatTime(s.now()),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to save override for %s", tag)
	}

	s.log.Debugw("override saved", "conga_tag", tag, "box_tag", boxTag)

	return nil
}

// DeleteOverride removes the override of a Conga tag. It returns
// ErrNotFound when the tag had none.
func (s *Store) DeleteOverride(congaTag string) error {
	tag := mapping.NormalizeTag(congaTag)

	res, err := s.db.Exec(`DELETE FROM overrides WHERE conga_tag = ?`, tag)
	if err != nil {
		return errors.Wrapf(err, "failed to delete override for %s", tag)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}

	if n == 0 {
		return errors.Wrapf(ErrNotFound, "override for %s", tag)
	}

	return nil
}

// ListOverrides returns all overrides sorted by Conga tag.
func (s *Store) ListOverrides() ([]Override, error) {
	rows, err := s.db.Query(`SELECT conga_tag, box_tag, note, updated_at FROM overrides ORDER BY conga_tag`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query overrides")
	}
	defer rows.Close()

	var out []Override

	for rows.Next() {
		var (
			o       Override
			updated string
		)

		if err := rows.Scan(&o.CongaTag, &o.BoxTag, &o.Note, &updated); err != nil {
			return nil, errors.Wrap(err, "failed to scan override")
		}

		if o.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}

		out = append(out, o)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read overrides")
	}

	return out, nil
}

// Overrides returns the overrides as a Conga tag to Box tag map, the form
// the converter takes.
func (s *Store) Overrides() (map[string]string, error) {
	list, err := s.ListOverrides()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(list))
	for _, o := range list {
		out[o.CongaTag] = o.BoxTag
	}

	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp %q", s)
	}

	return t, nil
}
