package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"docgen-converter/internal/errors"
)

// Run is the stored summary of one conversion.
type Run struct {
	ID         string    `json:"id"          yaml:"id"`
	Template   string    `json:"template"    yaml:"template"`
	StartedAt  time.Time `json:"started_at"  yaml:"started_at"`
	Mapped     int       `json:"mapped"      yaml:"mapped"`
	Unmapped   int       `json:"unmapped"    yaml:"unmapped"`
	Errors     int       `json:"errors"      yaml:"errors"`
	ReportJSON string    `json:"-"           yaml:"-"`
}

// RecordRun stores a run. An empty ID gets a fresh UUID and a zero
// StartedAt the current time; the stored run is returned.
func (s *Store) RecordRun(run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}

	run.StartedAt = run.StartedAt.UTC()

	_, err := s.db.Exec(`
		INSERT INTO runs (id, template, started_at, mapped, unmapped, errors, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Template, formatTime(run.StartedAt),
		run.Mapped, run.Unmapped, run.Errors, run.ReportJSON,
	)
	if err != nil {
		return Run{}, errors.Wrapf(err, "failed to record run %s", run.ID)
	}

	s.log.Debugw("run recorded", "id", run.ID, "template", run.Template)

	return run, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
// ReportJSON is not loaded; use GetRun for that.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, template, started_at, mapped, unmapped, errors
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var out []Run

	for rows.Next() {
		var (
			r       Run
			started string
		)

		if err := rows.Scan(&r.ID, &r.Template, &started, &r.Mapped, &r.Unmapped, &r.Errors); err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}

		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read runs")
	}

	return out, nil
}

// GetRun returns one run including its report.
func (s *Store) GetRun(id string) (Run, error) {
	var (
		r       Run
		started string
	)

	err := s.db.QueryRow(`
		SELECT id, template, started_at, mapped, unmapped, errors, report_json
		FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Template, &started, &r.Mapped, &r.Unmapped, &r.Errors, &r.ReportJSON)

	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.Wrapf(ErrNotFound, "run %s", id)
	}

	if err != nil {
		return Run{}, errors.Wrapf(err, "failed to load run %s", id)
	}

	if r.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}

	return r, nil
}
