// Package runlog persists a history of simulation runs so trajectories
// can be compared across mount adjustments.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// Run is one simulation run: the setup parameters plus, once the star
// reaches the end of the screen, the completion time.
type Run struct {
	ID           string     `json:"id"`
	Mode         string     `json:"mode"`
	XStart       float64    `json:"x_start"`
	XEnd         float64    `json:"x_end"`
	BaseSpeed    float64    `json:"base_speed"`
	Measured     bool       `json:"measured"`
	TotalSeconds float64    `json:"total_seconds"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			mode              TEXT NOT NULL,
			x_start           DOUBLE NOT NULL,
			x_end             DOUBLE NOT NULL,
			base_speed        DOUBLE NOT NULL,
			measured          INTEGER NOT NULL DEFAULT 0,
			total_seconds     DOUBLE NOT NULL,
			started_at        TIMESTAMP NOT NULL,
			completed_at      TIMESTAMP
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// RecordSetup inserts a new run and returns its id.
func (db *DB) RecordSetup(mode string, xStart, xEnd, baseSpeed float64, measured bool, totalSeconds float64, startedAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO runs (id, mode, x_start, x_end, base_speed, measured, total_seconds, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, mode, xStart, xEnd, baseSpeed, boolToInt(measured), totalSeconds, startedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// MarkCompleted stamps the completion time on a run.
func (db *DB) MarkCompleted(id string, completedAt time.Time) error {
	res, err := db.Exec(`UPDATE runs SET completed_at = ? WHERE id = ?`, completedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, mode, x_start, x_end, base_speed, measured, total_seconds, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var measured int
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.Mode, &r.XStart, &r.XEnd, &r.BaseSpeed,
			&measured, &r.TotalSeconds, &r.StartedAt, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Measured = measured != 0
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
