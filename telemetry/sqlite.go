package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("telemetry: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) BeginRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, name, started_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			started_at = excluded.started_at
	`, run.ID, run.Name, run.StartedAt.UnixNano())
	return err
}

func (s *SQLiteStore) Record(ctx context.Context, rec Record) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM runs WHERE id = ?)`, rec.RunID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownRun, rec.RunID)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO frames (
			run_id, frame, phase, reset_reason, width, height, bound_width, bound_height,
			iterations, raw_samples, smoothed_samples, resized, frame_time
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, frame) DO UPDATE SET
			phase = excluded.phase,
			reset_reason = excluded.reset_reason,
			width = excluded.width,
			height = excluded.height,
			bound_width = excluded.bound_width,
			bound_height = excluded.bound_height,
			iterations = excluded.iterations,
			raw_samples = excluded.raw_samples,
			smoothed_samples = excluded.smoothed_samples,
			resized = excluded.resized,
			frame_time = excluded.frame_time
	`, rec.RunID, int64(rec.Frame), rec.Phase, rec.ResetReason, rec.Width, rec.Height, rec.BoundWidth, rec.BoundHeight,
		rec.Iterations, rec.RawSamples, rec.SmoothedSamples, rec.Resized, int64(rec.FrameTime))
	return err
}

func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.name, r.started_at, COUNT(f.frame)
		FROM runs r
		LEFT JOIN frames f ON f.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at, r.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			startedAt int64
		)
		if err := rows.Scan(&run.ID, &run.Name, &startedAt, &run.Frames); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(0, startedAt).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Frames(ctx context.Context, runID string) ([]Record, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM runs WHERE id = ?)`, runID).Scan(&exists); err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT frame, phase, reset_reason, width, height, bound_width, bound_height,
			iterations, raw_samples, smoothed_samples, resized, frame_time
		FROM frames
		WHERE run_id = ?
		ORDER BY frame
	`, runID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       = Record{RunID: runID}
			frame     int64
			frameTime int64
		)
		err := rows.Scan(&frame, &rec.Phase, &rec.ResetReason, &rec.Width, &rec.Height, &rec.BoundWidth, &rec.BoundHeight,
			&rec.Iterations, &rec.RawSamples, &rec.SmoothedSamples, &rec.Resized, &frameTime)
		if err != nil {
			return nil, false, err
		}
		rec.Frame = uint64(frame)
		rec.FrameTime = time.Duration(frameTime)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return records, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			started_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS frames (
			run_id TEXT NOT NULL,
			frame INTEGER NOT NULL,
			phase TEXT NOT NULL,
			reset_reason TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			bound_width INTEGER NOT NULL,
			bound_height INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			raw_samples INTEGER NOT NULL,
			smoothed_samples REAL NOT NULL,
			resized INTEGER NOT NULL,
			frame_time INTEGER NOT NULL,
			PRIMARY KEY (run_id, frame)
		);
	`)
	return err
}
