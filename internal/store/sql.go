// Package store persists summary runs in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/screening-outcome-classifier/internal/domain"
)

// DefaultListLimit bounds ListRuns when no positive limit is given.
const DefaultListLimit = 50

// sqlStore holds the queries shared by the SQL backends. Queries are written
// with ? placeholders and rebound for the driver.
type sqlStore struct {
	db       *sql.DB
	numbered bool
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *sqlStore) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveRun stores the run and its rows in one transaction.
func (s *sqlStore) SaveRun(ctx context.Context, run *domain.SummaryRun) error {
	windows, err := json.Marshal(run.Windows)
	if err != nil {
		return fmt.Errorf("failed to encode windows: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO runs (id, created_at, windows, client_count, row_count, error_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`), run.ID, run.CreatedAt.UTC(), string(windows), run.ClientCount, len(run.Rows), run.ErrorCount())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insertRow := s.rebind(`
		INSERT INTO run_rows (run_id, position, client_id, episode_id, episode_outcome, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	for i := range run.Rows {
		row := &run.Rows[i]
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, insertRow, run.ID, i, row.ClientID, row.EpisodeID, row.EpisodeOutcome, string(payload)); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun returns the run with its rows in their original order.
func (s *sqlStore) GetRun(ctx context.Context, id string) (*domain.SummaryRun, error) {
	var (
		run     domain.SummaryRun
		windows string
		rowCnt  int
		errCnt  int
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, created_at, windows, client_count, row_count, error_count
		FROM runs
		WHERE id = ?
	`), id).Scan(&run.ID, &run.CreatedAt, &windows, &run.ClientCount, &rowCnt, &errCnt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.CreatedAt = run.CreatedAt.UTC()
	if err := json.Unmarshal([]byte(windows), &run.Windows); err != nil {
		return nil, fmt.Errorf("failed to decode windows: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT payload
		FROM run_rows
		WHERE run_id = ?
		ORDER BY position
	`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	run.Rows = make([]domain.SummaryRow, 0, rowCnt)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var row domain.SummaryRow
		if err := json.Unmarshal([]byte(payload), &row); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		run.Rows = append(run.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return &run, nil
}

// ListRuns returns run headers, newest first.
func (s *sqlStore) ListRuns(ctx context.Context, limit int) ([]domain.RunInfo, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, created_at, client_count, row_count, error_count
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	result := []domain.RunInfo{}
	for rows.Next() {
		info, err := scanRunInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		result = append(result, info)
	}
	return result, rows.Err()
}

func scanRunInfo(s scanner) (domain.RunInfo, error) {
	var (
		info      domain.RunInfo
		createdAt time.Time
	)
	if err := s.Scan(&info.ID, &createdAt, &info.ClientCount, &info.RowCount, &info.ErrorCount); err != nil {
		return domain.RunInfo{}, err
	}
	info.CreatedAt = createdAt.UTC()
	return info, nil
}

// DeleteRun removes a run and its rows.
func (s *sqlStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM run_rows WHERE run_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}
	result, err := tx.ExecContext(ctx, s.rebind("DELETE FROM runs WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted runs: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return tx.Commit()
}

// Close closes the store and releases resources.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Health pings the database.
func (s *sqlStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
