package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/thinkscotty/fakenews/internal/models"
)

// StartRun records a pipeline run in the running state.
func (db *DB) StartRun(run models.Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, url, status, started_at)
		VALUES (?, ?, ?, ?)`,
		run.ID, run.URL, models.RunRunning, formatTime(run.StartedAt))
	if err != nil {
		return fmt.Errorf("start run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun marks a run succeeded, or failed with runErr's message.
func (db *DB) FinishRun(id string, runErr error) error {
	status, msg := models.RunSucceeded, ""
	if runErr != nil {
		status, msg = models.RunFailed, runErr.Error()
	}
	res, err := db.conn.Exec(`
		UPDATE runs SET status = ?, error_message = ?, finished_at = ?
		WHERE id = ?`,
		status, msg, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// GetRun returns one run. An unknown id yields sql.ErrNoRows.
func (db *DB) GetRun(id string) (models.Run, error) {
	row := db.conn.QueryRow(`
		SELECT id, url, status, error_message, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, url, status, error_message, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (models.Run, error) {
	var r models.Run
	var startedAt string
	var finishedAt sql.NullString
	if err := s.Scan(&r.ID, &r.URL, &r.Status, &r.ErrorMessage, &startedAt, &finishedAt); err != nil {
		return r, err
	}
	r.StartedAt, _ = parseTime(startedAt)
	if finishedAt.Valid {
		parsed, _ := parseTime(finishedAt.String)
		r.FinishedAt = &parsed
	}
	return r, nil
}

// LogModelCall stores the metadata of one model call. Prompts and responses
// are never stored.
func (db *DB) LogModelCall(call models.ModelCall) error {
	var runID sql.NullString
	if call.RunID != "" {
		runID = sql.NullString{String: call.RunID, Valid: true}
	}
	_, err := db.conn.Exec(`
		INSERT INTO model_calls (run_id, operation, provider, model, prompt_chars, response_chars, tokens_used, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, call.Operation, call.Provider, call.Model,
		call.PromptChars, call.ResponseChars, call.TokensUsed, call.ErrorMessage)
	return err
}

// ListModelCalls returns the calls made during a run in the order they
// were recorded.
func (db *DB) ListModelCalls(runID string) ([]models.ModelCall, error) {
	rows, err := db.conn.Query(`
		SELECT id, COALESCE(run_id, ''), operation, provider, model, prompt_chars,
		       response_chars, tokens_used, error_message, created_at
		FROM model_calls WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []models.ModelCall
	for rows.Next() {
		var c models.ModelCall
		var createdAt string
		if err := rows.Scan(&c.ID, &c.RunID, &c.Operation, &c.Provider, &c.Model,
			&c.PromptChars, &c.ResponseChars, &c.TokensUsed, &c.ErrorMessage, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = parseTime(createdAt)
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

func (db *DB) UsageStats() (models.UsageStats, error) {
	var s models.UsageStats

	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM runs`, models.RunFailed).Scan(&s.TotalRuns, &s.FailedRuns)
	if err != nil {
		return s, fmt.Errorf("count runs: %w", err)
	}

	err = db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN error_message != '' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(tokens_used), 0)
		FROM model_calls`).Scan(&s.TotalCalls, &s.FailedCalls, &s.TotalTokensUsed)
	if err != nil {
		return s, fmt.Errorf("count model calls: %w", err)
	}

	size, _ := db.DatabaseSizeBytes()
	s.DatabaseSizeBytes = size

	return s, nil
}
