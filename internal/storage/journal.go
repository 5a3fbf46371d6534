// Package storage keeps a local journal of expense submissions in SQLite.
// The backend owns the expense data; the journal only records what this
// client sent and how the backend answered.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fliptrack/internal/core"

	_ "modernc.org/sqlite"
)

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

var ErrInvalidSubmission = errors.New("invalid submission")

// Submission is one journaled add-expense attempt.
type Submission struct {
	ID          int64
	SessionID   string
	Expense     core.Expense
	Status      Status
	Message     string
	RoomCreated bool
	CreatedAt   time.Time
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal at dbPath and migrates it.
func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends a submission and returns its journal id.
func (j *Journal) Record(ctx context.Context, s Submission) (int64, error) {
	if s.Expense.ProjectID <= 0 || s.Expense.RoomName == "" {
		return 0, fmt.Errorf("%w: project and room are required", ErrInvalidSubmission)
	}
	if s.Status != StatusSubmitted && s.Status != StatusFailed {
		return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidSubmission, s.Status)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = j.now()
	}

	e := s.Expense
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO submissions (
			session_id, project_id, room_name, category, cost, hours, condition,
			notes, expense_date, status, message, room_created, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, e.ProjectID, e.RoomName, e.Category.String(),
		e.Cost.StringFixed(2), e.Hours.String(), e.Condition,
		e.Notes, e.Date.String(), string(s.Status), s.Message, s.RoomCreated,
		s.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read submission id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit submissions for a project, newest first.
func (j *Journal) Recent(ctx context.Context, projectID int64, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, project_id, room_name, category, cost, hours, condition,
		       notes, expense_date, status, message, room_created, created_at
		FROM submissions
		WHERE project_id = ?
		ORDER BY id DESC
		LIMIT ?`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func scanSubmission(rows *sql.Rows) (Submission, error) {
	var (
		s                       Submission
		category, cost, hours   string
		date, status, createdAt string
	)
	err := rows.Scan(
		&s.ID, &s.SessionID, &s.Expense.ProjectID, &s.Expense.RoomName, &category,
		&cost, &hours, &s.Expense.Condition, &s.Expense.Notes, &date, &status,
		&s.Message, &s.RoomCreated, &createdAt,
	)
	if err != nil {
		return Submission{}, fmt.Errorf("scan submission: %w", err)
	}

	if s.Expense.Category, err = core.ParseCategory(category); err != nil {
		return Submission{}, fmt.Errorf("submission %d category: %w", s.ID, err)
	}
	if s.Expense.Cost, err = core.ParseMoney(cost); err != nil {
		return Submission{}, fmt.Errorf("submission %d cost: %w", s.ID, err)
	}
	if s.Expense.Hours, err = core.ParseMoney(hours); err != nil {
		return Submission{}, fmt.Errorf("submission %d hours: %w", s.ID, err)
	}
	if date != "" {
		if s.Expense.Date, err = core.ParseDate(date); err != nil {
			return Submission{}, fmt.Errorf("submission %d date: %w", s.ID, err)
		}
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Submission{}, fmt.Errorf("submission %d created_at: %w", s.ID, err)
	}
	s.Status = Status(status)
	return s, nil
}
