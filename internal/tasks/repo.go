package tasks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/taskmaster-app/taskmaster/internal/shared"
)

// Repository defines persistence operations for the tasks module.
type Repository interface {
	Insert(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, ownerID, taskID int64) (*Task, error)
	List(ctx context.Context, ownerID int64, filters ListFilters, limit, offset int) ([]Task, int, error)
	Update(ctx context.Context, ownerID, taskID int64, params UpdateParams, now time.Time) error
	Delete(ctx context.Context, ownerID, taskID int64) error
}

// SQLiteRepository implements Repository on the SQLite store.
type SQLiteRepository struct {
	conn *sql.DB
}

// NewRepository constructs a SQLite repository.
func NewRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{conn: conn}
}

const (
	sqlInsertTask = `
		INSERT INTO tasks (user_id, title, description, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	sqlSelectTask = `
		SELECT id, user_id, title, description, status, priority, due_date, created_at, updated_at
		FROM   tasks
		WHERE  id = ? AND user_id = ?
		LIMIT  1`

	sqlDeleteTask = `
		DELETE FROM tasks WHERE id = ? AND user_id = ?`
)

// Insert persists a new task and fills in the store-assigned id.
func (r *SQLiteRepository) Insert(ctx context.Context, task *Task) error {
	result, err := r.conn.ExecContext(ctx, sqlInsertTask,
		task.OwnerID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

// GetByID fetches a single task scoped to its owner. A task owned by
// someone else is reported identically to a missing one.
func (r *SQLiteRepository) GetByID(ctx context.Context, ownerID, taskID int64) (*Task, error) {
	row := r.conn.QueryRowContext(ctx, sqlSelectTask, taskID, ownerID)
	return scanTask(row)
}

// List returns one page of the owner's tasks plus the total matching count.
// Ordering is newest first, with id descending breaking creation-time ties.
func (r *SQLiteRepository) List(ctx context.Context, ownerID int64, filters ListFilters, limit, offset int) ([]Task, int, error) {
	where := "WHERE user_id = ?"
	args := []any{ownerID}
	if filters.Status != nil {
		where += " AND status = ?"
		args = append(args, *filters.Status)
	}
	if filters.Priority != nil {
		where += " AND priority = ?"
		args = append(args, *filters.Priority)
	}

	var total int
	if err := r.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, title, description, status, priority, due_date, created_at, updated_at
		FROM   tasks ` + where + `
		ORDER  BY created_at DESC, id DESC
		LIMIT  ? OFFSET ?`
	rows, err := r.conn.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]Task, 0, limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Update applies the provided fields to an owned task and refreshes
// updated_at. Zero affected rows map to shared.ErrNotFound.
func (r *SQLiteRepository) Update(ctx context.Context, ownerID, taskID int64, params UpdateParams, now time.Time) error {
	assignments := make([]string, 0, 6)
	args := make([]any, 0, 8)
	if params.Title != nil {
		assignments = append(assignments, "title = ?")
		args = append(args, *params.Title)
	}
	if params.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *params.Description)
	}
	if params.Status != nil {
		assignments = append(assignments, "status = ?")
		args = append(args, *params.Status)
	}
	if params.Priority != nil {
		assignments = append(assignments, "priority = ?")
		args = append(args, *params.Priority)
	}
	if params.DueDate.Set {
		assignments = append(assignments, "due_date = ?")
		args = append(args, params.DueDate.Value)
	}
	assignments = append(assignments, "updated_at = ?")
	args = append(args, now, taskID, ownerID)

	query := "UPDATE tasks SET " + strings.Join(assignments, ", ") + " WHERE id = ? AND user_id = ?"
	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete permanently removes an owned task. Zero affected rows map to
// shared.ErrNotFound, so repeated deletes of the same id keep failing.
func (r *SQLiteRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	result, err := r.conn.ExecContext(ctx, sqlDeleteTask, taskID, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	task := &Task{}
	var dueDate sql.NullString
	err := row.Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description,
		&task.Status, &task.Priority, &dueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.String
	}
	return task, nil
}

var _ Repository = (*SQLiteRepository)(nil)
