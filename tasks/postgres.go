package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/tasklist-go/apperror"
)

// taskNotFound is the uniform message for a missing or foreign-owned record.
const taskNotFound = "task not found"

// PostgresTaskRepository is the pgx-backed task store.
type PostgresTaskRepository struct {
	db *pgxpool.Pool
}

// NewPostgresTaskRepository constructs a TaskRepository on the given pool.
func NewPostgresTaskRepository(db *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

// Insert persists a new task record.
func (r *PostgresTaskRepository) Insert(ctx context.Context, task *Task) error {
	query := `INSERT INTO tasks (id, title, description, completed, created_at, owner_id)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		task.ID, task.Title, task.Description, task.Completed, task.CreatedAt, task.OwnerID)
	if err != nil {
		return apperror.NewDatabaseError("failed to create task", err)
	}
	return nil
}

// ListByOwner returns all tasks owned by ownerID, newest first.
func (r *PostgresTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]Task, error) {
	query := `SELECT id, title, description, completed, created_at, owner_id
	          FROM tasks
	          WHERE owner_id = $1
	          ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	defer rows.Close()

	// Always return a non-nil slice so an owner with no tasks serializes as
	// an empty JSON array rather than null.
	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.OwnerID); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan task", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	return tasks, nil
}

// GetByIDAndOwner fetches a single task, applying the isolation rule: a task
// under a different owner is indistinguishable from a nonexistent one.
func (r *PostgresTaskRepository) GetByIDAndOwner(ctx context.Context, ownerID, id string) (*Task, error) {
	query := `SELECT id, title, description, completed, created_at, owner_id
	          FROM tasks
	          WHERE id = $1 AND owner_id = $2`
	var t Task
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(taskNotFound, nil)
		}
		return nil, apperror.NewDatabaseError("failed to get task", err)
	}
	return &t, nil
}

// UpdateByIDAndOwner applies the patch in a single UPDATE statement guarded
// by both id and owner, so the read-modify-write is atomic at the store and
// concurrent edits resolve last-write-wins. The SET clause is built only
// from the patch's non-nil fields.
func (r *PostgresTaskRepository) UpdateByIDAndOwner(ctx context.Context, ownerID, id string, patch UpdateTaskRequest) (*Task, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *patch.Title)
		argID++
	}
	if patch.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *patch.Description)
		argID++
	}
	if patch.Completed != nil {
		setClauses = append(setClauses, fmt.Sprintf("completed = $%d", argID))
		args = append(args, *patch.Completed)
		argID++
	}

	if len(setClauses) == 0 {
		return r.GetByIDAndOwner(ctx, ownerID, id)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING id, title, description, completed, created_at, owner_id`,
		strings.Join(setClauses, ", "), argID, argID+1)

	var t Task
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(taskNotFound, nil)
		}
		return nil, apperror.NewDatabaseError("failed to update task", err)
	}
	return &t, nil
}

// DeleteByIDAndOwner permanently removes a task under the same isolation
// rule as update.
func (r *PostgresTaskRepository) DeleteByIDAndOwner(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(taskNotFound, nil)
	}
	return nil
}
