package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/user/tasklist-go/apperror"
)

// TaskService defines the task operations exposed to the HTTP layer. The
// owner id on every method comes from the verified token, never from client
// input.
type TaskService interface {
	Create(ctx context.Context, ownerID string, req CreateTaskRequest) (*Task, error)
	List(ctx context.Context, ownerID string) ([]Task, error)
	Update(ctx context.Context, ownerID, id string, req UpdateTaskRequest) (*Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// taskServiceImpl is the concrete TaskService backed by a TaskRepository.
type taskServiceImpl struct {
	repo TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo TaskRepository) TaskService {
	return &taskServiceImpl{repo: repo}
}

// Create validates the input, assigns the server-side fields (id, creation
// timestamp, owner) and persists the record. The store is the authority on
// the non-empty-title rule even though the client pre-checks it.
func (s *taskServiceImpl) Create(ctx context.Context, ownerID string, req CreateTaskRequest) (*Task, error) {
	if req.Title == "" {
		return nil, apperror.NewValidationError("title is required", nil)
	}

	task := &Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
		CreatedAt:   time.Now().UTC(),
		OwnerID:     ownerID,
	}

	if err := s.repo.Insert(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the owner's tasks, newest first.
func (s *taskServiceImpl) List(ctx context.Context, ownerID string) ([]Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update applies the allow-listed patch to an owned task and returns the
// updated record. A patch that sets the title to the empty string is
// rejected; an empty patch returns the current record unchanged (which still
// enforces the not-found rule for foreign or missing ids). Applying the same
// patch twice yields the same final state.
func (s *taskServiceImpl) Update(ctx context.Context, ownerID, id string, req UpdateTaskRequest) (*Task, error) {
	if req.Title != nil && *req.Title == "" {
		return nil, apperror.NewValidationError("title must not be empty", nil)
	}

	if req.IsEmpty() {
		return s.repo.GetByIDAndOwner(ctx, ownerID, id)
	}

	return s.repo.UpdateByIDAndOwner(ctx, ownerID, id, req)
}

// Delete permanently removes an owned task. There is no tombstone: a
// successful delete makes any further update or delete on the id fail with
// the not-found rule.
func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.DeleteByIDAndOwner(ctx, ownerID, id)
}
