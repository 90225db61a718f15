package tasks

import "context"

// TaskRepository is the task store contract. Every query that touches an
// individual record carries both the task id and the owner id, so a record
// belonging to another owner behaves exactly like a missing one.
//
// Contract:
//   - Insert persists a fully populated record.
//   - ListByOwner returns the owner's tasks ordered newest first, computed
//     fresh on every call.
//   - GetByIDAndOwner / UpdateByIDAndOwner / DeleteByIDAndOwner fail with a
//     NotFoundError when no record matches both id and owner.
type TaskRepository interface {
	Insert(ctx context.Context, task *Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]Task, error)
	GetByIDAndOwner(ctx context.Context, ownerID, id string) (*Task, error)
	UpdateByIDAndOwner(ctx context.Context, ownerID, id string, patch UpdateTaskRequest) (*Task, error)
	DeleteByIDAndOwner(ctx context.Context, ownerID, id string) error
}
