// Package tasks implements the task store: the CRUD operations on task
// records and the per-owner isolation rule every one of them enforces. All
// routes in this package sit behind the auth middleware, so handlers can
// assume a verified owner id in the request context.
package tasks

import "time"

// Task represents a single task record. Each task is owned by exactly one
// user; id, owner and creation timestamp are assigned server-side at create
// time and never change afterwards.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	OwnerID     string    `json:"ownerId"`
}
