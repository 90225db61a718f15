// Data transfer objects for the task endpoints.
package tasks

// CreateTaskRequest is the payload for POST /tasks. The owner is never part
// of the body; it comes from the verified token in the request context.
type CreateTaskRequest struct {
	Title       string `json:"title" example:"Buy milk"`
	Description string `json:"description" example:"2 liters, lactose free"`
}

// UpdateTaskRequest is the payload for PUT /tasks/{id}. The three pointer
// fields form the complete allow-list of mutable task attributes; a nil field
// is left untouched. Handlers decode this with DisallowUnknownFields, so a
// body attempting to set id, ownerId or createdAt is rejected outright
// instead of being merged into the stored record.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (r *UpdateTaskRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Completed == nil
}

// DeleteResponse confirms a successful delete.
type DeleteResponse struct {
	Message string `json:"message" example:"task deleted"`
}
