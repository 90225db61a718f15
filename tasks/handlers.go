// HTTP handlers for the task endpoints. The routes registered here are
// mounted behind the auth middleware in main.go, so every request arriving
// at these handlers carries a verified owner id in its context.
package tasks

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/auth"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	service TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// RegisterRoutes registers the task API routes on the given sub-router.
func (h *TaskHandler) RegisterRoutes(router chi.Router) {
	router.Post("/", h.createTask)
	router.Get("/", h.listTasks)
	router.Put("/{id}", h.updateTask)
	router.Delete("/{id}", h.deleteTask)
}

// ownerID extracts the verified owner id that the auth middleware placed in
// the context. Its absence means the route was wired without the middleware,
// which is a server bug, but it is still reported as a 401 so no task
// operation can ever run without a resolved owner.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.OwnerIDFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("missing authentication context", nil))
		return "", false
	}
	return id, true
}

// createTask godoc
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskBody body tasks.CreateTaskRequest true "Task fields"
// @Success 201 {object} tasks.Task
// @Failure 400 {object} apperror.ErrorResponse "Empty title or malformed body"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /tasks [post]
func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	task, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	auth.WriteJSON(w, http.StatusCreated, task)
}

// listTasks godoc
// @Summary List the caller's tasks, newest first
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} tasks.Task
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /tasks [get]
func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), owner)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, list)
}

// updateTask godoc
// @Summary Update an owned task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Param taskBody body tasks.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} tasks.Task
// @Failure 400 {object} apperror.ErrorResponse "Disallowed field or empty title"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "No such task for this owner"
// @Router /tasks/{id} [put]
func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	decoder := json.NewDecoder(r.Body)
	// Unknown fields are rejected: the three DTO fields are the complete
	// allow-list, so a body trying to overwrite id/ownerId/createdAt fails
	// here with a 400.
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	task, err := h.service.Update(r.Context(), owner, chi.URLParam(r, "id"), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, task)
}

// deleteTask godoc
// @Summary Delete an owned task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Success 200 {object} tasks.DeleteResponse
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "No such task for this owner"
// @Router /tasks/{id} [delete]
func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, DeleteResponse{Message: "task deleted"})
}
