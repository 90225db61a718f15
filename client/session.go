package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/auth"
	"github.com/user/tasklist-go/tasks"
)

// State is the session's lifecycle state.
type State int

const (
	// StateLoggedOut means no identity is held and no task operation can be
	// issued.
	StateLoggedOut State = iota
	// StateLoggedIn means a token is held and task operations are available.
	StateLoggedIn
)

// Session is an explicit state machine over {loggedOut, loggedIn} holding
// everything the browser app kept in memory: the current user, the bearer
// token, the ordered task list, the last user-visible error, and the loading
// flag. All list mutations are optimistic-minus-write-confirmation: local
// state changes only after the server confirms the write, never before. A
// failed request leaves the list untouched and records the error; the error
// is cleared at the start of the next attempt.
//
// Like the single-threaded browser environment it mirrors, a Session is not
// safe for concurrent use.
type Session struct {
	baseURL string
	httpc   *http.Client
	store   TokenStore

	state   State
	token   string
	user    *auth.UserView
	tasks   []tasks.Task
	lastErr string
	loading bool
}

// NewSession creates a logged-out session talking to the API at baseURL and
// persisting its token in the given store.
func NewSession(baseURL string, store TokenStore) *Session {
	return &Session{
		baseURL: baseURL,
		httpc:   &http.Client{},
		store:   store,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// User returns the identity of the logged-in user, or nil.
func (s *Session) User() *auth.UserView { return s.user }

// Tasks returns a copy of the local task list, newest first.
func (s *Session) Tasks() []tasks.Task {
	out := make([]tasks.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Err returns the last user-visible error message, or "".
func (s *Session) Err() string { return s.lastErr }

// Loading reports whether a request is in flight.
func (s *Session) Loading() bool { return s.loading }

// beginRequest clears the previous error and raises the loading flag, the
// contract every request attempt starts with.
func (s *Session) beginRequest() {
	s.lastErr = ""
	s.loading = true
}

// endRequest lowers the loading flag and records the error, if any, for the
// UI banner.
func (s *Session) endRequest(err error) {
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
	}
}

// Resume restores a persisted session on startup, the page-load path of the
// browser app: read the stored token and, if present, refetch the profile
// and task list. With no stored token the session stays logged out.
func (s *Session) Resume(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	s.token = token
	s.state = StateLoggedIn

	s.beginRequest()
	err = func() error {
		var view auth.UserView
		if err := s.doJSON(ctx, http.MethodGet, "/users/me", nil, &view); err != nil {
			return err
		}
		s.user = &view

		var list []tasks.Task
		if err := s.doJSON(ctx, http.MethodGet, "/tasks", nil, &list); err != nil {
			return err
		}
		s.tasks = list
		return nil
	}()
	// A rejected token surfaces as an error but does not force a logout;
	// only an explicit Logout clears the session.
	s.endRequest(err)
	return err
}

// Register creates a new account and transitions to loggedIn, persisting the
// returned token.
func (s *Session) Register(ctx context.Context, email, password, name string) error {
	s.beginRequest()
	err := s.authenticate(ctx, "/auth/register", auth.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	})
	s.endRequest(err)
	return err
}

// Login authenticates an existing account and transitions to loggedIn,
// persisting the returned token.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.beginRequest()
	err := s.authenticate(ctx, "/auth/login", auth.LoginRequest{
		Email:    email,
		Password: password,
	})
	s.endRequest(err)
	return err
}

// authenticate posts credentials, stores the resulting token and identity,
// and fetches the initial task list.
func (s *Session) authenticate(ctx context.Context, path string, body interface{}) error {
	var resp auth.AuthResponse
	if err := s.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}

	s.token = resp.Token
	s.user = &resp.User
	s.state = StateLoggedIn

	if err := s.store.Save(resp.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	var list []tasks.Task
	if err := s.doJSON(ctx, http.MethodGet, "/tasks", nil, &list); err != nil {
		return err
	}
	s.tasks = list
	return nil
}

// Logout erases the persisted token and resets all session state to the
// logged-out shape.
func (s *Session) Logout() error {
	err := s.store.Clear()
	s.state = StateLoggedOut
	s.token = ""
	s.user = nil
	s.tasks = nil
	s.lastErr = ""
	return err
}

// Refresh replaces the local task list with the server's current view.
func (s *Session) Refresh(ctx context.Context) error {
	s.beginRequest()
	var list []tasks.Task
	err := s.doJSON(ctx, http.MethodGet, "/tasks", nil, &list)
	if err == nil {
		s.tasks = list
	}
	s.endRequest(err)
	return err
}

// CreateTask creates a task and, only after the server confirms it, prepends
// the server-returned record to the local list (the list is ordered newest
// first).
func (s *Session) CreateTask(ctx context.Context, title, description string) (*tasks.Task, error) {
	s.beginRequest()
	var created tasks.Task
	err := s.doJSON(ctx, http.MethodPost, "/tasks", tasks.CreateTaskRequest{
		Title:       title,
		Description: description,
	}, &created)
	if err == nil {
		s.tasks = append([]tasks.Task{created}, s.tasks...)
	}
	s.endRequest(err)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ToggleTask flips the completed flag of a local task on the server and,
// on success, replaces the local entry with the server-returned record.
func (s *Session) ToggleTask(ctx context.Context, id string) (*tasks.Task, error) {
	s.beginRequest()

	idx := s.indexOf(id)
	if idx < 0 {
		err := apperror.NewNotFoundError("task not found", nil)
		s.endRequest(err)
		return nil, err
	}

	completed := !s.tasks[idx].Completed
	var updated tasks.Task
	err := s.doJSON(ctx, http.MethodPut, "/tasks/"+id, tasks.UpdateTaskRequest{
		Completed: &completed,
	}, &updated)
	if err == nil {
		s.tasks[idx] = updated
	}
	s.endRequest(err)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask deletes a task on the server and, on success, filters it out of
// the local list by id.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	s.beginRequest()
	var confirmation tasks.DeleteResponse
	err := s.doJSON(ctx, http.MethodDelete, "/tasks/"+id, nil, &confirmation)
	if err == nil {
		kept := s.tasks[:0]
		for _, t := range s.tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.tasks = kept
	}
	s.endRequest(err)
	return err
}

// indexOf returns the position of a task in the local list, or -1.
func (s *Session) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// doJSON performs one request/response round trip: encode the body, attach
// the bearer token when one is held, and decode either the success payload
// into out or the `{"error": message}` payload into an apperror matching the
// status code. No retries, no client-side timeout beyond the transport
// default.
func (s *Session) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorFromResponse maps a failed response back onto the apperror taxonomy
// using the status code, carrying the server's message through to the UI.
func errorFromResponse(resp *http.Response) error {
	var payload apperror.ErrorResponse
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperror.NewAuthError(message, nil)
	case http.StatusNotFound:
		return apperror.NewNotFoundError(message, nil)
	case http.StatusBadRequest:
		return apperror.NewBadRequestError(message, nil)
	default:
		return apperror.NewInternalError(message, nil)
	}
}
