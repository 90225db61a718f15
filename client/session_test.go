package client_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/auth"
	"github.com/user/tasklist-go/client"
	"github.com/user/tasklist-go/config"
	"github.com/user/tasklist-go/tasks"
	"github.com/user/tasklist-go/users"
)

// These tests run the client against the real handler/middleware/service
// stack mounted on an httptest server, with in-memory stand-ins for the two
// stores, so the reconciliation rules are checked against the actual wire
// contract.

// ---- in-memory credential store ----

type memUserRepo struct {
	byEmail map[string]*auth.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*auth.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *auth.User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return apperror.NewConflictError("email already exists", nil)
	}
	u := *user
	r.byEmail[user.Email] = &u
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*auth.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

// ---- in-memory task store ----

type memTaskRepo struct {
	records []tasks.Task
}

func (r *memTaskRepo) Insert(ctx context.Context, task *tasks.Task) error {
	r.records = append([]tasks.Task{*task}, r.records...)
	return nil
}

func (r *memTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]tasks.Task, error) {
	out := []tasks.Task{}
	for _, t := range r.records {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memTaskRepo) GetByIDAndOwner(ctx context.Context, ownerID, id string) (*tasks.Task, error) {
	for _, t := range r.records {
		if t.ID == id && t.OwnerID == ownerID {
			copied := t
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFoundError("task not found", nil)
}

func (r *memTaskRepo) UpdateByIDAndOwner(ctx context.Context, ownerID, id string, patch tasks.UpdateTaskRequest) (*tasks.Task, error) {
	for i, t := range r.records {
		if t.ID == id && t.OwnerID == ownerID {
			if patch.Title != nil {
				r.records[i].Title = *patch.Title
			}
			if patch.Description != nil {
				r.records[i].Description = *patch.Description
			}
			if patch.Completed != nil {
				r.records[i].Completed = *patch.Completed
			}
			copied := r.records[i]
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFoundError("task not found", nil)
}

func (r *memTaskRepo) DeleteByIDAndOwner(ctx context.Context, ownerID, id string) error {
	for i, t := range r.records {
		if t.ID == id && t.OwnerID == ownerID {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFoundError("task not found", nil)
}

// ---- test fixture ----

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	userRepo := newMemUserRepo()
	authService := auth.NewAuthService(userRepo, config.AuthConfig{
		JWTSecret:     "client-test-secret",
		TokenDuration: time.Hour,
	})
	authHandlers := auth.NewHandlers(authService)
	userHandlers := users.NewUserHandlers(users.NewUserService(userRepo))
	taskHandlers := tasks.NewTaskHandler(tasks.NewTaskService(&memTaskRepo{}))

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
	})
	r.Route("/users", func(r chi.Router) {
		r.Use(auth.RequireAuth(authService))
		r.Get("/me", userHandlers.HandleGetUserProfile())
	})
	r.Route("/tasks", func(r chi.Router) {
		r.Use(auth.RequireAuth(authService))
		taskHandlers.RegisterRoutes(r)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSession(t *testing.T, srv *httptest.Server) (*client.Session, client.TokenStore) {
	t.Helper()
	store := client.NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	return client.NewSession(srv.URL, store), store
}

// ---- TESTS ----

func TestRegister_TransitionsToLoggedInAndPersistsToken(t *testing.T) {
	srv := newTestServer(t)
	session, store := newTestSession(t, srv)

	require.Equal(t, client.StateLoggedOut, session.State())

	err := session.Register(context.Background(), "a@x.com", "pw", "Ann")
	require.NoError(t, err)

	require.Equal(t, client.StateLoggedIn, session.State())
	require.NotNil(t, session.User())
	require.Equal(t, "a@x.com", session.User().Email)
	require.Empty(t, session.Tasks())

	token, err := store.Load()
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestLogin_BadCredentials_StaysLoggedOut(t *testing.T) {
	srv := newTestServer(t)
	session, store := newTestSession(t, srv)

	err := session.Login(context.Background(), "ghost@x.com", "pw")
	require.Error(t, err)
	require.Equal(t, client.StateLoggedOut, session.State())
	require.NotEmpty(t, session.Err())

	token, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestCreateTask_AppendsToFrontOnlyAfterConfirmation(t *testing.T) {
	srv := newTestServer(t)
	session, _ := newTestSession(t, srv)
	require.NoError(t, session.Register(context.Background(), "a@x.com", "pw", "Ann"))

	first, err := session.CreateTask(context.Background(), "first", "")
	require.NoError(t, err)
	second, err := session.CreateTask(context.Background(), "second", "")
	require.NoError(t, err)

	list := session.Tasks()
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID, "newest first")
	require.Equal(t, first.ID, list[1].ID)
}

func TestCreateTask_FailureLeavesListUnchanged(t *testing.T) {
	srv := newTestServer(t)
	session, _ := newTestSession(t, srv)
	require.NoError(t, session.Register(context.Background(), "a@x.com", "pw", "Ann"))

	_, err := session.CreateTask(context.Background(), "Buy milk", "")
	require.NoError(t, err)
	before := session.Tasks()

	// Empty title is rejected by the store; the local list must not change.
	_, err = session.CreateTask(context.Background(), "", "")
	require.Error(t, err)
	require.Equal(t, before, session.Tasks())
	require.NotEmpty(t, session.Err())

	// The error banner clears at the start of the next attempt.
	require.NoError(t, session.Refresh(context.Background()))
	require.Empty(t, session.Err())
}

func TestToggleAndDelete_ReconcileFromServerResponses(t *testing.T) {
	srv := newTestServer(t)
	session, _ := newTestSession(t, srv)
	require.NoError(t, session.Register(context.Background(), "a@x.com", "pw", "Ann"))

	created, err := session.CreateTask(context.Background(), "Buy milk", "2 liters")
	require.NoError(t, err)
	require.False(t, created.Completed)

	toggled, err := session.ToggleTask(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, toggled.Completed)
	require.Equal(t, created.Title, toggled.Title)
	require.Equal(t, created.Description, toggled.Description)
	require.Equal(t, created.CreatedAt.UTC(), toggled.CreatedAt.UTC())
	require.True(t, session.Tasks()[0].Completed)

	require.NoError(t, session.DeleteTask(context.Background(), created.ID))
	require.Empty(t, session.Tasks())

	// The delete is terminal on the server too.
	require.NoError(t, session.Refresh(context.Background()))
	require.Empty(t, session.Tasks())
}

func TestDeleteTask_FailureLeavesListUnchanged(t *testing.T) {
	srv := newTestServer(t)
	session, _ := newTestSession(t, srv)
	require.NoError(t, session.Register(context.Background(), "a@x.com", "pw", "Ann"))

	_, err := session.CreateTask(context.Background(), "Buy milk", "")
	require.NoError(t, err)
	before := session.Tasks()

	err = session.DeleteTask(context.Background(), "no-such-id")
	require.Error(t, err)
	require.True(t, apperror.IsNotFound(err))
	require.Equal(t, before, session.Tasks())
}

func TestOwnerIsolation_AcrossSessions(t *testing.T) {
	srv := newTestServer(t)
	sessionA, _ := newTestSession(t, srv)
	sessionB, _ := newTestSession(t, srv)

	require.NoError(t, sessionA.Register(context.Background(), "a@x.com", "pw", "Ann"))
	require.NoError(t, sessionB.Register(context.Background(), "b@x.com", "pw", "Bob"))

	created, err := sessionA.CreateTask(context.Background(), "A's task", "")
	require.NoError(t, err)

	require.NoError(t, sessionB.Refresh(context.Background()))
	require.Empty(t, sessionB.Tasks(), "A's tasks never appear in B's list")

	err = sessionB.DeleteTask(context.Background(), created.ID)
	require.True(t, apperror.IsNotFound(err))
}

func TestRejectedToken_SurfacesErrorWithoutForcedLogout(t *testing.T) {
	srv := newTestServer(t)
	store := client.NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, store.Save("not-a-valid-token"))

	session := client.NewSession(srv.URL, store)
	err := session.Resume(context.Background())
	require.Error(t, err)
	require.True(t, apperror.IsAuthError(err))

	// The session surfaces the error but does not transition on its own;
	// only an explicit Logout resets it.
	require.Equal(t, client.StateLoggedIn, session.State())
	require.NotEmpty(t, session.Err())
}

func TestLogout_ResetsEverything(t *testing.T) {
	srv := newTestServer(t)
	session, store := newTestSession(t, srv)
	require.NoError(t, session.Register(context.Background(), "a@x.com", "pw", "Ann"))
	_, err := session.CreateTask(context.Background(), "Buy milk", "")
	require.NoError(t, err)

	require.NoError(t, session.Logout())

	require.Equal(t, client.StateLoggedOut, session.State())
	require.Nil(t, session.User())
	require.Empty(t, session.Tasks())
	require.Empty(t, session.Err())

	token, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestResume_RestoresPersistedSession(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()
	store := client.NewFileTokenStore(filepath.Join(dir, "token"))

	first := client.NewSession(srv.URL, store)
	require.NoError(t, first.Register(context.Background(), "a@x.com", "pw", "Ann"))
	_, err := first.CreateTask(context.Background(), "Buy milk", "")
	require.NoError(t, err)

	// A new session over the same store is the page-reload path.
	second := client.NewSession(srv.URL, store)
	require.NoError(t, second.Resume(context.Background()))

	require.Equal(t, client.StateLoggedIn, second.State())
	require.NotNil(t, second.User())
	require.Equal(t, "a@x.com", second.User().Email)
	require.Len(t, second.Tasks(), 1)
	require.Equal(t, "Buy milk", second.Tasks()[0].Title)
}

// TestFullLifecycle walks the whole contract end to end: register, log back
// in, reject an empty title, create, toggle, delete, end with an empty list.
func TestFullLifecycle(t *testing.T) {
	srv := newTestServer(t)
	session, _ := newTestSession(t, srv)
	ctx := context.Background()

	require.NoError(t, session.Register(ctx, "a@x.com", "pw", "Ann"))
	registeredID := session.User().ID

	// Logging in again yields a token valid for the same owner.
	other, _ := newTestSession(t, srv)
	require.NoError(t, other.Login(ctx, "a@x.com", "pw"))
	require.Equal(t, registeredID, other.User().ID)

	// Empty title: rejected, nothing persisted.
	_, err := session.CreateTask(ctx, "", "")
	require.Error(t, err)
	require.NoError(t, session.Refresh(ctx))
	require.Empty(t, session.Tasks())

	created, err := session.CreateTask(ctx, "Buy milk", "")
	require.NoError(t, err)
	require.False(t, created.Completed)

	toggled, err := session.ToggleTask(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, toggled.Completed)

	require.NoError(t, session.DeleteTask(ctx, created.ID))
	require.NoError(t, session.Refresh(ctx))
	require.Empty(t, session.Tasks())
}
