package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/tasklist-go/apperror"
)

// fakeVerifier records whether it was called and resolves a single token.
type fakeVerifier struct {
	called    bool
	goodToken string
	ownerID   string
}

func (f *fakeVerifier) VerifyToken(token string) (string, error) {
	f.called = true
	if token == f.goodToken {
		return f.ownerID, nil
	}
	return "", apperror.NewAuthError("invalid token", nil)
}

// protectedProbe builds RequireAuth around a handler that reports the owner
// id it found in context.
func protectedProbe(verifier TokenVerifier) (http.Handler, *string) {
	var seenOwner string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := OwnerIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		seenOwner = ownerID
		w.WriteHeader(http.StatusOK)
	})
	return RequireAuth(verifier)(handler), &seenOwner
}

func TestRequireAuth_MissingHeader_ShortCircuitsBeforeVerify(t *testing.T) {
	fv := &fakeVerifier{goodToken: "tok", ownerID: "owner-1"}
	handler, _ := protectedProbe(fv)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, fv.called, "verifier must not run without a header")
	require.Contains(t, rec.Body.String(), "error")
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	fv := &fakeVerifier{goodToken: "tok", ownerID: "owner-1"}
	handler, _ := protectedProbe(fv)

	for _, header := range []string{"tok", "Basic tok", "Bearer a b"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", header)
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
	require.False(t, fv.called)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	fv := &fakeVerifier{goodToken: "tok", ownerID: "owner-1"}
	handler, seenOwner := protectedProbe(fv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.True(t, fv.called)
	require.Empty(t, *seenOwner)
}

func TestRequireAuth_ValidToken_AttachesOwnerID(t *testing.T) {
	fv := &fakeVerifier{goodToken: "tok", ownerID: "owner-1"}
	handler, seenOwner := protectedProbe(fv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer tok")
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "owner-1", *seenOwner)
}

func TestRequireAuth_BearerPrefixIsCaseInsensitive(t *testing.T) {
	fv := &fakeVerifier{goodToken: "tok", ownerID: "owner-1"}
	handler, seenOwner := protectedProbe(fv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "bearer tok")
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "owner-1", *seenOwner)
}

func TestOwnerIDFromContext_AbsentWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := OwnerIDFromContext(req.Context())
	require.False(t, ok)
}
