package users

import (
	"net/http"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/auth"
)

// UserHandlers provides HTTP handlers for user profiles.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// HandleGetUserProfile godoc
// @Summary Get current user's profile
// @Description Returns the public profile of the authenticated user.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserProfileResponse
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandlers) HandleGetUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.OwnerIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("missing authentication context", nil))
			return
		}

		profile, err := h.service.GetUserProfile(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, profile)
	}
}
