// Package users exposes the profile of the authenticated user. Identities
// are immutable after registration, so the module is read-only: there is no
// update path for email, name or password.
package users

import "time"

// UserProfileResponse is the public profile of the authenticated caller.
type UserProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
