// Package auth implements the authentication boundary: user registration,
// login, bearer-token issuance and verification, and the middleware that
// gates every task operation behind a resolved owner identity.
package auth

import "time"

// User represents a registered identity as stored in the credential store.
// The hashed password never leaves the server: the `json:"-"` tag keeps it
// out of any serialized response, and handlers additionally respond with the
// trimmed UserView rather than this struct.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// View returns the public projection of the user, the only shape clients
// ever see.
func (u *User) View() UserView {
	return UserView{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}
