// Data transfer objects for the authentication endpoints.
package auth

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
	Name     string `json:"name" example:"Ann"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// UserView is the public projection of a user identity. It deliberately has
// no field for the password hash.
type UserView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResponse is returned by both register and login: a fresh bearer token
// plus the public view of the authenticated user.
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}
