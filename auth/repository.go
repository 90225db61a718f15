package auth

import "context"

// UserRepository is the credential store contract. Nothing outside this
// package mutates user records.
//
// Contract:
//   - Create persists a new identity. A duplicate email fails with a
//     ConflictError and leaves the store unchanged.
//   - GetByEmail looks up an identity by its exact email (case-sensitive);
//     a missing record is a NotFoundError.
//   - GetByID looks up an identity by id under the same not-found rule.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
