// Package storage defines the user collection contract.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates no user record has the requested id.
var ErrNotFound = errors.New("user not found")

// User stores one record in the user collection.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserUpdate carries a partial user update. Nil fields leave the stored
// value unchanged.
type UserUpdate struct {
	Username *string
	Email    *string
}

// Store owns the user collection. Implementations serialize mutations so
// id assignment and find-then-mutate sequences stay atomic; returned
// records are detached snapshots.
type Store interface {
	Create(ctx context.Context, username, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Update(ctx context.Context, id int64, update UserUpdate) (User, error)
	Delete(ctx context.Context, id int64) (User, error)
}
