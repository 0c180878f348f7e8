// Package memory provides the volatile in-memory user store.
package memory

import (
	"context"
	"sync"

	"github.com/louisbranch/recordmesh/internal/services/users/storage"
)

// Store keeps the user collection in process memory. Ids are assigned
// from a monotonically increasing counter and never reused, even after
// deletion. The zero value is ready to use.
type Store struct {
	mu     sync.Mutex
	users  []storage.User
	nextID int64
}

// New creates an empty user store.
func New() *Store {
	return &Store{}
}

// Create assigns the next id and inserts the user.
func (s *Store) Create(ctx context.Context, username, email string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	user := storage.User{ID: s.nextID, Username: username, Email: email}
	s.users = append(s.users, user)
	return user, nil
}

// List returns a snapshot of all users in insertion order.
func (s *Store) List(ctx context.Context) ([]storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]storage.User, len(s.users))
	copy(users, s.users)
	return users, nil
}

// Get returns the user with the given id, or storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return storage.User{}, storage.ErrNotFound
	}
	return s.users[i], nil
}

// Update overwrites the fields present in update and returns the new
// snapshot, or storage.ErrNotFound.
func (s *Store) Update(ctx context.Context, id int64, update storage.UserUpdate) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return storage.User{}, storage.ErrNotFound
	}
	if update.Username != nil {
		s.users[i].Username = *update.Username
	}
	if update.Email != nil {
		s.users[i].Email = *update.Email
	}
	return s.users[i], nil
}

// Delete removes the user with the given id and returns the deleted
// snapshot, or storage.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return storage.User{}, storage.ErrNotFound
	}
	user := s.users[i]
	s.users = append(s.users[:i], s.users[i+1:]...)
	return user, nil
}

// index returns the position of id in the collection, or -1. Callers
// must hold the mutex.
func (s *Store) index(id int64) int {
	for i, user := range s.users {
		if user.ID == id {
			return i
		}
	}
	return -1
}
