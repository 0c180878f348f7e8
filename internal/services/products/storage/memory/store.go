// Package memory provides the volatile in-memory product store.
package memory

import (
	"context"
	"sync"

	"github.com/louisbranch/recordmesh/internal/services/products/storage"
)

// Store keeps the product collection in process memory. Ids are assigned
// from a monotonically increasing counter and never reused, even after
// deletion. The zero value is ready to use.
type Store struct {
	mu       sync.Mutex
	products []storage.Product
	nextID   int64
}

// New creates an empty product store.
func New() *Store {
	return &Store{}
}

// Create assigns the next id and inserts the product.
func (s *Store) Create(ctx context.Context, name string, price float64) (storage.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	product := storage.Product{ID: s.nextID, Name: name, Price: price}
	s.products = append(s.products, product)
	return product, nil
}

// List returns a snapshot of all products in insertion order.
func (s *Store) List(ctx context.Context) ([]storage.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]storage.Product, len(s.products))
	copy(products, s.products)
	return products, nil
}

// Get returns the product with the given id, or storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (storage.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return storage.Product{}, storage.ErrNotFound
	}
	return s.products[i], nil
}

// Update overwrites the fields present in update and returns the new
// snapshot, or storage.ErrNotFound.
func (s *Store) Update(ctx context.Context, id int64, update storage.ProductUpdate) (storage.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return storage.Product{}, storage.ErrNotFound
	}
	if update.Name != nil {
		s.products[i].Name = *update.Name
	}
	if update.Price != nil {
		s.products[i].Price = *update.Price
	}
	return s.products[i], nil
}

// Delete removes the product with the given id and returns the deleted
// snapshot, or storage.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) (storage.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return storage.Product{}, storage.ErrNotFound
	}
	product := s.products[i]
	s.products = append(s.products[:i], s.products[i+1:]...)
	return product, nil
}

// index returns the position of id in the collection, or -1. Callers
// must hold the mutex.
func (s *Store) index(id int64) int {
	for i, product := range s.products {
		if product.ID == id {
			return i
		}
	}
	return -1
}
