// Package storage defines the product collection contract.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates no product record has the requested id.
var ErrNotFound = errors.New("product not found")

// Product stores one record in the product collection.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ProductUpdate carries a partial product update. Nil fields leave the
// stored value unchanged.
type ProductUpdate struct {
	Name  *string
	Price *float64
}

// Store owns the product collection. Implementations serialize mutations
// so id assignment and find-then-mutate sequences stay atomic; returned
// records are detached snapshots.
type Store interface {
	Create(ctx context.Context, name string, price float64) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Update(ctx context.Context, id int64, update ProductUpdate) (Product, error)
	Delete(ctx context.Context, id int64) (Product, error)
}
