// Package products implements the product.v1 gRPC service over the product store.
package products

import (
	"context"
	"errors"
	"log"

	productv1 "github.com/louisbranch/recordmesh/api/gen/go/product/v1"
	"github.com/louisbranch/recordmesh/internal/services/products/events"
	"github.com/louisbranch/recordmesh/internal/services/products/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Publisher delivers serialized product events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Service exposes product.v1 gRPC operations.
type Service struct {
	productv1.UnimplementedProductServiceServer
	store     storage.Store
	publisher Publisher
}

// NewService creates a product service backed by the given store. A nil
// publisher disables event publication.
func NewService(store storage.Store, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// CreateProduct validates the required fields, inserts the product, and
// publishes a ProductCreated event before responding.
func (s *Service) CreateProduct(ctx context.Context, in *productv1.CreateProductRequest) (*productv1.CreateProductResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "create product request is required")
	}
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "product store is not configured")
	}
	if in.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if in.GetPrice() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "price is required and must be positive")
	}

	product, err := s.store.Create(ctx, in.GetName(), in.GetPrice())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "create product: %v", err)
	}
	s.publish(ctx, events.TypeCreated, product)

	return &productv1.CreateProductResponse{
		Message: "Product created!",
		Product: toProto(product),
	}, nil
}

// GetProducts returns the full product collection in insertion order.
func (s *Service) GetProducts(ctx context.Context, in *productv1.GetProductsRequest) (*productv1.GetProductsResponse, error) {
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "product store is not configured")
	}

	products, err := s.store.List(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list products: %v", err)
	}
	resp := &productv1.GetProductsResponse{Products: make([]*productv1.Product, 0, len(products))}
	for _, product := range products {
		resp.Products = append(resp.Products, toProto(product))
	}
	return resp, nil
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(ctx context.Context, in *productv1.GetProductRequest) (*productv1.GetProductResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get product request is required")
	}
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "product store is not configured")
	}

	product, err := s.store.Get(ctx, in.GetProductId())
	if err != nil {
		return nil, storeError(err, "get product")
	}
	return &productv1.GetProductResponse{Product: toProto(product)}, nil
}

// UpdateProduct overwrites the fields present in the request and
// publishes a ProductUpdated event before responding.
func (s *Service) UpdateProduct(ctx context.Context, in *productv1.UpdateProductRequest) (*productv1.UpdateProductResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "update product request is required")
	}
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "product store is not configured")
	}

	product, err := s.store.Update(ctx, in.GetProductId(), storage.ProductUpdate{
		Name:  in.Name,
		Price: in.Price,
	})
	if err != nil {
		return nil, storeError(err, "update product")
	}
	s.publish(ctx, events.TypeUpdated, product)

	return &productv1.UpdateProductResponse{Product: toProto(product)}, nil
}

// DeleteProduct removes one product by id and publishes a ProductDeleted
// event carrying the deleted snapshot before responding.
func (s *Service) DeleteProduct(ctx context.Context, in *productv1.DeleteProductRequest) (*productv1.DeleteProductResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "delete product request is required")
	}
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "product store is not configured")
	}

	product, err := s.store.Delete(ctx, in.GetProductId())
	if err != nil {
		return nil, storeError(err, "delete product")
	}
	s.publish(ctx, events.TypeDeleted, product)

	return &productv1.DeleteProductResponse{Message: "Product deleted"}, nil
}

// publish sends one domain event for a committed mutation. Publish
// failures are logged and never fail the triggering RPC.
func (s *Service) publish(ctx context.Context, eventType string, product storage.Product) {
	if s.publisher == nil {
		return
	}
	payload, err := events.Marshal(eventType, product)
	if err != nil {
		log.Printf("marshal %s event: %v", eventType, err)
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		log.Printf("publish %s event: %v", eventType, err)
	}
}

func storeError(err error, op string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return status.Error(codes.NotFound, "Product not found")
	}
	return status.Errorf(codes.Internal, "%s: %v", op, err)
}

func toProto(product storage.Product) *productv1.Product {
	return &productv1.Product{
		Id:    product.ID,
		Name:  product.Name,
		Price: product.Price,
	}
}
