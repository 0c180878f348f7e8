package products

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	productv1 "github.com/louisbranch/recordmesh/api/gen/go/product/v1"
	"github.com/louisbranch/recordmesh/internal/services/products/events"
	"github.com/louisbranch/recordmesh/internal/services/products/storage/memory"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type capturingPublisher struct {
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return p.err
}

func (p *capturingPublisher) last(t *testing.T) events.Event {
	t.Helper()
	if len(p.payloads) == 0 {
		t.Fatal("no events published")
	}
	var event events.Event
	if err := json.Unmarshal(p.payloads[len(p.payloads)-1], &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return event
}

func assertStatus(t *testing.T, err error, code codes.Code) *status.Status {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error", code)
	}
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("not a status error: %v", err)
	}
	if st.Code() != code {
		t.Fatalf("code = %v, want %v (detail %q)", st.Code(), code, st.Message())
	}
	return st
}

func TestCreateProduct_AssignsIDAndPublishes(t *testing.T) {
	publisher := &capturingPublisher{}
	svc := NewService(memory.New(), publisher)

	resp, err := svc.CreateProduct(context.Background(), &productv1.CreateProductRequest{
		Name:  "Pen",
		Price: 1.5,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if resp.GetMessage() != "Product created!" {
		t.Fatalf("message = %q", resp.GetMessage())
	}
	product := resp.GetProduct()
	if product.GetId() != 1 || product.GetName() != "Pen" || product.GetPrice() != 1.5 {
		t.Fatalf("unexpected product: %+v", product)
	}

	event := publisher.last(t)
	if event.Type != events.TypeCreated {
		t.Fatalf("event type = %q, want %q", event.Type, events.TypeCreated)
	}
	if event.Product.ID != 1 || event.Product.Price != 1.5 {
		t.Fatalf("unexpected event snapshot: %+v", event.Product)
	}
}

func TestCreateProduct_MissingFieldsRejectedBeforeStore(t *testing.T) {
	publisher := &capturingPublisher{}
	svc := NewService(memory.New(), publisher)

	cases := []struct {
		name string
		req  *productv1.CreateProductRequest
	}{
		{"missing name", &productv1.CreateProductRequest{Price: 1.5}},
		{"missing price", &productv1.CreateProductRequest{Name: "Pen"}},
		{"negative price", &productv1.CreateProductRequest{Name: "Pen", Price: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.req)
			assertStatus(t, err, codes.InvalidArgument)
		})
	}

	resp, err := svc.GetProducts(context.Background(), &productv1.GetProductsRequest{})
	if err != nil {
		t.Fatalf("get products: %v", err)
	}
	if len(resp.GetProducts()) != 0 {
		t.Fatalf("store touched by invalid create: %d products", len(resp.GetProducts()))
	}
	if len(publisher.payloads) != 0 {
		t.Fatalf("events published for invalid create: %d", len(publisher.payloads))
	}
}

func TestUpdateProduct_PriceOnlyLeavesNameUnchanged(t *testing.T) {
	publisher := &capturingPublisher{}
	svc := NewService(memory.New(), publisher)

	if _, err := svc.CreateProduct(context.Background(), &productv1.CreateProductRequest{
		Name:  "Pen",
		Price: 1.5,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	price := 2.0
	resp, err := svc.UpdateProduct(context.Background(), &productv1.UpdateProductRequest{
		ProductId: 1,
		Price:     &price,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	product := resp.GetProduct()
	if product.GetName() != "Pen" {
		t.Fatalf("name changed to %q", product.GetName())
	}
	if product.GetPrice() != 2.0 {
		t.Fatalf("price = %v, want 2.0", product.GetPrice())
	}

	event := publisher.last(t)
	if event.Type != events.TypeUpdated {
		t.Fatalf("event type = %q, want %q", event.Type, events.TypeUpdated)
	}
	if event.Product.Price != 2.0 {
		t.Fatalf("event snapshot price = %v, want post-mutation value", event.Product.Price)
	}
}

func TestGetProduct_UnknownIDReturnsNotFoundDetail(t *testing.T) {
	svc := NewService(memory.New(), nil)

	_, err := svc.GetProduct(context.Background(), &productv1.GetProductRequest{ProductId: 999})
	st := assertStatus(t, err, codes.NotFound)
	if st.Message() != "Product not found" {
		t.Fatalf("detail = %q, want %q", st.Message(), "Product not found")
	}
}

func TestDeleteProduct_RemovesAndPublishesSnapshot(t *testing.T) {
	publisher := &capturingPublisher{}
	svc := NewService(memory.New(), publisher)

	if _, err := svc.CreateProduct(context.Background(), &productv1.CreateProductRequest{
		Name:  "Pen",
		Price: 1.5,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	resp, err := svc.DeleteProduct(context.Background(), &productv1.DeleteProductRequest{ProductId: 1})
	if err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if resp.GetMessage() != "Product deleted" {
		t.Fatalf("message = %q", resp.GetMessage())
	}

	event := publisher.last(t)
	if event.Type != events.TypeDeleted {
		t.Fatalf("event type = %q, want %q", event.Type, events.TypeDeleted)
	}
	if event.Product.Name != "Pen" {
		t.Fatalf("unexpected deleted snapshot: %+v", event.Product)
	}

	_, err = svc.GetProduct(context.Background(), &productv1.GetProductRequest{ProductId: 1})
	assertStatus(t, err, codes.NotFound)
}

func TestDeleteProduct_PublishFailureDoesNotFailRPC(t *testing.T) {
	publisher := &capturingPublisher{err: errors.New("broker down")}
	svc := NewService(memory.New(), publisher)

	if _, err := svc.CreateProduct(context.Background(), &productv1.CreateProductRequest{
		Name:  "Pen",
		Price: 1.5,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := svc.DeleteProduct(context.Background(), &productv1.DeleteProductRequest{ProductId: 1}); err != nil {
		t.Fatalf("delete with failing publisher: %v", err)
	}

	_, err := svc.GetProduct(context.Background(), &productv1.GetProductRequest{ProductId: 1})
	assertStatus(t, err, codes.NotFound)
}
