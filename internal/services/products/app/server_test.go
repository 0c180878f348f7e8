package server

import (
	"context"
	"testing"
	"time"

	productv1 "github.com/louisbranch/recordmesh/api/gen/go/product/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

func newProductsClientForTest(t *testing.T) productv1.ProductServiceClient {
	t.Helper()

	server, err := NewWithAddr("127.0.0.1:0", "")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Serve(ctx); err != nil {
			t.Errorf("serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	conn, err := grpc.NewClient(server.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return productv1.NewProductServiceClient(conn)
}

func TestServer_CreateUpdateRoundTrip(t *testing.T) {
	client := newProductsClientForTest(t)

	created, err := client.CreateProduct(context.Background(), &productv1.CreateProductRequest{
		Name:  "Pen",
		Price: 1.5,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.GetProduct().GetId() != 1 {
		t.Fatalf("id = %d, want 1", created.GetProduct().GetId())
	}

	price := 2.0
	updated, err := client.UpdateProduct(context.Background(), &productv1.UpdateProductRequest{
		ProductId: 1,
		Price:     &price,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.GetProduct().GetName() != "Pen" || updated.GetProduct().GetPrice() != 2.0 {
		t.Fatalf("unexpected product: %+v", updated.GetProduct())
	}

	list, err := client.GetProducts(context.Background(), &productv1.GetProductsRequest{})
	if err != nil {
		t.Fatalf("get products: %v", err)
	}
	if len(list.GetProducts()) != 1 {
		t.Fatalf("products len = %d, want 1", len(list.GetProducts()))
	}
}

func TestServer_NotFoundDetailOverWire(t *testing.T) {
	client := newProductsClientForTest(t)

	_, err := client.GetProduct(context.Background(), &productv1.GetProductRequest{ProductId: 999})
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.NotFound {
		t.Fatalf("get unknown product: %v, want NotFound", err)
	}
	if st.Message() != "Product not found" {
		t.Fatalf("detail = %q, want %q", st.Message(), "Product not found")
	}
}
