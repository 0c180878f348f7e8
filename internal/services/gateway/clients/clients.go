// Package clients maintains the gateway's long-lived backend connections.
package clients

import (
	"context"
	"fmt"
	"log"
	"time"

	productv1 "github.com/louisbranch/recordmesh/api/gen/go/product/v1"
	userv1 "github.com/louisbranch/recordmesh/api/gen/go/user/v1"
	platformgrpc "github.com/louisbranch/recordmesh/internal/platform/grpc"
	"google.golang.org/grpc"
)

// Backends holds one client per entity service. Connections are dialed
// once at startup; connection loss is a fatal dependency outage.
type Backends struct {
	users    userv1.UserServiceClient
	products productv1.ProductServiceClient
	conns    []*grpc.ClientConn
}

// Dial connects to both entity services and waits for their health
// checks before returning.
func Dial(ctx context.Context, usersAddr, productsAddr string, dialTimeout time.Duration) (*Backends, error) {
	opts := platformgrpc.DefaultClientDialOptions()

	usersConn, err := platformgrpc.DialWithHealth(ctx, nil, usersAddr, dialTimeout, log.Printf, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial users service: %w", err)
	}
	productsConn, err := platformgrpc.DialWithHealth(ctx, nil, productsAddr, dialTimeout, log.Printf, opts...)
	if err != nil {
		_ = usersConn.Close()
		return nil, fmt.Errorf("dial products service: %w", err)
	}

	return &Backends{
		users:    userv1.NewUserServiceClient(usersConn),
		products: productv1.NewProductServiceClient(productsConn),
		conns:    []*grpc.ClientConn{usersConn, productsConn},
	}, nil
}

// Users returns the user service client.
func (b *Backends) Users() userv1.UserServiceClient {
	if b == nil {
		return nil
	}
	return b.users
}

// Products returns the product service client.
func (b *Backends) Products() productv1.ProductServiceClient {
	if b == nil {
		return nil
	}
	return b.products
}

// Close releases the backend connections.
func (b *Backends) Close() {
	if b == nil {
		return
	}
	for _, conn := range b.conns {
		_ = conn.Close()
	}
}
