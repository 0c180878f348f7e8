package server

import (
	"context"
	"testing"
	"time"

	userv1 "github.com/louisbranch/recordmesh/api/gen/go/user/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

func newUsersClientForTest(t *testing.T) userv1.UserServiceClient {
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
	return userv1.NewUserServiceClient(conn)
}

func TestServer_CreateGetDeleteRoundTrip(t *testing.T) {
	client := newUsersClientForTest(t)

	created, err := client.CreateUser(context.Background(), &userv1.CreateUserRequest{
		Username: "alice",
		Email:    "a@x.com",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.GetUser().GetId() != 1 {
		t.Fatalf("id = %d, want 1", created.GetUser().GetId())
	}

	got, err := client.GetUser(context.Background(), &userv1.GetUserRequest{UserId: 1})
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.GetUser().GetUsername() != "alice" || got.GetUser().GetEmail() != "a@x.com" {
		t.Fatalf("unexpected user: %+v", got.GetUser())
	}

	if _, err := client.DeleteUser(context.Background(), &userv1.DeleteUserRequest{UserId: 1}); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	_, err = client.GetUser(context.Background(), &userv1.GetUserRequest{UserId: 1})
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.NotFound {
		t.Fatalf("get after delete: %v, want NotFound", err)
	}
	if st.Message() != "User not found" {
		t.Fatalf("detail = %q, want %q", st.Message(), "User not found")
	}
}

func TestServer_UpdatePreservesAbsentFields(t *testing.T) {
	client := newUsersClientForTest(t)

	if _, err := client.CreateUser(context.Background(), &userv1.CreateUserRequest{
		Username: "alice",
		Email:    "a@x.com",
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	email := "alice@y.com"
	updated, err := client.UpdateUser(context.Background(), &userv1.UpdateUserRequest{
		UserId: 1,
		Email:  &email,
	})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.GetUser().GetUsername() != "alice" {
		t.Fatalf("username changed to %q", updated.GetUser().GetUsername())
	}
	if updated.GetUser().GetEmail() != email {
		t.Fatalf("email = %q, want %q", updated.GetUser().GetEmail(), email)
	}
}

func TestServer_CreateValidationOverWire(t *testing.T) {
	client := newUsersClientForTest(t)

	_, err := client.CreateUser(context.Background(), &userv1.CreateUserRequest{Username: "alice"})
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.InvalidArgument {
		t.Fatalf("create without email: %v, want InvalidArgument", err)
	}
}
