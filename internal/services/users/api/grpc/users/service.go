// Package users implements the user.v1 gRPC service over the user store.
package users

import (
	"context"
	"errors"
	"log"

	userv1 "github.com/louisbranch/recordmesh/api/gen/go/user/v1"
	"github.com/louisbranch/recordmesh/internal/services/users/events"
	"github.com/louisbranch/recordmesh/internal/services/users/storage"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Publisher delivers serialized user events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Service exposes user.v1 gRPC operations.
type Service struct {
	userv1.UnimplementedUserServiceServer
	store     storage.Store
	publisher Publisher
}

// NewService creates a user service backed by the given store. A nil
// publisher disables event publication.
func NewService(store storage.Store, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// CreateUser validates the required fields, inserts the user, and
// publishes a UserCreated event before responding.
func (s *Service) CreateUser(ctx context.Context, in *userv1.CreateUserRequest) (*userv1.CreateUserResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "create user request is required")
	}
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "user store is not configured")
	}
	if in.GetUsername() == "" {
		return nil, status.Error(codes.InvalidArgument, "username is required")
	}
	if in.GetEmail() == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}

	user, err := s.store.Create(ctx, in.GetUsername(), in.GetEmail())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "create user: %v", err)
	}
	s.publish(ctx, events.TypeCreated, user)

	return &userv1.CreateUserResponse{
		Message: "User created!",
		User:    toProto(user),
	}, nil
}

// GetUsers returns the full user collection in insertion order.
func (s *Service) GetUsers(ctx context.Context, in *userv1.GetUsersRequest) (*userv1.GetUsersResponse, error) {
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "user store is not configured")
	}

	users, err := s.store.List(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list users: %v", err)
	}
	resp := &userv1.GetUsersResponse{Users: make([]*userv1.User, 0, len(users))}
	for _, user := range users {
		resp.Users = append(resp.Users, toProto(user))
	}
	return resp, nil
}

// GetUser returns one user by id.
func (s *Service) GetUser(ctx context.Context, in *userv1.GetUserRequest) (*userv1.GetUserResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get user request is required")
	}
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "user store is not configured")
	}

	user, err := s.store.Get(ctx, in.GetUserId())
	if err != nil {
		return nil, storeError(err, "get user")
	}
	return &userv1.GetUserResponse{User: toProto(user)}, nil
}

// UpdateUser overwrites the fields present in the request and publishes
// a UserUpdated event before responding.
func (s *Service) UpdateUser(ctx context.Context, in *userv1.UpdateUserRequest) (*userv1.UpdateUserResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "update user request is required")
	}
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "user store is not configured")
	}

	user, err := s.store.Update(ctx, in.GetUserId(), storage.UserUpdate{
		Username: in.Username,
		Email:    in.Email,
	})
	if err != nil {
		return nil, storeError(err, "update user")
	}
	s.publish(ctx, events.TypeUpdated, user)

	return &userv1.UpdateUserResponse{User: toProto(user)}, nil
}

// DeleteUser removes one user by id and publishes a UserDeleted event
// carrying the deleted snapshot before responding.
func (s *Service) DeleteUser(ctx context.Context, in *userv1.DeleteUserRequest) (*userv1.DeleteUserResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "delete user request is required")
	}
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "user store is not configured")
	}

	user, err := s.store.Delete(ctx, in.GetUserId())
	if err != nil {
		return nil, storeError(err, "delete user")
	}
	s.publish(ctx, events.TypeDeleted, user)

	return &userv1.DeleteUserResponse{Message: "User deleted"}, nil
}

// publish sends one domain event for a committed mutation. Publish
// failures are logged and never fail the triggering RPC.
func (s *Service) publish(ctx context.Context, eventType string, user storage.User) {
	if s.publisher == nil {
		return
	}
	payload, err := events.Marshal(eventType, user)
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
		return status.Error(codes.NotFound, "User not found")
	}
	return status.Errorf(codes.Internal, "%s: %v", op, err)
}

func toProto(user storage.User) *userv1.User {
	return &userv1.User{
		Id:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
