package grpc

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"hotel-booking-backend/internal/config"
)

const (
	userIDHeader    = "user-id"
	userRolesHeader = "user-roles"
	requestIDHeader = "x-request-id"
)

// GetUserIDFromContext extracts the user ID from the gRPC metadata.
// It expects a header named "user-id", set by the auth interceptor.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return 0, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	userIDs := md.Get(userIDHeader)
	if len(userIDs) == 0 {
		return 0, status.Errorf(codes.Unauthenticated, "user_id is not provided in metadata")
	}

	userID, err := strconv.ParseInt(userIDs[0], 10, 64)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid user_id format: %v", err)
	}
	return userID, nil
}

// IsAdminFromContext reports whether the interceptor saw the ADMIN role.
func IsAdminFromContext(ctx context.Context) bool {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return false
	}
	for _, role := range md.Get(userRolesHeader) {
		if role == config.RoleAdmin {
			return true
		}
	}
	return false
}
