package interceptor

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"hotel-booking-backend/internal/config"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/security"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			md = metadata.New(nil)
		} else {
			md = md.Copy()
		}
		// Never trust identity headers sent by the client
		md.Delete("user-id")
		md.Delete("user-roles")
		if len(md.Get("x-request-id")) == 0 {
			md.Set("x-request-id", uuid.NewString())
		}
		ctx = logger.ContextWithRequestID(ctx, md.Get("x-request-id")[0])

		level := config.GetSecurityLevel(info.FullMethod)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			return handler(metadata.NewIncomingContext(ctx, md), req)
		}

		token, err := extractToken(md)
		if err != nil {
			return nil, err
		}

		claims, err := i.tokenManager.ValidateToken(token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		if level == config.SecurityAdmin && !claims.HasRole(config.RoleAdmin) {
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}

		md.Set("user-id", strconv.FormatInt(claims.UserID, 10))
		if len(claims.Roles) > 0 {
			md.Set("user-roles", claims.Roles...)
		}

		resp, err := handler(metadata.NewIncomingContext(ctx, md), req)
		if err != nil {
			logger.Debug("RPC failed",
				"method", info.FullMethod,
				"request_id", md.Get("x-request-id")[0],
				"user_id", claims.UserID,
				"error", err)
		}
		return resp, err
	}
}

func extractToken(md metadata.MD) (string, error) {
	authHeader := md.Get("authorization")
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := authHeader[0]
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}

	return token, nil
}
