package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
	"github.com/dmitrijs2005/srefhub/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

func userIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", status.Error(codes.Unauthenticated, common.ErrUnauthenticated.Error())
	}
	return id, nil
}

func accessTokenFromContext(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	accessToken := accessTokenFromContext(ctx)

	// public methods run anonymously unless the caller sent a usable token
	if rpc.PublicMethods[info.FullMethod] {
		if accessToken != "" {
			if userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret); err == nil {
				ctx = context.WithValue(ctx, userIDKey, userID)
			}
		}
		return handler(ctx, req)
	}

	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		st, _ := rpc.ToStatus(err)
		return nil, st
	}

	ctx = context.WithValue(ctx, userIDKey, userID)
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "request failed", args...)
	} else {
		s.logger.Debug(ctx, "request", args...)
	}
	return resp, err
}
