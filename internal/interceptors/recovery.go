package interceptors

import (
	"context"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
	"github.com/dmehra2102/todorpc/internal/recovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// RecoveryInterceptor answers a panicking call with an UnknownError status.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				resp = nil
				err = todov1.Status(recovery.Recovered(logger, info.FullMethod, r,
					zap.String("request_id", RequestIDFromContext(ctx)),
				))
			}
		}()

		return handler(ctx, req)
	}
}
