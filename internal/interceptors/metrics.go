package interceptors

import (
	"context"

	"github.com/dmehra2102/todorpc/internal/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		done := metrics.Begin(metrics.TransportGRPC, info.FullMethod)

		resp, err = handler(ctx, req)

		code := "OK"
		if err != nil {
			st, _ := status.FromError(err)
			code = st.Code().String()
		}
		done(code)

		return resp, err
	}
}
