package main

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func newRouter(rpc http.Handler, healthServer *health.Server, enableMetrics bool, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(accessLog(logger))

	r.Methods(http.MethodGet).Path("/rpc").Handler(rpc)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := healthServer.Check(req.Context(), &healthpb.HealthCheckRequest{})
		if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			http.Error(w, "not serving", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	if enableMetrics {
		r.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.Handler())
	}

	return r
}

// accessLog wraps with httpsnoop rather than a recorder so the socket
// upgrade can still hijack the connection.
func accessLog(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info("handled",
				zap.String("method", r.Method),
				zap.String("url", r.URL.Path),
				zap.Int("status", m.Code),
				zap.Duration("duration", m.Duration),
			)
		})
	}
}
