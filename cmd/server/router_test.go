package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmehra2102/todorpc/internal/infrastructure/config"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestRouter(t *testing.T) {
	healthServer := health.NewServer()
	rpc := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := httptest.NewServer(newRouter(rpc, healthServer, true, zaptest.NewLogger(t)))
	defer srv.Close()

	tests := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/rpc", http.StatusTeapot},
		{"/metrics", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Fatalf("GET %s: got %d want %d", tt.path, resp.StatusCode, tt.want)
		}
	}

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when not serving, got %d", resp.StatusCode)
	}
}

func TestInitLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		if _, err := initLogger(config.ObservabilityConfig{LogLevel: "debug", LogFormat: format}); err != nil {
			t.Fatalf("%s: unexpected error %v", format, err)
		}
	}
	if _, err := initLogger(config.ObservabilityConfig{LogLevel: "loud", LogFormat: "json"}); err == nil || !strings.Contains(err.Error(), "loud") {
		t.Fatalf("expected invalid level error, got %v", err)
	}
}
