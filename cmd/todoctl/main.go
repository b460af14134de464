package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
	"github.com/dmehra2102/todorpc/internal/cli"
	"github.com/dmehra2102/todorpc/internal/transport/socket"
	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	os.Exit(run())
}

func run() int {
	transport := flag.String("transport", "grpc", "grpc or ws")
	addr := flag.String("addr", "", "server address (default localhost:8080 for grpc, ws://localhost:3000/rpc for ws)")
	token := flag.String("token", os.Getenv("TODO_TOKEN"), "bearer token when the server requires auth")
	useTLS := flag.Bool("tls", false, "connect over TLS")
	timeout := flag.Duration("timeout", 10*time.Second, "per-command timeout")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret for the token subcommand")
	flag.Parse()

	r := &cli.Runner{Out: os.Stdout, Err: os.Stderr, Secret: *secret}
	if !cli.NeedsClient(flag.Args()) {
		return r.Run(context.Background(), flag.Args())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client, closeClient, err := dial(ctx, *transport, *addr, *token, *useTLS)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeClient()

	r.Client = client
	return r.Run(ctx, flag.Args())
}

func dial(ctx context.Context, transport, addr, token string, useTLS bool) (cli.Client, func() error, error) {
	switch transport {
	case "grpc":
		if addr == "" {
			addr = "localhost:8080"
		}
		creds := insecure.NewCredentials()
		if useTLS {
			creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
		}
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		return &grpcClient{client: todov1.NewTodoServiceClient(conn), token: token}, conn.Close, nil

	case "ws":
		if addr == "" {
			addr = "ws://localhost:3000/rpc"
		}
		dialer := *websocket.DefaultDialer
		if useTLS {
			dialer.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		opts := []socket.DialOption{socket.WithDialer(&dialer)}
		if token != "" {
			opts = append(opts, socket.WithToken(token))
		}
		c, err := socket.Dial(ctx, addr, opts...)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown transport %q (want grpc or ws)", transport)
}
