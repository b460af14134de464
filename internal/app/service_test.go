package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
	"github.com/dmehra2102/todorpc/internal/domain"
	"github.com/dmehra2102/todorpc/internal/infrastructure/memory"
	"github.com/dmehra2102/todorpc/internal/interceptors"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func newTestClient(t *testing.T, repo domain.Repository) (todov1.TodoServiceClient, *grpc.ClientConn) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		interceptors.LoggingInterceptor(logger),
		interceptors.RecoveryInterceptor(logger),
	))
	todov1.RegisterTodoServiceServer(srv, NewTodoServiceServer(NewTodoService(repo, logger)))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufnet: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return todov1.NewTodoServiceClient(conn), conn
}

func TestGRPCScenario(t *testing.T) {
	client, _ := newTestClient(t, memory.NewRepository())
	ctx := context.Background()

	added, err := client.AddTodo(ctx, &todov1.AddTodoRequest{Title: "write tests"})
	if err != nil {
		t.Fatalf("AddTodo returned error: %v", err)
	}
	if added.Todo.ID != 0 || added.Todo.Title != "write tests" || added.Todo.Completed {
		t.Fatalf("unexpected todo: %+v", added.Todo)
	}

	list, err := client.GetTodos(ctx, &todov1.GetTodosRequest{})
	if err != nil || len(list.Todos) != 1 || list.Todos[0].ID != 0 {
		t.Fatalf("unexpected list: %+v, %v", list, err)
	}

	toggled, err := client.ToggleTodo(ctx, &todov1.ToggleTodoRequest{ID: 0})
	if err != nil || !toggled.Todo.Completed {
		t.Fatalf("expected completed todo, got %+v, %v", toggled, err)
	}
	if !toggled.Todo.CreatedAt.Equal(added.Todo.CreatedAt) {
		t.Fatalf("toggle changed createdAt: %v -> %v", added.Todo.CreatedAt, toggled.Todo.CreatedAt)
	}

	deleted, err := client.DeleteTodo(ctx, &todov1.DeleteTodoRequest{ID: 0})
	if err != nil || deleted.ID != 0 {
		t.Fatalf("expected deleted id 0, got %+v, %v", deleted, err)
	}

	list, err = client.GetTodos(ctx, &todov1.GetTodosRequest{})
	if err != nil || len(list.Todos) != 0 {
		t.Fatalf("expected empty list, got %+v, %v", list, err)
	}
}

func TestGRPCNewestFirst(t *testing.T) {
	client, _ := newTestClient(t, memory.NewRepository())
	ctx := context.Background()

	for _, title := range []string{"First", "Second", "Third"} {
		if _, err := client.AddTodo(ctx, &todov1.AddTodoRequest{Title: title}); err != nil {
			t.Fatalf("AddTodo returned error: %v", err)
		}
	}

	list, err := client.GetTodos(ctx, &todov1.GetTodosRequest{})
	if err != nil {
		t.Fatalf("GetTodos returned error: %v", err)
	}
	want := []string{"Third", "Second", "First"}
	if len(list.Todos) != len(want) {
		t.Fatalf("expected %d todos, got %d", len(want), len(list.Todos))
	}
	for i, todo := range list.Todos {
		if todo.Title != want[i] {
			t.Fatalf("position %d: got %q want %q", i, todo.Title, want[i])
		}
	}
}

func TestGRPCErrorsKeepTheirVariant(t *testing.T) {
	fault := errors.New("database is locked")
	tests := []struct {
		name  string
		repo  domain.Repository
		call  func(todov1.TodoServiceClient) error
		check func(t *testing.T, err error)
	}{
		{
			name: "not found carries id",
			repo: memory.NewRepository(),
			call: func(c todov1.TodoServiceClient) error {
				_, err := c.ToggleTodo(context.Background(), &todov1.ToggleTodoRequest{ID: 7})
				return err
			},
			check: func(t *testing.T, err error) {
				var notFound *domain.NotFoundError
				if !errors.As(err, &notFound) || notFound.ID != 7 {
					t.Fatalf("expected NotFound(7), got %T %v", err, err)
				}
			},
		},
		{
			name: "negative id is not found",
			repo: memory.NewRepository(),
			call: func(c todov1.TodoServiceClient) error {
				_, err := c.DeleteTodo(context.Background(), &todov1.DeleteTodoRequest{ID: -1})
				return err
			},
			check: func(t *testing.T, err error) {
				var notFound *domain.NotFoundError
				if !errors.As(err, &notFound) || notFound.ID != -1 {
					t.Fatalf("expected NotFound(-1), got %T %v", err, err)
				}
			},
		},
		{
			name: "empty title is validation",
			repo: memory.NewRepository(),
			call: func(c todov1.TodoServiceClient) error {
				_, err := c.AddTodo(context.Background(), &todov1.AddTodoRequest{Title: ""})
				return err
			},
			check: func(t *testing.T, err error) {
				var validation *domain.ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected ValidationError, got %T %v", err, err)
				}
			},
		},
		{
			name: "storage fault keeps message",
			repo: &faultyRepo{err: fault},
			call: func(c todov1.TodoServiceClient) error {
				_, err := c.GetTodos(context.Background(), &todov1.GetTodosRequest{})
				return err
			},
			check: func(t *testing.T, err error) {
				var unknown *domain.UnknownError
				if !errors.As(err, &unknown) || unknown.Message != fault.Error() {
					t.Fatalf("expected Unknown(%q), got %T %v", fault.Error(), err, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.repo)
			tt.check(t, tt.call(client))
		})
	}
}

func TestGRPCMalformedPayloadIsValidation(t *testing.T) {
	_, conn := newTestClient(t, memory.NewRepository())

	payloads := []string{
		`{"title": 5}`,
		`{"title": "ok", "priority": "high"}`,
		`{"id": "seven"}`,
	}
	methods := []string{
		todov1.TodoService_AddTodo_FullMethodName,
		todov1.TodoService_AddTodo_FullMethodName,
		todov1.TodoService_DeleteTodo_FullMethodName,
	}

	for i, payload := range payloads {
		var out json.RawMessage
		err := conn.Invoke(context.Background(), methods[i], json.RawMessage(payload), &out,
			grpc.CallContentSubtype(todov1.CodecName))

		var validation *domain.ValidationError
		if !errors.As(todov1.FromError(err), &validation) {
			t.Fatalf("%s: expected ValidationError, got %v", payload, err)
		}
	}
}
