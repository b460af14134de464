package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
	"github.com/dmehra2102/todorpc/internal/domain"
	"github.com/dmehra2102/todorpc/internal/metrics"
	"github.com/dmehra2102/todorpc/internal/recovery"
	"github.com/dmehra2102/todorpc/pkg/auth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxFrameSize = 64 << 10
	writeTimeout = 10 * time.Second
)

// Server upgrades HTTP requests to WebSocket connections and dispatches
// their frames to a TodoServiceServer.
type Server struct {
	todos     todov1.TodoServiceServer
	logger    *zap.Logger
	jwtSecret string
	upgrader  websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

type Option func(*Server)

// WithJWTSecret requires a bearer token on the upgrade request, either in
// the Authorization header or the token query parameter.
func WithJWTSecret(secret string) Option {
	return func(s *Server) {
		s.jwtSecret = secret
	}
}

// WithCheckOrigin overrides the upgrader's same-origin check.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = check
	}
}

func NewServer(todos todov1.TodoServiceServer, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		todos:  todos,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.jwtSecret != "" {
		userCtx, err := s.authenticate(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		ctx = auth.ContextWithUserContext(ctx, userCtx)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade", zap.Error(err))
		return
	}

	connID := uuid.New().String()
	logger := s.logger.With(zap.String("conn_id", connID))

	s.track(conn)
	defer s.untrack(conn)

	logger.Info("socket connected", zap.String("remote_addr", r.RemoteAddr))
	s.serve(ctx, conn, logger)
	logger.Info("socket disconnected")
}

func (s *Server) authenticate(r *http.Request) (*auth.UserContext, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = auth.BearerToken(r.Header.Get("Authorization"))
	}
	return auth.ParseToken(s.jwtSecret, token)
}

// serve reads frames until the connection fails, answering each on its own
// goroutine. It returns once every in-flight call has been answered.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn.SetReadLimit(maxFrameSize)

	var (
		wg      sync.WaitGroup
		writeMu sync.Mutex
	)
	write := func(resp Response) {
		data, err := json.Marshal(resp)
		if err != nil {
			logger.Error("failed to encode response", zap.String("id", resp.ID), zap.Error(err))
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debug("failed to write response", zap.String("id", resp.ID), zap.Error(err))
		}
	}

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("socket read ended", zap.Error(err))
			}
			break
		}
		if mt != websocket.TextMessage {
			write(failure("", domain.NewValidationError("frames must be text")))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			write(s.handle(ctx, data, logger))
		}()
	}

	cancel()
	wg.Wait()
	_ = conn.Close()
}

func (s *Server) handle(ctx context.Context, data []byte, logger *zap.Logger) (resp Response) {
	var req Request
	done := func(string) {}
	defer func() {
		if r := recover(); r != nil {
			done(domain.TagUnknown)
			resp = failure(req.ID, recovery.Recovered(logger, req.Method, r,
				zap.String("id", req.ID),
			))
		}
	}()

	if err := decodeStrict(data, &req); err != nil {
		return failure("", domain.NewValidationError("malformed frame: "+err.Error()))
	}

	method := req.Method
	switch method {
	case todov1.OpGetTodos, todov1.OpAddTodo, todov1.OpToggleTodo, todov1.OpDeleteTodo:
	default:
		method = "unknown"
	}
	done = metrics.Begin(metrics.TransportSocket, method)

	result, err := s.dispatch(ctx, req)
	if err != nil {
		typed := todov1.FromError(err).(domain.Error)
		done(typed.Tag())
		if typed.Tag() == domain.TagUnknown {
			logger.Error("socket call failed",
				zap.String("id", req.ID),
				zap.String("method", req.Method),
				zap.Error(typed),
			)
		} else {
			logger.Debug("socket call rejected",
				zap.String("id", req.ID),
				zap.String("method", req.Method),
				zap.String("tag", typed.Tag()),
			)
		}
		return failure(req.ID, typed)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		done(domain.TagUnknown)
		return failure(req.ID, domain.NewUnknownError(err.Error()))
	}
	done("OK")
	return Response{ID: req.ID, Result: encoded}
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Method {
	case todov1.OpGetTodos:
		if !isEmpty(req.Payload) && string(req.Payload) != "{}" {
			return nil, domain.NewValidationError("getTodos takes no payload")
		}
		resp, err := s.todos.GetTodos(ctx, &todov1.GetTodosRequest{})
		if err != nil {
			return nil, err
		}
		return resp.Todos, nil

	case todov1.OpAddTodo:
		title, err := decodeTitle(req.Payload)
		if err != nil {
			return nil, err
		}
		resp, err := s.todos.AddTodo(ctx, &todov1.AddTodoRequest{Title: title})
		if err != nil {
			return nil, err
		}
		return resp.Todo, nil

	case todov1.OpToggleTodo:
		id, err := decodeID(req.Payload)
		if err != nil {
			return nil, err
		}
		resp, err := s.todos.ToggleTodo(ctx, &todov1.ToggleTodoRequest{ID: id})
		if err != nil {
			return nil, err
		}
		return resp.Todo, nil

	case todov1.OpDeleteTodo:
		id, err := decodeID(req.Payload)
		if err != nil {
			return nil, err
		}
		resp, err := s.todos.DeleteTodo(ctx, &todov1.DeleteTodoRequest{ID: id})
		if err != nil {
			return nil, err
		}
		return resp.ID, nil

	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unknown method %q", req.Method))
	}
}

// Close drops every open connection. In-flight calls still get answered if
// the peer is reading.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for conn := range s.conns {
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	metrics.ConnectionOpened()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	metrics.ConnectionClosed()
}

func failure(id string, err error) Response {
	return Response{ID: id, Error: todov1.NewErrorPayload(err)}
}
