package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
	"github.com/dmehra2102/todorpc/internal/domain"
	"github.com/gorilla/websocket"
)

var ErrClientClosed = errors.New("socket client closed")

// Client calls the todo contract over one WebSocket connection. It is safe
// for concurrent use; every error it returns is a domain.Error.
type Client struct {
	conn   *websocket.Conn
	nextID atomic.Uint64

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Response
	err     error
	done    chan struct{}
}

type dialOptions struct {
	token  string
	dialer *websocket.Dialer
}

type DialOption func(*dialOptions)

func WithToken(token string) DialOption {
	return func(o *dialOptions) {
		o.token = token
	}
}

func WithDialer(dialer *websocket.Dialer) DialOption {
	return func(o *dialOptions) {
		o.dialer = dialer
	}
}

// Dial connects to a socket endpoint such as ws://localhost:3000/rpc.
func Dial(ctx context.Context, url string, opts ...DialOption) (*Client, error) {
	o := dialOptions{dialer: websocket.DefaultDialer}
	for _, opt := range opts {
		opt(&o)
	}

	header := http.Header{}
	if o.token != "" {
		header.Set("Authorization", "Bearer "+o.token)
	}

	conn, resp, err := o.dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		pending: make(map[string]chan Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	var err error
	for {
		var data []byte
		_, data, err = c.conn.ReadMessage()
		if err != nil {
			break
		}

		var resp Response
		if decodeErr := decodeStrict(data, &resp); decodeErr != nil {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}

	c.mu.Lock()
	c.err = err
	c.pending = nil
	c.mu.Unlock()
	close(c.done)
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	req := Request{
		ID:     strconv.FormatUint(c.nextID.Add(1), 10),
		Method: method,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return domain.NewValidationError(err.Error())
		}
		req.Payload = raw
	}
	data, err := json.Marshal(req)
	if err != nil {
		return domain.NewUnknownError(err.Error())
	}

	ch := make(chan Response, 1)
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return domain.NewUnknownError(ErrClientClosed.Error())
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return domain.NewUnknownError(err.Error())
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error.Err()
		}
		if err := decodeStrict(resp.Result, result); err != nil {
			return domain.NewValidationError(fmt.Sprintf("decode %s result: %v", method, err))
		}
		return nil
	case <-c.done:
		c.mu.Lock()
		err := c.err
		c.mu.Unlock()
		if err == nil {
			err = ErrClientClosed
		}
		return domain.NewUnknownError(err.Error())
	case <-ctx.Done():
		c.forget(req.ID)
		return domain.NewUnknownError(ctx.Err().Error())
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	if c.pending != nil {
		delete(c.pending, id)
	}
	c.mu.Unlock()
}

func (c *Client) GetTodos(ctx context.Context) ([]domain.Todo, error) {
	var todos []*todov1.Todo
	if err := c.call(ctx, todov1.OpGetTodos, nil, &todos); err != nil {
		return nil, err
	}
	if err := (&todov1.GetTodosResponse{Todos: todos}).Validate(); err != nil {
		return nil, domain.AsError(err)
	}

	out := make([]domain.Todo, len(todos))
	for i, todo := range todos {
		out[i] = todo.Domain()
	}
	return out, nil
}

func (c *Client) AddTodo(ctx context.Context, title string) (domain.Todo, error) {
	return c.todoCall(ctx, todov1.OpAddTodo, title)
}

func (c *Client) ToggleTodo(ctx context.Context, id int64) (domain.Todo, error) {
	return c.todoCall(ctx, todov1.OpToggleTodo, id)
}

func (c *Client) DeleteTodo(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	if err := c.call(ctx, todov1.OpDeleteTodo, id, &deleted); err != nil {
		return 0, err
	}
	if err := domain.ValidateID(deleted); err != nil {
		return 0, domain.AsError(err)
	}
	return deleted, nil
}

func (c *Client) todoCall(ctx context.Context, method string, payload any) (domain.Todo, error) {
	var todo *todov1.Todo
	if err := c.call(ctx, method, payload, &todo); err != nil {
		return domain.Todo{}, err
	}
	if err := todo.Validate(); err != nil {
		return domain.Todo{}, domain.AsError(err)
	}
	return todo.Domain(), nil
}
