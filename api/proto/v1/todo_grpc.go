package todov1

import (
	"context"
	"encoding/json"

	"github.com/dmehra2102/todorpc/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	TodoService_GetTodos_FullMethodName   = "/todo.v1.TodoService/GetTodos"
	TodoService_AddTodo_FullMethodName    = "/todo.v1.TodoService/AddTodo"
	TodoService_ToggleTodo_FullMethodName = "/todo.v1.TodoService/ToggleTodo"
	TodoService_DeleteTodo_FullMethodName = "/todo.v1.TodoService/DeleteTodo"
)

// TodoServiceClient is the client API for TodoService. Errors returned by
// its methods are always one of the domain error union variants.
type TodoServiceClient interface {
	GetTodos(ctx context.Context, in *GetTodosRequest, opts ...grpc.CallOption) (*GetTodosResponse, error)
	AddTodo(ctx context.Context, in *AddTodoRequest, opts ...grpc.CallOption) (*AddTodoResponse, error)
	ToggleTodo(ctx context.Context, in *ToggleTodoRequest, opts ...grpc.CallOption) (*ToggleTodoResponse, error)
	DeleteTodo(ctx context.Context, in *DeleteTodoRequest, opts ...grpc.CallOption) (*DeleteTodoResponse, error)
}

type todoServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTodoServiceClient(cc grpc.ClientConnInterface) TodoServiceClient {
	return &todoServiceClient{cc}
}

type validator interface {
	Validate() error
}

// invoke calls method and decodes the raw result itself, so a result that
// does not match its schema is reported as a ValidationError rather than a
// codec failure inside the transport.
func (c *todoServiceClient) invoke(ctx context.Context, method string, in any, out validator, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)

	var raw json.RawMessage
	if err := c.cc.Invoke(ctx, method, in, &raw, opts...); err != nil {
		return FromError(err)
	}
	if err := (Codec{}).Unmarshal(raw, out); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if err := out.Validate(); err != nil {
		return domain.AsError(err)
	}
	return nil
}

func (c *todoServiceClient) GetTodos(ctx context.Context, in *GetTodosRequest, opts ...grpc.CallOption) (*GetTodosResponse, error) {
	out := new(GetTodosResponse)
	if err := c.invoke(ctx, TodoService_GetTodos_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *todoServiceClient) AddTodo(ctx context.Context, in *AddTodoRequest, opts ...grpc.CallOption) (*AddTodoResponse, error) {
	out := new(AddTodoResponse)
	if err := c.invoke(ctx, TodoService_AddTodo_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *todoServiceClient) ToggleTodo(ctx context.Context, in *ToggleTodoRequest, opts ...grpc.CallOption) (*ToggleTodoResponse, error) {
	out := new(ToggleTodoResponse)
	if err := c.invoke(ctx, TodoService_ToggleTodo_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *todoServiceClient) DeleteTodo(ctx context.Context, in *DeleteTodoRequest, opts ...grpc.CallOption) (*DeleteTodoResponse, error) {
	out := new(DeleteTodoResponse)
	if err := c.invoke(ctx, TodoService_DeleteTodo_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// TodoServiceServer is the server API for TodoService.
type TodoServiceServer interface {
	GetTodos(context.Context, *GetTodosRequest) (*GetTodosResponse, error)
	AddTodo(context.Context, *AddTodoRequest) (*AddTodoResponse, error)
	ToggleTodo(context.Context, *ToggleTodoRequest) (*ToggleTodoResponse, error)
	DeleteTodo(context.Context, *DeleteTodoRequest) (*DeleteTodoResponse, error)
	mustEmbedUnimplementedTodoServiceServer()
}

// UnimplementedTodoServiceServer must be embedded to have forward compatible implementations.
type UnimplementedTodoServiceServer struct{}

func (UnimplementedTodoServiceServer) GetTodos(context.Context, *GetTodosRequest) (*GetTodosResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetTodos not implemented")
}
func (UnimplementedTodoServiceServer) AddTodo(context.Context, *AddTodoRequest) (*AddTodoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AddTodo not implemented")
}
func (UnimplementedTodoServiceServer) ToggleTodo(context.Context, *ToggleTodoRequest) (*ToggleTodoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ToggleTodo not implemented")
}
func (UnimplementedTodoServiceServer) DeleteTodo(context.Context, *DeleteTodoRequest) (*DeleteTodoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteTodo not implemented")
}
func (UnimplementedTodoServiceServer) mustEmbedUnimplementedTodoServiceServer() {}

func RegisterTodoServiceServer(s grpc.ServiceRegistrar, srv TodoServiceServer) {
	s.RegisterService(&TodoService_ServiceDesc, srv)
}

// decodeRequest turns codec failures into a ValidationError status instead
// of the transport's generic Internal code.
func decodeRequest(dec func(any) error, in any) error {
	if err := dec(in); err != nil {
		msg := err.Error()
		if st, ok := status.FromError(err); ok {
			msg = st.Message()
		}
		return Status(domain.NewValidationError(msg))
	}
	return nil
}

func _TodoService_GetTodos_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetTodosRequest)
	if err := decodeRequest(dec, in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TodoServiceServer).GetTodos(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TodoService_GetTodos_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TodoServiceServer).GetTodos(ctx, req.(*GetTodosRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TodoService_AddTodo_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AddTodoRequest)
	if err := decodeRequest(dec, in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TodoServiceServer).AddTodo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TodoService_AddTodo_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TodoServiceServer).AddTodo(ctx, req.(*AddTodoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TodoService_ToggleTodo_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ToggleTodoRequest)
	if err := decodeRequest(dec, in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TodoServiceServer).ToggleTodo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TodoService_ToggleTodo_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TodoServiceServer).ToggleTodo(ctx, req.(*ToggleTodoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TodoService_DeleteTodo_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteTodoRequest)
	if err := decodeRequest(dec, in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TodoServiceServer).DeleteTodo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TodoService_DeleteTodo_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TodoServiceServer).DeleteTodo(ctx, req.(*DeleteTodoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// TodoService_ServiceDesc is the grpc.ServiceDesc for TodoService service.
var TodoService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "todo.v1.TodoService",
	HandlerType: (*TodoServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTodos",
			Handler:    _TodoService_GetTodos_Handler,
		},
		{
			MethodName: "AddTodo",
			Handler:    _TodoService_AddTodo_Handler,
		},
		{
			MethodName: "ToggleTodo",
			Handler:    _TodoService_ToggleTodo_Handler,
		},
		{
			MethodName: "DeleteTodo",
			Handler:    _TodoService_DeleteTodo_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/proto/v1/todo.go",
}
