package todov1

import (
	"errors"
	"strconv"

	"github.com/dmehra2102/todorpc/internal/domain"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain scopes the ErrorInfo details attached to todo statuses.
const ErrorDomain = "todo.v1"

// ErrorPayload is the JSON form of the error union on the socket transport.
type ErrorPayload struct {
	Tag     string `json:"_tag"`
	ID      *int64 `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewErrorPayload(err error) *ErrorPayload {
	switch e := domain.AsError(err).(type) {
	case *domain.NotFoundError:
		id := e.ID
		return &ErrorPayload{Tag: e.Tag(), ID: &id}
	case *domain.ValidationError:
		return &ErrorPayload{Tag: e.Tag(), Message: e.Message}
	case *domain.UnknownError:
		return &ErrorPayload{Tag: e.Tag(), Message: e.Message}
	default:
		return &ErrorPayload{Tag: domain.TagUnknown, Message: err.Error()}
	}
}

// Err decodes the payload back into the error union. A payload that does not
// match any variant is itself a schema mismatch.
func (p *ErrorPayload) Err() error {
	switch p.Tag {
	case domain.TagNotFound:
		if p.ID == nil {
			return domain.NewValidationError("TodoNotFoundError without id")
		}
		return domain.NewNotFoundError(*p.ID)
	case domain.TagValidation:
		return domain.NewValidationError(p.Message)
	case domain.TagUnknown:
		return domain.NewUnknownError(p.Message)
	default:
		return domain.NewValidationError("unrecognised error tag " + strconv.Quote(p.Tag))
	}
}

// Status converts err into a gRPC status error carrying the union variant
// in an ErrorInfo detail.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && !isDomainError(err) {
		return err
	}

	typed := domain.AsError(err)
	info := &errdetails.ErrorInfo{
		Reason:   typed.Tag(),
		Domain:   ErrorDomain,
		Metadata: map[string]string{},
	}

	var code codes.Code
	switch e := typed.(type) {
	case *domain.NotFoundError:
		code = codes.NotFound
		info.Metadata["id"] = strconv.FormatInt(e.ID, 10)
	case *domain.ValidationError:
		code = codes.InvalidArgument
		info.Metadata["message"] = e.Message
	case *domain.UnknownError:
		code = codes.Unknown
		info.Metadata["message"] = e.Message
	}

	st, detailErr := status.New(code, typed.Error()).WithDetails(info)
	if detailErr != nil {
		return status.Error(code, typed.Error())
	}
	return st.Err()
}

// FromError recovers the union variant from a gRPC error. Statuses without
// todo details (transport failures, auth rejections) become UnknownError,
// except InvalidArgument which is always a schema problem.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return domain.AsError(err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return domain.NewUnknownError(err.Error())
	}

	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		switch info.GetReason() {
		case domain.TagNotFound:
			id, parseErr := strconv.ParseInt(info.GetMetadata()["id"], 10, 64)
			if parseErr != nil {
				return domain.NewValidationError("TodoNotFoundError with malformed id")
			}
			return domain.NewNotFoundError(id)
		case domain.TagValidation:
			return domain.NewValidationError(info.GetMetadata()["message"])
		case domain.TagUnknown:
			return domain.NewUnknownError(info.GetMetadata()["message"])
		}
	}

	if st.Code() == codes.InvalidArgument {
		return domain.NewValidationError(st.Message())
	}
	return domain.NewUnknownError(st.Code().String() + ": " + st.Message())
}

func isDomainError(err error) bool {
	var typed domain.Error
	return errors.As(err, &typed)
}
