// Package socket serves the todo contract over a WebSocket channel. Each
// text frame carries one JSON request or response; calls on one connection
// may be answered out of order and are matched by id.
package socket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
	"github.com/dmehra2102/todorpc/internal/domain"
)

// Request is a client frame, e.g. {"id":"1","method":"addTodo","payload":"write tests"}.
type Request struct {
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response answers the request with the same id. Exactly one of Result and
// Error is set.
type Response struct {
	ID     string               `json:"id"`
	Result json.RawMessage      `json:"result,omitempty"`
	Error  *todov1.ErrorPayload `json:"error,omitempty"`
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after frame")
	}
	return nil
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeTitle(raw json.RawMessage) (string, error) {
	if isEmpty(raw) {
		return "", domain.NewValidationError("payload is required")
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return "", domain.NewValidationError("payload must be a string")
	}
	return title, nil
}

// decodeID accepts a JSON number or a decimal string.
func decodeID(raw json.RawMessage) (int64, error) {
	if isEmpty(raw) {
		return 0, domain.NewValidationError("payload is required")
	}

	var id int64
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			return id, nil
		}
	}
	return 0, domain.NewValidationError("payload must be a todo id")
}
