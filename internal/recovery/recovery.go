// Package recovery turns panics in request handlers into UnknownError
// results so one bad call cannot take the process down.
package recovery

import (
	"runtime/debug"

	"github.com/dmehra2102/todorpc/internal/domain"
	"go.uber.org/zap"
)

// Recovered logs a value returned by recover() together with the stack and
// returns the error the caller should answer with.
func Recovered(logger *zap.Logger, method string, r any, fields ...zap.Field) *domain.UnknownError {
	logger.Error("panic recovered", append([]zap.Field{
		zap.String("method", method),
		zap.Any("panic", r),
		zap.String("stack", string(debug.Stack())),
	}, fields...)...)
	return domain.NewUnknownError("internal server error")
}
