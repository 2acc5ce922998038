package strategy

import (
	"context"

	"taskhub/internal/model"

	"gorm.io/datatypes"
)

// Result is the raw outcome of one strategy invocation before the executor
// normalizes duration and truncation.
type Result struct {
	Status       model.TaskLogStatus `json:"status"`
	Output       string              `json:"output"`
	ErrorMessage string              `json:"error_message,omitempty"`
	ExitCode     int                 `json:"exit_code"`
}

// ExecutionStrategy runs one task type's payload. Implementations honor ctx
// cancellation by terminating the underlying operation and reporting a
// failed result; they return an error only alongside a failed Result.
type ExecutionStrategy interface {
	Type() model.TaskType
	Execute(ctx context.Context, config datatypes.JSON) (Result, error)
}

func failedResult(message string) Result {
	return Result{
		Status:       model.StatusFailed,
		ErrorMessage: message,
		ExitCode:     -1,
	}
}
