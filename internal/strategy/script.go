package strategy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/pkg/logger"

	"gorm.io/datatypes"
)

// ScriptStrategy runs a code snippet through an external interpreter as a
// fresh subprocess per execution.
type ScriptStrategy struct {
	log *logger.Logger
}

func NewScriptStrategy(log *logger.Logger) *ScriptStrategy {
	return &ScriptStrategy{log: log}
}

func (s *ScriptStrategy) Type() model.TaskType {
	return model.TaskTypePython
}

func (s *ScriptStrategy) Execute(ctx context.Context, raw datatypes.JSON) (Result, error) {
	cfg, err := dto.DecodeScriptConfig(raw)
	if err != nil {
		return failedResult(err.Error()), err
	}

	tmp, err := os.CreateTemp("", "task_*.py")
	if err != nil {
		return failedResult(fmt.Sprintf("failed to create script file: %v", err)), nil
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(cfg.Code); err != nil {
		tmp.Close()
		return failedResult(fmt.Sprintf("failed to write script file: %v", err)), nil
	}
	if err := tmp.Close(); err != nil {
		return failedResult(fmt.Sprintf("failed to write script file: %v", err)), nil
	}

	cmd := exec.CommandContext(ctx, cfg.Interpreter, tmp.Name())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failedResult(fmt.Sprintf("Script timed out after %ds", cfg.Timeout)), nil
	}

	result := Result{
		Status:   model.StatusSuccess,
		Output:   stdout.String(),
		ExitCode: 0,
	}
	if stderr.Len() > 0 {
		result.ErrorMessage = stderr.String()
	}

	if runErr != nil {
		result.Status = model.StatusFailed
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.ErrorMessage = runErr.Error()
		}
	}
	return result, nil
}
