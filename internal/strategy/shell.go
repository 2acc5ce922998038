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

type ShellStrategy struct {
	log *logger.Logger
}

func NewShellStrategy(log *logger.Logger) *ShellStrategy {
	return &ShellStrategy{log: log}
}

func (s *ShellStrategy) Type() model.TaskType {
	return model.TaskTypeShell
}

func (s *ShellStrategy) Execute(ctx context.Context, raw datatypes.JSON) (Result, error) {
	cfg, err := dto.DecodeShellConfig(raw)
	if err != nil {
		return failedResult(err.Error()), err
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cfg.Command)
	cmd.Dir = cfg.WorkingDir
	cmd.Env = mergedEnv(cfg.EnvVars)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failedResult(fmt.Sprintf("Command timed out after %ds", cfg.Timeout)), nil
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

// mergedEnv layers task-configured variables over the process environment.
func mergedEnv(vars map[string]string) []string {
	env := os.Environ()
	for k, v := range vars {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
