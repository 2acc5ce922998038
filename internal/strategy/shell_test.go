package strategy

import (
	"context"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestShellStrategy_Execute(t *testing.T) {
	s := NewShellStrategy(logger.NewNop())

	tests := []struct {
		name       string
		config     string
		wantStatus model.TaskLogStatus
		wantOutput string
		wantExit   int
		wantErrMsg string
	}{
		{
			name:       "command succeeds",
			config:     `{"command":"echo hello"}`,
			wantStatus: model.StatusSuccess,
			wantOutput: "hello\n",
			wantExit:   0,
		},
		{
			name:       "command exits nonzero",
			config:     `{"command":"exit 3"}`,
			wantStatus: model.StatusFailed,
			wantExit:   3,
		},
		{
			name:       "stderr is captured",
			config:     `{"command":"echo oops 1>&2"}`,
			wantStatus: model.StatusSuccess,
			wantExit:   0,
			wantErrMsg: "oops\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Execute(context.Background(), datatypes.JSON(tt.config))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantExit, result.ExitCode)
			if tt.wantOutput != "" {
				assert.Equal(t, tt.wantOutput, result.Output)
			}
			if tt.wantErrMsg != "" {
				assert.Equal(t, tt.wantErrMsg, result.ErrorMessage)
			}
		})
	}
}

func TestShellStrategy_EnvAndWorkingDir(t *testing.T) {
	s := NewShellStrategy(logger.NewNop())
	dir := t.TempDir()

	config := `{"command":"echo $GREETING from $PWD","working_dir":"` + dir + `","env_vars":{"GREETING":"hi"}}`
	result, err := s.Execute(context.Background(), datatypes.JSON(config))
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, result.Status)
	assert.Contains(t, result.Output, "hi from")
	assert.Contains(t, result.Output, dir)
}

func TestShellStrategy_Timeout(t *testing.T) {
	s := NewShellStrategy(logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := s.Execute(ctx, datatypes.JSON(`{"command":"sleep 5","timeout":1}`))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "timed out")
	assert.Equal(t, -1, result.ExitCode)
}

func TestShellStrategy_InvalidConfig(t *testing.T) {
	s := NewShellStrategy(logger.NewNop())

	result, err := s.Execute(context.Background(), datatypes.JSON(`{"command":`))
	assert.Error(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
}
