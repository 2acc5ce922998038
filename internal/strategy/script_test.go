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

// The interpreter is configurable, so tests use sh to stay independent of a
// python installation on the test machine.
func TestScriptStrategy_Execute(t *testing.T) {
	s := NewScriptStrategy(logger.NewNop())

	result, err := s.Execute(context.Background(), datatypes.JSON(`{"code":"echo scripted","interpreter":"sh"}`))
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, result.Status)
	assert.Equal(t, "scripted\n", result.Output)
	assert.Equal(t, 0, result.ExitCode)
}

func TestScriptStrategy_NonzeroExit(t *testing.T) {
	s := NewScriptStrategy(logger.NewNop())

	result, err := s.Execute(context.Background(), datatypes.JSON(`{"code":"exit 2","interpreter":"sh"}`))
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Equal(t, 2, result.ExitCode)
}

func TestScriptStrategy_MissingInterpreter(t *testing.T) {
	s := NewScriptStrategy(logger.NewNop())

	result, err := s.Execute(context.Background(), datatypes.JSON(`{"code":"print(1)","interpreter":"definitely-not-installed"}`))
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Equal(t, -1, result.ExitCode)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestScriptStrategy_Timeout(t *testing.T) {
	s := NewScriptStrategy(logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := s.Execute(ctx, datatypes.JSON(`{"code":"sleep 5","interpreter":"sh","timeout":1}`))
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "timed out")
}

func TestScriptStrategy_InvalidConfig(t *testing.T) {
	s := NewScriptStrategy(logger.NewNop())

	_, err := s.Execute(context.Background(), datatypes.JSON(`not json`))
	assert.Error(t, err)
}
