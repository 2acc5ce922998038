package strategy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/pkg/httpclient"
	"taskhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestHTTPStrategy_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "GET", r.Method)
			fmt.Fprint(w, `{"healthy":true}`)
		case "/echo":
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusCreated)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	s := NewHTTPStrategy(logger.NewNop(), httpclient.New("", 0))

	tests := []struct {
		name       string
		config     string
		wantStatus model.TaskLogStatus
		wantExit   int
		wantErrMsg string
	}{
		{
			name:       "2xx succeeds",
			config:     fmt.Sprintf(`{"url":"%s/ok"}`, server.URL),
			wantStatus: model.StatusSuccess,
			wantExit:   200,
		},
		{
			name:       "post with headers",
			config:     fmt.Sprintf(`{"url":"%s/echo","method":"POST","headers":{"Content-Type":"application/json"},"body":"{}"}`, server.URL),
			wantStatus: model.StatusSuccess,
			wantExit:   201,
		},
		{
			name:       "5xx fails with status as exit code",
			config:     fmt.Sprintf(`{"url":"%s/broken"}`, server.URL),
			wantStatus: model.StatusFailed,
			wantExit:   500,
			wantErrMsg: "HTTP 500",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Execute(context.Background(), datatypes.JSON(tt.config))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantExit, result.ExitCode)
			if tt.wantErrMsg != "" {
				assert.Equal(t, tt.wantErrMsg, result.ErrorMessage)
			}
		})
	}
}

func TestHTTPStrategy_ResponseBodyInOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	}))
	defer server.Close()

	s := NewHTTPStrategy(logger.NewNop(), httpclient.New("", 0))

	result, err := s.Execute(context.Background(), datatypes.JSON(fmt.Sprintf(`{"url":"%s"}`, server.URL)))
	require.NoError(t, err)
	assert.Contains(t, result.Output, "Status: 200")
	assert.Contains(t, result.Output, "pong")
}

func TestHTTPStrategy_ConnectionRefused(t *testing.T) {
	s := NewHTTPStrategy(logger.NewNop(), httpclient.New("", 0))

	result, err := s.Execute(context.Background(), datatypes.JSON(`{"url":"http://127.0.0.1:1/nothing"}`))
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "Request failed")
	assert.Equal(t, -1, result.ExitCode)
}

func TestHTTPStrategy_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	s := NewHTTPStrategy(logger.NewNop(), httpclient.New("", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := s.Execute(ctx, datatypes.JSON(fmt.Sprintf(`{"url":"%s","timeout":1}`, server.URL)))
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "timed out")
}
