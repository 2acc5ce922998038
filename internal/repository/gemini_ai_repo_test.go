package repository

import (
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisoryRequestLimiter(t *testing.T) {
	tests := []struct {
		name         string
		maxPerMinute int
		wantLimit    rate.Limit
	}{
		{name: "ten per minute", maxPerMinute: 10, wantLimit: rate.Every(6 * time.Second)},
		{name: "one per minute", maxPerMinute: 1, wantLimit: rate.Every(time.Minute)},
		{name: "zero clamps to one per minute", maxPerMinute: 0, wantLimit: rate.Every(time.Minute)},
		{name: "negative clamps to one per minute", maxPerMinute: -5, wantLimit: rate.Every(time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := advisoryRequestLimiter(tt.maxPerMinute)
			require.NotNil(t, limiter)
			assert.InDelta(t, float64(tt.wantLimit), float64(limiter.Limit()), 1e-9)
			assert.Equal(t, 1, limiter.Burst())
		})
	}
}
