package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronEvaluator_Parse(t *testing.T) {
	evaluator := NewCronEvaluator()

	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "every minute", expr: "* * * * *"},
		{name: "daily at midnight", expr: "0 0 * * *"},
		{name: "every 15 minutes", expr: "*/15 * * * *"},
		{name: "weekday mornings", expr: "30 9 * * 1-5"},
		{name: "ranges and lists", expr: "0 0,12 1-15 * *"},
		{name: "empty expression", expr: "", wantErr: true},
		{name: "too few fields", expr: "* * * *", wantErr: true},
		{name: "too many fields", expr: "* * * * * *", wantErr: true},
		{name: "descriptor rejected", expr: "@hourly", wantErr: true},
		{name: "minute out of range", expr: "60 * * * *", wantErr: true},
		{name: "garbage field", expr: "a b c d e", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluator.Parse(tt.expr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCronExpression)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCronEvaluator_Next(t *testing.T) {
	evaluator := NewCronEvaluator()
	after := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{
			name: "every minute fires strictly after the reference",
			expr: "* * * * *",
			want: time.Date(2025, 6, 15, 10, 31, 0, 0, time.UTC),
		},
		{
			name: "daily at midnight rolls to next day",
			expr: "0 0 * * *",
			want: time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "same minute is not returned",
			expr: "30 10 * * *",
			want: time.Date(2025, 6, 16, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "sunday is 0",
			expr: "0 8 * * 0",
			want: time.Date(2025, 6, 22, 8, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Next(tt.expr, after)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCronEvaluator_NextN(t *testing.T) {
	evaluator := NewCronEvaluator()
	after := time.Date(2025, 6, 15, 10, 30, 45, 0, time.UTC)

	runs, err := evaluator.NextN("*/15 * * * *", after, 5)
	require.NoError(t, err)
	require.Len(t, runs, 5)

	want := []time.Time{
		time.Date(2025, 6, 15, 10, 45, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 11, 15, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 11, 30, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 11, 45, 0, 0, time.UTC),
	}
	assert.Equal(t, want, runs)

	for i := 1; i < len(runs); i++ {
		assert.True(t, runs[i].After(runs[i-1]))
	}
}
