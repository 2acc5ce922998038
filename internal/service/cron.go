package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// CronEvaluator parses 5-field cron expressions (minute hour day-of-month
// month day-of-week, 0=Sunday) and computes fire times. It is stateless and
// safe for concurrent use.
type CronEvaluator struct {
	parser cron.Parser
}

func NewCronEvaluator() *CronEvaluator {
	return &CronEvaluator{
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

// Parser exposes the underlying parser so the scheduler's timer table uses
// identical grammar.
func (e *CronEvaluator) Parser() cron.Parser {
	return e.parser
}

// Parse validates expr and returns its schedule. Expressions must have
// exactly 5 whitespace-separated fields; descriptors like @hourly are
// rejected.
func (e *CronEvaluator) Parse(expr string) (cron.Schedule, error) {
	if fields := strings.Fields(expr); len(fields) != 5 {
		return nil, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidCronExpression, len(strings.Fields(expr)))
	}
	schedule, err := e.parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCronExpression, err)
	}
	return schedule, nil
}

// Next returns the first fire instant strictly after the reference instant.
func (e *CronEvaluator) Next(expr string, after time.Time) (time.Time, error) {
	schedule, err := e.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(after), nil
}

// NextN returns the next n fire instants strictly after the reference
// instant, in order.
func (e *CronEvaluator) NextN(expr string, after time.Time, n int) ([]time.Time, error) {
	schedule, err := e.Parse(expr)
	if err != nil {
		return nil, err
	}
	runs := make([]time.Time, 0, n)
	cursor := after
	for i := 0; i < n; i++ {
		cursor = schedule.Next(cursor)
		runs = append(runs, cursor)
	}
	return runs, nil
}
