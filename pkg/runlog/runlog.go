// Package runlog appends human-readable execution records to per-task log
// files. One Append call produces exactly one block; concurrent appends from
// different executions never interleave within a block.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"taskhub/pkg/utils"
)

const (
	separator    = "=================================================="
	maxOutputLen = 500
)

type Entry struct {
	TaskID       uint
	TaskName     string
	Status       string
	DurationMs   int64
	ExitCode     int
	Output       string
	ErrorMessage string
	Timestamp    time.Time
}

type Writer struct {
	mu  sync.Mutex
	dir string
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run log dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Append writes one execution block to the task's log file. The block is
// assembled in memory and written with a single O_APPEND write so concurrent
// callers cannot corrupt each other's entries.
func (w *Writer) Append(entry Entry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = utils.TimeNowUTC()
	}

	errMsg := entry.ErrorMessage
	if errMsg == "" {
		errMsg = "None"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Task: %s (ID: %d)\n", ts.Format(time.RFC3339), entry.TaskName, entry.TaskID)
	fmt.Fprintf(&b, "Status: %s\n", entry.Status)
	fmt.Fprintf(&b, "Duration: %dms\n", entry.DurationMs)
	fmt.Fprintf(&b, "Exit Code: %d\n", entry.ExitCode)
	fmt.Fprintf(&b, "Output: %s\n", utils.Truncate(entry.Output, maxOutputLen))
	fmt.Fprintf(&b, "Error: %s\n", errMsg)
	b.WriteString(separator + "\n")

	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.dir, fmt.Sprintf("task_%d.log", entry.TaskID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append run log: %w", err)
	}
	return nil
}
