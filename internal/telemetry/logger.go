// Package telemetry is a buffered, non-blocking logger adapted from the
// teacher's engine/logger.go: one goroutine owns the file handle, callers
// never block the investigation pipeline waiting on disk I/O, and a full
// queue drops entries instead of stalling.
package telemetry

import (
	"fmt"
	"os"
	"time"
)

// Entry is one structured log record for a pipeline stage.
type Entry struct {
	Timestamp time.Time
	Stage     string // the orchestrator's progress-event type: "status", "move_explored", "branch_added", ...
	FEN       string
	Message   string
	Fields    map[string]string
}

// Logger handles threaded logging to a file.
type Logger struct {
	file  *os.File
	queue chan Entry
	done  chan struct{}
}

// NewLogger opens (creating/appending) filename and starts the writer goroutine.
func NewLogger(filename string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := &Logger{
		file:  file,
		queue: make(chan Entry, 256),
		done:  make(chan struct{}),
	}
	go l.writer()
	return l, nil
}

// Log enqueues an entry; if the queue is full the entry is dropped.
func (l *Logger) Log(e Entry) {
	if l == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case l.queue <- e:
	default:
		fmt.Fprintln(os.Stderr, "telemetry: queue full, dropping entry")
	}
}

func (l *Logger) writer() {
	for e := range l.queue {
		fmt.Fprintf(l.file, "%s [%s] %s %s %v\n", e.Timestamp.Format(time.RFC3339), e.Stage, e.FEN, e.Message, e.Fields)
	}
	close(l.done)
}

// Close stops accepting entries, drains the queue, and closes the file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	close(l.queue)
	<-l.done
	return l.file.Close()
}
