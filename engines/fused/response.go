package fused

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// execResult carries the metadata of one evaluation pass.
type execResult struct {
	elements int
	execTime time.Duration
	dest     string

	logHandler slog.Handler
	logger     *slog.Logger
}

func newEvalResult(handler slog.Handler, elements int, execTime time.Duration, dest string) *execResult {
	if handler == nil {
		defaultHandler := slog.NewTextHandler(os.Stdout, nil)
		handler = defaultHandler.WithGroup("fused")
		// Create a logger from the handler rather than using slog directly
		defaultLogger := slog.New(handler)
		defaultLogger.Warn("Handler is nil, using the default logger configuration.")
	}

	return &execResult{
		elements:   elements,
		execTime:   execTime,
		dest:       dest,
		logHandler: handler,
		logger:     slog.New(handler.WithGroup("execResult")),
	}
}

func (r *execResult) String() string {
	return fmt.Sprintf(
		"ExecResult{Elements: %d, ExecTime: %s, Dest: %s}",
		r.elements, r.GetExecTime(), r.dest)
}

// Elements is the number of output elements written.
func (r *execResult) Elements() int {
	return r.elements
}

func (r *execResult) GetExecTime() string {
	return r.execTime.String()
}

func (r *execResult) GetDest() string {
	return r.dest
}
