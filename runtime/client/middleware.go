// Package client provides middleware support for query hooks.
package client

import (
	"context"
	"log/slog"
	"time"
)

// QueryEvent represents a query execution event
type QueryEvent struct {
	Query    string
	Args     []interface{}
	Duration time.Duration
	Error    error
	Start    time.Time
	End      time.Time
}

// Middleware is a function that intercepts queries
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// executeWithMiddleware executes a query with middleware chain
func executeWithMiddleware(ctx context.Context, middlewares []Middleware, query string, args []interface{}, exec func() error) error {
	if len(middlewares) == 0 {
		return exec()
	}

	event := &QueryEvent{
		Query: query,
		Args:  args,
		Start: time.Now(),
	}

	var next func() error
	index := 0

	next = func() error {
		if index >= len(middlewares) {
			// Last middleware, execute the actual query
			err := exec()
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Error = err
			return err
		}

		middleware := middlewares[index]
		index++
		return middleware(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware creates a middleware that logs queries at debug level.
// Argument values are not logged; only their count.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil {
			logger.DebugContext(ctx, "query failed", "sql", event.Query, "args", len(event.Args), "duration", event.Duration, "error", err)
		} else {
			logger.DebugContext(ctx, "query completed", "sql", event.Query, "args", len(event.Args), "duration", event.Duration)
		}
		return err
	}
}

// TimingMiddleware creates a middleware that measures query execution time
func TimingMiddleware(onTiming func(query string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.Query, event.Duration)
		}
		return err
	}
}

// SlowQueryMiddleware warns about queries slower than threshold
func SlowQueryMiddleware(logger *slog.Logger, threshold time.Duration) Middleware {
	return TimingMiddleware(func(query string, duration time.Duration) {
		if duration >= threshold {
			logger.Warn("slow query", "sql", query, "duration", duration)
		}
	})
}
