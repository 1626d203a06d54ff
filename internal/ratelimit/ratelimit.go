// Package ratelimit caps how many API requests each user may make per window.
//
// Requests are classed as reads or writes by HTTP method. Counts live in a
// sliding-window store, in memory for a single process or in Redis when
// several replicas share the budget.
package ratelimit

import (
	"context"
	"net/http"
	"time"
)

// Class separates cheap reads from state-changing writes.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

// ClassOf maps a request method to its class.
func ClassOf(method string) Class {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a rejected caller should wait, rounded up to a second.
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Store counts requests per key in a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// Limits are the per-user budgets for each class within Window.
type Limits struct {
	Reads  int
	Writes int
	Window time.Duration
}

func (l Limits) forClass(c Class) int {
	if c == ClassRead {
		return l.Reads
	}
	return l.Writes
}
