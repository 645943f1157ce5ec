// Package notify defines the notification interface and implementations
// for end-of-run migration report delivery.
package notify

import (
	"context"
	"time"
)

// Report summarizes one migration run for delivery to a notification
// backend.
type Report struct {
	Source    string
	Target    string
	Succeeded int
	Failed    int
	Duration  time.Duration
	Errors    []string

	// OrphanWarning is set when failed creations may have left inventory
	// items without offers in the target environment.
	OrphanWarning bool
}

// Total returns the number of listings the run attempted.
func (r *Report) Total() int {
	return r.Succeeded + r.Failed
}

// Notifier defines the interface for delivering migration reports.
type Notifier interface {
	SendReport(ctx context.Context, report *Report) error
}
