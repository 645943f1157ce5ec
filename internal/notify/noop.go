package notify

import (
	"context"

	"github.com/charmbracelet/log"
)

// NoOpNotifier implements Notifier by logging discarded reports. It is used
// when Discord (or another notification backend) is not configured.
type NoOpNotifier struct {
	log *log.Logger
}

// NewNoOpNotifier creates a notifier that discards reports with a log
// message.
func NewNoOpNotifier(logger *log.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: logger}
}

// SendReport logs and discards a migration report.
func (n *NoOpNotifier) SendReport(_ context.Context, report *Report) error {
	n.log.Debug("migration report discarded (no backend configured)",
		"source", report.Source,
		"target", report.Target,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
	)
	return nil
}
