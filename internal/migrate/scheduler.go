package migrate

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler runs migrations on a fixed interval.
type Scheduler struct {
	cron     *cron.Cron
	migrator *Migrator
	log      *log.Logger
}

// NewScheduler creates a Scheduler that runs the migrator every interval.
func NewScheduler(
	m *Migrator,
	interval time.Duration,
	logger *log.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:     c,
		migrator: m,
		log:      logger,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.runMigration); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled migrations.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running migration to
// finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runMigration() {
	ctx := context.Background()
	s.log.Info("scheduled migration starting")
	if _, err := s.migrator.Run(ctx); err != nil {
		s.log.Error("scheduled migration failed", "error", err)
	}
}
