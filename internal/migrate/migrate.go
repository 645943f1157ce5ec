package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rgoodwin/ebay-listing-migrator/internal/ebay"
	"github.com/rgoodwin/ebay-listing-migrator/internal/metrics"
	"github.com/rgoodwin/ebay-listing-migrator/internal/notify"
	domain "github.com/rgoodwin/ebay-listing-migrator/pkg/types"
)

// ErrMigrationAborted indicates the run stopped before migrating anything,
// usually because one of the environments failed authentication.
var ErrMigrationAborted = errors.New("migration aborted")

const (
	defaultPageSize = 10
	defaultDelay    = time.Second
)

// The orchestrator depends on narrow interfaces so tests can substitute
// fakes for the full client stacks.
type (
	tokenChecker interface {
		Token(ctx context.Context) (string, error)
	}

	offerSource interface {
		GetActiveOffers(ctx context.Context, pageSize, pageNumber int) ([]domain.Offer, error)
	}

	offerSink interface {
		CreateOffer(ctx context.Context, offer *domain.Offer) (string, error)
	}

	policyResolver interface {
		Resolve(ctx context.Context) (domain.PolicyTriple, error)
	}
)

// Migrator copies active listings from a source environment into a target
// environment, one listing at a time.
type Migrator struct {
	sourceEnv ebay.Environment
	targetEnv ebay.Environment

	sourceAuth tokenChecker
	targetAuth tokenChecker
	source     offerSource
	target     offerSink
	policies   policyResolver
	notifier   notify.Notifier
	log        *log.Logger

	pageSize int
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// MigratorOption configures the Migrator.
type MigratorOption func(*Migrator)

// WithPageSize sets how many source listings one run migrates.
func WithPageSize(n int) MigratorOption {
	return func(m *Migrator) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// WithInterItemDelay sets the pause between migrated listings.
func WithInterItemDelay(d time.Duration) MigratorOption {
	return func(m *Migrator) {
		if d >= 0 {
			m.delay = d
		}
	}
}

// WithNotifier sets the report delivery backend.
func WithNotifier(n notify.Notifier) MigratorOption {
	return func(m *Migrator) {
		m.notifier = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *log.Logger) MigratorOption {
	return func(m *Migrator) {
		m.log = l
	}
}

// WithSleepFunc overrides the inter-item sleep for testing.
func WithSleepFunc(f func(ctx context.Context, d time.Duration) error) MigratorOption {
	return func(m *Migrator) {
		m.sleep = f
	}
}

// NewMigrator creates a Migrator between two environment stacks. The source
// stack is read from, the target stack is written to; the policy resolver
// must belong to the target.
func NewMigrator(source, target *Stack, opts ...MigratorOption) *Migrator {
	m := &Migrator{
		sourceEnv:  source.Env,
		targetEnv:  target.Env,
		sourceAuth: source.Auth,
		targetAuth: target.Auth,
		source:     source.Offers,
		target:     target.Offers,
		policies:   target.Policies,
		notifier:   notify.NewNoOpNotifier(log.Default()),
		log:        log.Default(),
		pageSize:   defaultPageSize,
		delay:      defaultDelay,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes one migration pass. Both environments must authenticate
// before anything is read or written; an auth failure aborts the run with
// nothing migrated. Individual listing failures are counted and the run
// continues with the next listing.
func (m *Migrator) Run(ctx context.Context) (*domain.MigrationOutcome, error) {
	start := time.Now()
	metrics.MigrationRunsTotal.Inc()
	defer func() {
		metrics.MigrationDuration.Observe(time.Since(start).Seconds())
	}()

	m.log.Info("migration starting",
		"source", m.sourceEnv.String(),
		"target", m.targetEnv.String(),
		"page_size", m.pageSize,
	)

	if err := m.checkAuth(ctx); err != nil {
		return nil, err
	}

	offers, err := m.source.GetActiveOffers(ctx, m.pageSize, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating source listings: %w", ErrMigrationAborted, err)
	}

	outcome := &domain.MigrationOutcome{}
	for i := range offers {
		if i > 0 {
			if err := m.sleep(ctx, m.delay); err != nil {
				return outcome, err
			}
		}

		offer := offers[i]
		if err := m.migrateOne(ctx, &offer); err != nil {
			if ctx.Err() != nil {
				return outcome, ctx.Err()
			}
			outcome.Failed++
			outcome.Errors = append(outcome.Errors, domain.ItemError{
				Title:     offer.Title,
				ListingID: offer.ListingID,
				Err:       err,
			})
			metrics.MigrationListingsFailedTotal.Inc()
			m.log.Error("listing migration failed",
				"title", offer.Title,
				"listing_id", offer.ListingID,
				"error", err,
			)
			continue
		}

		outcome.Succeeded++
		metrics.MigrationListingsMigratedTotal.Inc()
	}

	m.log.Info("migration finished",
		"succeeded", outcome.Succeeded,
		"failed", outcome.Failed,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	m.report(ctx, outcome, time.Since(start))
	return outcome, nil
}

// checkAuth validates that both environments can produce an access token.
func (m *Migrator) checkAuth(ctx context.Context) error {
	if _, err := m.sourceAuth.Token(ctx); err != nil {
		return fmt.Errorf("%w: source %s: %w", ErrMigrationAborted, m.sourceEnv, err)
	}
	if _, err := m.targetAuth.Token(ctx); err != nil {
		return fmt.Errorf("%w: target %s: %w", ErrMigrationAborted, m.targetEnv, err)
	}
	return nil
}

// migrateOne recreates a single source listing in the target environment.
// Source identifiers never cross over: the listing ID and SKU are cleared
// and the policy IDs are replaced with the target's resolved triple.
func (m *Migrator) migrateOne(ctx context.Context, offer *domain.Offer) error {
	triple, err := m.policies.Resolve(ctx)
	if err != nil {
		return err
	}

	copied := *offer
	copied.ListingID = ""
	copied.SKU = ""
	copied.ApplyPolicies(triple)

	listingID, err := m.target.CreateOffer(ctx, &copied)
	if err != nil {
		return err
	}

	m.log.Info("listing migrated",
		"title", offer.Title,
		"source_listing_id", offer.ListingID,
		"target_listing_id", listingID,
	)
	return nil
}

func (m *Migrator) report(ctx context.Context, outcome *domain.MigrationOutcome, elapsed time.Duration) {
	report := &notify.Report{
		Source:        m.sourceEnv.String(),
		Target:        m.targetEnv.String(),
		Succeeded:     outcome.Succeeded,
		Failed:        outcome.Failed,
		Duration:      elapsed,
		OrphanWarning: outcome.Failed > 0,
	}
	for _, ie := range outcome.Errors {
		report.Errors = append(report.Errors, ie.Error())
	}

	if err := m.notifier.SendReport(ctx, report); err != nil {
		m.log.Error("report delivery failed", "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
