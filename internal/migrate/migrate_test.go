package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgoodwin/ebay-listing-migrator/internal/ebay"
	"github.com/rgoodwin/ebay-listing-migrator/internal/notify"
	domain "github.com/rgoodwin/ebay-listing-migrator/pkg/types"
)

type fakeAuth struct {
	err   error
	calls int
}

func (f *fakeAuth) Token(_ context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "token", nil
}

type fakeSource struct {
	offers []domain.Offer
	err    error

	gotPageSize int
}

func (f *fakeSource) GetActiveOffers(
	_ context.Context,
	pageSize, _ int,
) ([]domain.Offer, error) {
	f.gotPageSize = pageSize
	return f.offers, f.err
}

type fakeSink struct {
	created   []domain.Offer
	failTitle string
}

func (f *fakeSink) CreateOffer(_ context.Context, offer *domain.Offer) (string, error) {
	if offer.Title == f.failTitle {
		return "", errors.New("create rejected")
	}
	f.created = append(f.created, *offer)
	return fmt.Sprintf("new-%d", len(f.created)), nil
}

type fakePolicies struct {
	triple domain.PolicyTriple
	err    error
	calls  int
}

func (f *fakePolicies) Resolve(_ context.Context) (domain.PolicyTriple, error) {
	f.calls++
	return f.triple, f.err
}

type recordingNotifier struct {
	report *notify.Report
}

func (r *recordingNotifier) SendReport(_ context.Context, report *notify.Report) error {
	r.report = report
	return nil
}

type migratorFixture struct {
	migrator   *Migrator
	sourceAuth *fakeAuth
	targetAuth *fakeAuth
	source     *fakeSource
	target     *fakeSink
	policies   *fakePolicies
	notifier   *recordingNotifier
	sleeps     *[]time.Duration
}

func sourceOffers(titles ...string) []domain.Offer {
	offers := make([]domain.Offer, 0, len(titles))
	for i, title := range titles {
		offers = append(offers, domain.Offer{
			ListingID:        fmt.Sprintf("src-%d", i+1),
			SKU:              fmt.Sprintf("sku-%d", i+1),
			Title:            title,
			Price:            domain.Price{Value: "10.00", Currency: "USD"},
			Quantity:         1,
			ShippingPolicyID: "src-ship",
			PaymentPolicyID:  "src-pay",
			ReturnPolicyID:   "src-ret",
		})
	}
	return offers
}

func newFixture(offers []domain.Offer) *migratorFixture {
	f := &migratorFixture{
		sourceAuth: &fakeAuth{},
		targetAuth: &fakeAuth{},
		source:     &fakeSource{offers: offers},
		target:     &fakeSink{},
		policies: &fakePolicies{triple: domain.PolicyTriple{
			ShippingPolicyID: "tgt-ship",
			PaymentPolicyID:  "tgt-pay",
			ReturnPolicyID:   "tgt-ret",
		}},
		notifier: &recordingNotifier{},
		sleeps:   &[]time.Duration{},
	}

	f.migrator = &Migrator{
		sourceEnv:  ebay.Production,
		targetEnv:  ebay.Sandbox,
		sourceAuth: f.sourceAuth,
		targetAuth: f.targetAuth,
		source:     f.source,
		target:     f.target,
		policies:   f.policies,
		notifier:   f.notifier,
		log:        log.New(io.Discard),
		pageSize:   defaultPageSize,
		delay:      defaultDelay,
		sleep: func(_ context.Context, d time.Duration) error {
			*f.sleeps = append(*f.sleeps, d)
			return nil
		},
	}

	return f
}

func TestMigrator_Run(t *testing.T) {
	t.Parallel()

	f := newFixture(sourceOffers("Camera", "Lens", "Tripod"))

	outcome, err := f.migrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, outcome.Succeeded)
	assert.Equal(t, 0, outcome.Failed)
	assert.Equal(t, len(f.source.offers), outcome.Total())

	// Every created offer carries the target's policies and no source
	// identifiers.
	require.Len(t, f.target.created, 3)
	for _, created := range f.target.created {
		assert.Empty(t, created.ListingID)
		assert.Empty(t, created.SKU)
		assert.Equal(t, "tgt-ship", created.ShippingPolicyID)
		assert.Equal(t, "tgt-pay", created.PaymentPolicyID)
		assert.Equal(t, "tgt-ret", created.ReturnPolicyID)
	}

	// One pause between each pair of listings.
	assert.Len(t, *f.sleeps, 2)
	assert.Equal(t, defaultDelay, (*f.sleeps)[0])
}

func TestMigrator_Run_ZeroListings(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)

	outcome, err := f.migrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.Succeeded)
	assert.Equal(t, 0, outcome.Failed)
	assert.Empty(t, f.target.created)
	assert.Empty(t, *f.sleeps)

	require.NotNil(t, f.notifier.report)
	assert.False(t, f.notifier.report.OrphanWarning)
}

func TestMigrator_Run_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(sourceOffers("Camera", "Lens", "Tripod"))
	f.target.failTitle = "Lens"

	outcome, err := f.migrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Succeeded)
	assert.Equal(t, 1, outcome.Failed)
	assert.Equal(t, 3, outcome.Total())

	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Lens", outcome.Errors[0].Title)
	assert.Equal(t, "src-2", outcome.Errors[0].ListingID)

	// The failure is surfaced in the report as a possible orphan.
	require.NotNil(t, f.notifier.report)
	assert.True(t, f.notifier.report.OrphanWarning)
	assert.Len(t, f.notifier.report.Errors, 1)
}

func TestMigrator_Run_AbortsOnAuthFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fail func(f *migratorFixture)
		env  string
	}{
		{
			name: "source auth fails",
			fail: func(f *migratorFixture) { f.sourceAuth.err = errors.New("bad credentials") },
			env:  "production",
		},
		{
			name: "target auth fails",
			fail: func(f *migratorFixture) { f.targetAuth.err = errors.New("bad credentials") },
			env:  "sandbox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(sourceOffers("Camera"))
			tt.fail(f)

			_, err := f.migrator.Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMigrationAborted)
			assert.Contains(t, err.Error(), tt.env)

			// Nothing is read or written after an auth failure.
			assert.Empty(t, f.target.created)
			assert.Zero(t, f.source.gotPageSize)
		})
	}
}

func TestMigrator_Run_AbortsOnEnumerationFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	f.source.err = errors.New("listing unavailable")

	_, err := f.migrator.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationAborted)
	assert.Empty(t, f.target.created)
}

func TestMigrator_Run_StopsOnContextCancellation(t *testing.T) {
	t.Parallel()

	f := newFixture(sourceOffers("Camera", "Lens", "Tripod"))

	ctx, cancel := context.WithCancel(context.Background())
	f.migrator.sleep = func(ctx context.Context, _ time.Duration) error {
		// Cancel during the pause after the first listing.
		cancel()
		return ctx.Err()
	}

	outcome, err := f.migrator.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	require.NotNil(t, outcome)
	assert.Equal(t, 1, outcome.Succeeded)
	assert.Len(t, f.target.created, 1)
}

func TestMigrator_Run_PolicyResolutionFailureCountsPerListing(t *testing.T) {
	t.Parallel()

	f := newFixture(sourceOffers("Camera", "Lens"))
	f.policies.err = errors.New("account unavailable")

	outcome, err := f.migrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.Succeeded)
	assert.Equal(t, 2, outcome.Failed)
	assert.Empty(t, f.target.created)
}

func TestMigrator_Run_SourceOffersUnchanged(t *testing.T) {
	t.Parallel()

	offers := sourceOffers("Camera")
	f := newFixture(offers)

	_, err := f.migrator.Run(context.Background())
	require.NoError(t, err)

	// The source slice must not be mutated by target-side rewrites.
	assert.Equal(t, "src-1", f.source.offers[0].ListingID)
	assert.Equal(t, "src-ship", f.source.offers[0].ShippingPolicyID)
}

func TestMigrator_Options(t *testing.T) {
	t.Parallel()

	f := newFixture(sourceOffers("Camera", "Lens"))
	WithPageSize(25)(f.migrator)
	WithInterItemDelay(50 * time.Millisecond)(f.migrator)

	_, err := f.migrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 25, f.source.gotPageSize)
	require.Len(t, *f.sleeps, 1)
	assert.Equal(t, 50*time.Millisecond, (*f.sleeps)[0])
}

func TestSleepCtx(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately for zero duration", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, sleepCtx(context.Background(), 0))
	})

	t.Run("honors cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := sleepCtx(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
