package ebay

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	domain "github.com/rgoodwin/ebay-listing-migrator/pkg/types"
)

const (
	fulfillmentPolicyPath = "sell/account/v1/fulfillment_policy"
	paymentPolicyPath     = "sell/account/v1/payment_policy"
	returnPolicyPath      = "sell/account/v1/return_policy"

	allCategories = "ALL_EXCLUDING_MOTORS_VEHICLES"
)

// PolicyTemplate defines the account policies created when an environment
// has none. It is injected into the resolver so tests and deployments can
// substitute alternate defaults.
type PolicyTemplate struct {
	ShippingName    string
	ShippingCarrier string
	ShippingService string
	ShippingCost    domain.Price

	PaymentName   string
	PaymentMethod string

	ReturnName       string
	ReturnPeriodDays int
	ReturnMethod     string
	ReturnCostPayer  string
}

// DefaultPolicyTemplate returns the built-in defaults: flat-rate domestic
// USPS Priority shipping, PayPal payment, and a 30-day replace-or-refund
// return with the seller paying return shipping.
func DefaultPolicyTemplate() PolicyTemplate {
	return PolicyTemplate{
		ShippingName:    "Default Shipping Policy",
		ShippingCarrier: "USPS",
		ShippingService: "USPSPriority",
		ShippingCost:    domain.Price{Value: "4.99", Currency: "USD"},

		PaymentName:   "Default Payment Policy",
		PaymentMethod: "PAYPAL",

		ReturnName:       "Default Return Policy",
		ReturnPeriodDays: 30,
		ReturnMethod:     "REPLACEMENT_OR_MONEY_BACK",
		ReturnCostPayer:  "SELLER",
	}
}

// PolicyResolver finds or creates the shipping, payment, and return policies
// needed to file a listing in one environment. For each type the first
// listed policy wins; when none exists a default from the template is
// created. The resolved triple is cached so a migration run resolves
// policies exactly once and reuses them for every listing.
//
// Resolution does not attempt to match any source listing's policy
// semantics; it only guarantees the environment has a publishable policy
// set.
type PolicyResolver struct {
	client      Doer
	marketplace string
	template    PolicyTemplate

	mu     sync.Mutex
	cached *domain.PolicyTriple
}

// PolicyOption configures the PolicyResolver.
type PolicyOption func(*PolicyResolver)

// WithPolicyMarketplace overrides the default marketplace.
func WithPolicyMarketplace(m string) PolicyOption {
	return func(r *PolicyResolver) {
		r.marketplace = m
	}
}

// WithPolicyTemplate overrides the default policy definitions.
func WithPolicyTemplate(t PolicyTemplate) PolicyOption {
	return func(r *PolicyResolver) {
		r.template = t
	}
}

// NewPolicyResolver creates a resolver over the given client.
func NewPolicyResolver(client Doer, opts ...PolicyOption) *PolicyResolver {
	r := &PolicyResolver{
		client:      client,
		marketplace: defaultMarketplace,
		template:    DefaultPolicyTemplate(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the environment's policy triple, resolving on first call
// and serving the cached triple afterwards.
func (r *PolicyResolver) Resolve(ctx context.Context) (domain.PolicyTriple, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return *r.cached, nil
	}

	triple, err := r.resolve(ctx)
	if err != nil {
		return domain.PolicyTriple{}, fmt.Errorf("resolving policies: %w", err)
	}

	r.cached = &triple
	return triple, nil
}

func (r *PolicyResolver) resolve(ctx context.Context) (domain.PolicyTriple, error) {
	var triple domain.PolicyTriple
	var err error

	if triple.ShippingPolicyID, err = r.resolveShipping(ctx); err != nil {
		return triple, err
	}
	if triple.PaymentPolicyID, err = r.resolvePayment(ctx); err != nil {
		return triple, err
	}
	if triple.ReturnPolicyID, err = r.resolveReturn(ctx); err != nil {
		return triple, err
	}
	return triple, nil
}

func (r *PolicyResolver) resolveShipping(ctx context.Context) (string, error) {
	var listed fulfillmentPoliciesResponse
	if err := r.client.Get(ctx, r.listPath(fulfillmentPolicyPath), &listed); err != nil {
		return "", fmt.Errorf("listing fulfillment policies: %w", err)
	}
	if len(listed.FulfillmentPolicies) > 0 {
		return listed.FulfillmentPolicies[0].FulfillmentPolicyID, nil
	}

	payload := fulfillmentPolicyPayload{
		Name:          r.template.ShippingName,
		MarketplaceID: r.marketplace,
		CategoryTypes: []categoryType{{Name: allCategories}},
		ShippingOptions: []shippingOption{{
			OptionType: "DOMESTIC",
			CostType:   "FLAT_RATE",
			ShippingServices: []shippingService{{
				SortOrder:           1,
				ShippingCarrierCode: r.template.ShippingCarrier,
				ShippingServiceCode: r.template.ShippingService,
				ShippingCost: wirePrice{
					Value:    r.template.ShippingCost.Value,
					Currency: r.template.ShippingCost.Currency,
				},
			}},
		}},
	}

	var created fulfillmentPolicyRef
	if err := r.client.Post(ctx, fulfillmentPolicyPath, payload, &created); err != nil {
		return "", fmt.Errorf("creating default fulfillment policy: %w", err)
	}
	return created.FulfillmentPolicyID, nil
}

func (r *PolicyResolver) resolvePayment(ctx context.Context) (string, error) {
	var listed paymentPoliciesResponse
	if err := r.client.Get(ctx, r.listPath(paymentPolicyPath), &listed); err != nil {
		return "", fmt.Errorf("listing payment policies: %w", err)
	}
	if len(listed.PaymentPolicies) > 0 {
		return listed.PaymentPolicies[0].PaymentPolicyID, nil
	}

	payload := paymentPolicyPayload{
		Name:           r.template.PaymentName,
		MarketplaceID:  r.marketplace,
		CategoryTypes:  []categoryType{{Name: allCategories}},
		PaymentMethods: []paymentMethod{{PaymentMethodType: r.template.PaymentMethod}},
	}

	var created paymentPolicyRef
	if err := r.client.Post(ctx, paymentPolicyPath, payload, &created); err != nil {
		return "", fmt.Errorf("creating default payment policy: %w", err)
	}
	return created.PaymentPolicyID, nil
}

func (r *PolicyResolver) resolveReturn(ctx context.Context) (string, error) {
	var listed returnPoliciesResponse
	if err := r.client.Get(ctx, r.listPath(returnPolicyPath), &listed); err != nil {
		return "", fmt.Errorf("listing return policies: %w", err)
	}
	if len(listed.ReturnPolicies) > 0 {
		return listed.ReturnPolicies[0].ReturnPolicyID, nil
	}

	payload := returnPolicyPayload{
		Name:            r.template.ReturnName,
		MarketplaceID:   r.marketplace,
		CategoryTypes:   []categoryType{{Name: allCategories}},
		ReturnsAccepted: true,
		ReturnPeriod: returnPeriod{
			Value: r.template.ReturnPeriodDays,
			Unit:  "DAY",
		},
		ReturnMethod:            r.template.ReturnMethod,
		ReturnShippingCostPayer: r.template.ReturnCostPayer,
	}

	var created returnPolicyRef
	if err := r.client.Post(ctx, returnPolicyPath, payload, &created); err != nil {
		return "", fmt.Errorf("creating default return policy: %w", err)
	}
	return created.ReturnPolicyID, nil
}

func (r *PolicyResolver) listPath(base string) string {
	return base + "?marketplace_id=" + url.QueryEscape(r.marketplace)
}
