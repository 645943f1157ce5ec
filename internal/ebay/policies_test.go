package ebay_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgoodwin/ebay-listing-migrator/internal/ebay"
	domain "github.com/rgoodwin/ebay-listing-migrator/pkg/types"
)

func TestPolicyResolver_FirstListedPolicyWins(t *testing.T) {
	t.Parallel()

	fake := &fakeDoer{
		handler: func(method, path string, _ any) (string, error) {
			require.Equal(t, "GET", method, "existing policies must not trigger creation")
			switch {
			case strings.HasPrefix(path, "sell/account/v1/fulfillment_policy"):
				assert.Contains(t, path, "marketplace_id=EBAY_US")
				return `{"fulfillmentPolicies":[
					{"fulfillmentPolicyId":"ship-a"},
					{"fulfillmentPolicyId":"ship-b"}]}`, nil
			case strings.HasPrefix(path, "sell/account/v1/payment_policy"):
				return `{"paymentPolicies":[{"paymentPolicyId":"pay-a"}]}`, nil
			case strings.HasPrefix(path, "sell/account/v1/return_policy"):
				return `{"returnPolicies":[{"returnPolicyId":"ret-a"}]}`, nil
			default:
				return "", fmt.Errorf("unexpected call %s %s", method, path)
			}
		},
	}

	resolver := ebay.NewPolicyResolver(fake)

	triple, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyTriple{
		ShippingPolicyID: "ship-a",
		PaymentPolicyID:  "pay-a",
		ReturnPolicyID:   "ret-a",
	}, triple)
}

func TestPolicyResolver_CreatesDefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	fake := &fakeDoer{
		handler: func(method, path string, _ any) (string, error) {
			if method == "GET" {
				switch {
				case strings.HasPrefix(path, "sell/account/v1/fulfillment_policy"):
					return `{"fulfillmentPolicies":[]}`, nil
				case strings.HasPrefix(path, "sell/account/v1/payment_policy"):
					return `{"paymentPolicies":[]}`, nil
				case strings.HasPrefix(path, "sell/account/v1/return_policy"):
					return `{"returnPolicies":[]}`, nil
				}
			}
			if method == "POST" {
				switch path {
				case "sell/account/v1/fulfillment_policy":
					return `{"fulfillmentPolicyId":"ship-new"}`, nil
				case "sell/account/v1/payment_policy":
					return `{"paymentPolicyId":"pay-new"}`, nil
				case "sell/account/v1/return_policy":
					return `{"returnPolicyId":"ret-new"}`, nil
				}
			}
			return "", fmt.Errorf("unexpected call %s %s", method, path)
		},
	}

	resolver := ebay.NewPolicyResolver(fake)

	triple, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, triple.Complete())
	assert.Equal(t, "ship-new", triple.ShippingPolicyID)
	assert.Equal(t, "pay-new", triple.PaymentPolicyID)
	assert.Equal(t, "ret-new", triple.ReturnPolicyID)

	// One list and one create per policy type.
	assert.Len(t, fake.calls, 6)
}

func TestPolicyResolver_CachesTriple(t *testing.T) {
	t.Parallel()

	fake := &fakeDoer{
		handler: func(method, path string, _ any) (string, error) {
			switch {
			case strings.HasPrefix(path, "sell/account/v1/fulfillment_policy"):
				return `{"fulfillmentPolicies":[{"fulfillmentPolicyId":"ship-1"}]}`, nil
			case strings.HasPrefix(path, "sell/account/v1/payment_policy"):
				return `{"paymentPolicies":[{"paymentPolicyId":"pay-1"}]}`, nil
			case strings.HasPrefix(path, "sell/account/v1/return_policy"):
				return `{"returnPolicies":[{"returnPolicyId":"ret-1"}]}`, nil
			default:
				return "", fmt.Errorf("unexpected call %s %s", method, path)
			}
		},
	}

	resolver := ebay.NewPolicyResolver(fake)

	first, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	callsAfterFirst := len(fake.calls)

	second, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, fake.calls, callsAfterFirst, "cached resolve must not call the API")
}

func TestPolicyResolver_ListFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeDoer{
		handler: func(_, _ string, _ any) (string, error) {
			return "", &ebay.APIError{StatusCode: 500, Body: "unavailable"}
		},
	}

	resolver := ebay.NewPolicyResolver(fake)

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving policies")

	var apiErr *ebay.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestPolicyResolver_CustomTemplate(t *testing.T) {
	t.Parallel()

	var createdShipping any

	fake := &fakeDoer{}
	fake.handler = func(method, path string, body any) (string, error) {
		if method == "GET" {
			switch {
			case strings.HasPrefix(path, "sell/account/v1/fulfillment_policy"):
				return `{"fulfillmentPolicies":[]}`, nil
			case strings.HasPrefix(path, "sell/account/v1/payment_policy"):
				return `{"paymentPolicies":[{"paymentPolicyId":"pay-1"}]}`, nil
			case strings.HasPrefix(path, "sell/account/v1/return_policy"):
				return `{"returnPolicies":[{"returnPolicyId":"ret-1"}]}`, nil
			}
		}
		if method == "POST" && path == "sell/account/v1/fulfillment_policy" {
			createdShipping = body
			return `{"fulfillmentPolicyId":"ship-custom"}`, nil
		}
		return "", fmt.Errorf("unexpected call %s %s", method, path)
	}

	template := ebay.DefaultPolicyTemplate()
	template.ShippingName = "Expedited Shipping"
	template.ShippingCost = domain.Price{Value: "9.99", Currency: "USD"}

	resolver := ebay.NewPolicyResolver(fake, ebay.WithPolicyTemplate(template))

	triple, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ship-custom", triple.ShippingPolicyID)

	payload := fmt.Sprintf("%+v", createdShipping)
	assert.Contains(t, payload, "Expedited Shipping")
	assert.Contains(t, payload, "9.99")
}
