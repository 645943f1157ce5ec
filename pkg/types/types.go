// Package domain defines the core business types for the listing migrator.
package domain

import (
	"fmt"
	"time"
)

// ListingFormat represents the eBay listing format.
type ListingFormat string

// Listing format constants.
const (
	FormatFixedPrice ListingFormat = "FIXED_PRICE"
	FormatAuction    ListingFormat = "AUCTION"
)

// Price is a monetary amount as transmitted on the wire: a decimal-formatted
// string plus an explicit currency code. Never parsed into floating point.
type Price struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// String renders the price for logs and reports.
func (p Price) String() string {
	return p.Value + " " + p.Currency
}

// Offer is the listing abstraction combining inventory (quantity, product
// details) and commercial terms (price, policies). An Offer is
// environment-agnostic as a value, but its three policy IDs are only valid
// within the environment they were resolved against.
type Offer struct {
	// ListingID is assigned by eBay on publish; empty before.
	ListingID string `json:"listing_id,omitempty"`
	// SKU is locally generated and stable for an item's lifetime.
	SKU string `json:"sku,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	Quantity    int    `json:"quantity"`
	ConditionID string `json:"condition_id"`
	CategoryID  string `json:"category_id"`

	ImageURLs     []string          `json:"image_urls,omitempty"`
	ItemSpecifics map[string]string `json:"item_specifics,omitempty"`

	ShippingPolicyID string `json:"shipping_policy_id"`
	PaymentPolicyID  string `json:"payment_policy_id"`
	ReturnPolicyID   string `json:"return_policy_id"`

	ListingFormat ListingFormat `json:"listing_format"`

	ScheduleStart *time.Time `json:"schedule_start,omitempty"`
	ScheduleEnd   *time.Time `json:"schedule_end,omitempty"`
}

// ApplyPolicies overwrites the offer's policy IDs with a triple resolved in
// the environment the offer is about to be filed in. Policy IDs are never
// copied across environments.
func (o *Offer) ApplyPolicies(t PolicyTriple) {
	o.ShippingPolicyID = t.ShippingPolicyID
	o.PaymentPolicyID = t.PaymentPolicyID
	o.ReturnPolicyID = t.ReturnPolicyID
}

// Policies returns the offer's current policy IDs as a triple.
func (o *Offer) Policies() PolicyTriple {
	return PolicyTriple{
		ShippingPolicyID: o.ShippingPolicyID,
		PaymentPolicyID:  o.PaymentPolicyID,
		ReturnPolicyID:   o.ReturnPolicyID,
	}
}

// PolicyTriple holds the three account policy IDs required to publish an
// offer. A triple is scoped to exactly one environment.
type PolicyTriple struct {
	ShippingPolicyID string `json:"shipping_policy_id"`
	PaymentPolicyID  string `json:"payment_policy_id"`
	ReturnPolicyID   string `json:"return_policy_id"`
}

// Complete reports whether all three policy IDs are set.
func (t PolicyTriple) Complete() bool {
	return t.ShippingPolicyID != "" && t.PaymentPolicyID != "" && t.ReturnPolicyID != ""
}

// ItemError records a single listing that failed to migrate.
type ItemError struct {
	Title     string
	ListingID string
	Err       error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("migrating %q (listing %s): %v", e.Title, e.ListingID, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e ItemError) Unwrap() error {
	return e.Err
}

// MigrationOutcome aggregates per-item results for one migration run.
// It exists only for the duration of the run and is not persisted.
type MigrationOutcome struct {
	Succeeded int
	Failed    int
	Errors    []ItemError
}

// Total returns the number of listings processed.
func (o *MigrationOutcome) Total() int {
	return o.Succeeded + o.Failed
}
