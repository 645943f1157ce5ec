package ebay

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	domain "github.com/rgoodwin/ebay-listing-migrator/pkg/types"
)

const (
	inventoryItemPath = "sell/inventory/v1/inventory_item"
	offerPath         = "sell/inventory/v1/offer"
	publishPath       = "sell/inventory/v1/offer/publish"
	offersByListing   = "sell/inventory/v1/offer/get_offers_by_listing_id"

	statusPublished = "PUBLISHED"
)

// OfferService performs the multi-call offer lifecycle protocol against one
// environment's API client.
type OfferService struct {
	client      Doer
	marketplace string
	newSKU      func() string // for testing
}

// OfferOption configures the OfferService.
type OfferOption func(*OfferService)

// WithOfferMarketplace overrides the default marketplace.
func WithOfferMarketplace(m string) OfferOption {
	return func(s *OfferService) {
		s.marketplace = m
	}
}

// WithSKUFunc overrides SKU generation for testing.
func WithSKUFunc(f func() string) OfferOption {
	return func(s *OfferService) {
		s.newSKU = f
	}
}

// NewOfferService creates an OfferService over the given client.
func NewOfferService(client Doer, opts ...OfferOption) *OfferService {
	s := &OfferService{
		client:      client,
		marketplace: defaultMarketplace,
		newSKU:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOffer files a new listing: it generates a SKU, writes the inventory
// item, creates the offer referencing it, and publishes. Each step is a
// distinct remote call; a failure at any step aborts the whole creation with
// no compensation of earlier steps, so a mid-sequence failure can leave an
// inventory item without an offer in the target account.
func (s *OfferService) CreateOffer(ctx context.Context, offer *domain.Offer) (string, error) {
	sku := s.newSKU()

	item := toInventoryItem(offer)
	if err := s.client.Put(ctx, inventoryItemPath+"/"+sku, item, nil); err != nil {
		return "", fmt.Errorf("creating inventory item %s: %w", sku, err)
	}

	var created createOfferResponse
	offerData := toOfferDetail(offer, sku, s.marketplace)
	if err := s.client.Post(ctx, offerPath, offerData, &created); err != nil {
		return "", fmt.Errorf("creating offer for sku %s: %w", sku, err)
	}

	var published publishOfferResponse
	publishReq := publishOfferRequest{OfferID: created.OfferID}
	if err := s.client.Post(ctx, publishPath, publishReq, &published); err != nil {
		return "", fmt.Errorf("publishing offer %s: %w", created.OfferID, err)
	}

	return published.ListingID, nil
}

// UpdateOffer rewrites an existing listing's inventory item and offer, then
// re-publishes. Returns false without error when no offer matches the
// listing ID; remote failures propagate as errors.
func (s *OfferService) UpdateOffer(
	ctx context.Context,
	listingID string,
	updated *domain.Offer,
) (bool, error) {
	existing, err := s.findByListingID(ctx, listingID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	item := toInventoryItem(updated)
	if err := s.client.Put(ctx, inventoryItemPath+"/"+existing.SKU, item, nil); err != nil {
		return false, fmt.Errorf("updating inventory item %s: %w", existing.SKU, err)
	}

	offerData := toOfferDetail(updated, existing.SKU, s.marketplace)
	// Offer updates address the offer by ID; sku and marketplace are fixed.
	offerData.SKU = ""
	offerData.MarketplaceID = ""
	if err := s.client.Put(ctx, offerPath+"/"+existing.OfferID, offerData, nil); err != nil {
		return false, fmt.Errorf("updating offer %s: %w", existing.OfferID, err)
	}

	publishReq := publishOfferRequest{OfferID: existing.OfferID}
	if err := s.client.Post(ctx, publishPath, publishReq, nil); err != nil {
		return false, fmt.Errorf("publishing offer %s: %w", existing.OfferID, err)
	}

	return true, nil
}

// DeleteOffer removes the offer and its inventory item. Returns false
// without error when no offer matches the listing ID.
func (s *OfferService) DeleteOffer(ctx context.Context, listingID string) (bool, error) {
	existing, err := s.findByListingID(ctx, listingID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if err := s.client.Delete(ctx, offerPath+"/"+existing.OfferID); err != nil {
		return false, fmt.Errorf("deleting offer %s: %w", existing.OfferID, err)
	}

	if err := s.client.Delete(ctx, inventoryItemPath+"/"+existing.SKU); err != nil {
		return false, fmt.Errorf("deleting inventory item %s: %w", existing.SKU, err)
	}

	return true, nil
}

// GetOffer reconstructs a full offer for the listing ID, merging offer and
// inventory item fields. Returns nil without error when no offer matches.
func (s *OfferService) GetOffer(ctx context.Context, listingID string) (*domain.Offer, error) {
	existing, err := s.findByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	var item inventoryItem
	if err := s.client.Get(ctx, inventoryItemPath+"/"+existing.SKU, &item); err != nil {
		return nil, fmt.Errorf("fetching inventory item %s: %w", existing.SKU, err)
	}

	offer := mergeOffer(existing, &item)
	offer.ListingID = listingID
	return &offer, nil
}

// GetActiveOffers pages through inventory items and returns the published
// offers attached to them. Each inventory item costs one extra offer-lookup
// call, which is acceptable at automation scale.
func (s *OfferService) GetActiveOffers(
	ctx context.Context,
	pageSize, pageNumber int,
) ([]domain.Offer, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}
	offset := (pageNumber - 1) * pageSize

	var items inventoryItemsResponse
	path := inventoryItemPath +
		"?limit=" + strconv.Itoa(pageSize) +
		"&offset=" + strconv.Itoa(offset)
	if err := s.client.Get(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("listing inventory items: %w", err)
	}

	var result []domain.Offer
	for i := range items.InventoryItems {
		item := &items.InventoryItems[i]

		var offers offersResponse
		skuPath := offerPath + "?sku=" + url.QueryEscape(item.SKU)
		if err := s.client.Get(ctx, skuPath, &offers); err != nil {
			return nil, fmt.Errorf("listing offers for sku %s: %w", item.SKU, err)
		}

		for j := range offers.Offers {
			od := &offers.Offers[j]
			if od.Status != statusPublished {
				continue
			}
			merged := mergeOffer(od, item)
			merged.SKU = item.SKU
			result = append(result, merged)
		}
	}

	return result, nil
}

// findByListingID returns the first offer matching the listing ID, or nil
// when none exists.
func (s *OfferService) findByListingID(
	ctx context.Context,
	listingID string,
) (*offerDetail, error) {
	var resp offersResponse
	path := offersByListing + "?listing_id=" + url.QueryEscape(listingID)
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("resolving listing %s: %w", listingID, err)
	}

	if len(resp.Offers) == 0 {
		return nil, nil
	}
	return &resp.Offers[0], nil
}
