package ebay

import (
	domain "github.com/rgoodwin/ebay-listing-migrator/pkg/types"
)

// toInventoryItem builds the inventory item record for an offer: the
// product-facing half keyed by SKU.
func toInventoryItem(o *domain.Offer) inventoryItem {
	return inventoryItem{
		Condition: o.ConditionID,
		Availability: availability{
			ShipToLocationAvailability: shipToLocationAvailability{
				Quantity: o.Quantity,
			},
		},
		Product: product{
			Title:       o.Title,
			Description: o.Description,
			Aspects:     o.ItemSpecifics,
			ImageURLs:   o.ImageURLs,
		},
	}
}

// toOfferDetail builds the offer record referencing sku: the commercial
// half with pricing and the three policy IDs.
func toOfferDetail(o *domain.Offer, sku, marketplace string) offerDetail {
	return offerDetail{
		SKU:               sku,
		MarketplaceID:     marketplace,
		Format:            string(o.ListingFormat),
		AvailableQuantity: o.Quantity,
		CategoryID:        o.CategoryID,
		ListingPolicies: listingPolicies{
			FulfillmentPolicyID: o.ShippingPolicyID,
			PaymentPolicyID:     o.PaymentPolicyID,
			ReturnPolicyID:      o.ReturnPolicyID,
		},
		PricingSummary: pricingSummary{
			Price: wirePrice{
				Value:    o.Price.Value,
				Currency: o.Price.Currency,
			},
		},
		ListingDescription: o.Description,
	}
}

// mergeOffer reconstructs a full domain offer by merging offer-level fields
// (pricing, policies, quantity, category) with inventory-level fields
// (title, specifics, images, condition).
func mergeOffer(od *offerDetail, item *inventoryItem) domain.Offer {
	return domain.Offer{
		ListingID:   od.ListingID,
		SKU:         od.SKU,
		Title:       item.Product.Title,
		Description: od.ListingDescription,
		Price: domain.Price{
			Value:    od.PricingSummary.Price.Value,
			Currency: od.PricingSummary.Price.Currency,
		},
		Quantity:         od.AvailableQuantity,
		ConditionID:      item.Condition,
		CategoryID:       od.CategoryID,
		ImageURLs:        item.Product.ImageURLs,
		ItemSpecifics:    item.Product.Aspects,
		ShippingPolicyID: od.ListingPolicies.FulfillmentPolicyID,
		PaymentPolicyID:  od.ListingPolicies.PaymentPolicyID,
		ReturnPolicyID:   od.ListingPolicies.ReturnPolicyID,
		ListingFormat:    domain.ListingFormat(od.Format),
	}
}
