package ebay

// Wire types for the eBay Sell Inventory and Account APIs. Aspects are kept
// as a flat string map, matching what the automation writes.

type shipToLocationAvailability struct {
	Quantity int `json:"quantity"`
}

type availability struct {
	ShipToLocationAvailability shipToLocationAvailability `json:"shipToLocationAvailability"`
}

type product struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Aspects     map[string]string `json:"aspects,omitempty"`
	ImageURLs   []string          `json:"imageUrls,omitempty"`
}

type inventoryItem struct {
	SKU          string       `json:"sku,omitempty"`
	Condition    string       `json:"condition"`
	Availability availability `json:"availability"`
	Product      product      `json:"product"`
}

type inventoryItemsResponse struct {
	InventoryItems []inventoryItem `json:"inventoryItems"`
	Total          int             `json:"total"`
	Limit          int             `json:"limit"`
	Offset         int             `json:"offset"`
}

type listingPolicies struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
	PaymentPolicyID     string `json:"paymentPolicyId"`
	ReturnPolicyID      string `json:"returnPolicyId"`
}

type wirePrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type pricingSummary struct {
	Price wirePrice `json:"price"`
}

type offerDetail struct {
	OfferID            string          `json:"offerId,omitempty"`
	SKU                string          `json:"sku,omitempty"`
	ListingID          string          `json:"listingId,omitempty"`
	MarketplaceID      string          `json:"marketplaceId,omitempty"`
	Format             string          `json:"format,omitempty"`
	AvailableQuantity  int             `json:"availableQuantity"`
	CategoryID         string          `json:"categoryId,omitempty"`
	ListingDescription string          `json:"listingDescription,omitempty"`
	ListingPolicies    listingPolicies `json:"listingPolicies"`
	PricingSummary     pricingSummary  `json:"pricingSummary"`
	Status             string          `json:"status,omitempty"`
}

type offersResponse struct {
	Offers []offerDetail `json:"offers"`
}

type createOfferResponse struct {
	OfferID string `json:"offerId"`
}

type publishOfferRequest struct {
	OfferID string `json:"offerId"`
}

type publishOfferResponse struct {
	ListingID string `json:"listingId"`
}

// Account API policy wire types.

type categoryType struct {
	Name string `json:"name"`
}

type shippingService struct {
	SortOrder           int       `json:"sortOrder"`
	ShippingCarrierCode string    `json:"shippingCarrierCode"`
	ShippingServiceCode string    `json:"shippingServiceCode"`
	ShippingCost        wirePrice `json:"shippingCost"`
}

type shippingOption struct {
	OptionType       string            `json:"optionType"`
	CostType         string            `json:"costType"`
	ShippingServices []shippingService `json:"shippingServices"`
}

type fulfillmentPolicyPayload struct {
	Name            string           `json:"name"`
	MarketplaceID   string           `json:"marketplaceId"`
	CategoryTypes   []categoryType   `json:"categoryTypes"`
	ShippingOptions []shippingOption `json:"shippingOptions"`
}

type fulfillmentPolicyRef struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
}

type fulfillmentPoliciesResponse struct {
	FulfillmentPolicies []fulfillmentPolicyRef `json:"fulfillmentPolicies"`
}

type paymentMethod struct {
	PaymentMethodType string `json:"paymentMethodType"`
}

type paymentPolicyPayload struct {
	Name           string          `json:"name"`
	MarketplaceID  string          `json:"marketplaceId"`
	CategoryTypes  []categoryType  `json:"categoryTypes"`
	PaymentMethods []paymentMethod `json:"paymentMethods"`
}

type paymentPolicyRef struct {
	PaymentPolicyID string `json:"paymentPolicyId"`
}

type paymentPoliciesResponse struct {
	PaymentPolicies []paymentPolicyRef `json:"paymentPolicies"`
}

type returnPeriod struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

type returnPolicyPayload struct {
	Name                    string         `json:"name"`
	MarketplaceID           string         `json:"marketplaceId"`
	CategoryTypes           []categoryType `json:"categoryTypes"`
	ReturnsAccepted         bool           `json:"returnsAccepted"`
	ReturnPeriod            returnPeriod   `json:"returnPeriod"`
	ReturnMethod            string         `json:"returnMethod"`
	ReturnShippingCostPayer string         `json:"returnShippingCostPayer"`
}

type returnPolicyRef struct {
	ReturnPolicyID string `json:"returnPolicyId"`
}

type returnPoliciesResponse struct {
	ReturnPolicies []returnPolicyRef `json:"returnPolicies"`
}
