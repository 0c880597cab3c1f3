package types

// StoreSnapshot captures the seller storefront details at order time.
type StoreSnapshot struct {
	StoreID string  `json:"store_id"`
	Name    string  `json:"name"`
	Phone   *string `json:"phone,omitempty"`
	Area    *string `json:"area,omitempty"`
}
