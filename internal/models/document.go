package models

// Document is a denormalized view over records that carry paperwork.
// It is projected on demand and never stored.
type Document struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Category        string    `json:"category"` // "agreements", "suppliers", "buybacks", "invoices", "purchase-orders"
	RelatedEntityID string    `json:"relatedEntityId"`
	Status          string    `json:"status"`
	Date            Timestamp `json:"date,omitempty"`
	ExpiryDate      Timestamp `json:"expiryDate,omitempty"`
}
