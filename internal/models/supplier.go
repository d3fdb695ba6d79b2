package models

// DocumentStatus is the validity state of a supplier document.
type DocumentStatus string

const (
	DocumentValid    DocumentStatus = "valid"
	DocumentExpiring DocumentStatus = "expiring"
	DocumentExpired  DocumentStatus = "expired"
)

// SupplierDocument is a compliance document held for a supplier (insurance, accreditation, ...).
type SupplierDocument struct {
	ID         string         `bson:"id" json:"id"`
	Name       string         `bson:"name" json:"name"`
	Type       string         `bson:"type" json:"type"`
	ExpiryDate Timestamp      `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	Status     DocumentStatus `bson:"status" json:"status"`
}

// Supplier is a workshop, parts, valet or logistics provider.
type Supplier struct {
	ID        string             `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Category  string             `bson:"category" json:"category"`
	Contact   string             `bson:"contact" json:"contact"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Rating    float64            `bson:"rating" json:"rating"`
	Documents []SupplierDocument `bson:"documents,omitempty" json:"documents,omitempty"`
}
