package models

// Invoice represents a supplier invoice raised against the fleet.
type Invoice struct {
	ID         string    `bson:"_id" json:"id"`
	Number     string    `bson:"number" json:"number"`
	SupplierID string    `bson:"supplier_id" json:"supplierId"`
	VehicleID  string    `bson:"vehicle_id,omitempty" json:"vehicleId,omitempty"`
	IssuedAt   Timestamp `bson:"issued_at" json:"issuedAt"`
	DueAt      Timestamp `bson:"due_at" json:"dueAt"`
	Amount     float64   `bson:"amount" json:"amount"` // in GBP
	Status     string    `bson:"status" json:"status"` // "draft", "pending", "paid", "overdue", "disputed"
}

// PurchaseOrder is an order raised with a supplier.
type PurchaseOrder struct {
	ID          string    `bson:"_id" json:"id"`
	Number      string    `bson:"number" json:"number"`
	SupplierID  string    `bson:"supplier_id" json:"supplierId"`
	VehicleID   string    `bson:"vehicle_id,omitempty" json:"vehicleId,omitempty"`
	Description string    `bson:"description" json:"description"`
	RaisedAt    Timestamp `bson:"raised_at" json:"raisedAt"`
	Amount      float64   `bson:"amount" json:"amount"` // in GBP
	Status      string    `bson:"status" json:"status"` // "open", "approved", "received", "cancelled"
}

// Buyback is a manufacturer or partner buyback commitment for a vehicle.
type Buyback struct {
	ID           string    `bson:"_id" json:"id"`
	VehicleID    string    `bson:"vehicle_id" json:"vehicleId"`
	Partner      string    `bson:"partner" json:"partner"`
	AgreedPrice  float64   `bson:"agreed_price" json:"agreedPrice"` // in GBP
	ReturnBy     Timestamp `bson:"return_by" json:"returnBy"`
	MileageLimit int       `bson:"mileage_limit" json:"mileageLimit"`
	Status       string    `bson:"status" json:"status"` // "active", "due", "completed"
}
