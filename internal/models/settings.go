package models

// Settings is the flat user preference object persisted as "fleetSettings".
type Settings struct {
	// Notification toggles
	EmailAlerts          bool `bson:"email_alerts" json:"emailAlerts"`
	ServiceDelayAlerts   bool `bson:"service_delay_alerts" json:"serviceDelayAlerts"`
	ContractExpiryAlerts bool `bson:"contract_expiry_alerts" json:"contractExpiryAlerts"`
	RiskAlerts           bool `bson:"risk_alerts" json:"riskAlerts"`
	PenaltyAlerts        bool `bson:"penalty_alerts" json:"penaltyAlerts"`
	BreachAlerts         bool `bson:"breach_alerts" json:"breachAlerts"`
	DocumentExpiryAlerts bool `bson:"document_expiry_alerts" json:"documentExpiryAlerts"`

	// Thresholds
	WorkshopDelayHours int `bson:"workshop_delay_hours" json:"workshopDelayHours"`
	PartsDelayHours    int `bson:"parts_delay_hours" json:"partsDelayHours"`
	ContractExpiryDays int `bson:"contract_expiry_days" json:"contractExpiryDays"`
	DocumentExpiryDays int `bson:"document_expiry_days" json:"documentExpiryDays"`
	BottleneckHours    int `bson:"bottleneck_hours" json:"bottleneckHours"`

	// Display
	ItemsPerPage int    `bson:"items_per_page" json:"itemsPerPage"`
	DateFormat   string `bson:"date_format" json:"dateFormat"` // "short" or "long"

	// Export
	DefaultExportFormat string `bson:"default_export_format" json:"defaultExportFormat"` // "csv" or "pdf"
	IncludeVORDetails   bool   `bson:"include_vor_details" json:"includeVorDetails"`
}
