package models

import (
	"strings"
	"time"
)

// AvailabilityStatus is the operational status recorded on a vehicle.
type AvailabilityStatus string

const (
	StatusAvailable     AvailabilityStatus = "Available"
	StatusOnHire        AvailabilityStatus = "On Hire"
	StatusReserved      AvailabilityStatus = "Reserved"
	StatusInWorkshop    AvailabilityStatus = "In Workshop"
	StatusAwaitingParts AvailabilityStatus = "Awaiting Parts"
	StatusAtValet       AvailabilityStatus = "At Valet"
	StatusInTransit     AvailabilityStatus = "In Transit"
)

// IsOffRoad reports whether the status takes the vehicle out of the rentable pool.
func (s AvailabilityStatus) IsOffRoad() bool {
	switch s {
	case StatusInWorkshop, StatusAwaitingParts, StatusAtValet:
		return true
	default:
		return false
	}
}

// RentalStatus is derived from agreements, never stored.
type RentalStatus string

const (
	RentalAvailable RentalStatus = "available"
	RentalOnHire    RentalStatus = "on-hire"
	RentalReserved  RentalStatus = "reserved"
)

// RiskLevel grades a vehicle's operational risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// VehicleIDPrefix is the prefix of the canonical vehicle id form.
const VehicleIDPrefix = "BYD-"

// NormalizeVehicleID returns the canonical "BYD-" prefixed form of a vehicle id.
// Agreements imported from older sheets often carry the bare number.
func NormalizeVehicleID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToUpper(id), VehicleIDPrefix) {
		return VehicleIDPrefix + id[len(VehicleIDPrefix):]
	}
	return VehicleIDPrefix + id
}

// StageTimestamps records when a vehicle entered each service stage. Unset stages are empty.
type StageTimestamps struct {
	ReturnedAt        Timestamp `bson:"returned_at,omitempty" json:"returnedAt,omitempty"`
	InspectedAt       Timestamp `bson:"inspected_at,omitempty" json:"inspectedAt,omitempty"`
	WorkshopInAt      Timestamp `bson:"workshop_in_at,omitempty" json:"workshopInAt,omitempty"`
	PartsRequestedAt  Timestamp `bson:"parts_requested_at,omitempty" json:"partsRequestedAt,omitempty"`
	PartsArrivedAt    Timestamp `bson:"parts_arrived_at,omitempty" json:"partsArrivedAt,omitempty"`
	RepairCompletedAt Timestamp `bson:"repair_completed_at,omitempty" json:"repairCompletedAt,omitempty"`
	ValetAt           Timestamp `bson:"valet_at,omitempty" json:"valetAt,omitempty"`
	ReadyAt           Timestamp `bson:"ready_at,omitempty" json:"readyAt,omitempty"`
}

// StageEntry is one named stage instant.
type StageEntry struct {
	Name string
	At   time.Time
}

// Entries lists the recorded, parseable stages in progression order.
func (s StageTimestamps) Entries() []StageEntry {
	named := []struct {
		name string
		ts   Timestamp
	}{
		{"Returned", s.ReturnedAt},
		{"Inspected", s.InspectedAt},
		{"In Workshop", s.WorkshopInAt},
		{"Parts Requested", s.PartsRequestedAt},
		{"Parts Arrived", s.PartsArrivedAt},
		{"Repair Completed", s.RepairCompletedAt},
		{"Valet", s.ValetAt},
		{"Ready", s.ReadyAt},
	}
	entries := make([]StageEntry, 0, len(named))
	for _, n := range named {
		if at, ok := n.ts.Valid(); ok {
			entries = append(entries, StageEntry{Name: n.name, At: at})
		}
	}
	return entries
}

// Health is the latest diagnostic summary for a vehicle.
type Health struct {
	Score      int       `bson:"score" json:"score"`
	BatteryPct float64   `bson:"battery_pct" json:"batteryPct"`
	FaultCodes []string  `bson:"fault_codes,omitempty" json:"faultCodes,omitempty"`
	MOTExpiry  Timestamp `bson:"mot_expiry,omitempty" json:"motExpiry,omitempty"`
}

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID                 string             `bson:"_id" json:"id"`
	VIN                string             `bson:"vin" json:"vin"`
	Registration       string             `bson:"registration" json:"registration"`
	Model              string             `bson:"model" json:"model"`
	Location           string             `bson:"location" json:"location"`
	AvailabilityStatus AvailabilityStatus `bson:"availability_status" json:"availabilityStatus"`
	RentalPartner      string             `bson:"rental_partner" json:"rentalPartner"`
	StageTimestamps    StageTimestamps    `bson:"stage_timestamps" json:"stageTimestamps"`
	Health             Health             `bson:"health" json:"health"`
	RiskLevel          RiskLevel          `bson:"risk_level" json:"riskLevel"`
}

// CurrentStage returns the most recent recorded stage, if any.
func (v Vehicle) CurrentStage() (StageEntry, bool) {
	var latest StageEntry
	found := false
	for _, e := range v.StageTimestamps.Entries() {
		if !found || !e.At.Before(latest.At) {
			latest = e
			found = true
		}
	}
	return latest, found
}
