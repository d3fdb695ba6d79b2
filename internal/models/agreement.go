package models

// Stage is an agreement's position in its lifecycle.
type Stage string

const (
	StageReservationCreated Stage = "Reservation Created"
	StageAgreementSigned    Stage = "Agreement Signed"
	StageVehicleCollected   Stage = "Vehicle Collected"
	StageOnTrack            Stage = "On track"
	StageVehicleReturned    Stage = "Vehicle Returned"
	StageChargesFinalised   Stage = "Charges Finalised"
	StageClosed             Stage = "Closed"
)

// IsTerminal reports whether the stage ends the hire, i.e. the vehicle is no longer out.
func (s Stage) IsTerminal() bool {
	switch s {
	case StageVehicleReturned, StageClosed, StageChargesFinalised:
		return true
	default:
		return false
	}
}

// PenaltyStatus is the settlement state of a penalty.
type PenaltyStatus string

const (
	PenaltyPending PenaltyStatus = "pending"
	PenaltyPaid    PenaltyStatus = "paid"
	PenaltyWaived  PenaltyStatus = "waived"
)

// Penalty is a charge raised against an agreement.
type Penalty struct {
	ID       string        `bson:"id" json:"id"`
	Reason   string        `bson:"reason" json:"reason"`
	Amount   float64       `bson:"amount" json:"amount"` // in GBP
	Status   PenaltyStatus `bson:"status" json:"status"`
	RaisedAt Timestamp     `bson:"raised_at,omitempty" json:"raisedAt,omitempty"`
}

// Severity grades a breach.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Breach is a reported breach of agreement terms.
type Breach struct {
	ID         string    `bson:"id" json:"id"`
	Type       string    `bson:"type" json:"type"`
	Severity   Severity  `bson:"severity" json:"severity"`
	Resolved   bool      `bson:"resolved" json:"resolved"`
	ReportedAt Timestamp `bson:"reported_at,omitempty" json:"reportedAt,omitempty"`
}

// Driver is the named driver on an agreement.
type Driver struct {
	Name    string `bson:"name" json:"name"`
	Licence string `bson:"licence" json:"licence"`
	Phone   string `bson:"phone" json:"phone"`
	Email   string `bson:"email" json:"email"`
}

// Agreement is a rental agreement for a single vehicle.
type Agreement struct {
	ID             string    `bson:"_id" json:"id"`
	AgreementID    string    `bson:"agreement_id" json:"agreementId"`
	VehicleID      string    `bson:"vehicle_id" json:"vehicleId"`
	Customer       string    `bson:"customer" json:"customer"`
	Driver         Driver    `bson:"driver" json:"driver"`
	StartAt        Timestamp `bson:"start_at" json:"startAt"`
	EndAt          Timestamp `bson:"end_at" json:"endAt"`
	Stage          Stage     `bson:"stage" json:"stage"`
	StageUpdatedAt Timestamp `bson:"stage_updated_at,omitempty" json:"stageUpdatedAt,omitempty"`
	Status         string    `bson:"status" json:"status"`
	MonthlyRate    float64   `bson:"monthly_rate" json:"monthlyRate"` // in GBP
	Penalties      []Penalty `bson:"penalties,omitempty" json:"penalties,omitempty"`
	Breaches       []Breach  `bson:"breaches,omitempty" json:"breaches,omitempty"`
}

// PendingPenalties returns the penalties still awaiting settlement.
func (a Agreement) PendingPenalties() []Penalty {
	var pending []Penalty
	for _, p := range a.Penalties {
		if p.Status == PenaltyPending {
			pending = append(pending, p)
		}
	}
	return pending
}

// UnresolvedBreaches returns the breaches not yet resolved.
func (a Agreement) UnresolvedBreaches() []Breach {
	var open []Breach
	for _, b := range a.Breaches {
		if !b.Resolved {
			open = append(open, b)
		}
	}
	return open
}
