// Package fleet derives rental status, filters record sets and builds the
// projections the dashboard pages read.
package fleet

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Resolution is the outcome of a rental status lookup. Agreement is the
// agreement that decided the status and is nil when the vehicle is available.
type Resolution struct {
	Status    models.RentalStatus `json:"status"`
	Agreement *models.Agreement   `json:"agreement,omitempty"`
}

// StatusResolver indexes agreements by canonical vehicle id.
type StatusResolver struct {
	byVehicle map[string][]models.Agreement
	logger    log.FieldLogger
}

// NewStatusResolver builds a resolver over the given agreements.
func NewStatusResolver(agreements []models.Agreement, logger log.FieldLogger) *StatusResolver {
	if logger == nil {
		logger = log.StandardLogger()
	}
	idx := make(map[string][]models.Agreement, len(agreements))
	for _, a := range agreements {
		key := models.NormalizeVehicleID(a.VehicleID)
		idx[key] = append(idx[key], a)
	}
	return &StatusResolver{byVehicle: idx, logger: logger}
}

// ResolveRentalStatus is a convenience wrapper for one-off lookups.
func ResolveRentalStatus(vehicleID string, agreements []models.Agreement, now time.Time) models.RentalStatus {
	return NewStatusResolver(agreements, nil).Status(vehicleID, now)
}

// Status returns available, on-hire or reserved for the vehicle.
func (r *StatusResolver) Status(vehicleID string, now time.Time) models.RentalStatus {
	return r.Resolve(vehicleID, now).Status
}

// Resolve derives the rental status. It never fails: agreements with
// unreadable dates are skipped and an unexpected failure resolves to available.
func (r *StatusResolver) Resolve(vehicleID string, now time.Time) Resolution {
	return r.guard(vehicleID, func() Resolution { return r.resolve(vehicleID, now) })
}

func (r *StatusResolver) guard(vehicleID string, fn func() Resolution) (res Resolution) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.WithFields(log.Fields{
				"vehicle_id": vehicleID,
				"panic":      p,
			}).Error("Rental status resolution failed, defaulting to available")
			res = Resolution{Status: models.RentalAvailable}
		}
	}()
	return fn()
}

func (r *StatusResolver) resolve(vehicleID string, now time.Time) Resolution {
	candidates := r.byVehicle[models.NormalizeVehicleID(vehicleID)]

	var onHire *models.Agreement
	var onHireStart time.Time
	for i := range candidates {
		a := &candidates[i]
		if a.Stage.IsTerminal() {
			continue
		}
		start, end, ok := agreementWindow(*a)
		if !ok {
			continue
		}
		if !start.After(now) && now.Before(end) {
			if onHire == nil || start.After(onHireStart) {
				onHire, onHireStart = a, start
			}
		}
	}
	if onHire != nil {
		found := *onHire
		return Resolution{Status: models.RentalOnHire, Agreement: &found}
	}

	var next *models.Agreement
	var nextStart time.Time
	for i := range candidates {
		a := &candidates[i]
		if a.Stage == models.StageClosed {
			continue
		}
		start, ok := a.StartAt.Valid()
		if !ok || !start.After(now) {
			continue
		}
		if next == nil || start.Before(nextStart) {
			next, nextStart = a, start
		}
	}
	if next != nil {
		found := *next
		return Resolution{Status: models.RentalReserved, Agreement: &found}
	}

	return Resolution{Status: models.RentalAvailable}
}

func agreementWindow(a models.Agreement) (start, end time.Time, ok bool) {
	start, okStart := a.StartAt.Valid()
	end, okEnd := a.EndAt.Valid()
	return start, end, okStart && okEnd
}

// ActiveAgreement reports whether the agreement is live at now.
func ActiveAgreement(a models.Agreement, now time.Time) bool {
	if a.Stage.IsTerminal() {
		return false
	}
	start, end, ok := agreementWindow(a)
	return ok && !start.After(now) && now.Before(end)
}
