// Package notify derives dashboard notifications from a record snapshot,
// tracks per-user read state and pushes new alerts to MQTT.
package notify

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ukydev/fleet-dashboard/internal/format"
	"github.com/ukydev/fleet-dashboard/internal/models"
	"github.com/ukydev/fleet-dashboard/internal/settings"
)

// Deterministic ids of the aggregate notifications.
const (
	HighRiskID           = "high-risk-vehicles"
	PendingPenaltiesID   = "pending-penalties"
	UnresolvedBreachesID = "unresolved-breaches"
	ExpiringDocumentsID  = "expiring-documents"
)

// Rules holds the thresholds and toggles the rule set is evaluated with.
type Rules struct {
	WorkshopDelayHours int
	PartsDelayHours    int
	ContractExpiryDays int
	DocumentExpiryDays int

	ServiceDelay   bool
	ContractExpiry bool
	Risk           bool
	Penalty        bool
	Breach         bool
	DocumentExpiry bool
}

// RulesFrom maps user settings onto a rule set.
func RulesFrom(s models.Settings) Rules {
	return Rules{
		WorkshopDelayHours: s.WorkshopDelayHours,
		PartsDelayHours:    s.PartsDelayHours,
		ContractExpiryDays: s.ContractExpiryDays,
		DocumentExpiryDays: s.DocumentExpiryDays,
		ServiceDelay:       s.ServiceDelayAlerts,
		ContractExpiry:     s.ContractExpiryAlerts,
		Risk:               s.RiskAlerts,
		Penalty:            s.PenaltyAlerts,
		Breach:             s.BreachAlerts,
		DocumentExpiry:     s.DocumentExpiryAlerts,
	}
}

// DefaultRules evaluates every rule with the default thresholds.
func DefaultRules() Rules {
	return RulesFrom(settings.Defaults())
}

// Derive runs the default rule set.
func Derive(s models.Snapshot, now time.Time) []models.Notification {
	return DefaultRules().Derive(s, now)
}

// Derive evaluates each enabled rule against the snapshot. It is a pure
// function of its inputs and every notification starts unread.
func (r Rules) Derive(s models.Snapshot, now time.Time) []models.Notification {
	out := make([]models.Notification, 0)
	if r.ServiceDelay {
		out = append(out, r.serviceDelays(s.Vehicles, now)...)
	}
	if r.ContractExpiry {
		out = append(out, r.agreementDeadlines(s.Agreements, now)...)
	}
	if r.Risk {
		out = appendIf(out, highRisk(s.Vehicles, now))
	}
	if r.Penalty {
		out = appendIf(out, pendingPenalties(s.Agreements, now))
	}
	if r.Breach {
		out = appendIf(out, unresolvedBreaches(s.Agreements, now))
	}
	if r.DocumentExpiry {
		out = appendIf(out, r.expiringDocuments(s.Suppliers, now))
	}
	return out
}

func appendIf(out []models.Notification, n *models.Notification) []models.Notification {
	if n == nil {
		return out
	}
	return append(out, *n)
}

func (r Rules) serviceDelays(vehicles []models.Vehicle, now time.Time) []models.Notification {
	var out []models.Notification
	for _, v := range vehicles {
		var message string
		if v.AvailabilityStatus == models.StatusInWorkshop {
			if in, ok := v.StageTimestamps.WorkshopInAt.Valid(); ok {
				if hours := format.HoursSince(in, now); hours > float64(r.WorkshopDelayHours) {
					message = fmt.Sprintf("%s has been in the workshop for %d hours", label(v), int(hours))
				}
			}
		}
		if message == "" && v.AvailabilityStatus != models.StatusAvailable {
			if req, ok := v.StageTimestamps.PartsRequestedAt.Valid(); ok {
				if hours := format.HoursSince(req, now); hours > float64(r.PartsDelayHours) {
					message = fmt.Sprintf("%s has been waiting on parts for %d hours", label(v), int(hours))
				}
			}
		}
		if message == "" {
			continue
		}
		out = append(out, models.Notification{
			ID:        "critical-" + v.ID,
			Type:      models.NotificationCritical,
			Title:     "Critical Service Delay",
			Message:   message,
			Timestamp: now,
			ActionURL: "/operations?vehicle=" + v.ID,
		})
	}
	return out
}

func (r Rules) agreementDeadlines(agreements []models.Agreement, now time.Time) []models.Notification {
	var out []models.Notification
	for _, a := range agreements {
		if a.Stage == models.StageClosed {
			continue
		}
		end, ok := a.EndAt.Valid()
		if !ok {
			continue
		}
		if end.Before(now) {
			out = append(out, models.Notification{
				ID:        "overdue-" + a.AgreementID,
				Type:      models.NotificationWarning,
				Title:     "Overdue Agreement",
				Message:   fmt.Sprintf("%s for %s was due back on %s", a.AgreementID, a.Customer, format.Date(end)),
				Timestamp: now,
				ActionURL: "/agreements?id=" + a.AgreementID,
			})
			continue
		}
		if days := format.DaysUntil(end, now); days > 0 && days <= r.ContractExpiryDays {
			out = append(out, models.Notification{
				ID:        "expiring-" + a.AgreementID,
				Type:      models.NotificationWarning,
				Title:     "Agreement Expiring",
				Message:   fmt.Sprintf("%s for %s ends in %s", a.AgreementID, a.Customer, plural(days, "day", "days")),
				Timestamp: now,
				ActionURL: "/agreements?id=" + a.AgreementID,
			})
		}
	}
	return out
}

func highRisk(vehicles []models.Vehicle, now time.Time) *models.Notification {
	count := 0
	for _, v := range vehicles {
		if v.RiskLevel == models.RiskHigh {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return &models.Notification{
		ID:        HighRiskID,
		Type:      models.NotificationWarning,
		Title:     "High Risk Vehicles",
		Message:   fmt.Sprintf("%s flagged as high risk", plural(count, "vehicle", "vehicles")),
		Timestamp: now,
		ActionURL: "/operations?risk=High",
	}
}

func pendingPenalties(agreements []models.Agreement, now time.Time) *models.Notification {
	total := decimal.Zero
	count := 0
	for _, a := range agreements {
		for _, p := range a.PendingPenalties() {
			total = total.Add(decimal.NewFromFloat(p.Amount))
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return &models.Notification{
		ID:        PendingPenaltiesID,
		Type:      models.NotificationWarning,
		Title:     "Pending Penalties",
		Message:   fmt.Sprintf("%s outstanding across %s", format.GBPDecimal(total), plural(count, "penalty", "penalties")),
		Timestamp: now,
		ActionURL: "/financials?tab=penalties",
	}
}

func unresolvedBreaches(agreements []models.Agreement, now time.Time) *models.Notification {
	count := 0
	critical := false
	for _, a := range agreements {
		for _, b := range a.UnresolvedBreaches() {
			count++
			if b.Severity == models.SeverityCritical {
				critical = true
			}
		}
	}
	if count == 0 {
		return nil
	}
	kind := models.NotificationWarning
	if critical {
		kind = models.NotificationCritical
	}
	return &models.Notification{
		ID:        UnresolvedBreachesID,
		Type:      kind,
		Title:     "Unresolved Breaches",
		Message:   fmt.Sprintf("%s awaiting resolution", plural(count, "contract breach", "contract breaches")),
		Timestamp: now,
		ActionURL: "/agreements?breaches=unresolved",
	}
}

func (r Rules) expiringDocuments(suppliers []models.Supplier, now time.Time) *models.Notification {
	count := 0
	for _, s := range suppliers {
		for _, d := range s.Documents {
			if d.Status == models.DocumentExpired {
				continue
			}
			expiry, ok := d.ExpiryDate.Valid()
			if !ok {
				continue
			}
			if days := format.DaysUntil(expiry, now); days > 0 && days <= r.DocumentExpiryDays {
				count++
			}
		}
	}
	if count == 0 {
		return nil
	}
	return &models.Notification{
		ID:        ExpiringDocumentsID,
		Type:      models.NotificationInfo,
		Title:     "Documents Expiring",
		Message:   fmt.Sprintf("%s expiring within %d days", plural(count, "supplier document", "supplier documents"), r.DocumentExpiryDays),
		Timestamp: now,
		ActionURL: "/documents?status=expiring",
	}
}

func label(v models.Vehicle) string {
	if v.Registration != "" {
		return v.Registration
	}
	return v.ID
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
