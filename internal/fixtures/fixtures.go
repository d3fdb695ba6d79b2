// Package fixtures holds the demo dataset the dashboard serves when no
// database is configured. Every instant is relative to the supplied clock so
// the notification and status rules always have something to show.
package fixtures

import (
	"time"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Snapshot builds the demo dataset anchored at now. Agreement AGR-1001 refers
// to its vehicle by the bare number on purpose.
func Snapshot(now time.Time) models.Snapshot {
	at := func(d time.Duration) models.Timestamp { return models.TS(now.Add(d)) }
	days := func(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }
	hours := func(n int) time.Duration { return time.Duration(n) * time.Hour }

	return models.Snapshot{
		Vehicles: []models.Vehicle{
			{
				ID: "BYD-001", VIN: "LGXCE4CB0P0000001", Registration: "AB12 CDE", Model: "BYD Atto 3",
				Location: "London", AvailabilityStatus: models.StatusOnHire, RentalPartner: "Acme Logistics",
				Health:    models.Health{Score: 92, BatteryPct: 81, MOTExpiry: at(days(240))},
				RiskLevel: models.RiskLow,
			},
			{
				ID: "BYD-002", VIN: "LGXCE4CB0P0000002", Registration: "BD21 XYZ", Model: "BYD Dolphin",
				Location: "Manchester", AvailabilityStatus: models.StatusInWorkshop, RentalPartner: "Northern Rentals",
				StageTimestamps: models.StageTimestamps{
					ReturnedAt:   at(-hours(60)),
					InspectedAt:  at(-hours(55)),
					WorkshopInAt: at(-hours(50)),
				},
				Health:    models.Health{Score: 61, BatteryPct: 44, FaultCodes: []string{"P0A80", "U0100"}, MOTExpiry: at(days(90))},
				RiskLevel: models.RiskMedium,
			},
			{
				ID: "BYD-003", VIN: "LGXCE4CB0P0000003", Registration: "CE70 KLM", Model: "BYD Seal",
				Location: "Birmingham", AvailabilityStatus: models.StatusAwaitingParts, RentalPartner: "Acme Logistics",
				StageTimestamps: models.StageTimestamps{
					ReturnedAt:       at(-hours(100)),
					WorkshopInAt:     at(-hours(90)),
					PartsRequestedAt: at(-hours(80)),
				},
				Health:    models.Health{Score: 55, BatteryPct: 67, FaultCodes: []string{"C1234"}, MOTExpiry: at(days(20))},
				RiskLevel: models.RiskMedium,
			},
			{
				ID: "BYD-004", VIN: "LGXCE4CB0P0000004", Registration: "DF19 PQR", Model: "BYD Atto 3",
				Location: "London", AvailabilityStatus: models.StatusAvailable, RentalPartner: "Northern Rentals",
				Health:    models.Health{Score: 48, BatteryPct: 90, FaultCodes: []string{"P0300"}, MOTExpiry: at(days(12))},
				RiskLevel: models.RiskHigh,
			},
			{
				ID: "BYD-005", VIN: "LGXCE4CB0P0000005", Registration: "EG68 STU", Model: "BYD Han",
				Location: "Leeds", AvailabilityStatus: models.StatusAvailable, RentalPartner: "City Car Club",
				StageTimestamps: models.StageTimestamps{ReadyAt: at(-days(2))},
				Health:          models.Health{Score: 97, BatteryPct: 100, MOTExpiry: at(days(300))},
				RiskLevel:       models.RiskLow,
			},
			{
				ID: "BYD-006", VIN: "LGXCE4CB0P0000006", Registration: "FH22 VWX", Model: "BYD Tang",
				Location: "Bristol", AvailabilityStatus: models.StatusAtValet, RentalPartner: "City Car Club",
				StageTimestamps: models.StageTimestamps{
					ReturnedAt:        at(-hours(40)),
					RepairCompletedAt: at(-hours(34)),
					ValetAt:           at(-hours(30)),
				},
				Health:    models.Health{Score: 74, BatteryPct: 58, MOTExpiry: at(days(150))},
				RiskLevel: models.RiskHigh,
			},
		},
		Agreements: []models.Agreement{
			{
				ID: "agr-1", AgreementID: "AGR-1001", VehicleID: "001", Customer: "Acme Logistics",
				Driver:  models.Driver{Name: "James Wilson", Licence: "WILSO801015JW9AB", Phone: "07700 900101", Email: "james.wilson@acme.example"},
				StartAt: at(-days(30)), EndAt: at(days(5)), Stage: models.StageOnTrack, StageUpdatedAt: at(-days(29)),
				Status: "active", MonthlyRate: 649,
				Breaches: []models.Breach{{ID: "br-1", Type: "Late payment", Severity: models.SeverityHigh, ReportedAt: at(-days(3))}},
			},
			{
				ID: "agr-2", AgreementID: "AGR-1002", VehicleID: "BYD-004", Customer: "Northern Rentals",
				Driver:  models.Driver{Name: "Sarah Patel", Licence: "PATEL902028SP7CD", Phone: "07700 900202", Email: "sarah.patel@northern.example"},
				StartAt: at(-days(60)), EndAt: at(-days(1)), Stage: models.StageOnTrack, StageUpdatedAt: at(-days(59)),
				Status: "active", MonthlyRate: 599,
				Penalties: []models.Penalty{
					{ID: "pen-1", Reason: "Late return", Amount: 150, Status: models.PenaltyPending, RaisedAt: at(-hours(20))},
					{ID: "pen-2", Reason: "Cleaning", Amount: 75.5, Status: models.PenaltyPending, RaisedAt: at(-hours(20))},
					{ID: "pen-3", Reason: "Congestion charge", Amount: 15, Status: models.PenaltyPaid, RaisedAt: at(-days(20))},
				},
				Breaches: []models.Breach{{ID: "br-2", Type: "Unauthorised driver", Severity: models.SeverityCritical, ReportedAt: at(-days(2))}},
			},
			{
				ID: "agr-3", AgreementID: "AGR-1003", VehicleID: "BYD-005", Customer: "City Car Club",
				Driver:  models.Driver{Name: "Tom Hughes", Phone: "07700 900303"},
				StartAt: at(days(3)), EndAt: at(days(33)), Stage: models.StageReservationCreated, StageUpdatedAt: at(-days(4)),
				Status: "pending", MonthlyRate: 729,
			},
			{
				ID: "agr-4", AgreementID: "AGR-1004", VehicleID: "BYD-006", Customer: "City Car Club",
				Driver:  models.Driver{Name: "Priya Shah"},
				StartAt: at(-days(90)), EndAt: at(-days(30)), Stage: models.StageClosed, StageUpdatedAt: at(-days(28)),
				Status: "closed", MonthlyRate: 799,
				Breaches: []models.Breach{{ID: "br-3", Type: "Speeding", Severity: models.SeverityLow, Resolved: true}},
			},
			{
				ID: "agr-5", AgreementID: "AGR-1005", VehicleID: "002", Customer: "Northern Rentals",
				Driver:  models.Driver{Name: "Liam O'Neill"},
				StartAt: at(-days(40)), EndAt: at(-days(3)), Stage: models.StageClosed, StageUpdatedAt: at(-days(2)),
				Status: "closed", MonthlyRate: 549,
			},
		},
		Suppliers: []models.Supplier{
			{
				ID: "sup-1", Name: "Midlands Auto Repairs", Category: "Workshop", Contact: "Dave Brooks",
				Email: "dave@midlandsauto.example", Phone: "0121 496 0001", Rating: 4.5,
				Documents: []models.SupplierDocument{
					{ID: "d1", Name: "Public Liability Insurance", Type: "Insurance", ExpiryDate: at(days(20)), Status: models.DocumentValid},
					{ID: "d2", Name: "EV Repair Accreditation", Type: "Accreditation", ExpiryDate: at(days(200)), Status: models.DocumentValid},
				},
			},
			{
				ID: "sup-2", Name: "CleanCar Valet", Category: "Valet", Contact: "Mia Green",
				Email: "mia@cleancar.example", Phone: "0161 496 0002", Rating: 4.1,
				Documents: []models.SupplierDocument{
					{ID: "d3", Name: "Employers Liability Insurance", Type: "Insurance", ExpiryDate: at(-days(5)), Status: models.DocumentExpired},
				},
			},
			{
				ID: "sup-3", Name: "PartsDirect UK", Category: "Parts", Contact: "Raj Kumar",
				Email: "raj@partsdirect.example", Phone: "0113 496 0003", Rating: 3.8,
			},
		},
		Invoices: []models.Invoice{
			{ID: "inv-1", Number: "INV-2041", SupplierID: "sup-1", VehicleID: "BYD-002", IssuedAt: at(-days(2)), DueAt: at(days(28)), Amount: 1250, Status: "pending"},
			{ID: "inv-2", Number: "INV-2042", SupplierID: "sup-2", VehicleID: "BYD-006", IssuedAt: at(-days(10)), DueAt: at(days(20)), Amount: 89.99, Status: "paid"},
			{ID: "inv-3", Number: "INV-2043", SupplierID: "sup-3", VehicleID: "BYD-003", IssuedAt: at(-days(45)), DueAt: at(-days(15)), Amount: 640, Status: "overdue"},
		},
		PurchaseOrders: []models.PurchaseOrder{
			{ID: "po-1", Number: "PO-551", SupplierID: "sup-3", VehicleID: "BYD-003", Description: "Front bumper assembly", RaisedAt: at(-hours(80)), Amount: 420, Status: "approved"},
			{ID: "po-2", Number: "PO-552", SupplierID: "sup-1", VehicleID: "BYD-002", Description: "Brake discs and pads", RaisedAt: at(-hours(48)), Amount: 310.5, Status: "open"},
		},
		Buybacks: []models.Buyback{
			{ID: "bb-1", VehicleID: "BYD-001", Partner: "BYD UK", AgreedPrice: 18500, ReturnBy: at(days(180)), MileageLimit: 30000, Status: "active"},
			{ID: "bb-2", VehicleID: "BYD-004", Partner: "BYD UK", AgreedPrice: 17250, ReturnBy: at(days(25)), MileageLimit: 30000, Status: "due"},
		},
		Contacts: []models.Contact{
			{ID: "cust-1", Name: "James Wilson", Company: "Acme Logistics", Email: "james.wilson@acme.example", Phone: "07700 900101", Type: "customer"},
			{ID: "cust-2", Name: "Sarah Patel", Company: "Northern Rentals", Email: "sarah.patel@northern.example", Phone: "07700 900202", Type: "customer"},
			{ID: "sup-1", Name: "Dave Brooks", Company: "Midlands Auto Repairs", Email: "dave@midlandsauto.example", Phone: "0121 496 0001", Type: "supplier"},
		},
		Workflows: []models.Workflow{
			{
				ID: "wf-1", VehicleID: "BYD-002", Type: "Service", Assignee: "Workshop Team", Priority: "high", StartedAt: at(-hours(60)),
				Steps: []models.WorkflowStep{
					{Name: "Inspection", CompletedAt: at(-hours(55))},
					{Name: "Diagnosis", CompletedAt: at(-hours(50))},
					{Name: "Repair"},
					{Name: "Quality Check"},
				},
				CurrentStep: 2,
			},
			{
				ID: "wf-2", VehicleID: "BYD-006", Type: "Defleet", Assignee: "Remarketing", Priority: "medium", StartedAt: at(-hours(40)),
				Steps: []models.WorkflowStep{
					{Name: "Return Inspection", CompletedAt: at(-hours(38))},
					{Name: "Valet", CompletedAt: at(-hours(30))},
					{Name: "Buyback Handover"},
				},
				CurrentStep: 2,
			},
		},
		Emails: []models.EmailHistoryEntry{
			{
				ID: "email-seed-1", ContactID: "cust-1", From: "james.wilson@acme.example", To: "fleet@dashboard.example",
				Subject: "Extension request for AB12 CDE", Body: "Could we extend agreement AGR-1001 by two weeks?",
				SentAt: now.Add(-2 * time.Hour), Direction: models.Inbound, Status: "received",
			},
			{
				ID: "email-seed-2", ContactID: "cust-2", From: "fleet@dashboard.example", To: "sarah.patel@northern.example",
				Subject: "Overdue return of DF19 PQR", Body: "Please arrange the return of DF19 PQR.",
				SentAt: now.Add(-10 * 24 * time.Hour), Direction: models.Outbound, Status: "sent", Read: true,
			},
			{
				ID: "email-seed-3", ContactID: "sup-1", From: "fleet@dashboard.example", To: "dave@midlandsauto.example",
				Subject: "BD21 XYZ repair ETA", Body: "Can you confirm the repair ETA for BD21 XYZ?",
				SentAt: now.Add(-24 * time.Hour), Direction: models.Outbound, Status: "sent", Read: true,
			},
			{
				ID: "email-seed-4", ContactID: "sup-1", From: "dave@midlandsauto.example", To: "fleet@dashboard.example",
				Subject: "Invoice INV-2041", Body: "Invoice attached for the BD21 XYZ diagnostics.",
				SentAt: now.Add(-3 * 24 * time.Hour), Direction: models.Inbound, Status: "received", Read: true, Archived: true,
			},
		},
	}
}
