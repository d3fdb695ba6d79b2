package fleet

import (
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// VehicleRow is a vehicle joined with its derived rental status.
type VehicleRow struct {
	models.Vehicle
	RentalStatus models.RentalStatus `json:"rentalStatus"`
	Progress     string              `json:"progress"`
}

// VehicleFilter is the filter state of the operations vehicle table.
type VehicleFilter struct {
	Query        string
	Status       string
	RentalStatus string
	Location     string
	Partner      string
	Risk         string
	SortField    string // "registration", "model", "location", "health", "battery", "mot"
	Descending   bool
}

// ProgressText describes the vehicle's current stage for display and search.
func ProgressText(v models.Vehicle, now time.Time) string {
	stage, ok := v.CurrentStage()
	if !ok {
		return string(v.AvailabilityStatus)
	}
	hours := int(now.Sub(stage.At).Hours())
	if hours < 0 {
		hours = 0
	}
	return fmt.Sprintf("%s for %dh", stage.Name, hours)
}

// FilterVehicles joins vehicles with their rental status and applies the filter.
func FilterVehicles(vehicles []models.Vehicle, resolver *StatusResolver, f VehicleFilter, now time.Time) []VehicleRow {
	rows := make([]VehicleRow, len(vehicles))
	for i, v := range vehicles {
		rows[i] = VehicleRow{
			Vehicle:      v,
			RentalStatus: resolver.Status(v.ID, now),
			Progress:     ProgressText(v, now),
		}
	}
	return Apply(rows, Spec[VehicleRow]{
		Query: f.Query,
		SearchFields: func(r VehicleRow) []string {
			return []string{r.VIN, r.Registration, r.Model, r.Location, r.RentalPartner, r.Progress}
		},
		Filters: []Predicate[VehicleRow]{
			Category(f.Status, func(r VehicleRow) string { return string(r.AvailabilityStatus) }),
			Category(f.RentalStatus, func(r VehicleRow) string { return string(r.RentalStatus) }),
			Category(f.Location, func(r VehicleRow) string { return r.Location }),
			Category(f.Partner, func(r VehicleRow) string { return r.RentalPartner }),
			Category(f.Risk, func(r VehicleRow) string { return string(r.RiskLevel) }),
		},
		Sort: vehicleSort(f.SortField, f.Descending),
	})
}

func vehicleSort(field string, desc bool) *Sort[VehicleRow] {
	switch strings.ToLower(field) {
	case "registration":
		return ByString(func(r VehicleRow) string { return r.Registration }, desc)
	case "model":
		return ByString(func(r VehicleRow) string { return r.Model }, desc)
	case "location":
		return ByString(func(r VehicleRow) string { return r.Location }, desc)
	case "health":
		return ByNumber(func(r VehicleRow) float64 { return float64(r.Health.Score) }, desc)
	case "battery":
		return ByNumber(func(r VehicleRow) float64 { return r.Health.BatteryPct }, desc)
	case "mot":
		return ByTime(func(r VehicleRow) models.Timestamp { return r.Health.MOTExpiry }, desc)
	default:
		return nil
	}
}

// AgreementFilter is the filter state of the agreements page.
type AgreementFilter struct {
	Query      string
	Stage      string
	Status     string
	DateRange  DateBucket
	SortField  string // "agreementId", "customer", "startAt", "endAt", "rate"
	Descending bool
}

// FilterAgreements applies the filter to agreements. Registrations come from the vehicle list.
func FilterAgreements(agreements []models.Agreement, vehicles []models.Vehicle, f AgreementFilter, now time.Time) []models.Agreement {
	regs := make(map[string]string, len(vehicles))
	for _, v := range vehicles {
		regs[models.NormalizeVehicleID(v.ID)] = v.Registration
	}
	return Apply(agreements, Spec[models.Agreement]{
		Query: f.Query,
		SearchFields: func(a models.Agreement) []string {
			return []string{a.AgreementID, a.Customer, a.Driver.Name, a.VehicleID, regs[models.NormalizeVehicleID(a.VehicleID)]}
		},
		Filters: []Predicate[models.Agreement]{
			Category(f.Stage, func(a models.Agreement) string { return string(a.Stage) }),
			Category(f.Status, func(a models.Agreement) string { return a.Status }),
			InDateRange(f.DateRange, now, func(a models.Agreement) models.Timestamp { return a.StartAt }),
		},
		Sort: agreementSort(f.SortField, f.Descending),
	})
}

func agreementSort(field string, desc bool) *Sort[models.Agreement] {
	switch strings.ToLower(field) {
	case "agreementid":
		return ByString(func(a models.Agreement) string { return a.AgreementID }, desc)
	case "customer":
		return ByString(func(a models.Agreement) string { return a.Customer }, desc)
	case "startat":
		return ByTime(func(a models.Agreement) models.Timestamp { return a.StartAt }, desc)
	case "endat":
		return ByTime(func(a models.Agreement) models.Timestamp { return a.EndAt }, desc)
	case "rate":
		return ByNumber(func(a models.Agreement) float64 { return a.MonthlyRate }, desc)
	default:
		return nil
	}
}

// InvoiceFilter is the filter state of the financials page.
type InvoiceFilter struct {
	Query      string
	Status     string
	DateRange  DateBucket
	SortField  string // "number", "issuedAt", "dueAt", "amount"
	Descending bool
}

// FilterInvoices applies the filter to invoices. Supplier names come from the supplier list.
func FilterInvoices(invoices []models.Invoice, suppliers []models.Supplier, f InvoiceFilter, now time.Time) []models.Invoice {
	names := make(map[string]string, len(suppliers))
	for _, s := range suppliers {
		names[s.ID] = s.Name
	}
	var sort *Sort[models.Invoice]
	switch strings.ToLower(f.SortField) {
	case "number":
		sort = ByString(func(i models.Invoice) string { return i.Number }, f.Descending)
	case "issuedat":
		sort = ByTime(func(i models.Invoice) models.Timestamp { return i.IssuedAt }, f.Descending)
	case "dueat":
		sort = ByTime(func(i models.Invoice) models.Timestamp { return i.DueAt }, f.Descending)
	case "amount":
		sort = ByNumber(func(i models.Invoice) float64 { return i.Amount }, f.Descending)
	}
	return Apply(invoices, Spec[models.Invoice]{
		Query: f.Query,
		SearchFields: func(i models.Invoice) []string {
			return []string{i.Number, names[i.SupplierID], i.VehicleID}
		},
		Filters: []Predicate[models.Invoice]{
			Category(f.Status, func(i models.Invoice) string { return i.Status }),
			InDateRange(f.DateRange, now, func(i models.Invoice) models.Timestamp { return i.IssuedAt }),
		},
		Sort: sort,
	})
}

// DocumentFilter is the filter state of the documents page.
type DocumentFilter struct {
	Query    string
	Category string
	Status   string
}

// FilterDocuments applies the filter to projected documents, newest first.
func FilterDocuments(docs []models.Document, f DocumentFilter) []models.Document {
	return Apply(docs, Spec[models.Document]{
		Query: f.Query,
		SearchFields: func(d models.Document) []string {
			return []string{d.Name, d.Type, d.RelatedEntityID}
		},
		Filters: []Predicate[models.Document]{
			Category(f.Category, func(d models.Document) string { return d.Category }),
			Category(f.Status, func(d models.Document) string { return d.Status }),
		},
		Sort: ByTime(func(d models.Document) models.Timestamp { return d.Date }, true),
	})
}

// WorkflowFilter is the filter state of the workflows board.
type WorkflowFilter struct {
	Query    string
	Type     string
	Priority string
}

// FilterWorkflows applies the filter to workflows.
func FilterWorkflows(workflows []models.Workflow, f WorkflowFilter) []models.Workflow {
	return Apply(workflows, Spec[models.Workflow]{
		Query: f.Query,
		SearchFields: func(w models.Workflow) []string {
			return []string{w.ID, w.VehicleID, w.Type, w.Assignee, w.CurrentStepName()}
		},
		Filters: []Predicate[models.Workflow]{
			Category(f.Type, func(w models.Workflow) string { return w.Type }),
			Category(f.Priority, func(w models.Workflow) string { return w.Priority }),
		},
	})
}
