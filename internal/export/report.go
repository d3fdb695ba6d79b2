// Package export maps record snapshots onto report tables and writes them as
// CSV or paginated PDF.
package export

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ukydev/fleet-dashboard/internal/fleet"
	"github.com/ukydev/fleet-dashboard/internal/format"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

var (
	ErrUnknownReport = errors.New("unknown report type")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Unknown stands in for a related record that cannot be found.
const Unknown = "Unknown"

// ReportType names a report schema.
type ReportType string

const (
	ReportFleet          ReportType = "fleet"
	ReportVOR            ReportType = "vor"
	ReportAgreements     ReportType = "agreements"
	ReportFinancial      ReportType = "financial"
	ReportPurchaseOrders ReportType = "purchase-orders"
	ReportSuppliers      ReportType = "suppliers"
	ReportBuybacks       ReportType = "buybacks"
)

var reportTitles = map[ReportType]string{
	ReportFleet:          "Fleet Report",
	ReportVOR:            "Vehicle Off Road Report",
	ReportAgreements:     "Rental Agreements Report",
	ReportFinancial:      "Financial Report",
	ReportPurchaseOrders: "Purchase Orders Report",
	ReportSuppliers:      "Suppliers Report",
	ReportBuybacks:       "Buybacks Report",
}

// ReportTypes lists every known report in a stable order.
func ReportTypes() []ReportType {
	return []ReportType{ReportFleet, ReportVOR, ReportAgreements, ReportFinancial, ReportPurchaseOrders, ReportSuppliers, ReportBuybacks}
}

// Title is the heading printed on the report.
func (rt ReportType) Title() string { return reportTitles[rt] }

// ParseReportType validates a report name.
func ParseReportType(s string) (ReportType, error) {
	rt := ReportType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := reportTitles[rt]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownReport, s)
	}
	return rt, nil
}

// Format is an output encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Detail is a titled block of lines printed after the table in PDF output.
type Detail struct {
	Heading string
	Lines   []string
}

// Table is a report rendered to strings. Every row has len(Headers) cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Details []Detail
}

// Filename returns <type>-report-<YYYY-MM-DD>.<ext>.
func Filename(rt ReportType, f Format, now time.Time) string {
	return fmt.Sprintf("%s-report-%s.%s", rt, now.Format("2006-01-02"), f)
}

// AgreementFilename returns agreement-<id>-<YYYY-MM-DD>.<ext>.
func AgreementFilename(agreementID string, f Format, now time.Time) string {
	return fmt.Sprintf("agreement-%s-%s.%s", agreementID, now.Format("2006-01-02"), f)
}

// ToRows maps the snapshot onto the report's column schema. Malformed values
// render as placeholders and never fail the export.
func ToRows(rt ReportType, s models.Snapshot, now time.Time) (Table, error) {
	var t Table
	switch rt {
	case ReportFleet:
		t = fleetTable(s, now)
	case ReportVOR:
		t = vorTable(s, now)
	case ReportAgreements:
		t = agreementsTable(s)
	case ReportFinancial:
		t = financialTable(s)
	case ReportPurchaseOrders:
		t = purchaseOrdersTable(s)
	case ReportSuppliers:
		t = suppliersTable(s, now)
	case ReportBuybacks:
		t = buybacksTable(s, now)
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownReport, rt)
	}
	t.Title = reportTitles[rt]
	return t, nil
}

func fleetTable(s models.Snapshot, now time.Time) Table {
	resolver := fleet.NewStatusResolver(s.Agreements, nil)
	t := Table{Headers: []string{
		"Vehicle ID", "Registration", "Model", "Location", "Status", "Rental Status",
		"Partner", "Health Score", "Battery %", "MOT Expiry", "Risk",
	}}
	for _, v := range s.Vehicles {
		t.Rows = append(t.Rows, []string{
			v.ID,
			v.Registration,
			v.Model,
			v.Location,
			string(v.AvailabilityStatus),
			string(resolver.Status(v.ID, now)),
			orDash(v.RentalPartner),
			strconv.Itoa(v.Health.Score),
			strconv.FormatFloat(v.Health.BatteryPct, 'f', 0, 64),
			format.TimestampDate(v.Health.MOTExpiry),
			string(v.RiskLevel),
		})
	}
	return t
}

func vorTable(s models.Snapshot, now time.Time) Table {
	t := Table{Headers: []string{
		"Vehicle ID", "Registration", "Model", "Location", "Status", "Current Stage", "Since", "Hours Off Road", "Fault Codes",
	}}
	for _, v := range s.Vehicles {
		if !v.AvailabilityStatus.IsOffRoad() {
			continue
		}
		stage, ok := v.CurrentStage()
		stageName, since, hours := format.Placeholder, format.Placeholder, format.Placeholder
		if ok {
			stageName = stage.Name
			since = format.DateTime(stage.At)
			hours = strconv.Itoa(int(format.HoursSince(stage.At, now)))
		}
		faults := "None"
		if len(v.Health.FaultCodes) > 0 {
			faults = strings.Join(v.Health.FaultCodes, ", ")
		}
		t.Rows = append(t.Rows, []string{
			v.ID, v.Registration, v.Model, v.Location, string(v.AvailabilityStatus), stageName, since, hours, faults,
		})

		detail := Detail{Heading: fmt.Sprintf("%s (%s) - %s", v.Registration, v.ID, v.AvailabilityStatus)}
		for _, e := range v.StageTimestamps.Entries() {
			detail.Lines = append(detail.Lines, fmt.Sprintf("%s: %s", e.Name, format.DateTime(e.At)))
		}
		detail.Lines = append(detail.Lines,
			fmt.Sprintf("Health score %d, battery %.0f%%", v.Health.Score, v.Health.BatteryPct),
			"Fault codes: "+faults,
		)
		t.Details = append(t.Details, detail)
	}
	return t
}

func agreementsTable(s models.Snapshot) Table {
	t := Table{Headers: []string{
		"Agreement ID", "Vehicle ID", "Registration", "Customer", "Driver", "Start", "End",
		"Stage", "Status", "Monthly Rate", "Pending Penalties", "Open Breaches",
	}}
	for _, a := range s.Agreements {
		reg := Unknown
		if v, ok := s.VehicleByID(a.VehicleID); ok {
			reg = v.Registration
		}
		t.Rows = append(t.Rows, []string{
			a.AgreementID,
			a.VehicleID,
			reg,
			a.Customer,
			orDash(a.Driver.Name),
			format.TimestampDate(a.StartAt),
			format.TimestampDate(a.EndAt),
			string(a.Stage),
			a.Status,
			format.GBP(a.MonthlyRate),
			format.GBPDecimal(penaltyTotal(a.PendingPenalties())),
			strconv.Itoa(len(a.UnresolvedBreaches())),
		})
	}
	return t
}

func financialTable(s models.Snapshot) Table {
	t := Table{Headers: []string{"Invoice", "Supplier", "Vehicle ID", "Issued", "Due", "Amount", "Status"}}
	total := decimal.Zero
	for _, inv := range s.Invoices {
		total = total.Add(decimal.NewFromFloat(inv.Amount))
		t.Rows = append(t.Rows, []string{
			inv.Number,
			supplierName(s, inv.SupplierID),
			orDash(inv.VehicleID),
			format.TimestampDate(inv.IssuedAt),
			format.TimestampDate(inv.DueAt),
			format.GBP(inv.Amount),
			inv.Status,
		})
	}
	if len(t.Rows) > 0 {
		t.Rows = append(t.Rows, []string{"Total", "", "", "", "", format.GBPDecimal(total), ""})
	}
	return t
}

func purchaseOrdersTable(s models.Snapshot) Table {
	t := Table{Headers: []string{"PO Number", "Supplier", "Vehicle ID", "Description", "Raised", "Amount", "Status"}}
	total := decimal.Zero
	for _, po := range s.PurchaseOrders {
		total = total.Add(decimal.NewFromFloat(po.Amount))
		t.Rows = append(t.Rows, []string{
			po.Number,
			supplierName(s, po.SupplierID),
			orDash(po.VehicleID),
			po.Description,
			format.TimestampDateTime(po.RaisedAt),
			format.GBP(po.Amount),
			po.Status,
		})
	}
	if len(t.Rows) > 0 {
		t.Rows = append(t.Rows, []string{"Total", "", "", "", "", format.GBPDecimal(total), ""})
	}
	return t
}

func suppliersTable(s models.Snapshot, now time.Time) Table {
	t := Table{Headers: []string{"Supplier", "Category", "Contact", "Email", "Phone", "Rating", "Documents", "Next Expiry"}}
	for _, sup := range s.Suppliers {
		var expiries []time.Time
		for _, d := range sup.Documents {
			if at, ok := d.ExpiryDate.Valid(); ok && at.After(now) {
				expiries = append(expiries, at)
			}
		}
		next := format.Placeholder
		if len(expiries) > 0 {
			next = format.Date(slices.MinFunc(expiries, func(a, b time.Time) int { return a.Compare(b) }))
		}
		t.Rows = append(t.Rows, []string{
			sup.Name,
			sup.Category,
			orDash(sup.Contact),
			orDash(sup.Email),
			orDash(sup.Phone),
			strconv.FormatFloat(sup.Rating, 'f', 1, 64),
			strconv.Itoa(len(sup.Documents)),
			next,
		})
	}
	return t
}

func buybacksTable(s models.Snapshot, now time.Time) Table {
	t := Table{Headers: []string{"Vehicle ID", "Registration", "Partner", "Agreed Price", "Return By", "Days Remaining", "Mileage Limit", "Status"}}
	for _, b := range s.Buybacks {
		reg := Unknown
		if v, ok := s.VehicleByID(b.VehicleID); ok {
			reg = v.Registration
		}
		days := format.Placeholder
		if at, ok := b.ReturnBy.Valid(); ok {
			days = strconv.Itoa(format.DaysUntil(at, now))
		}
		t.Rows = append(t.Rows, []string{
			b.VehicleID,
			reg,
			b.Partner,
			format.GBP(b.AgreedPrice),
			format.TimestampDate(b.ReturnBy),
			days,
			strconv.Itoa(b.MileageLimit),
			b.Status,
		})
	}
	return t
}

// AgreementRows renders a single agreement as field/value rows.
func AgreementRows(a models.Agreement, s models.Snapshot) Table {
	reg, model := Unknown, Unknown
	if v, ok := s.VehicleByID(a.VehicleID); ok {
		reg, model = v.Registration, v.Model
	}
	t := Table{
		Title:   "Rental Agreement " + a.AgreementID,
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"Agreement ID", a.AgreementID},
			{"Vehicle ID", a.VehicleID},
			{"Registration", reg},
			{"Model", model},
			{"Customer", a.Customer},
			{"Driver", orDash(a.Driver.Name)},
			{"Driver Licence", orDash(a.Driver.Licence)},
			{"Driver Phone", orDash(a.Driver.Phone)},
			{"Driver Email", orDash(a.Driver.Email)},
			{"Start", format.TimestampDateTime(a.StartAt)},
			{"End", format.TimestampDateTime(a.EndAt)},
			{"Stage", string(a.Stage)},
			{"Stage Updated", format.TimestampDateTime(a.StageUpdatedAt)},
			{"Status", a.Status},
			{"Monthly Rate", format.GBP(a.MonthlyRate)},
			{"Pending Penalties", format.GBPDecimal(penaltyTotal(a.PendingPenalties()))},
		},
	}
	for _, p := range a.Penalties {
		t.Rows = append(t.Rows, []string{"Penalty " + p.ID, fmt.Sprintf("%s %s (%s)", p.Reason, format.GBP(p.Amount), p.Status)})
	}
	for _, b := range a.Breaches {
		state := "open"
		if b.Resolved {
			state = "resolved"
		}
		t.Rows = append(t.Rows, []string{"Breach " + b.ID, fmt.Sprintf("%s, %s, %s", b.Type, b.Severity, state)})
	}
	return t
}

func penaltyTotal(penalties []models.Penalty) decimal.Decimal {
	total := decimal.Zero
	for _, p := range penalties {
		total = total.Add(decimal.NewFromFloat(p.Amount))
	}
	return total
}

func supplierName(s models.Snapshot, id string) string {
	if sup, ok := s.SupplierByID(id); ok {
		return sup.Name
	}
	return Unknown
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return format.Placeholder
	}
	return v
}
