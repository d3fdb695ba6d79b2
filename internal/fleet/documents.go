package fleet

import (
	"fmt"
	"time"

	"github.com/ukydev/fleet-dashboard/internal/format"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

// ProjectDocuments builds the document library view. Supplier document status
// is re-derived from the expiry date so stale stored states do not leak through.
func ProjectDocuments(s models.Snapshot, now time.Time, expiryWindowDays int) []models.Document {
	var docs []models.Document

	for _, a := range s.Agreements {
		status := "active"
		if a.Stage == models.StageClosed {
			status = "archived"
		}
		docs = append(docs, models.Document{
			ID:              "doc-agreement-" + a.ID,
			Name:            fmt.Sprintf("Rental Agreement %s", a.AgreementID),
			Type:            "Rental Agreement",
			Category:        "agreements",
			RelatedEntityID: a.AgreementID,
			Status:          status,
			Date:            a.StartAt,
			ExpiryDate:      a.EndAt,
		})
	}

	for _, sup := range s.Suppliers {
		for _, d := range sup.Documents {
			docs = append(docs, models.Document{
				ID:              "doc-supplier-" + sup.ID + "-" + d.ID,
				Name:            fmt.Sprintf("%s - %s", sup.Name, d.Name),
				Type:            d.Type,
				Category:        "suppliers",
				RelatedEntityID: sup.ID,
				Status:          string(documentStatus(d, now, expiryWindowDays)),
				ExpiryDate:      d.ExpiryDate,
			})
		}
	}

	for _, b := range s.Buybacks {
		docs = append(docs, models.Document{
			ID:              "doc-buyback-" + b.ID,
			Name:            fmt.Sprintf("Buyback Contract %s (%s)", b.VehicleID, b.Partner),
			Type:            "Buyback Contract",
			Category:        "buybacks",
			RelatedEntityID: b.VehicleID,
			Status:          b.Status,
			ExpiryDate:      b.ReturnBy,
		})
	}

	for _, inv := range s.Invoices {
		docs = append(docs, models.Document{
			ID:              "doc-invoice-" + inv.ID,
			Name:            fmt.Sprintf("Invoice %s (%s)", inv.Number, format.GBP(inv.Amount)),
			Type:            "Invoice",
			Category:        "invoices",
			RelatedEntityID: inv.SupplierID,
			Status:          inv.Status,
			Date:            inv.IssuedAt,
		})
	}

	for _, po := range s.PurchaseOrders {
		docs = append(docs, models.Document{
			ID:              "doc-po-" + po.ID,
			Name:            fmt.Sprintf("Purchase Order %s", po.Number),
			Type:            "Purchase Order",
			Category:        "purchase-orders",
			RelatedEntityID: po.SupplierID,
			Status:          po.Status,
			Date:            po.RaisedAt,
		})
	}

	return docs
}

func documentStatus(d models.SupplierDocument, now time.Time, windowDays int) models.DocumentStatus {
	expiry, ok := d.ExpiryDate.Valid()
	if !ok {
		return d.Status
	}
	days := format.DaysUntil(expiry, now)
	switch {
	case days <= 0:
		return models.DocumentExpired
	case days <= windowDays:
		return models.DocumentExpiring
	default:
		return models.DocumentValid
	}
}
