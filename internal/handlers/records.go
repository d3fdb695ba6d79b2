package handlers

import (
	"net/http"

	"github.com/ukydev/fleet-dashboard/internal/fleet"
)

// ListVehicles returns the filtered vehicle table joined with rental status.
func (d *Dashboard) ListVehicles(w http.ResponseWriter, r *http.Request) {
	// Read the version first so a reload in between can only make the cached
	// rows look older than they are, never newer.
	version := d.Records.Version()
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := fleet.VehicleFilter{
		Query:        q.Get("q"),
		Status:       q.Get("status"),
		RentalStatus: q.Get("rental"),
		Location:     q.Get("location"),
		Partner:      q.Get("partner"),
		Risk:         q.Get("risk"),
		SortField:    q.Get("sort"),
		Descending:   descending(r),
	}
	now := d.now()
	rows := d.vehicles.Get(version, vehicleKey{filter: f, minute: now.Unix() / 60}, func() []fleet.VehicleRow {
		return fleet.FilterVehicles(snap.Vehicles, fleet.NewStatusResolver(snap.Agreements, d.logger()), f, now)
	})
	prefs := d.preferences(r.Context(), userKey(r))
	writeJSON(w, http.StatusOK, paginate(r, rows, prefs.ItemsPerPage))
}

type vehicleStatusResponse struct {
	VehicleID string `json:"vehicleId"`
	fleet.Resolution
}

// VehicleStatus resolves the rental status of one vehicle.
func (d *Dashboard) VehicleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	v, found := snap.VehicleByID(r.PathValue("id"))
	if !found {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}
	res := fleet.NewStatusResolver(snap.Agreements, d.logger()).Resolve(v.ID, d.now())
	writeJSON(w, http.StatusOK, vehicleStatusResponse{VehicleID: v.ID, Resolution: res})
}

// ListAgreements returns the filtered agreements.
func (d *Dashboard) ListAgreements(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	out := fleet.FilterAgreements(snap.Agreements, snap.Vehicles, fleet.AgreementFilter{
		Query:      q.Get("q"),
		Stage:      q.Get("stage"),
		Status:     q.Get("status"),
		DateRange:  fleet.DateBucket(q.Get("range")),
		SortField:  q.Get("sort"),
		Descending: descending(r),
	}, d.now())
	writeJSON(w, http.StatusOK, paginate(r, out, d.preferences(r.Context(), userKey(r)).ItemsPerPage))
}

// ListInvoices returns the filtered invoices.
func (d *Dashboard) ListInvoices(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	out := fleet.FilterInvoices(snap.Invoices, snap.Suppliers, fleet.InvoiceFilter{
		Query:      q.Get("q"),
		Status:     q.Get("status"),
		DateRange:  fleet.DateBucket(q.Get("range")),
		SortField:  q.Get("sort"),
		Descending: descending(r),
	}, d.now())
	writeJSON(w, http.StatusOK, paginate(r, out, d.preferences(r.Context(), userKey(r)).ItemsPerPage))
}

// ListDocuments returns the document projection, filtered.
func (d *Dashboard) ListDocuments(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	prefs := d.preferences(r.Context(), userKey(r))
	q := r.URL.Query()
	docs := fleet.ProjectDocuments(snap, d.now(), prefs.DocumentExpiryDays)
	out := fleet.FilterDocuments(docs, fleet.DocumentFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
	})
	writeJSON(w, http.StatusOK, paginate(r, out, prefs.ItemsPerPage))
}

// ListWorkflows returns the filtered workflows.
func (d *Dashboard) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	out := fleet.FilterWorkflows(snap.Workflows, fleet.WorkflowFilter{
		Query:    q.Get("q"),
		Type:     q.Get("type"),
		Priority: q.Get("priority"),
	})
	writeJSON(w, http.StatusOK, paginate(r, out, d.preferences(r.Context(), userKey(r)).ItemsPerPage))
}

// ListBottlenecks returns stages stuck past the threshold. The hours query
// parameter overrides the caller's configured threshold.
func (d *Dashboard) ListBottlenecks(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	hours := queryInt(r, "hours", d.preferences(r.Context(), userKey(r)).BottleneckHours)
	if hours <= 0 {
		http.Error(w, "hours must be positive", http.StatusBadRequest)
		return
	}
	out := fleet.FindBottlenecks(snap, hours, d.now())
	if out == nil {
		out = []fleet.Bottleneck{}
	}
	writeJSON(w, http.StatusOK, out)
}

// Search runs the global search overlay query.
func (d *Dashboard) Search(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	out := fleet.Search(snap, r.URL.Query().Get("q"), queryInt(r, "limit", 5))
	if out == nil {
		out = []fleet.SearchResult{}
	}
	writeJSON(w, http.StatusOK, out)
}

