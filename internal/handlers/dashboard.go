package handlers

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dashboard/internal/comms"
	"github.com/ukydev/fleet-dashboard/internal/db"
	"github.com/ukydev/fleet-dashboard/internal/fleet"
	"github.com/ukydev/fleet-dashboard/internal/help"
	"github.com/ukydev/fleet-dashboard/internal/metrics"
	"github.com/ukydev/fleet-dashboard/internal/models"
	"github.com/ukydev/fleet-dashboard/internal/notify"
	"github.com/ukydev/fleet-dashboard/internal/settings"
)

// Gate wraps a handler with a permission check for the named action.
type Gate func(action string) func(http.Handler) http.Handler

// Dashboard serves the fleet dashboard API over a record store.
type Dashboard struct {
	Records   db.RecordStore
	Settings  settings.Store
	Center    *notify.Center
	Publisher notify.Publisher
	Sessions  *comms.Sessions
	Help      *help.Library
	Metrics   *metrics.Registry
	Logger    log.FieldLogger
	Now       func() time.Time

	vehicles fleet.Memo[vehicleKey, fleet.VehicleRow]
}

// vehicleKey invalidates the vehicle memo on filter changes and once a
// minute, since rental status depends on the clock.
type vehicleKey struct {
	filter fleet.VehicleFilter
	minute int64
}

// Register mounts every dashboard route on mux behind gate.
func (d *Dashboard) Register(mux *http.ServeMux, gate Gate) {
	route := func(pattern, action string, h http.HandlerFunc) {
		mux.Handle(pattern, gate(action)(h))
	}

	mux.HandleFunc("GET /health", d.Health)

	route("GET /api/vehicles", models.ActionViewFleet, d.ListVehicles)
	route("GET /api/vehicles/{id}/status", models.ActionViewFleet, d.VehicleStatus)
	route("GET /api/agreements", models.ActionViewFleet, d.ListAgreements)
	route("GET /api/agreements/{id}/export", models.ActionExportReports, d.ExportAgreement)
	route("GET /api/invoices", models.ActionViewFinancials, d.ListInvoices)
	route("GET /api/documents", models.ActionViewFleet, d.ListDocuments)
	route("GET /api/workflows", models.ActionViewFleet, d.ListWorkflows)
	route("GET /api/bottlenecks", models.ActionViewFleet, d.ListBottlenecks)
	route("GET /api/search", models.ActionViewFleet, d.Search)

	route("GET /api/notifications", models.ActionViewFleet, d.ListNotifications)
	route("POST /api/notifications/read-all", models.ActionViewFleet, d.MarkAllNotificationsRead)
	route("POST /api/notifications/{id}/read", models.ActionViewFleet, d.MarkNotificationRead)

	route("GET /api/reports", models.ActionExportReports, d.ListReports)
	route("GET /api/reports/{type}", models.ActionExportReports, d.ExportReport)

	route("GET /api/settings", models.ActionViewFleet, d.GetSettings)
	route("PUT /api/settings", models.ActionManageSettings, d.UpdateSettings)

	route("GET /api/communications/emails", models.ActionViewFleet, d.ListEmails)
	route("POST /api/communications/emails", models.ActionSendCommunications, d.SendEmail)
	route("POST /api/communications/emails/{id}/{action}", models.ActionSendCommunications, d.EmailAction)
	route("GET /api/communications/calls", models.ActionViewFleet, d.CallState)
	route("POST /api/communications/calls", models.ActionSendCommunications, d.StartCall)
	route("DELETE /api/communications/calls", models.ActionSendCommunications, d.EndCall)

	route("GET /api/help", models.ActionViewFleet, d.ListHelp)
	route("GET /api/help/{topic}", models.ActionViewFleet, d.HelpTopic)
}

type healthResponse struct {
	Status  string `json:"status"`
	Version uint64 `json:"recordsVersion"`
}

// Health reports whether the record store can serve a snapshot.
func (d *Dashboard) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := d.Records.Snapshot(r.Context()); err != nil {
		d.logger().WithError(err).Warn("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Version: d.Records.Version()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: d.Records.Version()})
}

func (d *Dashboard) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dashboard) logger() log.FieldLogger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.StandardLogger()
}

// snapshot loads the records, answering 500 itself on failure.
func (d *Dashboard) snapshot(w http.ResponseWriter, r *http.Request) (models.Snapshot, bool) {
	snap, err := d.Records.Snapshot(r.Context())
	if err != nil {
		d.logger().WithError(err).Error("Failed to load records")
		http.Error(w, "Failed to load records", http.StatusInternalServerError)
		return models.Snapshot{}, false
	}
	return snap, true
}

// preferences loads the caller's settings, falling back to defaults on error.
func (d *Dashboard) preferences(ctx context.Context, user string) models.Settings {
	if d.Settings == nil {
		return settings.Defaults()
	}
	s, err := d.Settings.Load(ctx, user)
	if err != nil {
		d.logger().WithError(err).WithField("user", user).Warn("Failed to load settings, using defaults")
		return settings.Defaults()
	}
	return s
}
