package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dashboard/internal/export"
)

type reportInfo struct {
	Type  export.ReportType `json:"type"`
	Title string            `json:"title"`
}

// ListReports names every report that can be exported.
func (d *Dashboard) ListReports(w http.ResponseWriter, r *http.Request) {
	types := export.ReportTypes()
	out := make([]reportInfo, len(types))
	for i, rt := range types {
		out[i] = reportInfo{Type: rt, Title: rt.Title()}
	}
	writeJSON(w, http.StatusOK, out)
}

// requestFormat reads ?format=, defaulting to the caller's preference.
func requestFormat(r *http.Request, fallback string) (export.Format, error) {
	f := r.URL.Query().Get("format")
	if f == "" {
		f = fallback
	}
	return export.ParseFormat(f)
}

// ExportReport renders a whole-dataset report as CSV or PDF.
func (d *Dashboard) ExportReport(w http.ResponseWriter, r *http.Request) {
	rt, err := export.ParseReportType(r.PathValue("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	prefs := d.preferences(r.Context(), userKey(r))
	f, err := requestFormat(r, prefs.DefaultExportFormat)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	now := d.now()
	table, err := export.ToRows(rt, snap, now)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if d.sendTable(w, table, f, export.PDFOptions{GeneratedAt: now, IncludeDetails: prefs.IncludeVORDetails},
		export.Filename(rt, f, now), log.Fields{"report": rt, "format": f}) {
		d.Metrics.RecordExport(string(rt), string(f))
	}
}

// ExportAgreement renders one agreement with its penalties and breaches.
func (d *Dashboard) ExportAgreement(w http.ResponseWriter, r *http.Request) {
	prefs := d.preferences(r.Context(), userKey(r))
	f, err := requestFormat(r, prefs.DefaultExportFormat)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	a, found := snap.AgreementByID(r.PathValue("id"))
	if !found {
		http.Error(w, "Agreement not found", http.StatusNotFound)
		return
	}
	now := d.now()
	if d.sendTable(w, export.AgreementRows(a, snap), f, export.PDFOptions{GeneratedAt: now},
		export.AgreementFilename(a.AgreementID, f, now), log.Fields{"agreement": a.AgreementID, "format": f}) {
		d.Metrics.RecordExport("agreement", string(f))
	}
}

// sendTable encodes into memory first so a failed render answers 500
// instead of a truncated attachment.
func (d *Dashboard) sendTable(w http.ResponseWriter, t export.Table, f export.Format, opts export.PDFOptions, filename string, fields log.Fields) bool {
	var buf bytes.Buffer
	if err := export.Write(&buf, t, f, opts); err != nil {
		d.logger().WithError(err).WithFields(fields).Error("Failed to render export")
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrUnknownFormat) {
			status = http.StatusBadRequest
		}
		http.Error(w, "Failed to render export", status)
		return false
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		d.logger().WithError(err).WithFields(fields).Warn("Failed to send export")
		return false
	}
	d.logger().WithFields(fields).WithField("bytes", buf.Len()).Info("Exported report")
	return true
}
