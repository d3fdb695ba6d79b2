package handlers

import (
	"context"
	"net/http"
	"slices"

	"github.com/ukydev/fleet-dashboard/internal/models"
	"github.com/ukydev/fleet-dashboard/internal/notify"
)

type notificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// derive builds the user's notifications with their thresholds and read state.
func (d *Dashboard) derive(ctx context.Context, user string, snap models.Snapshot) []models.Notification {
	rules := notify.RulesFrom(d.preferences(ctx, user))
	return d.Center.Merge(user, rules.Derive(snap, d.now()))
}

func (d *Dashboard) respondNotifications(w http.ResponseWriter, user string, ns []models.Notification) {
	if ns == nil {
		ns = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Notifications: ns, Unread: d.Center.Unread(user, ns)})
}

// ListNotifications derives the caller's notifications.
func (d *Dashboard) ListNotifications(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	user := userKey(r)
	ns := d.derive(r.Context(), user, snap)
	d.Metrics.SetNotifications(ns)
	d.respondNotifications(w, user, ns)
}

// MarkNotificationRead marks one notification read for the caller.
func (d *Dashboard) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	user, id := userKey(r), r.PathValue("id")
	ns := d.derive(r.Context(), user, snap)
	i := slices.IndexFunc(ns, func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}
	d.Center.MarkAsRead(user, id)
	ns[i].Read = true
	d.respondNotifications(w, user, ns)
}

// MarkAllNotificationsRead marks every current notification read for the caller.
func (d *Dashboard) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return
	}
	user := userKey(r)
	ns := d.derive(r.Context(), user, snap)
	d.Center.MarkAllAsRead(user, ns)
	for i := range ns {
		ns[i].Read = true
	}
	d.respondNotifications(w, user, ns)
}

// PublishNotifications derives notifications with the shared settings and
// pushes new ones to the publisher. It returns how many were sent.
func (d *Dashboard) PublishNotifications(ctx context.Context) (int, error) {
	if d.Publisher == nil {
		return 0, nil
	}
	snap, err := d.Records.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	ns := notify.RulesFrom(d.preferences(ctx, "")).Derive(snap, d.now())
	d.Metrics.SetNotifications(ns)
	return d.Publisher.Publish(ctx, ns)
}
