package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/ukydev/fleet-dashboard/internal/settings"
)

// GetSettings returns the caller's preferences.
func (d *Dashboard) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.preferences(r.Context(), userKey(r)))
}

// UpdateSettings merges a partial preference document over the caller's
// current settings and saves the result.
func (d *Dashboard) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	user := userKey(r)
	current, err := d.Settings.Load(r.Context(), user)
	if err != nil {
		d.logger().WithError(err).Error("Failed to load settings")
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	merged, err := settings.Merge(current, patch)
	if err == nil {
		err = d.Settings.Save(r.Context(), user, merged)
	}
	switch {
	case errors.Is(err, settings.ErrInvalidSettings):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		d.logger().WithError(err).Error("Failed to save settings")
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	d.logger().WithField("user", user).Info("Saved settings")
	writeJSON(w, http.StatusOK, merged)
}
