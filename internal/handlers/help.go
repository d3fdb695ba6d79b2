package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/ukydev/fleet-dashboard/internal/help"
)

type topicSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListHelp names the help topics.
func (d *Dashboard) ListHelp(w http.ResponseWriter, r *http.Request) {
	topics := d.Help.Topics()
	out := make([]topicSummary, len(topics))
	for i, t := range topics {
		out[i] = topicSummary{ID: t.ID, Title: t.Title}
	}
	writeJSON(w, http.StatusOK, out)
}

// HelpTopic renders a topic as escaped HTML, or as its blocks with ?format=json.
func (d *Dashboard) HelpTopic(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("topic")
	if r.URL.Query().Get("format") == "json" {
		topic, err := d.Help.Topic(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, topic)
		return
	}
	var buf bytes.Buffer
	if err := d.Help.Render(&buf, id); err != nil {
		if errors.Is(err, help.ErrTopicNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		d.logger().WithError(err).WithField("topic", id).Error("Failed to render help topic")
		http.Error(w, "Failed to render help topic", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
