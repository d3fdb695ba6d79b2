package handlers

import (
	"errors"
	"net/http"

	"github.com/ukydev/fleet-dashboard/internal/comms"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

type emailsResponse struct {
	Emails []models.EmailHistoryEntry `json:"emails"`
	Unread map[models.Folder]int      `json:"unread"`
}

// session returns the caller's communications session, seeded from the store.
func (d *Dashboard) session(w http.ResponseWriter, r *http.Request) (*comms.Session, models.Snapshot, bool) {
	snap, ok := d.snapshot(w, r)
	if !ok {
		return nil, snap, false
	}
	return d.Sessions.Get(userKey(r), snap.Emails), snap, true
}

// ListEmails lists one mailbox folder, optionally filtered by ?q=.
func (d *Dashboard) ListEmails(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := d.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	emails := sess.Mailbox.List(models.Folder(q.Get("folder")), q.Get("q"))
	if emails == nil {
		emails = []models.EmailHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, emailsResponse{Emails: emails, Unread: sess.Mailbox.Unread()})
}

// SendEmail records a simulated outbound email. A draft naming a contact
// without a recipient is addressed to the contact's email.
func (d *Dashboard) SendEmail(w http.ResponseWriter, r *http.Request) {
	var draft comms.Draft
	if err := readJSON(r, &draft); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	sess, snap, ok := d.session(w, r)
	if !ok {
		return
	}
	if draft.To == "" && draft.ContactID != "" {
		if c, found := snap.ContactByID(draft.ContactID); found {
			draft.To = c.Email
		}
	}
	entry, err := sess.Mailbox.Send(draft)
	if errors.Is(err, comms.ErrInvalidDraft) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Failed to send email", http.StatusInternalServerError)
		return
	}
	d.Metrics.RecordEmailSent()
	d.logger().WithField("email_id", entry.ID).Info("Sent email")
	writeJSON(w, http.StatusCreated, entry)
}

// EmailAction applies read, unread, star, archive, delete or restore.
func (d *Dashboard) EmailAction(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := d.session(w, r)
	if !ok {
		return
	}
	entry, err := sess.Mailbox.Apply(r.PathValue("id"), r.PathValue("action"))
	switch {
	case errors.Is(err, comms.ErrEmailNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, comms.ErrUnknownAction):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "Failed to update email", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type callsResponse struct {
	State   comms.CallState           `json:"state"`
	History []models.CallHistoryEntry `json:"history"`
}

func respondCalls(w http.ResponseWriter, status int, sess *comms.Session) {
	history := sess.Dialer.History()
	if history == nil {
		history = []models.CallHistoryEntry{}
	}
	writeJSON(w, status, callsResponse{State: sess.Dialer.State(), History: history})
}

// CallState reports the caller's current call and call history.
func (d *Dashboard) CallState(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := d.session(w, r)
	if !ok {
		return
	}
	respondCalls(w, http.StatusOK, sess)
}

type startCallRequest struct {
	ContactID string `json:"contactId"`
}

// StartCall dials a contact. The call resolves in the background.
func (d *Dashboard) StartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	sess, snap, ok := d.session(w, r)
	if !ok {
		return
	}
	contact, found := snap.ContactByID(req.ContactID)
	if !found {
		http.Error(w, "Contact not found", http.StatusNotFound)
		return
	}
	if _, err := sess.Dialer.Start(contact); err != nil {
		if errors.Is(err, comms.ErrCallInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	d.Metrics.RecordCall("started")
	respondCalls(w, http.StatusAccepted, sess)
}

// EndCall cancels the caller's current call.
func (d *Dashboard) EndCall(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := d.session(w, r)
	if !ok {
		return
	}
	if err := sess.Dialer.End(); err != nil {
		if errors.Is(err, comms.ErrNoActiveCall) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	d.Metrics.RecordCall("cancelled")
	respondCalls(w, http.StatusOK, sess)
}
