// Package comms simulates the communications centre: an in-memory mailbox
// and a call dialer that produces canned transcripts.
package comms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/fleet-dashboard/internal/fleet"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

var (
	ErrEmailNotFound = errors.New("email not found")
	ErrInvalidDraft  = errors.New("invalid email draft")
	ErrUnknownAction = errors.New("unknown email action")
)

// HistoryAge is the age after which sent mail is listed under history.
const HistoryAge = 7 * 24 * time.Hour

// FolderOf resolves the single folder an entry is listed under. Deleted and
// archived flags win over an explicit folder; unfiled entries are inferred
// from direction and age.
func FolderOf(e models.EmailHistoryEntry, now time.Time) models.Folder {
	switch {
	case e.Deleted:
		return models.FolderTrash
	case e.Archived:
		return models.FolderArchived
	case e.Folder != "" && e.Folder != models.FolderAll && e.Folder != models.FolderStarred:
		return e.Folder
	case e.Direction == models.Inbound:
		return models.FolderInbox
	case now.Sub(e.SentAt) > HistoryAge:
		return models.FolderHistory
	default:
		return models.FolderSent
	}
}

// Draft is an outgoing email.
type Draft struct {
	ContactID string `json:"contactId"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Mailbox holds one session's email history.
type Mailbox struct {
	mu      sync.RWMutex
	from    string
	entries []models.EmailHistoryEntry
	lastID  int64
	now     func() time.Time
}

// NewMailbox copies the seed entries into a new mailbox sending as from.
func NewMailbox(from string, seed []models.EmailHistoryEntry) *Mailbox {
	return &Mailbox{
		from:    from,
		entries: append([]models.EmailHistoryEntry(nil), seed...),
		now:     time.Now,
	}
}

// Send appends the draft as a sent entry. Delivery always succeeds.
func (m *Mailbox) Send(d Draft) (models.EmailHistoryEntry, error) {
	if strings.TrimSpace(d.To) == "" {
		return models.EmailHistoryEntry{}, fmt.Errorf("%w: recipient is required", ErrInvalidDraft)
	}
	if strings.TrimSpace(d.Subject) == "" && strings.TrimSpace(d.Body) == "" {
		return models.EmailHistoryEntry{}, fmt.Errorf("%w: subject or body is required", ErrInvalidDraft)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	entry := models.EmailHistoryEntry{
		ID:        "email-" + strconv.FormatInt(nextID(&m.lastID, now), 10),
		ContactID: d.ContactID,
		From:      m.from,
		To:        d.To,
		Subject:   d.Subject,
		Body:      d.Body,
		SentAt:    now,
		Direction: models.Outbound,
		Folder:    models.FolderSent,
		Status:    "sent",
		Read:      true,
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

// nextID returns now in unix millis, bumped past the previous id.
func nextID(last *int64, now time.Time) int64 {
	id := now.UnixMilli()
	if id <= *last {
		id = *last + 1
	}
	*last = id
	return id
}

// Get returns an entry by id.
func (m *Mailbox) Get(id string) (models.EmailHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.EmailHistoryEntry{}, fmt.Errorf("%w: %s", ErrEmailNotFound, id)
}

func (m *Mailbox) update(id string, fn func(*models.EmailHistoryEntry)) (models.EmailHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id {
			fn(&m.entries[i])
			return m.entries[i], nil
		}
	}
	return models.EmailHistoryEntry{}, fmt.Errorf("%w: %s", ErrEmailNotFound, id)
}

// MarkRead sets the read flag.
func (m *Mailbox) MarkRead(id string, read bool) (models.EmailHistoryEntry, error) {
	return m.update(id, func(e *models.EmailHistoryEntry) { e.Read = read })
}

// ToggleStar flips the starred flag.
func (m *Mailbox) ToggleStar(id string) (models.EmailHistoryEntry, error) {
	return m.update(id, func(e *models.EmailHistoryEntry) { e.Starred = !e.Starred })
}

// Archive moves the entry to the archived folder.
func (m *Mailbox) Archive(id string) (models.EmailHistoryEntry, error) {
	return m.update(id, func(e *models.EmailHistoryEntry) { e.Archived = true })
}

// Delete moves the entry to trash.
func (m *Mailbox) Delete(id string) (models.EmailHistoryEntry, error) {
	return m.update(id, func(e *models.EmailHistoryEntry) { e.Deleted = true })
}

// Restore takes the entry out of trash and archive.
func (m *Mailbox) Restore(id string) (models.EmailHistoryEntry, error) {
	return m.update(id, func(e *models.EmailHistoryEntry) { e.Deleted, e.Archived = false, false })
}

// Apply runs a named action: read, unread, star, archive, delete or restore.
func (m *Mailbox) Apply(id, action string) (models.EmailHistoryEntry, error) {
	switch strings.ToLower(action) {
	case "read":
		return m.MarkRead(id, true)
	case "unread":
		return m.MarkRead(id, false)
	case "star":
		return m.ToggleStar(id)
	case "archive":
		return m.Archive(id)
	case "delete":
		return m.Delete(id)
	case "restore":
		return m.Restore(id)
	default:
		return models.EmailHistoryEntry{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// List returns the folder's entries matching query, newest first. "all"
// lists every entry outside trash and "starred" every starred one.
func (m *Mailbox) List(folder models.Folder, query string) []models.EmailHistoryEntry {
	m.mu.RLock()
	entries := append([]models.EmailHistoryEntry(nil), m.entries...)
	m.mu.RUnlock()

	now := m.now()
	if folder == "" {
		folder = models.FolderInbox
	}
	inFolder := func(e models.EmailHistoryEntry) bool {
		switch folder {
		case models.FolderAll:
			return !e.Deleted
		case models.FolderStarred:
			return e.Starred && !e.Deleted
		default:
			return FolderOf(e, now) == folder
		}
	}
	return fleet.Apply(entries, fleet.Spec[models.EmailHistoryEntry]{
		Query: query,
		SearchFields: func(e models.EmailHistoryEntry) []string {
			return []string{e.From, e.To, e.Subject, e.Body}
		},
		Filters: []fleet.Predicate[models.EmailHistoryEntry]{inFolder},
		Sort: fleet.ByTime(func(e models.EmailHistoryEntry) models.Timestamp {
			return models.TS(e.SentAt)
		}, true),
	})
}

// Unread counts unread entries per folder.
func (m *Mailbox) Unread() map[models.Folder]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.now()
	counts := make(map[models.Folder]int)
	for _, e := range m.entries {
		if !e.Read {
			counts[FolderOf(e, now)]++
		}
	}
	return counts
}
