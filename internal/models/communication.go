package models

import "time"

// Direction tells whether a message or call was sent or received.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Folder is a mailbox folder.
type Folder string

const (
	FolderInbox    Folder = "inbox"
	FolderSent     Folder = "sent"
	FolderHistory  Folder = "history"
	FolderStarred  Folder = "starred"
	FolderArchived Folder = "archived"
	FolderTrash    Folder = "trash"
	FolderAll      Folder = "all"
)

// Contact is someone the fleet team emails or calls.
type Contact struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Company string `bson:"company" json:"company"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Type    string `bson:"type" json:"type"` // "customer", "supplier", "partner"
}

// EmailHistoryEntry is a simulated email. Folder is empty when it was never explicitly filed.
type EmailHistoryEntry struct {
	ID        string    `bson:"_id" json:"id"`
	ContactID string    `bson:"contact_id,omitempty" json:"contactId,omitempty"`
	From      string    `bson:"from" json:"from"`
	To        string    `bson:"to" json:"to"`
	Subject   string    `bson:"subject" json:"subject"`
	Body      string    `bson:"body" json:"body"`
	SentAt    time.Time `bson:"sent_at" json:"sentAt"`
	Direction Direction `bson:"direction" json:"direction"`
	Folder    Folder    `bson:"folder,omitempty" json:"folder,omitempty"`
	Status    string    `bson:"status" json:"status"`
	Read      bool      `bson:"read" json:"read"`
	Starred   bool      `bson:"starred" json:"starred"`
	Archived  bool      `bson:"archived" json:"archived"`
	Deleted   bool      `bson:"deleted" json:"deleted"`
}

// CallHistoryEntry is a completed simulated call.
type CallHistoryEntry struct {
	ID              string    `json:"id"`
	ContactID       string    `json:"contactId"`
	ContactName     string    `json:"contactName"`
	Phone           string    `json:"phone"`
	Direction       Direction `json:"direction"`
	StartedAt       time.Time `json:"startedAt"`
	DurationSeconds int       `json:"durationSeconds"`
	Recorded        bool      `json:"recorded"`
	Transcript      string    `json:"transcript"`
	VehicleReg      string    `json:"vehicleReg,omitempty"`
	ContractID      string    `json:"contractId,omitempty"`
	CaseID          string    `json:"caseId,omitempty"`
	Status          string    `json:"status"`
}
