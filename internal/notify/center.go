package notify

import (
	"sync"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// MergeReadState copies next, seeding each notification's read flag from
// prev by id. Ids missing from prev start unread.
func MergeReadState(prev map[string]bool, next []models.Notification) []models.Notification {
	out := make([]models.Notification, len(next))
	for i, n := range next {
		n.Read = prev[n.ID]
		out[i] = n
	}
	return out
}

// Center keeps notification read state per user across derivations.
type Center struct {
	mu   sync.RWMutex
	read map[string]map[string]bool
}

// NewCenter creates an empty read-state store.
func NewCenter() *Center {
	return &Center{read: make(map[string]map[string]bool)}
}

// Merge applies the user's read state to a fresh derivation.
func (c *Center) Merge(user string, next []models.Notification) []models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return MergeReadState(c.read[user], next)
}

// MarkAsRead records the notification as read for the user.
func (c *Center) MarkAsRead(user, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userState(user)[id] = true
}

// MarkAllAsRead records every given notification as read for the user.
func (c *Center) MarkAllAsRead(user string, notifications []models.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.userState(user)
	for _, n := range notifications {
		state[n.ID] = true
	}
}

// Unread counts notifications the user has not read.
func (c *Center) Unread(user string, notifications []models.Notification) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range notifications {
		if !c.read[user][item.ID] {
			n++
		}
	}
	return n
}

func (c *Center) userState(user string) map[string]bool {
	state, ok := c.read[user]
	if !ok {
		state = make(map[string]bool)
		c.read[user] = state
	}
	return state
}
