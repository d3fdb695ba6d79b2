package db

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// MemoryStore serves a fixed snapshot held in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	snap    models.Snapshot
	version uint64
}

// NewMemoryStore normalizes and holds the snapshot.
func NewMemoryStore(snap models.Snapshot) *MemoryStore {
	return &MemoryStore{snap: snap.Normalize(), version: 1}
}

// Snapshot returns the held snapshot.
func (s *MemoryStore) Snapshot(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, nil
}

// Version returns the current snapshot version.
func (s *MemoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Replace swaps in a new snapshot and bumps the version.
func (s *MemoryStore) Replace(snap models.Snapshot) {
	s.mu.Lock()
	s.snap = snap.Normalize()
	s.version++
	s.mu.Unlock()
}

// MemoryUserCollection implements UserCollection without a database.
type MemoryUserCollection struct {
	mu    sync.RWMutex
	users []models.User
}

// NewMemoryUserCollection creates an empty user collection.
func NewMemoryUserCollection() *MemoryUserCollection {
	return &MemoryUserCollection{}
}

// InsertUser adds a user, assigning an ID when missing.
func (c *MemoryUserCollection) InsertUser(ctx context.Context, user models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.IsActive = true
	c.users = append(c.users, user)
	return nil
}

func (c *MemoryUserCollection) find(match func(models.User) bool) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindUserByID finds a user by hex ID.
func (c *MemoryUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return c.find(func(u models.User) bool { return u.ID.Hex() == id })
}

// FindUserByUsername finds a user by username.
func (c *MemoryUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.find(func(u models.User) bool { return u.Username == username })
}

// FindUserByEmail finds a user by email.
func (c *MemoryUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.find(func(u models.User) bool { return u.Email == email })
}

// FindUsers lists every user.
func (c *MemoryUserCollection) FindUsers(ctx context.Context) ([]models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.User(nil), c.users...), nil
}

// UpdateUser replaces the user with the given ID.
func (c *MemoryUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, u := range c.users {
		if u.ID.Hex() == id {
			user.ID = u.ID
			user.UpdatedAt = time.Now()
			c.users[i] = user
			return nil
		}
	}
	return ErrUserNotFound
}

// DeleteUser removes the user with the given ID.
func (c *MemoryUserCollection) DeleteUser(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, u := range c.users {
		if u.ID.Hex() == id {
			c.users = append(c.users[:i], c.users[i+1:]...)
			return nil
		}
	}
	return ErrUserNotFound
}

// UpdateLastLogin stamps the user's last login time.
func (c *MemoryUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, u := range c.users {
		if u.ID.Hex() == id {
			now := time.Now()
			c.users[i].LastLogin = &now
			c.users[i].UpdatedAt = now
			return nil
		}
	}
	return ErrUserNotFound
}
