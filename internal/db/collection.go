package db

import (
	"context"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// RecordStore supplies read-only snapshots of the dashboard records.
// Version changes whenever the snapshot content may have changed, so callers
// can key memoized results on it.
type RecordStore interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
	Version() uint64
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, user models.User) error
	DeleteUser(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
}
