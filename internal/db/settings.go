package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-dashboard/internal/models"
	"github.com/ukydev/fleet-dashboard/internal/settings"
)

// MongoSettingsStore persists preference objects in the settings collection,
// one document per owner.
type MongoSettingsStore struct {
	Collection *mongo.Collection
}

type settingsDocument struct {
	ID       string          `bson:"_id"`
	Settings models.Settings `bson:"settings"`
}

func settingsID(owner string) string {
	if owner == "" {
		return settings.Key
	}
	return settings.Key + ":" + owner
}

// Load returns the owner's settings, or defaults when none were saved.
func (c *MongoSettingsStore) Load(ctx context.Context, owner string) (models.Settings, error) {
	if c.Collection == nil {
		return models.Settings{}, fmt.Errorf("mongo collection is nil")
	}
	var doc settingsDocument
	err := c.Collection.FindOne(ctx, bson.M{"_id": settingsID(owner)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return settings.Defaults(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return doc.Settings, nil
}

// Save validates and upserts the owner's settings.
func (c *MongoSettingsStore) Save(ctx context.Context, owner string, s models.Settings) error {
	if err := settings.Validate(s); err != nil {
		return err
	}
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	id := settingsID(owner)
	_, err := c.Collection.ReplaceOne(ctx,
		bson.M{"_id": id},
		settingsDocument{ID: id, Settings: s},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
