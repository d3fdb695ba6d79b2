// Package settings loads, validates and persists the dashboard preferences
// (the "fleetSettings" object).
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Key is the storage key of the preference object.
const Key = "fleetSettings"

var ErrInvalidSettings = errors.New("invalid settings")

// Store persists settings per owner. An empty owner is the shared default.
type Store interface {
	Load(ctx context.Context, owner string) (models.Settings, error)
	Save(ctx context.Context, owner string, s models.Settings) error
}

// Defaults returns the preferences a new user starts with.
func Defaults() models.Settings {
	return models.Settings{
		EmailAlerts:          true,
		ServiceDelayAlerts:   true,
		ContractExpiryAlerts: true,
		RiskAlerts:           true,
		PenaltyAlerts:        true,
		BreachAlerts:         true,
		DocumentExpiryAlerts: true,
		WorkshopDelayHours:   48,
		PartsDelayHours:      72,
		ContractExpiryDays:   7,
		DocumentExpiryDays:   30,
		BottleneckHours:      24,
		ItemsPerPage:         25,
		DateFormat:           "short",
		DefaultExportFormat:  "csv",
		IncludeVORDetails:    true,
	}
}

// Validate checks thresholds are positive and enumerated fields are known.
func Validate(s models.Settings) error {
	positive := []struct {
		name  string
		value int
	}{
		{"workshopDelayHours", s.WorkshopDelayHours},
		{"partsDelayHours", s.PartsDelayHours},
		{"contractExpiryDays", s.ContractExpiryDays},
		{"documentExpiryDays", s.DocumentExpiryDays},
		{"bottleneckHours", s.BottleneckHours},
		{"itemsPerPage", s.ItemsPerPage},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidSettings, p.name)
		}
	}
	switch s.DateFormat {
	case "short", "long":
	default:
		return fmt.Errorf("%w: unknown date format %q", ErrInvalidSettings, s.DateFormat)
	}
	switch s.DefaultExportFormat {
	case "csv", "pdf":
	default:
		return fmt.Errorf("%w: unknown export format %q", ErrInvalidSettings, s.DefaultExportFormat)
	}
	return nil
}

// Merge overlays a partial JSON document onto base. Keys absent from the
// document keep their base value.
func Merge(base models.Settings, patch []byte) (models.Settings, error) {
	merged := base
	if err := json.Unmarshal(patch, &merged); err != nil {
		return base, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return merged, nil
}

// MemoryStore keeps settings in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]models.Settings
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]models.Settings)}
}

// Load returns the owner's settings, or defaults.
func (m *MemoryStore) Load(ctx context.Context, owner string) (models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.data[owner]; ok {
		return s, nil
	}
	return Defaults(), nil
}

// Save validates and stores the owner's settings.
func (m *MemoryStore) Save(ctx context.Context, owner string, s models.Settings) error {
	if err := Validate(s); err != nil {
		return err
	}
	m.mu.Lock()
	m.data[owner] = s
	m.mu.Unlock()
	return nil
}

// FileStore keeps settings in a JSON file holding one object per owner.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) readAll() (map[string]models.Settings, error) {
	all := make(map[string]models.Settings)
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}
	return all, nil
}

// Load returns the owner's settings merged over defaults.
func (f *FileStore) Load(ctx context.Context, owner string) (models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		return Defaults(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("read settings file: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Settings{}, fmt.Errorf("parse settings file: %w", err)
	}
	entry, ok := raw[ownerKey(owner)]
	if !ok {
		return Defaults(), nil
	}
	return Merge(Defaults(), entry)
}

// Save validates and writes the owner's settings, keeping other owners intact.
func (f *FileStore) Save(ctx context.Context, owner string, s models.Settings) error {
	if err := Validate(s); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.readAll()
	if err != nil {
		return err
	}
	all[ownerKey(owner)] = s
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

func ownerKey(owner string) string {
	if owner == "" {
		return Key
	}
	return Key + ":" + owner
}
