package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	d := Defaults()
	require.NoError(t, Validate(d))
	assert.Equal(t, 48, d.WorkshopDelayHours)
	assert.Equal(t, 72, d.PartsDelayHours)
	assert.Equal(t, 7, d.ContractExpiryDays)
	assert.Equal(t, 30, d.DocumentExpiryDays)
}

func TestValidate(t *testing.T) {
	s := Defaults()
	s.PartsDelayHours = 0
	assert.ErrorIs(t, Validate(s), ErrInvalidSettings)

	s = Defaults()
	s.DefaultExportFormat = "xlsx"
	assert.ErrorIs(t, Validate(s), ErrInvalidSettings)

	s = Defaults()
	s.DateFormat = "iso"
	assert.ErrorIs(t, Validate(s), ErrInvalidSettings)
}

func TestMerge(t *testing.T) {
	merged, err := Merge(Defaults(), []byte(`{"workshopDelayHours": 24, "riskAlerts": false}`))
	require.NoError(t, err)
	assert.Equal(t, 24, merged.WorkshopDelayHours)
	assert.False(t, merged.RiskAlerts)
	assert.Equal(t, 72, merged.PartsDelayHours)

	_, err = Merge(Defaults(), []byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	loaded, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), loaded)

	s := Defaults()
	s.ItemsPerPage = 50
	require.NoError(t, store.Save(ctx, "alice", s))

	loaded, err = store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 50, loaded.ItemsPerPage)

	s.ItemsPerPage = -1
	assert.ErrorIs(t, store.Save(ctx, "alice", s), ErrInvalidSettings)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := NewFileStore(path)

	loaded, err := store.Load(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), loaded, "missing file yields defaults")

	shared := Defaults()
	shared.BottleneckHours = 12
	require.NoError(t, store.Save(ctx, "", shared))

	mine := Defaults()
	mine.DefaultExportFormat = "pdf"
	require.NoError(t, store.Save(ctx, "bob", mine))

	loaded, err = store.Load(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.BottleneckHours)

	loaded, err = store.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "pdf", loaded.DefaultExportFormat)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fleetSettings"`)
	assert.Contains(t, string(data), `"fleetSettings:bob"`)
}

func TestFileStore_PartialEntryMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fleetSettings": {"itemsPerPage": 10}}`), 0o600))

	loaded, err := NewFileStore(path).Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.ItemsPerPage)
	assert.Equal(t, 48, loaded.WorkshopDelayHours)
}
