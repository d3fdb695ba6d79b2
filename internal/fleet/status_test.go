package fleet

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-dashboard/internal/fixtures"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func agreement(vehicleID string, start, end time.Duration, stage models.Stage) models.Agreement {
	return models.Agreement{
		ID:        vehicleID + "-" + string(stage),
		VehicleID: vehicleID,
		StartAt:   models.TS(testNow.Add(start)),
		EndAt:     models.TS(testNow.Add(end)),
		Stage:     stage,
	}
}

func TestResolveRentalStatus(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name       string
		agreements []models.Agreement
		want       models.RentalStatus
	}{
		{"no agreements", nil, models.RentalAvailable},
		{"live agreement", []models.Agreement{agreement("BYD-001", -day, day, models.StageOnTrack)}, models.RentalOnHire},
		{"starts exactly now", []models.Agreement{agreement("BYD-001", 0, day, models.StageOnTrack)}, models.RentalOnHire},
		{"ends exactly now", []models.Agreement{agreement("BYD-001", -day, 0, models.StageOnTrack)}, models.RentalAvailable},
		{"live but returned", []models.Agreement{agreement("BYD-001", -day, day, models.StageVehicleReturned)}, models.RentalAvailable},
		{"live but charges finalised", []models.Agreement{agreement("BYD-001", -day, day, models.StageChargesFinalised)}, models.RentalAvailable},
		{"future reservation", []models.Agreement{agreement("BYD-001", day, 2*day, models.StageReservationCreated)}, models.RentalReserved},
		{"future but closed", []models.Agreement{agreement("BYD-001", day, 2*day, models.StageClosed)}, models.RentalAvailable},
		{"expired", []models.Agreement{agreement("BYD-001", -2*day, -day, models.StageOnTrack)}, models.RentalAvailable},
		{"on hire beats reserved", []models.Agreement{
			agreement("BYD-001", day, 2*day, models.StageReservationCreated),
			agreement("BYD-001", -day, day, models.StageOnTrack),
		}, models.RentalOnHire},
		{"other vehicle", []models.Agreement{agreement("BYD-009", -day, day, models.StageOnTrack)}, models.RentalAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRentalStatus("BYD-001", tt.agreements, testNow))
		})
	}
}

func TestResolveRentalStatus_BareVehicleID(t *testing.T) {
	agreements := []models.Agreement{agreement("001", -time.Hour, time.Hour, models.StageOnTrack)}
	assert.Equal(t, models.RentalOnHire, ResolveRentalStatus("BYD-001", agreements, testNow))
	assert.Equal(t, models.RentalOnHire, ResolveRentalStatus("001", agreements, testNow))
	assert.Equal(t, models.RentalOnHire, ResolveRentalStatus("byd-001", agreements, testNow))
}

func TestResolveRentalStatus_UnreadableDatesAreSkipped(t *testing.T) {
	bad := agreement("BYD-001", -time.Hour, time.Hour, models.StageOnTrack)
	bad.StartAt = "not a date"
	assert.Equal(t, models.RentalAvailable, ResolveRentalStatus("BYD-001", []models.Agreement{bad}, testNow))

	good := agreement("BYD-001", 48*time.Hour, 72*time.Hour, models.StageAgreementSigned)
	assert.Equal(t, models.RentalReserved, ResolveRentalStatus("BYD-001", []models.Agreement{bad, good}, testNow))
}

func TestStatusResolver_TieBreaks(t *testing.T) {
	first := agreement("BYD-001", -time.Hour, time.Hour, models.StageOnTrack)
	first.ID = "first"
	second := agreement("BYD-001", -time.Hour, 2*time.Hour, models.StageOnTrack)
	second.ID = "second"
	later := agreement("BYD-001", -30*time.Minute, time.Hour, models.StageOnTrack)
	later.ID = "later"

	res := NewStatusResolver([]models.Agreement{first, second}, nil).Resolve("BYD-001", testNow)
	require.NotNil(t, res.Agreement)
	assert.Equal(t, "first", res.Agreement.ID, "equal starts keep the first agreement")

	res = NewStatusResolver([]models.Agreement{first, later}, nil).Resolve("BYD-001", testNow)
	require.NotNil(t, res.Agreement)
	assert.Equal(t, "later", res.Agreement.ID, "the most recent start wins")

	soon := agreement("BYD-001", time.Hour, 5*time.Hour, models.StageReservationCreated)
	soon.ID = "soon"
	far := agreement("BYD-001", 3*time.Hour, 5*time.Hour, models.StageReservationCreated)
	far.ID = "far"
	res = NewStatusResolver([]models.Agreement{far, soon}, nil).Resolve("BYD-001", testNow)
	require.NotNil(t, res.Agreement)
	assert.Equal(t, "soon", res.Agreement.ID, "the nearest reservation wins")
}

func TestResolve_RecoversToAvailable(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := NewStatusResolver(nil, logger)

	res := r.guard("BYD-001", func() Resolution { panic("boom") })
	assert.Equal(t, models.RentalAvailable, res.Status)
	assert.Nil(t, res.Agreement)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "BYD-001", hook.LastEntry().Data["vehicle_id"])
}

func TestFixtureRentalStatuses(t *testing.T) {
	snap := fixtures.Snapshot(testNow).Normalize()
	r := NewStatusResolver(snap.Agreements, nil)
	want := map[string]models.RentalStatus{
		"BYD-001": models.RentalOnHire,
		"BYD-002": models.RentalAvailable,
		"BYD-003": models.RentalAvailable,
		"BYD-004": models.RentalAvailable,
		"BYD-005": models.RentalReserved,
		"BYD-006": models.RentalAvailable,
	}
	for _, v := range snap.Vehicles {
		assert.Equal(t, want[v.ID], r.Status(v.ID, testNow), v.ID)
	}
}

func TestActiveAgreement(t *testing.T) {
	live := agreement("BYD-001", -time.Hour, time.Hour, models.StageVehicleCollected)
	assert.True(t, ActiveAgreement(live, testNow))
	live.Stage = models.StageClosed
	assert.False(t, ActiveAgreement(live, testNow))
}
