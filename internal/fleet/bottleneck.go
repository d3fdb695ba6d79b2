package fleet

import (
	"slices"
	"time"

	"github.com/ukydev/fleet-dashboard/internal/format"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Bottleneck is a vehicle or agreement stuck in a stage past the threshold.
type Bottleneck struct {
	EntityType string    `json:"entityType"` // "vehicle" or "agreement"
	EntityID   string    `json:"entityId"`
	Label      string    `json:"label"`
	Stage      string    `json:"stage"`
	Since      time.Time `json:"since"`
	Hours      float64   `json:"hours"`
}

// FindBottlenecks lists off-road vehicles and in-progress agreements whose current
// stage is older than thresholdHours, longest first.
func FindBottlenecks(s models.Snapshot, thresholdHours int, now time.Time) []Bottleneck {
	limit := float64(thresholdHours)
	var out []Bottleneck

	for _, v := range s.Vehicles {
		if !v.AvailabilityStatus.IsOffRoad() {
			continue
		}
		stage, ok := v.CurrentStage()
		if !ok {
			continue
		}
		if hours := format.HoursSince(stage.At, now); hours > limit {
			out = append(out, Bottleneck{
				EntityType: "vehicle",
				EntityID:   v.ID,
				Label:      v.Registration,
				Stage:      stage.Name,
				Since:      stage.At,
				Hours:      hours,
			})
		}
	}

	for _, a := range s.Agreements {
		// On track is the steady state of a live hire.
		if a.Stage.IsTerminal() || a.Stage == models.StageOnTrack {
			continue
		}
		since, ok := a.StageUpdatedAt.Valid()
		if !ok {
			continue
		}
		if hours := format.HoursSince(since, now); hours > limit {
			out = append(out, Bottleneck{
				EntityType: "agreement",
				EntityID:   a.AgreementID,
				Label:      a.Customer,
				Stage:      string(a.Stage),
				Since:      since,
				Hours:      hours,
			})
		}
	}

	slices.SortStableFunc(out, func(a, b Bottleneck) int {
		switch {
		case a.Hours > b.Hours:
			return -1
		case a.Hours < b.Hours:
			return 1
		default:
			return 0
		}
	})
	return out
}
