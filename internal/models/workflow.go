package models

// WorkflowStep is one step of an operational workflow.
type WorkflowStep struct {
	Name        string    `bson:"name" json:"name"`
	CompletedAt Timestamp `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// Workflow tracks an operational process (defleet, service, onboarding) for one vehicle.
type Workflow struct {
	ID          string         `bson:"_id" json:"id"`
	VehicleID   string         `bson:"vehicle_id" json:"vehicleId"`
	Type        string         `bson:"type" json:"type"`
	Steps       []WorkflowStep `bson:"steps" json:"steps"`
	CurrentStep int            `bson:"current_step" json:"currentStep"`
	Assignee    string         `bson:"assignee" json:"assignee"`
	Priority    string         `bson:"priority" json:"priority"` // "low", "medium", "high"
	StartedAt   Timestamp      `bson:"started_at" json:"startedAt"`
}

// Progress returns the share of completed steps in [0, 1].
func (w Workflow) Progress() float64 {
	if len(w.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range w.Steps {
		if !s.CompletedAt.IsZero() {
			done++
		}
	}
	return float64(done) / float64(len(w.Steps))
}

// CurrentStepName returns the name of the step in progress, or "Complete".
func (w Workflow) CurrentStepName() string {
	if w.CurrentStep < 0 || w.CurrentStep >= len(w.Steps) {
		return "Complete"
	}
	return w.Steps[w.CurrentStep].Name
}
