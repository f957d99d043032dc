package domain

import "time"

// StepStatus represents the progress of a single clearance step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "PENDING"
	StepStatusInProgress StepStatus = "IN_PROGRESS"
	StepStatusCompleted  StepStatus = "COMPLETED"
)

// ClearanceStep is one ordered, role-gated verification action.
type ClearanceStep struct {
	ID              string
	EventID         string
	StepNumber      int
	Title           string
	Description     string
	RequiredRole    Role
	Status          StepStatus
	CompletedBy     *string
	CompletedByRole *Role
	CompletedAt     *time.Time
	Notes           string
}

// StepTemplate describes a step before it is instantiated on an event.
type StepTemplate struct {
	Title        string `json:"title" yaml:"title"`
	Description  string `json:"description" yaml:"description"`
	RequiredRole Role   `json:"required_role" yaml:"required_role"`
}

// InstantiateSteps turns templates into steps numbered 1..N,
// with step 1 IN_PROGRESS and the rest PENDING.
func InstantiateSteps(templates []StepTemplate) []ClearanceStep {
	steps := make([]ClearanceStep, len(templates))
	for i, t := range templates {
		status := StepStatusPending
		if i == 0 {
			status = StepStatusInProgress
		}
		steps[i] = ClearanceStep{
			StepNumber:   i + 1,
			Title:        t.Title,
			Description:  t.Description,
			RequiredRole: t.RequiredRole,
			Status:       status,
		}
	}
	return steps
}
