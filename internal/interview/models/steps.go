package models

import "time"

// StepState is how one lifecycle step is rendered.
type StepState string

const (
	StepDone     StepState = "done"
	StepCurrent  StepState = "current"
	StepUpcoming StepState = "upcoming"
	StepSkipped  StepState = "skipped"
)

// Step names, in display order.
const (
	StepInvitation   = "invitation"
	StepConfirmation = "confirmation"
	StepExecution    = "execution"
	StepResult       = "result"
)

type Step struct {
	Name  string    `json:"name"`
	State StepState `json:"state"`
}

// Steps projects status and timestamps into the four display steps. Nothing
// here is stored.
func Steps(e *Event, now time.Time) []Step {
	confirmation := StepSkipped
	if e.ConfirmedAt != nil {
		confirmation = StepDone
	}

	var execution, result StepState
	switch e.Status {
	case StatusPending:
		confirmation, execution, result = StepCurrent, StepUpcoming, StepUpcoming
	case StatusConfirmed:
		execution, result = StepUpcoming, StepUpcoming
		if !now.Before(e.StartTime) {
			execution = StepCurrent
		}
	case StatusCancelled:
		execution, result = StepSkipped, StepSkipped
	case StatusCompleted:
		execution, result = StepDone, StepDone
	}

	return []Step{
		{Name: StepInvitation, State: StepDone},
		{Name: StepConfirmation, State: confirmation},
		{Name: StepExecution, State: execution},
		{Name: StepResult, State: result},
	}
}

// TimeUntilStart is the countdown to the event start. It never goes negative.
func TimeUntilStart(e *Event, now time.Time) time.Duration {
	d := e.StartTime.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
