package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepStates(steps []Step) []StepState {
	out := make([]StepState, len(steps))
	for i, s := range steps {
		out[i] = s.State
	}
	return out
}

func TestSteps(t *testing.T) {
	t.Run("pending", func(t *testing.T) {
		e := newTestEvent(t)
		assert.Equal(t,
			[]StepState{StepDone, StepCurrent, StepUpcoming, StepUpcoming},
			stepStates(Steps(e, beforeStart)))
	})

	t.Run("confirmed and under way", func(t *testing.T) {
		e := newTestEvent(t)
		candidate, _, _ := actorsFor(e)
		require.NoError(t, e.Transition(candidate, TransitionRequest{Action: ActionConfirm}, beforeStart))

		assert.Equal(t,
			[]StepState{StepDone, StepDone, StepUpcoming, StepUpcoming},
			stepStates(Steps(e, beforeStart)))
		assert.Equal(t,
			[]StepState{StepDone, StepDone, StepCurrent, StepUpcoming},
			stepStates(Steps(e, scenarioStart.Add(10*time.Minute))))
	})

	t.Run("cancelled before confirmation", func(t *testing.T) {
		e := newTestEvent(t)
		candidate, _, _ := actorsFor(e)
		require.NoError(t, e.Transition(candidate, TransitionRequest{Action: ActionReject, Reason: "no"}, beforeStart))
		assert.Equal(t,
			[]StepState{StepDone, StepSkipped, StepSkipped, StepSkipped},
			stepStates(Steps(e, beforeStart)))
	})

	t.Run("completed", func(t *testing.T) {
		e := newTestEvent(t)
		candidate, manager, _ := actorsFor(e)
		require.NoError(t, e.Transition(candidate, TransitionRequest{Action: ActionConfirm}, beforeStart))
		require.NoError(t, e.Transition(manager, TransitionRequest{Action: ActionComplete}, scenarioEnd))

		steps := Steps(e, scenarioEnd)
		assert.Equal(t, []StepState{StepDone, StepDone, StepDone, StepDone}, stepStates(steps))
		assert.Equal(t, StepResult, steps[3].Name)
	})
}

func TestTimeUntilStart(t *testing.T) {
	e := newTestEvent(t)
	assert.Equal(t, time.Hour, TimeUntilStart(e, scenarioStart.Add(-time.Hour)))
	assert.Equal(t, time.Duration(0), TimeUntilStart(e, scenarioStart))
	assert.Equal(t, time.Duration(0), TimeUntilStart(e, scenarioEnd.Add(72*time.Hour)))
}
