package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("HasCode matches wrapped domain errors", func(t *testing.T) {
		err := fmt.Errorf("service: %w", New(CodeInvalidTransition, "event is cancelled"))
		assert.True(t, HasCode(err, CodeInvalidTransition))
		assert.False(t, HasCode(err, CodeConflict))
		assert.Equal(t, CodeInvalidTransition, CodeOf(err))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.False(t, HasCode(nil, CodeInternal))
	})

	t.Run("Wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "failed to load event")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load event: connection reset", err.Error())
	})

	t.Run("validation errors carry a copy of the fields", func(t *testing.T) {
		fields := map[string]string{"end_time": "must be after start_time"}
		err := NewValidation("invalid event", fields)
		fields["end_time"] = "mutated"
		assert.Equal(t, "must be after start_time", FieldsOf(err)["end_time"])
		assert.True(t, Is(err, CodeValidation))
	})
}
