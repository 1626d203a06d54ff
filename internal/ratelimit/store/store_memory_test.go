package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestInMemoryAllow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("counts down to the limit then rejects", func(t *testing.T) {
		clock := &fakeClock{now: start}
		s := NewInMemoryWithClock(clock.Now)

		for i := 0; i < 3; i++ {
			res, err := s.Allow(ctx, "write:u1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, 2-i, res.Remaining)
		}

		res, err := s.Allow(ctx, "write:u1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
		assert.Equal(t, start.Add(time.Minute), res.ResetAt)
	})

	t.Run("window slides past old requests", func(t *testing.T) {
		clock := &fakeClock{now: start}
		s := NewInMemoryWithClock(clock.Now)

		_, err := s.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		clock.Advance(30 * time.Second)
		_, err = s.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)

		res, err := s.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)

		clock.Advance(31 * time.Second)
		res, err = s.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := NewInMemoryWithClock((&fakeClock{now: start}).Now)

		res, err := s.Allow(ctx, "read:u1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)

		res, err = s.Allow(ctx, "read:u2", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})
}
