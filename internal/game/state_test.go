package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStateRepo()

	t.Run("Get initial state", func(t *testing.T) {
		st, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", st.CurrentChore)
	})

	t.Run("Update current chore", func(t *testing.T) {
		at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		st, err := repo.Update(ctx, func(s *State) {
			s.CurrentChore = "Dishes"
			s.LastScanAt = at
		})
		require.NoError(t, err)
		assert.Equal(t, "Dishes", st.CurrentChore)

		got, _ := repo.Get(ctx)
		assert.Equal(t, at, got.LastScanAt)
	})
}

func TestFakeClock_Advance(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.FixedZone("ET", -5*60*60))
	c := NewFakeClock(start)
	assert.Equal(t, time.UTC, c.Now().Location())

	c.AdvanceDays(1.5)
	assert.Equal(t, start.Add(36*time.Hour).UTC(), c.Now())
}
