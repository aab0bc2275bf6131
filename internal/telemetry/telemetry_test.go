package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_RecordFilterAndStats(t *testing.T) {
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository(func() time.Time { return now })

	require.NoError(t, repo.RecordEvent(EventChoreSpawned, EventMetadata{"chore": "Dishes"}))
	require.NoError(t, repo.RecordEvent(EventChoreDismissed, EventMetadata{"chore": "Dishes"}))
	require.NoError(t, repo.RecordEvent(EventTagScanned, EventMetadata{"chore": "Laundry"}))
	require.NoError(t, repo.RecordEvent(EventResetTick, nil))

	all, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, now, all[0].Timestamp)

	dismissed, err := repo.GetEvents(time.Time{}, []EventType{EventChoreDismissed})
	require.NoError(t, err)
	assert.Len(t, dismissed, 1)

	future, err := repo.GetEvents(now.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, future)

	stats, err := CalculateStats(all, now)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-02", stats.Period)
	assert.Equal(t, 1, stats.Spawns)
	assert.Equal(t, 1, stats.Dismissals)
	assert.Equal(t, 1, stats.DismissByName["Dishes"])
	assert.Equal(t, 1, stats.ScansByName["Laundry"])
	assert.Equal(t, 1, stats.ResetTicks)

	require.NoError(t, repo.Clear())
	all, _ = repo.GetEvents(time.Time{}, nil)
	assert.Empty(t, all)
}

func TestMemoryRepository_Limit(t *testing.T) {
	repo := NewMemoryRepository(nil)
	repo.Limit = 3
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordEvent(EventResetTick, nil))
	}
	all, _ := repo.GetEvents(time.Time{}, nil)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].ID)
}
