package scene

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/geom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

func newTestScene() *Scene {
	return New(Options{GrowthDuration: time.Second, ShrinkSpeed: 5})
}

func TestSpawn_GrowsToTarget(t *testing.T) {
	s := newTestScene()
	def := chore.Definition{Name: "Dishes"}
	in := s.Spawn(&def, geom.V(1, 2, 3), geom.Splat(2))

	assert.Equal(t, geom.Zero, in.Scale)
	assert.Equal(t, PhaseGrowing, in.Phase)
	assert.True(t, s.Live("Dishes"))
	assert.False(t, s.Live("Laundry"))

	for i := 0; i < 120; i++ {
		s.Step(frame)
	}
	got, ok := s.Get(in.ID)
	require.True(t, ok)
	assert.Equal(t, PhaseIdle, got.Phase)
	assert.Equal(t, geom.Splat(2), got.Scale)
}

func TestSpawn_CopiesDefinition(t *testing.T) {
	s := newTestScene()
	def := chore.Definition{Name: "Dishes"}
	s.Spawn(&def, geom.Zero, geom.One())
	def.Name = "Renamed"

	assert.True(t, s.Live("Dishes"))
}

func TestDismiss_ShrinksMonotonicallyThenRemoves(t *testing.T) {
	s := newTestScene()
	def := chore.Definition{Name: "Trash"}
	in := s.Spawn(&def, geom.Zero, geom.Splat(100))
	for i := 0; i < 90; i++ {
		s.Step(frame)
	}

	require.NoError(t, s.Dismiss(in.ID))
	require.NoError(t, s.Dismiss(in.ID), "second dismissal is a no-op")

	prev := geom.Splat(100).SqrMagnitude()
	var removed []Instance
	for i := 0; i < 1000 && len(removed) == 0; i++ {
		removed = s.Step(frame)
		if cur, ok := s.Get(in.ID); ok {
			assert.LessOrEqual(t, cur.Scale.SqrMagnitude(), prev)
			assert.True(t, s.Live("Trash"), "instance stays live until removed")
			prev = cur.Scale.SqrMagnitude()
		}
	}

	require.Len(t, removed, 1)
	assert.Equal(t, in.ID, removed[0].ID)
	assert.Equal(t, geom.Zero, removed[0].Scale)
	assert.False(t, s.Live("Trash"))
	assert.Equal(t, 0, s.Len())
}

func TestDismiss_UnknownInstance(t *testing.T) {
	s := newTestScene()
	assert.ErrorIs(t, s.Dismiss(uuid.New()), ErrInstanceNotFound)
}

func TestDismiss_JustSpawnedIsRemovedOnFirstFrame(t *testing.T) {
	s := newTestScene()
	in := s.Spawn(&chore.Definition{Name: "A"}, geom.Zero, geom.Splat(10))
	require.NoError(t, s.Dismiss(in.ID))

	removed := s.Step(frame)
	require.Len(t, removed, 1)
	assert.Equal(t, in.ID, removed[0].ID)
	assert.Equal(t, 0, s.Len())
}

func TestDismiss_RemovedMidShrinkStopsSilently(t *testing.T) {
	s := newTestScene()
	in := s.Spawn(&chore.Definition{Name: "A"}, geom.Zero, geom.Splat(10))
	for i := 0; i < 30; i++ {
		s.Step(frame)
	}
	require.NoError(t, s.Dismiss(in.ID))
	assert.Empty(t, s.Step(frame))
	require.True(t, s.Remove(in.ID))

	assert.NotPanics(t, func() {
		assert.Empty(t, s.Step(frame))
	})
}

func TestSpawnRandom_AssignsUnspawnedThenNone(t *testing.T) {
	s := newTestScene()
	defs := []chore.Definition{{Name: "A", Sprite: "a.png"}, {Name: "B"}}
	rng := rand.New(rand.NewSource(5))

	first := s.SpawnRandom(geom.Zero, geom.One(), defs, rng)
	second := s.SpawnRandom(geom.V(3, 0, 0), geom.One(), defs, rng)
	third := s.SpawnRandom(geom.V(6, 0, 0), geom.One(), defs, rng)

	require.NotNil(t, first.Chore)
	require.NotNil(t, second.Chore)
	assert.NotEqual(t, first.ChoreName(), second.ChoreName())
	assert.Nil(t, third.Chore)
	assert.Equal(t, "", third.ChoreName())
	assert.Equal(t, 3, s.Len())
}

func TestInstancesAndPositionsInSpawnOrder(t *testing.T) {
	s := newTestScene()
	for i := 0; i < 5; i++ {
		s.Spawn(nil, geom.V(float64(i), 0, 0), geom.One())
	}
	ins := s.Instances()
	require.Len(t, ins, 5)
	for i, in := range ins {
		assert.Equal(t, i+1, in.Seq)
	}
	assert.Equal(t, geom.V(4, 0, 0), s.Positions()[4])

	found, ok := s.Find("nope")
	assert.False(t, ok)
	assert.Equal(t, Instance{}, found)
}
