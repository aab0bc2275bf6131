package game

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/geom"
	"github.com/FrankDatema/MindHop/internal/ledger"
	"github.com/FrankDatema/MindHop/internal/logx"
	"github.com/FrankDatema/MindHop/internal/placement"
	"github.com/FrankDatema/MindHop/internal/prefs"
	"github.com/FrankDatema/MindHop/internal/scene"
	"github.com/FrankDatema/MindHop/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

var bootTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeNav struct {
	scenes []string
}

func (n *fakeNav) RequestScene(name string) error {
	n.scenes = append(n.scenes, name)
	return nil
}

type harness struct {
	engine *Engine
	clock  *FakeClock
	store  *prefs.MemoryStore
	ledger *ledger.Ledger
	nav    *fakeNav
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, defs []chore.Definition, store *prefs.MemoryStore) *harness {
	t.Helper()
	reg, err := chore.NewRegistry(defs)
	require.NoError(t, err)
	if store == nil {
		store = prefs.NewMemoryStore()
	}

	logs := &bytes.Buffer{}
	logger := logx.NewWriter(logs, logx.LevelDebug)
	clock := NewFakeClock(bootTime)
	rng := rand.New(rand.NewSource(11))
	l := ledger.New(store, logger)
	nav := &fakeNav{}

	e, err := NewEngine(Options{
		Registry:  reg,
		Ledger:    l,
		Prefs:     store,
		Scene:     scene.New(scene.Options{GrowthDuration: time.Second, ShrinkSpeed: 5, Logger: logger}),
		Rand:      rng,
		Clock:     clock,
		Logger:    logger,
		Navigator: nav,
		Placement: placement.Params{
			Radius:        5,
			MinHeight:     1,
			MaxHeight:     3,
			MinSeparation: 1,
			MaxAttempts:   100,
		},
		DefaultScale: geom.Splat(100),
		ScanScene:    "ChoreScene",
		MinInterval:  500 * time.Millisecond,
		MaxInterval:  2 * time.Second,
	})
	require.NoError(t, err)
	return &harness{engine: e, clock: clock, store: store, ledger: l, nav: nav, logs: logs}
}

// popAndRemove dismisses the named chore and steps frames until it is gone.
func (h *harness) popAndRemove(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, h.engine.DismissChore(name))
	for i := 0; i < 2000 && h.engine.Scene().Live(name); i++ {
		h.engine.Step(frame)
	}
	require.False(t, h.engine.Scene().Live(name))
}

func TestStart_FirstRunSpawnsEveryChore(t *testing.T) {
	h := newHarness(t, []chore.Definition{
		{Name: "A", Tag: "ta", ResetDays: chore.Days(1), Sprite: "a.png"},
		{Name: "B", Tag: "tb", ResetDays: chore.Days(2), Sprite: "b.png"},
	}, nil)

	require.NoError(t, h.engine.Start())

	assert.True(t, h.engine.Scene().Live("A"))
	assert.True(t, h.engine.Scene().Live("B"))

	recs := h.ledger.Load()
	require.Len(t, recs, 2)
	for _, name := range []string{"A", "B"} {
		rec := recs[name]
		assert.Equal(t, bootTime.Unix(), rec.SpawnedAt)
		assert.Equal(t, geom.Splat(100), rec.Scale)
		assert.False(t, rec.Position.IsZero())
	}

	require.NoError(t, h.engine.Start(), "Start is idempotent")
	assert.Equal(t, 2, h.engine.Scene().Len())
}

func TestStart_RestoresSavedPlacementAndRearmsExpired(t *testing.T) {
	store := prefs.NewMemoryStore()
	saved := []ledger.Record{
		{Chore: "A", SpawnedAt: bootTime.Add(-5 * 24 * time.Hour).Unix(), Position: geom.V(1, 2, 3), Scale: geom.Splat(50)},
		{Chore: "B", SpawnedAt: bootTime.Add(-time.Hour).Unix(), Position: geom.Zero, Scale: geom.Zero},
		{Chore: "Gone", SpawnedAt: bootTime.Unix(), Position: geom.V(9, 9, 9)},
	}
	require.NoError(t, ledger.New(store, nil).Save(saved))

	h := newHarness(t, []chore.Definition{
		{Name: "A", ResetDays: chore.Days(1)},
		{Name: "B", ResetDays: chore.Days(2)},
	}, store)
	require.NoError(t, h.engine.Start())

	a, ok := h.engine.Scene().Find("A")
	require.True(t, ok)
	assert.Equal(t, geom.V(1, 2, 3), a.Position)
	assert.Equal(t, geom.Splat(50), a.Target)

	b, ok := h.engine.Scene().Find("B")
	require.True(t, ok)
	assert.False(t, b.Position.IsZero(), "zero saved position falls back to a sampled one")
	assert.Equal(t, geom.Splat(100), b.Target, "zero saved scale falls back to the default")

	recs := h.ledger.Load()
	assert.Equal(t, bootTime.Unix(), recs["A"].SpawnedAt, "expired record is stamped with now")
	assert.Equal(t, saved[1].SpawnedAt, recs["B"].SpawnedAt, "fresh record keeps its time")
	assert.Contains(t, recs, "Gone", "records of unknown chores are kept")
	assert.Contains(t, h.logs.String(), "ledger_unknown_chore")
}

func TestTick_RespawnsAbsentExpiredChore(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A", ResetDays: chore.Days(1)}}, nil)
	require.NoError(t, h.engine.Start())
	h.popAndRemove(t, "A")

	assert.Empty(t, h.engine.Tick(), "interval has not elapsed yet")

	now := h.clock.AdvanceDays(5)
	assert.Equal(t, []string{"A"}, h.engine.Tick())
	assert.True(t, h.engine.Scene().Live("A"))
	assert.Equal(t, now.Unix(), h.ledger.Load()["A"].SpawnedAt)
}

func TestTick_ThresholdIsInclusive(t *testing.T) {
	for _, tc := range []struct {
		name    string
		days    float64
		respawn bool
	}{
		{name: "exactly three days", days: 3, respawn: true},
		{name: "two point nine days", days: 2.9, respawn: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, []chore.Definition{{Name: "Laundry", ResetDays: chore.Days(3)}}, nil)
			require.NoError(t, h.engine.Start())
			h.popAndRemove(t, "Laundry")

			h.clock.AdvanceDays(tc.days)
			spawned := h.engine.Tick()
			assert.Equal(t, tc.respawn, len(spawned) == 1)
			assert.Equal(t, tc.respawn, h.engine.Scene().Live("Laundry"))
		})
	}
}

func TestTick_CatalogZeroRespawnsOnNextCheck(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A", ResetDays: chore.Days(0)}}, nil)
	require.NoError(t, h.engine.Start())
	a, _ := h.engine.Registry().FindByName("A")
	assert.Equal(t, 0, h.engine.ResetDays(a))

	h.popAndRemove(t, "A")
	assert.Equal(t, []string{"A"}, h.engine.Tick())
}

func TestTick_LiveChoreIsNeverRespawned(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A", ResetDays: chore.Days(1)}}, nil)
	require.NoError(t, h.engine.Start())

	h.clock.AdvanceDays(10)
	assert.Empty(t, h.engine.Tick())
	assert.Equal(t, 1, h.engine.Scene().Len())
	assert.Equal(t, bootTime.Unix(), h.ledger.Load()["A"].SpawnedAt)
}

func TestTick_SpawnsChoreWithoutRecord(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, ledger.New(store, nil).Save([]ledger.Record{
		{Chore: "A", SpawnedAt: bootTime.Unix(), Position: geom.V(1, 1, 1), Scale: geom.One()},
	}))
	h := newHarness(t, []chore.Definition{{Name: "A", ResetDays: chore.Days(1)}, {Name: "New", ResetDays: chore.Days(9)}}, store)
	require.NoError(t, h.engine.Start())
	assert.False(t, h.engine.Scene().Live("New"))

	assert.Equal(t, []string{"New"}, h.engine.Tick())
	assert.Contains(t, h.ledger.Load(), "New")
}

func TestTick_BeforeStartDoesNothing(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A"}}, nil)
	assert.Nil(t, h.engine.Tick())
	assert.Equal(t, 0, h.engine.Scene().Len())
}

func TestResetDays_SettingsOverrideCatalog(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A", ResetDays: chore.Days(4)}, {Name: "B"}}, nil)
	a, _ := h.engine.Registry().FindByName("A")
	b, _ := h.engine.Registry().FindByName("B")

	assert.Equal(t, 4, h.engine.ResetDays(a))
	assert.Equal(t, 1, h.engine.ResetDays(b), "unset catalog value falls back to one day")

	require.NoError(t, h.engine.SetResetDays("A", 2))
	assert.Equal(t, 2, h.engine.ResetDays(a))
	n, err := prefs.MaxDays(h.store, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, h.engine.SetResetDays("B", 0))
	assert.Equal(t, 0, h.engine.ResetDays(b))

	assert.ErrorIs(t, h.engine.SetResetDays("Nope", 1), chore.ErrNotFound)
	assert.Error(t, h.engine.SetResetDays("A", -1))
}

func TestDismiss_DoesNotTouchLedger(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A", ResetDays: chore.Days(1)}}, nil)
	require.NoError(t, h.engine.Start())
	before := h.ledger.Records()

	h.popAndRemove(t, "A")
	assert.Equal(t, before, h.ledger.Records())

	events, err := h.engine.Events().GetEvents(time.Time{}, []telemetry.EventType{telemetry.EventChoreDismissed, telemetry.EventInstanceRemoved})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	assert.ErrorIs(t, h.engine.DismissChore("A"), scene.ErrInstanceNotFound)
}

func TestScanTag_SetsCurrentChoreAndRequestsScene(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "Dishes", Tag: "BNaF2g=="}}, nil)

	def, err := h.engine.ScanTag("BNaF2g==")
	require.NoError(t, err)
	assert.Equal(t, "Dishes", def.Name)
	assert.Equal(t, "Dishes", h.engine.CurrentChore())
	assert.Equal(t, []string{"ChoreScene"}, h.nav.scenes)

	_, err = h.engine.ScanTag("unknown")
	assert.ErrorIs(t, err, chore.ErrNotFound)
	assert.Equal(t, "Dishes", h.engine.CurrentChore())
	assert.Len(t, h.nav.scenes, 1)
}

func TestSpawn_WarnsOnMissingTagOrSprite(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "Bare"}}, nil)
	require.NoError(t, h.engine.Start())

	logs := h.logs.String()
	assert.Contains(t, logs, "chore_sprite_missing")
	assert.Contains(t, logs, "chore_tag_missing")
	assert.True(t, h.engine.Scene().Live("Bare"))
}

func TestTopUp_FillsToCatalogSizeWithPacing(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A"}, {Name: "B"}}, nil)

	_, ok := h.engine.TopUp()
	require.True(t, ok)
	_, ok = h.engine.TopUp()
	assert.False(t, ok, "second spawn waits for the interval")

	h.clock.Advance(2 * time.Second)
	_, ok = h.engine.TopUp()
	require.True(t, ok)

	h.clock.Advance(2 * time.Second)
	_, ok = h.engine.TopUp()
	assert.False(t, ok, "scene already holds one cloud per chore")

	names := []string{}
	for _, in := range h.engine.Scene().Instances() {
		names = append(names, in.ChoreName())
	}
	assert.ElementsMatch(t, []string{"A", "B"}, names)
	assert.Empty(t, h.ledger.Records(), "top-up never writes the ledger")
}

func TestStatus_ReportsDueAndLive(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A", ResetDays: chore.Days(2)}, {Name: "B", ResetDays: chore.Days(1)}}, nil)
	require.NoError(t, h.engine.Start())
	h.popAndRemove(t, "B")
	h.clock.AdvanceDays(1.5)

	st := h.engine.Status()
	require.Len(t, st, 2)

	assert.Equal(t, "A", st[0].Chore.Name)
	assert.True(t, st[0].Live)
	assert.False(t, st[0].Due)
	assert.InDelta(t, 1.5, st[0].DaysElapsed, 1e-6)
	require.NotNil(t, st[0].NextResetAt)
	assert.Equal(t, bootTime.Add(48*time.Hour), *st[0].NextResetAt)

	assert.False(t, st[1].Live)
	assert.True(t, st[1].Due)
	assert.Empty(t, st[1].InstanceID)
}

func TestEngine_LogsAreJSONLines(t *testing.T) {
	h := newHarness(t, []chore.Definition{{Name: "A", Tag: "t", Sprite: "a.png"}}, nil)
	require.NoError(t, h.engine.Start())

	for _, line := range strings.Split(strings.TrimSpace(h.logs.String()), "\n") {
		assert.True(t, strings.HasPrefix(line, "{"), line)
	}
	assert.Contains(t, h.logs.String(), `"msg":"chore_spawned"`)
}
