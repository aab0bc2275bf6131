package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/geom"
	"github.com/FrankDatema/MindHop/internal/ledger"
	"github.com/FrankDatema/MindHop/internal/logx"
	"github.com/FrankDatema/MindHop/internal/placement"
	"github.com/FrankDatema/MindHop/internal/prefs"
	"github.com/FrankDatema/MindHop/internal/scene"
	"github.com/FrankDatema/MindHop/internal/telemetry"
)

// Navigator performs scene transitions on behalf of the engine.
type Navigator interface {
	RequestScene(name string) error
}

type Options struct {
	Registry  *chore.Registry
	Ledger    *ledger.Ledger
	Prefs     prefs.Store
	Scene     *scene.Scene
	Sampler   *placement.Sampler
	Rand      *rand.Rand
	Clock     Clock
	Logger    *logx.Logger
	Events    telemetry.Repository
	State     StateRepository
	Navigator Navigator

	Placement    placement.Params
	DefaultScale geom.Vec3
	DefaultDays  int
	ScanScene    string

	// Top-up pacing for the ledger-less spawner.
	MinInterval time.Duration
	MaxInterval time.Duration
}

// Engine reconciles the chore catalog, the spawn ledger and the live scene.
// It is not safe for concurrent use; Runtime serializes access.
type Engine struct {
	registry *chore.Registry
	ledger   *ledger.Ledger
	prefs    prefs.Store
	scene    *scene.Scene
	sampler  *placement.Sampler
	rng      *rand.Rand
	clock    Clock
	log      *logx.Logger
	events   telemetry.Repository
	state    StateRepository
	nav      Navigator

	place        placement.Params
	defaultScale geom.Vec3
	defaultDays  int
	scanScene    string
	minInterval  time.Duration
	maxInterval  time.Duration

	records   []ledger.Record
	started   bool
	nextTopUp time.Time
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if opts.Prefs == nil {
		return nil, errors.New("prefs store is required")
	}
	if opts.Ledger == nil {
		opts.Ledger = ledger.New(opts.Prefs, opts.Logger)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Sampler == nil {
		opts.Sampler = placement.NewSampler(opts.Rand)
	}
	if opts.Scene == nil {
		opts.Scene = scene.New(scene.Options{GrowthDuration: time.Second, Logger: opts.Logger})
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Events == nil {
		opts.Events = telemetry.NewMemoryRepository(opts.Clock.Now)
	}
	if opts.State == nil {
		opts.State = NewMemoryStateRepo()
	}
	if opts.DefaultScale.IsZero() {
		opts.DefaultScale = geom.One()
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = prefs.DefaultMaxDays
	}

	return &Engine{
		registry:     opts.Registry,
		ledger:       opts.Ledger,
		prefs:        opts.Prefs,
		scene:        opts.Scene,
		sampler:      opts.Sampler,
		rng:          opts.Rand,
		clock:        opts.Clock,
		log:          opts.Logger,
		events:       opts.Events,
		state:        opts.State,
		nav:          opts.Navigator,
		place:        opts.Placement,
		defaultScale: opts.DefaultScale,
		defaultDays:  opts.DefaultDays,
		scanScene:    opts.ScanScene,
		minInterval:  opts.MinInterval,
		maxInterval:  opts.MaxInterval,
	}, nil
}

func (e *Engine) Registry() *chore.Registry { return e.registry }

func (e *Engine) Scene() *scene.Scene { return e.scene }

func (e *Engine) Events() telemetry.Repository { return e.events }

func (e *Engine) Prefs() prefs.Store { return e.prefs }

func (e *Engine) Started() bool { return e.started }

func (e *Engine) now() time.Time { return e.clock.Now().UTC() }

// Start reconciles the ledger with the scene. On first run every chore is
// spawned fresh. Otherwise each recorded chore that is not live comes back
// at its saved position and scale, and records whose reset interval has
// elapsed are stamped with now so they arm for the next cycle.
func (e *Engine) Start() error {
	if e.started {
		return nil
	}
	now := e.now()
	e.records = e.ledger.Records()
	e.started = true
	_, _ = e.state.Update(context.Background(), func(s *State) { s.StartedAt = now })

	if len(e.records) == 0 {
		e.log.Info("ledger_empty_first_run", logx.Fields{"chores": e.registry.Len()})
		for _, def := range e.registry.All() {
			e.spawnFresh(def, now, telemetry.EventChoreSpawned)
		}
		return e.flush()
	}

	for _, rec := range e.records {
		def, ok := e.registry.FindByName(rec.Chore)
		if !ok {
			e.log.Warn("ledger_unknown_chore", logx.Fields{"chore": rec.Chore})
			continue
		}
		if e.scene.Live(def.Name) {
			continue
		}
		e.restore(def, rec, now)
	}
	return e.flush()
}

func (e *Engine) restore(def chore.Definition, rec ledger.Record, now time.Time) {
	pos := rec.Position
	if pos.IsZero() {
		pos = e.samplePosition(def.Name)
		rec.Position = pos
	}
	scale := rec.Scale
	if scale.IsZero() {
		scale = e.defaultScale
		rec.Scale = scale
	}

	e.warnIncomplete(def)
	in := e.scene.Spawn(&def, pos, scale)
	e.log.Info("chore_restored", logx.Fields{
		"chore":      def.Name,
		"instance":   in.ID.String(),
		"spawned_at": rec.SpawnTime().Format(time.RFC3339),
	})
	e.record(telemetry.EventChoreRestored, telemetry.EventMetadata{"chore": def.Name})

	days := e.ResetDays(def)
	if rec.Due(now, days) {
		elapsed := rec.ElapsedDays(now)
		rec.SpawnedAt = now.Unix()
		e.log.Info("chore_rearmed", logx.Fields{"chore": def.Name, "elapsed_days": elapsed, "reset_days": days})
		e.record(telemetry.EventChoreRearmed, telemetry.EventMetadata{"chore": def.Name})
	}
	e.records = ledger.Merge(e.records, rec)
}

// Tick spawns every chore that is absent from the scene and whose reset
// interval has elapsed since its last spawn. Chores without a record are
// spawned unconditionally. It returns the names spawned.
func (e *Engine) Tick() []string {
	if !e.started {
		e.log.Warn("tick_before_start", nil)
		return nil
	}
	now := e.now()
	var spawned []string

	for _, def := range e.registry.All() {
		if e.scene.Live(def.Name) {
			continue
		}
		rec, ok := e.findRecord(def.Name)
		if !ok {
			e.log.Warn("chore_without_record", logx.Fields{"chore": def.Name})
			e.spawnFresh(def, now, telemetry.EventChoreSpawned)
			spawned = append(spawned, def.Name)
			continue
		}
		if !rec.Due(now, e.ResetDays(def)) {
			continue
		}
		e.spawnFresh(def, now, telemetry.EventChoreRespawned)
		spawned = append(spawned, def.Name)
	}

	_, _ = e.state.Update(context.Background(), func(s *State) {
		s.LastTickAt = now
		s.Ticks++
	})
	e.record(telemetry.EventResetTick, telemetry.EventMetadata{"spawned": len(spawned)})
	return spawned
}

// Step advances the scene by one frame. Instances whose dismissal finished
// are gone afterwards; the ledger is left untouched.
func (e *Engine) Step(dt time.Duration) []scene.Instance {
	removed := e.scene.Step(dt)
	for _, in := range removed {
		e.log.Info("instance_removed", logx.Fields{"chore": in.ChoreName(), "instance": in.ID.String()})
		e.record(telemetry.EventInstanceRemoved, telemetry.EventMetadata{"chore": in.ChoreName()})
	}
	return removed
}

// Dismiss starts the shrink-and-remove sequence of a live instance.
func (e *Engine) Dismiss(id uuid.UUID) error {
	in, ok := e.scene.Get(id)
	if !ok {
		return fmt.Errorf("dismiss %s: %w", id, scene.ErrInstanceNotFound)
	}
	if err := e.scene.Dismiss(id); err != nil {
		return err
	}
	e.log.Info("chore_dismissed", logx.Fields{"chore": in.ChoreName(), "instance": id.String()})
	e.record(telemetry.EventChoreDismissed, telemetry.EventMetadata{"chore": in.ChoreName()})
	return nil
}

// DismissChore dismisses the live instance of the named chore.
func (e *Engine) DismissChore(name string) error {
	in, ok := e.scene.Find(name)
	if !ok {
		return fmt.Errorf("dismiss %q: %w", name, scene.ErrInstanceNotFound)
	}
	return e.Dismiss(in.ID)
}

// ScanTag handles a scanned tag: the matching chore becomes the current
// chore and the scan scene is requested.
func (e *Engine) ScanTag(tag string) (chore.Definition, error) {
	def, ok := e.registry.FindByTag(tag)
	if !ok {
		e.log.Warn("tag_unknown", logx.Fields{"tag": tag})
		return chore.Definition{}, fmt.Errorf("tag %q: %w", tag, chore.ErrNotFound)
	}

	now := e.now()
	_, _ = e.state.Update(context.Background(), func(s *State) {
		s.CurrentChore = def.Name
		s.LastScanTag = tag
		s.LastScanAt = now
	})
	e.log.Info("tag_scanned", logx.Fields{"chore": def.Name, "tag": tag})
	e.record(telemetry.EventTagScanned, telemetry.EventMetadata{"chore": def.Name})

	if e.nav != nil && e.scanScene != "" {
		if err := e.nav.RequestScene(e.scanScene); err != nil {
			e.log.Warn("scene_request_failed", logx.Fields{"scene": e.scanScene, "error": err})
		}
	}
	return def, nil
}

// CurrentChore is the chore selected by the last successful scan.
func (e *Engine) CurrentChore() string {
	st, err := e.state.Get(context.Background())
	if err != nil {
		return ""
	}
	return st.CurrentChore
}

// ResetDays is the effective reset interval of a chore: the saved setting
// when present, else the catalog value when set, else the default.
func (e *Engine) ResetDays(def chore.Definition) int {
	n, ok, err := prefs.LookupInt(e.prefs, prefs.MaxDaysKey(def.Name))
	if err != nil {
		e.log.Warn("settings_unreadable", logx.Fields{"chore": def.Name, "error": err})
	}
	if ok && n >= 0 {
		return n
	}
	if def.ResetDays != nil {
		return *def.ResetDays
	}
	return e.defaultDays
}

// SetResetDays saves a chore's reset interval to the settings store.
func (e *Engine) SetResetDays(name string, days int) error {
	if _, ok := e.registry.FindByName(name); !ok {
		return fmt.Errorf("chore %q: %w", name, chore.ErrNotFound)
	}
	if days < 0 {
		return fmt.Errorf("reset days must be >= 0, got %d", days)
	}
	if err := e.prefs.SetInt(prefs.MaxDaysKey(name), days); err != nil {
		return err
	}
	if err := e.prefs.Flush(); err != nil {
		return err
	}
	e.log.Info("chore_settings_saved", logx.Fields{"chore": name, "max_days": days})
	return nil
}

// TopUp is the ledger-less spawner: while fewer instances exist than chores
// it spawns one randomly assigned chore, then waits a random interval.
func (e *Engine) TopUp() (scene.Instance, bool) {
	now := e.now()
	if now.Before(e.nextTopUp) || e.scene.Len() >= e.registry.Len() {
		return scene.Instance{}, false
	}
	pos := e.samplePosition("")
	in := e.scene.SpawnRandom(pos, e.defaultScale, e.registry.All(), e.rng)
	e.nextTopUp = now.Add(e.randomInterval())
	e.log.Info("chore_spawned", logx.Fields{"chore": in.ChoreName(), "instance": in.ID.String(), "mode": "ephemeral"})
	e.record(telemetry.EventChoreSpawned, telemetry.EventMetadata{"chore": in.ChoreName()})
	return in, true
}

func (e *Engine) randomInterval() time.Duration {
	if e.maxInterval <= e.minInterval {
		return e.minInterval
	}
	return e.minInterval + time.Duration(e.rng.Int63n(int64(e.maxInterval-e.minInterval)))
}

// Flush writes the cached records back to the ledger.
func (e *Engine) Flush() error {
	if !e.started {
		return nil
	}
	return e.flush()
}

func (e *Engine) flush() error {
	if err := e.ledger.Save(e.records); err != nil {
		e.log.Error("ledger_save_failed", logx.Fields{"error": err})
		return err
	}
	return nil
}

func (e *Engine) spawnFresh(def chore.Definition, now time.Time, ev telemetry.EventType) {
	pos := e.samplePosition(def.Name)
	e.warnIncomplete(def)
	in := e.scene.Spawn(&def, pos, e.defaultScale)

	rec := ledger.Record{
		Chore:     def.Name,
		SpawnedAt: now.Unix(),
		Position:  pos,
		Scale:     e.defaultScale,
	}
	e.records = ledger.Merge(e.records, rec)

	msg := "chore_spawned"
	if ev == telemetry.EventChoreRespawned {
		msg = "chore_respawned"
	}
	e.log.Info(msg, logx.Fields{"chore": def.Name, "instance": in.ID.String()})
	e.record(ev, telemetry.EventMetadata{"chore": def.Name})

	// Each spawn event rewrites the whole ledger.
	_ = e.flush()
}

func (e *Engine) samplePosition(name string) geom.Vec3 {
	pos, ok := e.sampler.Sample(e.place, e.scene.Positions())
	if !ok {
		e.log.Warn("placement_exhausted", logx.Fields{"chore": name, "attempts": e.place.MaxAttempts})
	}
	return pos
}

func (e *Engine) warnIncomplete(def chore.Definition) {
	if def.Sprite == "" {
		e.log.Warn("chore_sprite_missing", logx.Fields{"chore": def.Name})
	}
	if def.Tag == "" {
		e.log.Warn("chore_tag_missing", logx.Fields{"chore": def.Name})
	}
}

func (e *Engine) findRecord(name string) (ledger.Record, bool) {
	for _, r := range e.records {
		if r.Chore == name {
			return r, true
		}
	}
	return ledger.Record{}, false
}

func (e *Engine) record(t telemetry.EventType, meta telemetry.EventMetadata) {
	if err := e.events.RecordEvent(t, meta); err != nil {
		e.log.Warn("telemetry_record_failed", logx.Fields{"event": string(t), "error": err})
	}
}
