package scene

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/FrankDatema/MindHop/internal/anim"
	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/geom"
	"github.com/FrankDatema/MindHop/internal/logx"
)

var ErrInstanceNotFound = errors.New("instance not found")

// Phase is where an instance is in its scale animation.
type Phase string

const (
	PhaseGrowing   Phase = "growing"
	PhaseIdle      Phase = "idle"
	PhaseShrinking Phase = "shrinking"
)

// Instance is one live cloud. Chore is nil when no chore could be assigned.
type Instance struct {
	ID       uuid.UUID         `json:"id"`
	Chore    *chore.Definition `json:"chore,omitempty"`
	Position geom.Vec3         `json:"position"`
	Scale    geom.Vec3         `json:"scale"`
	Target   geom.Vec3         `json:"target"`
	Phase    Phase             `json:"phase"`
	Seq      int               `json:"seq"`

	grow *anim.Grow
}

// ChoreName returns the assigned chore's name or "".
func (in Instance) ChoreName() string {
	if in.Chore == nil {
		return ""
	}
	return in.Chore.Name
}

// Options configures the animations of a Scene.
type Options struct {
	GrowthDuration time.Duration
	ShrinkSpeed    float64
	Logger         *logx.Logger
}

// Scene owns the live instances. It is not safe for concurrent use; the
// game runtime drives it from a single goroutine.
type Scene struct {
	opts      Options
	shrink    anim.Shrink
	instances map[uuid.UUID]*Instance
	nextSeq   int
}

func New(opts Options) *Scene {
	if opts.ShrinkSpeed <= 0 {
		opts.ShrinkSpeed = 5
	}
	return &Scene{
		opts:      opts,
		shrink:    anim.Shrink{Speed: opts.ShrinkSpeed},
		instances: make(map[uuid.UUID]*Instance),
	}
}

// Spawn places a new instance at zero scale and starts growing it to target.
func (s *Scene) Spawn(def *chore.Definition, pos, target geom.Vec3) Instance {
	var assigned *chore.Definition
	if def != nil {
		d := *def
		assigned = &d
	}
	s.nextSeq++
	in := &Instance{
		ID:       uuid.New(),
		Chore:    assigned,
		Position: pos,
		Scale:    geom.Zero,
		Target:   target,
		Phase:    PhaseGrowing,
		Seq:      s.nextSeq,
		grow:     anim.NewGrow(target, s.opts.GrowthDuration),
	}
	s.instances[in.ID] = in
	return *in
}

// SpawnRandom spawns an instance carrying a chore drawn uniformly from defs
// not yet live. When all are live the instance carries no chore.
func (s *Scene) SpawnRandom(pos, target geom.Vec3, defs []chore.Definition, rng *rand.Rand) Instance {
	def, ok := chore.PickUnspawned(defs, s.Live, rng)
	if !ok {
		s.opts.Logger.Warn("no_unspawned_chore", logx.Fields{"chores": len(defs)})
		return s.Spawn(nil, pos, target)
	}
	if def.Sprite == "" {
		s.opts.Logger.Warn("chore_sprite_missing", logx.Fields{"chore": def.Name})
	}
	return s.Spawn(&def, pos, target)
}

// Dismiss starts the shrink-and-remove sequence. Dismissing an instance
// that is already shrinking changes nothing.
func (s *Scene) Dismiss(id uuid.UUID) error {
	in, ok := s.instances[id]
	if !ok {
		return ErrInstanceNotFound
	}
	in.Phase = PhaseShrinking
	in.grow = nil
	return nil
}

// Step advances every animation by dt and returns the instances whose
// shrink finished this frame; those are no longer in the scene.
func (s *Scene) Step(dt time.Duration) []Instance {
	var removed []Instance
	for _, in := range s.ordered() {
		switch in.Phase {
		case PhaseGrowing:
			scale, done := in.grow.Step(dt)
			in.Scale = scale
			if done {
				in.Phase = PhaseIdle
				in.grow = nil
			}
		case PhaseShrinking:
			if _, ok := s.instances[in.ID]; !ok {
				continue
			}
			scale, done := s.shrink.Step(in.Scale, dt)
			in.Scale = scale
			if done {
				delete(s.instances, in.ID)
				removed = append(removed, *in)
			}
		}
	}
	return removed
}

// Remove drops an instance immediately, without animation.
func (s *Scene) Remove(id uuid.UUID) bool {
	if _, ok := s.instances[id]; !ok {
		return false
	}
	delete(s.instances, id)
	return true
}

// Live reports whether an instance tagged with the chore name exists.
func (s *Scene) Live(name string) bool {
	for _, in := range s.instances {
		if in.Chore != nil && in.Chore.Name == name {
			return true
		}
	}
	return false
}

func (s *Scene) Get(id uuid.UUID) (Instance, bool) {
	in, ok := s.instances[id]
	if !ok {
		return Instance{}, false
	}
	return *in, true
}

// Find returns the live instance tagged with name.
func (s *Scene) Find(name string) (Instance, bool) {
	for _, in := range s.ordered() {
		if in.Chore != nil && in.Chore.Name == name {
			return *in, true
		}
	}
	return Instance{}, false
}

// Instances returns a snapshot in spawn order.
func (s *Scene) Instances() []Instance {
	ord := s.ordered()
	out := make([]Instance, len(ord))
	for i, in := range ord {
		out[i] = *in
	}
	return out
}

// Positions returns the occupied positions, for placement.
func (s *Scene) Positions() []geom.Vec3 {
	ord := s.ordered()
	out := make([]geom.Vec3, len(ord))
	for i, in := range ord {
		out[i] = in.Position
	}
	return out
}

func (s *Scene) Len() int { return len(s.instances) }

func (s *Scene) ordered() []*Instance {
	out := make([]*Instance, 0, len(s.instances))
	for _, in := range s.instances {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
