package placement

import (
	"math/rand"
	"time"

	"github.com/FrankDatema/MindHop/internal/geom"
)

// DefaultMaxAttempts bounds the rejection loop when Params.MaxAttempts is unset.
const DefaultMaxAttempts = 100

// Params describes where a chore may be placed around an anchor.
type Params struct {
	Anchor        geom.Vec3
	Radius        float64
	MinHeight     float64
	MaxHeight     float64
	MinSeparation float64
	MaxAttempts   int
}

// Sampler draws spawn positions around an anchor.
type Sampler struct {
	Rand *rand.Rand
}

func NewSampler(r *rand.Rand) *Sampler {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{Rand: r}
}

// Sample returns a position inside the radius sphere with its height drawn
// from [MinHeight, MaxHeight] above the anchor. Candidates closer than
// MinSeparation to any occupied position are rejected. When the attempt
// budget runs out the last candidate is returned anyway and ok is false.
func (s *Sampler) Sample(p Params, occupied []geom.Vec3) (pos geom.Vec3, ok bool) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for i := 0; i < attempts; i++ {
		pos = p.Anchor.Add(s.insideUnitSphere().Scale(p.Radius))
		pos.Y = p.Anchor.Y + s.between(p.MinHeight, p.MaxHeight)

		if separated(pos, occupied, p.MinSeparation) {
			return pos, true
		}
	}
	return pos, false
}

func separated(pos geom.Vec3, occupied []geom.Vec3, minSep float64) bool {
	for _, o := range occupied {
		if pos.Distance(o) < minSep {
			return false
		}
	}
	return true
}

// insideUnitSphere draws uniformly from the unit ball by rejection from the cube.
func (s *Sampler) insideUnitSphere() geom.Vec3 {
	for {
		v := geom.V(s.Rand.Float64()*2-1, s.Rand.Float64()*2-1, s.Rand.Float64()*2-1)
		if v.SqrMagnitude() <= 1 {
			return v
		}
	}
}

func (s *Sampler) between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.Rand.Float64()*(hi-lo)
}
