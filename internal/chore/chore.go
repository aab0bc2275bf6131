package chore

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("chore not found")

// Definition is an immutable catalog entry. A nil ResetDays leaves the
// interval to the configured default; zero respawns on every check.
type Definition struct {
	Name      string `yaml:"name" json:"name"`
	Tag       string `yaml:"tag" json:"tag,omitempty"`
	ResetDays *int   `yaml:"reset_days,omitempty" json:"reset_days,omitempty"`
	Sprite    string `yaml:"sprite" json:"sprite,omitempty"`
}

// Days returns a reset interval for a Definition literal.
func Days(n int) *int { return &n }

// Registry is the read-only chore catalog, indexed by name and by tag.
type Registry struct {
	defs   []Definition
	byName map[string]int
	byTag  map[string]int
}

// NewRegistry indexes defs in order. Names must be unique and non-empty.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs:   make([]Definition, 0, len(defs)),
		byName: make(map[string]int, len(defs)),
		byTag:  make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		d.Name = strings.TrimSpace(d.Name)
		d.Tag = strings.TrimSpace(d.Tag)
		if d.Name == "" {
			return nil, fmt.Errorf("chore definition %d has no name", len(r.defs))
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate chore name %q", d.Name)
		}
		if d.ResetDays != nil {
			if *d.ResetDays < 0 {
				return nil, fmt.Errorf("chore %q: reset_days must be >= 0", d.Name)
			}
			d.ResetDays = Days(*d.ResetDays)
		}
		r.byName[d.Name] = len(r.defs)
		if d.Tag != "" {
			if _, taken := r.byTag[d.Tag]; !taken {
				r.byTag[d.Tag] = len(r.defs)
			}
		}
		r.defs = append(r.defs, d)
	}
	return r, nil
}

func (r *Registry) FindByName(name string) (Definition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// FindByTag matches a scanned tag identifier. An empty tag never matches.
func (r *Registry) FindByTag(tag string) (Definition, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Definition{}, false
	}
	i, ok := r.byTag[tag]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// All returns a copy of the catalog in declaration order.
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

func (r *Registry) Len() int { return len(r.defs) }

// PickUnspawned draws uniformly among defs whose name isLive rejects.
// It reports false when every definition is already live.
func PickUnspawned(defs []Definition, isLive func(name string) bool, rng *rand.Rand) (Definition, bool) {
	free := make([]Definition, 0, len(defs))
	for _, d := range defs {
		if isLive != nil && isLive(d.Name) {
			continue
		}
		free = append(free, d)
	}
	if len(free) == 0 {
		return Definition{}, false
	}
	return free[rng.Intn(len(free))], true
}

type catalogFile struct {
	Chores []Definition `yaml:"chores"`
}

// LoadCatalog reads a YAML file holding a top-level chores list.
func LoadCatalog(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf catalogFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("parse chore catalog: %w", err)
	}
	return NewRegistry(cf.Chores)
}

// Default is the built-in household catalog.
func Default() []Definition {
	return []Definition{
		{Name: "Dishes", Tag: "BNaF2g==", ResetDays: Days(1), Sprite: "sprites/dishes.png"},
		{Name: "Laundry", Tag: "BKm8Eg==", ResetDays: Days(3), Sprite: "sprites/laundry.png"},
		{Name: "Vacuum", Tag: "BC2zMA==", ResetDays: Days(7), Sprite: "sprites/vacuum.png"},
		{Name: "Trash", Tag: "BGh1Ow==", ResetDays: Days(2), Sprite: "sprites/trash.png"},
		{Name: "Plants", Tag: "BP4kXQ==", ResetDays: Days(4), Sprite: "sprites/plants.png"},
	}
}
