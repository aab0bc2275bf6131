package game

import (
	"context"
	"sync"
)

type MemoryStateRepo struct {
	mu    sync.RWMutex
	state State
}

func NewMemoryStateRepo() *MemoryStateRepo {
	return &MemoryStateRepo{}
}

func (r *MemoryStateRepo) Get(ctx context.Context) (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, nil
}

// Update applies fn under the write lock and returns the new state.
func (r *MemoryStateRepo) Update(ctx context.Context, fn func(*State)) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fn != nil {
		fn(&r.state)
	}
	return r.state, nil
}
