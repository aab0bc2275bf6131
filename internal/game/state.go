package game

import (
	"context"
	"time"
)

// State is the process-wide session state that outlives scene changes.
type State struct {
	CurrentChore string    `json:"current_chore"`
	LastScanTag  string    `json:"last_scan_tag"`
	LastScanAt   time.Time `json:"last_scan_at"`
	LastTickAt   time.Time `json:"last_tick_at"`
	StartedAt    time.Time `json:"started_at"`
	Ticks        int       `json:"ticks"`
}

// StateRepository holds the session state.
type StateRepository interface {
	Get(ctx context.Context) (State, error)
	Update(ctx context.Context, fn func(*State)) (State, error)
}
