package game

import (
	"time"

	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/ledger"
)

// ChoreStatus is a read-only view of one chore for outer surfaces.
type ChoreStatus struct {
	Chore       chore.Definition `json:"chore"`
	ResetDays   int              `json:"reset_days"`
	Record      *ledger.Record   `json:"record,omitempty"`
	Live        bool             `json:"live"`
	InstanceID  string           `json:"instance_id,omitempty"`
	DaysElapsed float64          `json:"days_elapsed"`
	Due         bool             `json:"due"`
	NextResetAt *time.Time       `json:"next_reset_at,omitempty"`
}

// Status reports every catalog chore in catalog order. Before Start the
// records are read straight from the ledger.
func (e *Engine) Status() []ChoreStatus {
	now := e.now()
	records := e.records
	if !e.started {
		records = e.ledger.Records()
	}
	byName := make(map[string]ledger.Record, len(records))
	for _, r := range records {
		byName[r.Chore] = r
	}

	defs := e.registry.All()
	out := make([]ChoreStatus, 0, len(defs))
	for _, def := range defs {
		st := ChoreStatus{Chore: def, ResetDays: e.ResetDays(def)}
		if in, ok := e.scene.Find(def.Name); ok {
			st.Live = true
			st.InstanceID = in.ID.String()
		}
		if rec, ok := byName[def.Name]; ok {
			rec := rec
			st.Record = &rec
			st.DaysElapsed = rec.ElapsedDays(now)
			st.Due = rec.Due(now, st.ResetDays)
			next := rec.SpawnTime().Add(time.Duration(st.ResetDays) * 24 * time.Hour)
			st.NextResetAt = &next
		} else {
			st.Due = true
		}
		out = append(out, st)
	}
	return out
}
