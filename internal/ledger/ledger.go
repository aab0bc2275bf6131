package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/FrankDatema/MindHop/internal/geom"
	"github.com/FrankDatema/MindHop/internal/logx"
	"github.com/FrankDatema/MindHop/internal/prefs"
)

// Key is the prefs key holding the serialized record list.
const Key = "ChoreSpawnData"

const secondsPerDay = 24 * 60 * 60

// Record is the last spawn of one chore.
type Record struct {
	Chore     string    `json:"choreName"`
	SpawnedAt int64     `json:"spawnTime"`
	Position  geom.Vec3 `json:"position"`
	Scale     geom.Vec3 `json:"scale"`
}

// SpawnTime returns SpawnedAt as a UTC time.
func (r Record) SpawnTime() time.Time { return time.Unix(r.SpawnedAt, 0).UTC() }

// ElapsedDays returns fractional days between the spawn and now.
func (r Record) ElapsedDays(now time.Time) float64 {
	return float64(now.UTC().Unix()-r.SpawnedAt) / secondsPerDay
}

// Due reports whether at least resetDays have elapsed since the spawn.
func (r Record) Due(now time.Time, resetDays int) bool {
	return r.ElapsedDays(now) >= float64(resetDays)
}

type blob struct {
	Records []Record `json:"records"`
}

// Ledger is the durable per-chore spawn history, stored as one blob.
type Ledger struct {
	store prefs.Store
	log   *logx.Logger
}

func New(store prefs.Store, logger *logx.Logger) *Ledger {
	return &Ledger{store: store, log: logger}
}

// Records returns the stored list in saved order. Absent or unreadable
// storage yields an empty list.
func (l *Ledger) Records() []Record {
	raw, ok, err := l.store.String(Key)
	if err != nil {
		l.log.Warn("ledger_unreadable", logx.Fields{"error": err})
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var b blob
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		l.log.Warn("ledger_corrupt", logx.Fields{"error": err})
		return nil
	}

	// Keep the last record per chore if the blob was hand-edited into duplicates.
	seen := make(map[string]int, len(b.Records))
	out := make([]Record, 0, len(b.Records))
	for _, r := range b.Records {
		if r.Chore == "" {
			continue
		}
		if i, dup := seen[r.Chore]; dup {
			out[i] = r
			continue
		}
		seen[r.Chore] = len(out)
		out = append(out, r)
	}
	return out
}

// Load returns the records keyed by chore name.
func (l *Ledger) Load() map[string]Record {
	recs := l.Records()
	m := make(map[string]Record, len(recs))
	for _, r := range recs {
		m[r.Chore] = r
	}
	return m
}

// Save replaces the stored blob with records and flushes the store.
func (l *Ledger) Save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	b, err := json.Marshal(blob{Records: records})
	if err != nil {
		return err
	}
	if err := l.store.SetString(Key, string(b)); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	if err := l.store.Flush(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	l.log.Debug("ledger_saved", logx.Fields{"records": len(records)})
	return nil
}

// Upsert replaces the record for rec.Chore in place, or appends it.
func (l *Ledger) Upsert(rec Record) error {
	return l.Save(Merge(l.Records(), rec))
}

// Merge returns recs with rec replacing the entry for the same chore,
// or appended when there is none.
func Merge(recs []Record, rec Record) []Record {
	out := make([]Record, 0, len(recs)+1)
	replaced := false
	for _, r := range recs {
		if r.Chore == rec.Chore {
			out = append(out, rec)
			replaced = true
			continue
		}
		out = append(out, r)
	}
	if !replaced {
		out = append(out, rec)
	}
	return out
}

// Clear removes the stored blob.
func (l *Ledger) Clear() error {
	if err := l.store.Delete(Key); err != nil {
		return err
	}
	return l.store.Flush()
}
