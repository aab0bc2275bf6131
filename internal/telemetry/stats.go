package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period        string            `json:"period"`
	EventCounts   map[EventType]int `json:"event_counts"`
	Spawns        int               `json:"spawns"`
	Respawns      int               `json:"respawns"`
	Restores      int               `json:"restores"`
	Dismissals    int               `json:"dismissals"`
	Scans         int               `json:"scans"`
	ResetTicks    int               `json:"reset_ticks"`
	DismissByName map[string]int    `json:"dismiss_by_chore"`
	ScansByName   map[string]int    `json:"scans_by_chore"`
}

// CalculateStats folds events into counters; since only labels the period.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:        since.UTC().Format("2006-01-02"),
		EventCounts:   make(map[EventType]int),
		DismissByName: make(map[string]int),
		ScansByName:   make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			metadata = nil
		}
		name, _ := metadata["chore"].(string)

		switch event.Type {
		case EventChoreSpawned:
			stats.Spawns++
		case EventChoreRespawned:
			stats.Respawns++
		case EventChoreRestored:
			stats.Restores++
		case EventChoreDismissed:
			stats.Dismissals++
			if name != "" {
				stats.DismissByName[name]++
			}
		case EventTagScanned:
			stats.Scans++
			if name != "" {
				stats.ScansByName[name]++
			}
		case EventResetTick:
			stats.ResetTicks++
		}
	}
	return stats, nil
}
