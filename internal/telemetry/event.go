package telemetry

import "time"

type EventType string

const (
	EventChoreSpawned    EventType = "chore_spawned"
	EventChoreRestored   EventType = "chore_restored"
	EventChoreRespawned  EventType = "chore_respawned"
	EventChoreRearmed    EventType = "chore_rearmed"
	EventChoreDismissed  EventType = "chore_dismissed"
	EventInstanceRemoved EventType = "instance_removed"
	EventTagScanned      EventType = "tag_scanned"
	EventResetTick       EventType = "reset_tick"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
