package model

import "time"

// EventKind identifies a host notification.
type EventKind string

const (
	// EventForegroundChanged reports that the active application switched.
	EventForegroundChanged EventKind = "foreground_changed"
	// EventContentChanged reports that the current window's tree mutated.
	EventContentChanged EventKind = "content_changed"
	// EventSnapshotRequested asks for a flattened snapshot of the current tree.
	EventSnapshotRequested EventKind = "snapshot_requested"
)

// Event is a single host notification.
type Event struct {
	Kind EventKind `yaml:"kind" json:"kind"`
	App  string    `yaml:"app"  json:"app"`
	At   time.Time `yaml:"at"   json:"at"`
}

// Snapshot is a flattened tree handed to the capture side.
type Snapshot struct {
	ID       string        `yaml:"snapshot_id" json:"snapshot_id"`
	App      string        `yaml:"app"         json:"app"`
	TakenAt  time.Time     `yaml:"taken_at"    json:"taken_at"`
	Elements []FlatElement `yaml:"elements"    json:"elements"`
}

// Find returns the element with the given snapshot ID.
func (s *Snapshot) Find(id int) (FlatElement, bool) {
	for _, el := range s.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return FlatElement{}, false
}
