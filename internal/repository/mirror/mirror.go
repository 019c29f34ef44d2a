package mirror

import (
	"context"

	"github.com/sharetube/playerwall/internal/player"
)

type EventType string

const (
	EventAdded   EventType = "PLAYER_ADDED"
	EventUpdated EventType = "PLAYER_UPDATED"
	EventRemoved EventType = "PLAYER_REMOVED"
)

// Event describes one registry change. State is nil for removals.
type Event struct {
	Type     EventType       `json:"type"`
	Identity player.Identity `json:"identity"`
	State    *player.State   `json:"state,omitempty"`
}

// Noop drops every event. Used when no redis is configured.
type Noop struct{}

func (Noop) Publish(context.Context, *Event) error {
	return nil
}
