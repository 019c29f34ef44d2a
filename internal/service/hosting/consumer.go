package hosting

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sharetube/playerwall/internal/player"
	"github.com/sharetube/playerwall/internal/playerctx"
	"golang.org/x/exp/slices"
)

type Action string

const (
	ActionPlay            Action = "play"
	ActionPause           Action = "pause"
	ActionSetVolume       Action = "set_volume"
	ActionScreenshot      Action = "screenshot"
	ActionToggleRecording Action = "toggle_recording"
	ActionSeek            Action = "seek"
)

type actionFunc func(h player.Handlers, value float64)

var actions = map[Action]struct {
	needsValue bool
	call       actionFunc
}{
	ActionPlay:            {call: func(h player.Handlers, _ float64) { h.Play() }},
	ActionPause:           {call: func(h player.Handlers, _ float64) { h.Pause() }},
	ActionSetVolume:       {needsValue: true, call: func(h player.Handlers, v float64) { h.SetVolume(v) }},
	ActionScreenshot:      {call: func(h player.Handlers, _ float64) { h.TakeScreenshot() }},
	ActionToggleRecording: {call: func(h player.Handlers, _ float64) { h.ToggleRecording() }},
	ActionSeek:            {needsValue: true, call: func(h player.Handlers, v float64) { h.Seek(v) }},
}

type InvokeParams struct {
	PlayerID string
	Action   Action
	Value    *float64
}

// Invoke runs an action through the handlers of the player. An identity
// with no registered player resolves to the default handlers, so invoking
// on it succeeds and does nothing.
func (s service) Invoke(ctx context.Context, params *InvokeParams) error {
	action, ok := actions[params.Action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, params.Action)
	}
	if action.needsValue && params.Value == nil {
		return fmt.Errorf("%w: %s", ErrValueRequired, params.Action)
	}

	p := s.registry.Get(player.Identity(params.PlayerID)).Get()
	action.call(p.Handlers, lo.FromPtr(params.Value))

	s.logger.DebugContext(ctx, "action invoked", "player_id", params.PlayerID, "action", params.Action)
	return nil
}

func (s service) GetPlayer(_ context.Context, playerID string) player.Player {
	return s.registry.Get(player.Identity(playerID)).Snapshot()
}

// CurrentPlayer returns the player whose identity was provided to ctx.
func (s service) CurrentPlayer(ctx context.Context) player.Player {
	return playerctx.Current(ctx, s.registry).Snapshot()
}

func (s service) ListPlayers(_ context.Context) []player.Player {
	return lo.Map(s.registry.Identities(), func(id player.Identity, _ int) player.Player {
		return s.registry.Get(id).Snapshot()
	})
}

// Watch streams snapshots of the player whose identity was provided to ctx
// until ctx is done.
func (s service) Watch(ctx context.Context) <-chan player.Player {
	return playerctx.Current(ctx, s.registry).Watch(ctx)
}

func SupportedActions() []Action {
	keys := lo.Keys(actions)
	slices.Sort(keys)
	return keys
}
