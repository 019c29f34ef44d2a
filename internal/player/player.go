package player

import "github.com/samber/mo"

type Identity string

type State struct {
	Playing     bool               `json:"playing"`
	Volume      float64            `json:"volume"`
	CurrentTime float64            `json:"current_time"`
	Duration    mo.Option[float64] `json:"duration"`
	Recording   bool               `json:"recording"`
}

type Player struct {
	Identity Identity `json:"identity"`
	State    *State   `json:"state"`
	Handlers Handlers `json:"-"`
}

// defaultState is what a lookup miss reports. It is never handed out by
// pointer, so nothing outside this package can mutate it.
var defaultState = State{
	Playing:     false,
	Volume:      1,
	CurrentTime: 0,
	Duration:    mo.None[float64](),
	Recording:   false,
}

func DefaultState() State {
	return defaultState
}

func defaultPlayer(id Identity) Player {
	s := defaultState
	return Player{
		Identity: id,
		State:    &s,
		Handlers: NoopHandlers,
	}
}
