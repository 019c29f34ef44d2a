package hosting

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/sharetube/playerwall/internal/player"
	"github.com/sharetube/playerwall/internal/repository/connection"
	"github.com/sharetube/playerwall/internal/repository/mirror"
)

type RegisterHostParams struct {
	PlayerID string
	Conn     *connection.Conn
	State    *player.State
}

type RegisterHostResponse struct {
	PlayerID player.Identity
	Player   player.Player
}

// RegisterHost binds a player host connection and registers its player.
// Commands invoked on the player are forwarded to the connection.
func (s service) RegisterHost(ctx context.Context, params *RegisterHostParams) (RegisterHostResponse, error) {
	playerID := params.PlayerID
	if playerID == "" {
		playerID = uuid.NewString()
	}

	if err := s.connRepo.Add(params.Conn, playerID); err != nil {
		if errors.Is(err, connection.ErrAlreadyExists) {
			return RegisterHostResponse{}, ErrIdentityInUse
		}
		return RegisterHostResponse{}, fmt.Errorf("failed to bind host connection: %w", err)
	}

	state := params.State
	if state == nil {
		defaultState := player.DefaultState()
		state = &defaultState
	}

	id := player.Identity(playerID)
	s.registry.Add(id, state, &remoteHandlers{
		playerID: playerID,
		connRepo: s.connRepo,
		logger:   s.logger,
	})

	p := s.registry.Get(id).Snapshot()
	s.publish(ctx, mirror.EventAdded, p)

	return RegisterHostResponse{
		PlayerID: id,
		Player:   p,
	}, nil
}

type UnregisterHostParams struct {
	Conn *connection.Conn
}

// UnregisterHost tears down the player hosted on conn. It does nothing to
// the registry when conn no longer hosts a player.
func (s service) UnregisterHost(ctx context.Context, params *UnregisterHostParams) error {
	playerID, err := s.connRepo.GetPlayerID(params.Conn)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return ErrHostNotBound
		}
		return fmt.Errorf("failed to get hosted player id: %w", err)
	}

	if err := s.connRepo.RemoveByPlayerID(playerID, params.Conn); err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return ErrHostNotBound
		}
		return fmt.Errorf("failed to unbind host connection: %w", err)
	}

	id := player.Identity(playerID)
	if s.registry.Remove(id) {
		s.publish(ctx, mirror.EventRemoved, player.Player{Identity: id})
	}

	return nil
}

type UpdateStateParams struct {
	PlayerID    string
	Playing     *bool
	Volume      *float64
	CurrentTime *float64
	Duration    *float64
	// ClearDuration marks the duration unknown again, e.g. when a new
	// source loads before its metadata. Duration, when set, wins.
	ClearDuration bool
	Recording     *bool
}

// UpdateState applies the fields set in params to a registered player.
func (s service) UpdateState(ctx context.Context, params *UpdateStateParams) (player.Player, error) {
	id := player.Identity(params.PlayerID)
	ok := s.registry.Update(id, func(state *player.State) {
		if params.Playing != nil {
			state.Playing = *params.Playing
		}
		if params.Volume != nil {
			state.Volume = *params.Volume
		}
		if params.CurrentTime != nil {
			state.CurrentTime = *params.CurrentTime
		}
		if params.ClearDuration {
			state.Duration = mo.None[float64]()
		}
		if params.Duration != nil {
			state.Duration = mo.Some(*params.Duration)
		}
		if params.Recording != nil {
			state.Recording = *params.Recording
		}
	})
	if !ok {
		return player.Player{}, ErrPlayerNotFound
	}

	p := s.registry.Get(id).Snapshot()
	s.publish(ctx, mirror.EventUpdated, p)

	return p, nil
}

type SaveScreenshotParams struct {
	PlayerID string
	Locator  string
}

func (s service) SaveScreenshot(ctx context.Context, params *SaveScreenshotParams) {
	s.saver.Save(ctx, player.Identity(params.PlayerID), params.Locator)
}
