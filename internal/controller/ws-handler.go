package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sharetube/playerwall/internal/playerctx"
	"github.com/sharetube/playerwall/internal/repository/connection"
	"github.com/sharetube/playerwall/internal/service/hosting"
	"github.com/sharetube/playerwall/pkg/ctxlogger"
	"github.com/sharetube/playerwall/pkg/wsrouter"
)

const closeIdentityInUse = 4009

// hostPlayer serves a player host for as long as its connection lives.
// The player is registered on connect and removed on disconnect.
func (c controller) hostPlayer(w http.ResponseWriter, r *http.Request) {
	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	conn := connection.NewConn(ws)
	defer conn.Close()

	registerResp, err := c.hostingService.RegisterHost(r.Context(), &hosting.RegisterHostParams{
		PlayerID: r.URL.Query().Get("player-id"),
		Conn:     conn,
	})
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to register host", "error", err)
		if errors.Is(err, hosting.ErrIdentityInUse) {
			conn.CloseWithCode(closeIdentityInUse, "player id in use")
		}
		return
	}
	playerId := string(registerResp.PlayerID)
	defer func() {
		if err := c.hostingService.UnregisterHost(context.Background(), &hosting.UnregisterHostParams{
			Conn: conn,
		}); err != nil {
			c.logger.InfoContext(r.Context(), "failed to unregister host", "error", err)
		}
	}()

	ctx := playerctx.Provide(r.Context(), registerResp.PlayerID)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("player_id", playerId))

	if err := conn.WriteJSON(&Output{
		Type: "REGISTERED",
		Payload: map[string]any{
			"player_id": registerResp.PlayerID,
			"player":    registerResp.Player,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write json", "error", err)
		return
	}

	c.logger.InfoContext(ctx, "player host connected")
	if err := c.hostMux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "player host disconnected", "error", err)
	}
}

// watchPlayer pushes every change of the player in the URL to the
// consumer and accepts actions to invoke on it.
func (c controller) watchPlayer(w http.ResponseWriter, r *http.Request) {
	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	conn := connection.NewConn(ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		for p := range c.hostingService.Watch(ctx) {
			if err := conn.WriteJSON(&Output{
				Type:    "PLAYER_UPDATED",
				Payload: p,
			}); err != nil {
				c.logger.InfoContext(ctx, "failed to push player update", "error", err)
				cancel()
				conn.Close()
				return
			}
		}
	}()

	if err := c.watchMux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "player watcher disconnected", "error", err)
	}
}

func (c controller) handleAlive(_ context.Context, _ wsrouter.Conn, _ EmptyInput) error {
	return nil
}

type UpdateStateInput struct {
	Playing       *bool    `json:"playing"`
	Volume        *float64 `json:"volume" validate:"omitempty,gte=0,lte=1"`
	CurrentTime   *float64 `json:"current_time" validate:"omitempty,gte=0"`
	Duration      *float64 `json:"duration" validate:"omitempty,gte=0"`
	ClearDuration bool     `json:"clear_duration"`
	Recording     *bool    `json:"recording"`
}

func (c controller) handleUpdateState(ctx context.Context, _ wsrouter.Conn, input UpdateStateInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrValidationError, validationErrors)
	}

	if _, err := c.hostingService.UpdateState(ctx, &hosting.UpdateStateParams{
		PlayerID:      c.getPlayerIdFromCtx(ctx),
		Playing:       input.Playing,
		Volume:        input.Volume,
		CurrentTime:   input.CurrentTime,
		Duration:      input.Duration,
		ClearDuration: input.ClearDuration,
		Recording:     input.Recording,
	}); err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}

	return nil
}

type ScreenshotTakenInput struct {
	Locator string `json:"locator" validate:"required"`
}

func (c controller) handleScreenshotTaken(ctx context.Context, _ wsrouter.Conn, input ScreenshotTakenInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrValidationError, validationErrors)
	}

	c.hostingService.SaveScreenshot(ctx, &hosting.SaveScreenshotParams{
		PlayerID: c.getPlayerIdFromCtx(ctx),
		Locator:  input.Locator,
	})

	return nil
}

func (c controller) handleInvoke(ctx context.Context, _ wsrouter.Conn, input InvokeInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrValidationError, validationErrors)
	}

	if err := c.hostingService.Invoke(ctx, &hosting.InvokeParams{
		PlayerID: c.getPlayerIdFromCtx(ctx),
		Action:   hosting.Action(input.Action),
		Value:    input.Value,
	}); err != nil {
		return fmt.Errorf("failed to invoke action: %w", err)
	}

	return nil
}
