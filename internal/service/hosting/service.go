package hosting

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sharetube/playerwall/internal/player"
	"github.com/sharetube/playerwall/internal/repository/connection"
	"github.com/sharetube/playerwall/internal/repository/mirror"
)

var (
	ErrIdentityInUse  = errors.New("player identity already hosted")
	ErrPlayerNotFound = errors.New("player not found")
	ErrUnknownAction  = errors.New("unknown action")
	ErrValueRequired  = errors.New("action requires a value")
	ErrHostNotBound   = errors.New("host is not bound to player")
)

type iRegistry interface {
	Add(player.Identity, *player.State, player.Handlers)
	Remove(player.Identity) bool
	Update(player.Identity, func(*player.State)) bool
	Get(player.Identity) player.View
	Identities() []player.Identity
}

type iConnRepo interface {
	Add(*connection.Conn, string) error
	RemoveByPlayerID(string, *connection.Conn) error
	GetPlayerID(*connection.Conn) (string, error)
	Send(string, any) error
}

type iMirror interface {
	Publish(context.Context, *mirror.Event) error
}

type iSaver interface {
	Save(context.Context, player.Identity, string)
}

type service struct {
	registry iRegistry
	connRepo iConnRepo
	mirror   iMirror
	saver    iSaver
	logger   *slog.Logger
}

func NewService(registry iRegistry, connRepo iConnRepo, mirror iMirror, saver iSaver, logger *slog.Logger) *service {
	return &service{
		registry: registry,
		connRepo: connRepo,
		mirror:   mirror,
		saver:    saver,
		logger:   logger,
	}
}

// publish mirrors a registry change. Mirror failures never fail the
// operation that caused them.
func (s service) publish(ctx context.Context, eventType mirror.EventType, p player.Player) {
	event := mirror.Event{
		Type:     eventType,
		Identity: p.Identity,
	}
	if eventType != mirror.EventRemoved {
		event.State = p.State
	}

	if err := s.mirror.Publish(ctx, &event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish player event", "type", eventType, "player_id", p.Identity, "error", err)
	}
}
