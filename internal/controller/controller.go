package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/playerwall/internal/player"
	"github.com/sharetube/playerwall/internal/service/hosting"
	"github.com/sharetube/playerwall/pkg/validator"
	"github.com/sharetube/playerwall/pkg/wsrouter"
)

type iHostingService interface {
	RegisterHost(context.Context, *hosting.RegisterHostParams) (hosting.RegisterHostResponse, error)
	UnregisterHost(context.Context, *hosting.UnregisterHostParams) error
	UpdateState(context.Context, *hosting.UpdateStateParams) (player.Player, error)
	SaveScreenshot(context.Context, *hosting.SaveScreenshotParams)
	Invoke(context.Context, *hosting.InvokeParams) error
	GetPlayer(context.Context, string) player.Player
	CurrentPlayer(context.Context) player.Player
	ListPlayers(context.Context) []player.Player
	Watch(context.Context) <-chan player.Player
}

type controller struct {
	hostingService iHostingService
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	logger         *slog.Logger
	hostMux        *wsrouter.WSRouter
	watchMux       *wsrouter.WSRouter
}

func NewController(hostingService iHostingService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		hostingService: hostingService,
		validate:       validator.NewValidator(),
		logger:         logger,
	}
	c.hostMux = c.getHostWSRouter()
	c.watchMux = c.getWatchWSRouter()

	return c
}
