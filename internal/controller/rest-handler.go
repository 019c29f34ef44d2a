package controller

import (
	"errors"
	"net/http"

	"github.com/sharetube/playerwall/internal/service/hosting"
	"github.com/sharetube/playerwall/pkg/rest"
)

func (c controller) listPlayers(w http.ResponseWriter, r *http.Request) {
	players := c.hostingService.ListPlayers(r.Context())

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"players": players})
}

func (c controller) getPlayer(w http.ResponseWriter, r *http.Request) {
	player := c.hostingService.CurrentPlayer(r.Context())

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"player": player})
}

type InvokeInput struct {
	Action string   `json:"action" validate:"required,oneof=play pause set_volume screenshot toggle_recording seek"`
	Value  *float64 `json:"value" validate:"omitempty,gte=0"`
}

func (c controller) invokeAction(w http.ResponseWriter, r *http.Request) {
	var input InvokeInput
	if err := rest.ReadJSON(r, &input); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(r.Context(), "invalid input", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.hostingService.Invoke(r.Context(), &hosting.InvokeParams{
		PlayerID: c.getPlayerIdFromCtx(r.Context()),
		Action:   hosting.Action(input.Action),
		Value:    input.Value,
	}); err != nil {
		if errors.Is(err, hosting.ErrUnknownAction) || errors.Is(err, hosting.ErrValueRequired) {
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to invoke action", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
