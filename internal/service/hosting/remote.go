package hosting

import "log/slog"

const (
	CommandPlay            = "PLAY"
	CommandPause           = "PAUSE"
	CommandSetVolume       = "SET_VOLUME"
	CommandTakeScreenshot  = "TAKE_SCREENSHOT"
	CommandToggleRecording = "TOGGLE_RECORDING"
	CommandSeek            = "SEEK"
)

type Command struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// remoteHandlers forwards player actions to the host connection bound to
// playerID at the time of the call.
type remoteHandlers struct {
	playerID string
	connRepo iConnRepo
	logger   *slog.Logger
}

func (h *remoteHandlers) send(cmd Command) {
	if err := h.connRepo.Send(h.playerID, &cmd); err != nil {
		h.logger.Warn("failed to send command", "player_id", h.playerID, "command", cmd.Type, "error", err)
	}
}

func (h *remoteHandlers) Play() {
	h.send(Command{Type: CommandPlay})
}

func (h *remoteHandlers) Pause() {
	h.send(Command{Type: CommandPause})
}

func (h *remoteHandlers) SetVolume(volume float64) {
	h.send(Command{Type: CommandSetVolume, Payload: map[string]float64{"volume": volume}})
}

func (h *remoteHandlers) TakeScreenshot() {
	h.send(Command{Type: CommandTakeScreenshot})
}

func (h *remoteHandlers) ToggleRecording() {
	h.send(Command{Type: CommandToggleRecording})
}

func (h *remoteHandlers) Seek(time float64) {
	h.send(Command{Type: CommandSeek, Payload: map[string]float64{"time": time}})
}
