package player

type Handlers interface {
	Play()
	Pause()
	SetVolume(volume float64)
	TakeScreenshot()
	ToggleRecording()
	Seek(time float64)
}

// HandlerFuncs adapts plain functions to Handlers. Nil fields do nothing.
type HandlerFuncs struct {
	PlayFunc            func()
	PauseFunc           func()
	SetVolumeFunc       func(volume float64)
	TakeScreenshotFunc  func()
	ToggleRecordingFunc func()
	SeekFunc            func(time float64)
}

func (h HandlerFuncs) Play() {
	if h.PlayFunc != nil {
		h.PlayFunc()
	}
}

func (h HandlerFuncs) Pause() {
	if h.PauseFunc != nil {
		h.PauseFunc()
	}
}

func (h HandlerFuncs) SetVolume(volume float64) {
	if h.SetVolumeFunc != nil {
		h.SetVolumeFunc(volume)
	}
}

func (h HandlerFuncs) TakeScreenshot() {
	if h.TakeScreenshotFunc != nil {
		h.TakeScreenshotFunc()
	}
}

func (h HandlerFuncs) ToggleRecording() {
	if h.ToggleRecordingFunc != nil {
		h.ToggleRecordingFunc()
	}
}

func (h HandlerFuncs) Seek(time float64) {
	if h.SeekFunc != nil {
		h.SeekFunc(time)
	}
}

type noopHandlers struct{}

func (noopHandlers) Play()             {}
func (noopHandlers) Pause()            {}
func (noopHandlers) SetVolume(float64) {}
func (noopHandlers) TakeScreenshot()   {}
func (noopHandlers) ToggleRecording()  {}
func (noopHandlers) Seek(float64)      {}

// NoopHandlers is the handler set of the default player.
var NoopHandlers Handlers = noopHandlers{}
