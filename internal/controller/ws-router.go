package controller

import (
	"github.com/sharetube/playerwall/pkg/wsrouter"
)

// getHostWSRouter routes messages sent by player hosts.
func (c controller) getHostWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw(), c.loggerWSMw())
	mux.SetErrorHandler(c.wsErrorHandler)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "UPDATE_STATE", c.handleUpdateState)
	wsrouter.Handle(mux, "SCREENSHOT_TAKEN", c.handleScreenshotTaken)

	return mux
}

// getWatchWSRouter routes messages sent by player consumers.
func (c controller) getWatchWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw(), c.loggerWSMw())
	mux.SetErrorHandler(c.wsErrorHandler)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "INVOKE", c.handleInvoke)

	return mux
}
