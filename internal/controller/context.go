package controller

import (
	"context"

	"github.com/sharetube/playerwall/internal/playerctx"
)

func (c controller) getPlayerIdFromCtx(ctx context.Context) string {
	playerId, ok := playerctx.Resolve(ctx)
	if !ok {
		return ""
	}

	return string(playerId)
}
