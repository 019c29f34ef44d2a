// Package playerctx carries the identity of "the player I belong to"
// through a context.Context, so that code nested under a player host can
// address that player without being handed its identity.
package playerctx

import (
	"context"

	"github.com/sharetube/playerwall/internal/player"
)

type ctxKey struct{}

var identityKey = ctxKey{}

// Provide returns a copy of ctx carrying id. A Provide on a derived
// context shadows any identity provided further up.
func Provide(ctx context.Context, id player.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Resolve returns the nearest identity provided to ctx.
func Resolve(ctx context.Context) (player.Identity, bool) {
	id, ok := ctx.Value(identityKey).(player.Identity)
	return id, ok
}

type Lookup interface {
	Get(player.Identity) player.View
}

// Current looks up the player provided to ctx. With no identity in scope
// it yields the default player.
func Current(ctx context.Context, registry Lookup) player.View {
	id, _ := Resolve(ctx)
	return registry.Get(id)
}
