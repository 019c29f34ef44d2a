package playerctx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/sharetube/playerwall/internal/player"
	"github.com/stretchr/testify/assert"
)

func TestResolveWithoutProvider(t *testing.T) {
	id, ok := Resolve(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestResolveThroughNesting(t *testing.T) {
	type otherKey struct{}

	ctx := Provide(context.Background(), "x")
	ctx = context.WithValue(ctx, otherKey{}, "noise")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id, ok := Resolve(ctx)
	assert.True(t, ok)
	assert.Equal(t, player.Identity("x"), id)
}

func TestNearestProviderWins(t *testing.T) {
	outer := Provide(context.Background(), "outer")
	inner := Provide(outer, "inner")

	id, _ := Resolve(inner)
	assert.Equal(t, player.Identity("inner"), id)

	id, _ = Resolve(outer)
	assert.Equal(t, player.Identity("outer"), id, "inner provider must not leak upwards")
}

func TestCurrent(t *testing.T) {
	registry := player.NewRegistry(slog.Default())
	state := &player.State{Playing: true, Volume: 0.4}
	registry.Add("p1", state, nil)

	view := Current(Provide(context.Background(), "p1"), registry)
	assert.Same(t, state, view.Get().State)

	view = Current(context.Background(), registry)
	assert.Equal(t, player.DefaultState(), *view.Get().State)
}
