package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/playerwall/internal/player"
	"github.com/sharetube/playerwall/internal/repository/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rc.Close()

	ctx := context.Background()
	sub := rc.Subscribe(ctx, PlayerChannel("p1"), AllPlayersChannel)
	defer sub.Close()
	for confirmed := 0; confirmed < 2; {
		msg, err := sub.ReceiveTimeout(ctx, time.Second)
		require.NoError(t, err)
		if _, ok := msg.(*redis.Subscription); ok {
			confirmed++
		}
	}

	repo := NewRepo(rc)
	state := player.DefaultState()
	state.Playing = true
	require.NoError(t, repo.Publish(ctx, &mirror.Event{
		Type:     mirror.EventUpdated,
		Identity: "p1",
		State:    &state,
	}))

	channels := map[string]bool{}
	for i := 0; i < 2; i++ {
		msg, err := sub.ReceiveTimeout(ctx, time.Second)
		require.NoError(t, err)
		m, ok := msg.(*redis.Message)
		require.True(t, ok, "unexpected message %T", msg)
		channels[m.Channel] = true

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(m.Payload), &got))
		assert.Equal(t, "PLAYER_UPDATED", got["type"])
		assert.Equal(t, "p1", got["identity"])
		assert.Equal(t, true, got["state"].(map[string]any)["playing"])
		assert.Nil(t, got["state"].(map[string]any)["duration"])
	}
	assert.True(t, channels["player:p1"])
	assert.True(t, channels["players"])
}
