package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/playerwall/internal/repository/mirror"
)

const AllPlayersChannel = "players"

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func PlayerChannel(identity string) string {
	return "player:" + identity
}

// Publish fans event out on the player's own channel and on the channel
// shared by all players. Nothing is stored.
func (r repo) Publish(ctx context.Context, event *mirror.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := r.rc.TxPipeline()
	pipe.Publish(ctx, PlayerChannel(string(event.Identity)), payload)
	pipe.Publish(ctx, AllPlayersChannel, payload)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
