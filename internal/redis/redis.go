package redis

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// Connect opens the client behind the match event bus.
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	// One publisher and one subscriber; a small pool is plenty.
	opt.PoolSize = 4

	client := redis.NewClient(opt)

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[WS] connected to Redis at %s", opt.Addr)
	return client, nil
}
