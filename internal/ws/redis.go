package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client

// SetRedisClient injects the shared Redis client.
func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// StartMatchEventSubscriber subscribes to the match_events channel and
// forwards each event to the watch room of its match.
func StartMatchEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; match event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "match_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] match_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid match event payload: %v", err)
				continue
			}
			matchID, _ := payload["match_id"].(string)
			if matchID == "" {
				continue
			}
			MatchHub.BroadcastToMatch(matchID, []byte(msg.Payload))
		}
		log.Println("[WS] match_events subscriber stopped")
	}()
}
