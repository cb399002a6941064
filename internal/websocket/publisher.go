package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
)

// Channel is the redis pub/sub channel carrying a user's live events.
func Channel(userID uuid.UUID) string {
	return "user_updates:" + userID.String()
}

// Publisher fans events out to every instance holding the user's sockets.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

func (p *Publisher) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", msg.Type, err)
	}
	return p.redis.Publish(ctx, Channel(userID), string(data)).Err()
}

func (p *Publisher) PublishEvent(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) error {
	return p.PublishUpdate(ctx, userID, models.WSMessage{Type: eventType, Payload: payload})
}
