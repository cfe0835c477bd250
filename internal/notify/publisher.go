package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Surf-N-Code/padel-booking/internal/models"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel carrying game events.
const Channel = "padel:notifications"

// Publisher hands committed game events to the notification worker.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, channel: Channel}
}

func (p *Publisher) Publish(ctx context.Context, e models.Event) error {
	const op = "notify.publisher.Publish"

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
