package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/apl-auction/internal/cursor"
	"github.com/mcoot/apl-auction/internal/model"
)

// Channel is a cursor channel shared by every server instance through Redis.
// The latest message lives under a plain key; notifications go out on a
// pub/sub channel. Both carry msgpack payloads.
type Channel struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

var _ cursor.Channel = (*Channel)(nil)

// New creates a Channel; prefix namespaces the key and pub/sub channel
func New(client *redis.Client, prefix string, logger *slog.Logger) *Channel {
	return &Channel{
		client: client,
		prefix: prefix,
		logger: logger.With(slog.String("component", "cursor")),
	}
}

func (c *Channel) stateKey() string {
	return fmt.Sprintf("%s:cursor", c.prefix)
}

func (c *Channel) eventsChannel() string {
	return fmt.Sprintf("%s:cursor:events", c.prefix)
}

func (c *Channel) Publish(ctx context.Context, msg model.CursorMessage) error {
	data, err := cursor.Encode(msg)
	if err != nil {
		return err
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.stateKey(), data, 0)
		pipe.Publish(ctx, c.eventsChannel(), data)
		return nil
	})
	return err
}

// republishScript publishes the stored cursor in one step, so the payload
// sent is always the state at that moment
var republishScript = redis.NewScript(`
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
redis.call("PUBLISH", ARGV[1], data)
return 1
`)

func (c *Channel) Republish(ctx context.Context) (bool, error) {
	n, err := republishScript.Run(ctx, c.client, []string{c.stateKey()}, c.eventsChannel()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *Channel) Current(ctx context.Context) (model.CursorMessage, bool, error) {
	data, err := c.client.Get(ctx, c.stateKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.CursorMessage{}, false, nil
		}
		return model.CursorMessage{}, false, err
	}

	msg, err := cursor.Decode(data)
	if err != nil {
		return model.CursorMessage{}, false, fmt.Errorf("decode cursor: %w", err)
	}
	return msg, true, nil
}

func (c *Channel) Subscribe(ctx context.Context) (<-chan model.CursorMessage, error) {
	pubsub := c.client.Subscribe(ctx, c.eventsChannel())

	// Wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan model.CursorMessage, 16)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				msg, err := cursor.Decode([]byte(raw.Payload))
				if err != nil {
					c.logger.Warn("dropping malformed cursor message", slog.String("error", err.Error()))
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *Channel) Clear(ctx context.Context) error {
	return c.client.Del(ctx, c.stateKey()).Err()
}
