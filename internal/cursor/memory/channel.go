package memory

import (
	"context"
	"sync"

	"github.com/mcoot/apl-auction/internal/cursor"
	"github.com/mcoot/apl-auction/internal/model"
)

const subscriberBuffer = 16

// Channel is an in-process cursor channel for single-instance deployments
type Channel struct {
	mu          sync.RWMutex
	current     *model.CursorMessage
	subscribers map[chan model.CursorMessage]struct{}
}

var _ cursor.Channel = (*Channel)(nil)

// New creates an empty Channel
func New() *Channel {
	return &Channel{
		subscribers: make(map[chan model.CursorMessage]struct{}),
	}
}

func (c *Channel) Publish(ctx context.Context, msg model.CursorMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = &msg
	c.notify(msg)
	return nil
}

func (c *Channel) Republish(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return false, nil
	}
	c.notify(*c.current)
	return true, nil
}

// notify must be called with mu held
func (c *Channel) notify(msg model.CursorMessage) {
	for sub := range c.subscribers {
		select {
		case sub <- msg:
		default:
			// Subscriber is behind; it will catch up from Current
		}
	}
}

func (c *Channel) Current(ctx context.Context) (model.CursorMessage, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return model.CursorMessage{}, false, nil
	}
	return *c.current, true, nil
}

func (c *Channel) Subscribe(ctx context.Context) (<-chan model.CursorMessage, error) {
	sub := make(chan model.CursorMessage, subscriberBuffer)

	c.mu.Lock()
	c.subscribers[sub] = struct{}{}
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.subscribers, sub)
		close(sub)
		c.mu.Unlock()
	}()
	return sub, nil
}

func (c *Channel) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	return nil
}

// SubscriberCount returns the number of live subscriptions
func (c *Channel) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers)
}
