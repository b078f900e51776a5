// Package cursor carries the shared auction cursor between the display and
// panel screens.
package cursor

import (
	"context"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mcoot/apl-auction/internal/model"
)

// Channel is a single-writer, multi-reader rendezvous for cursor messages.
//
// Delivery to subscribers is best effort: a slow subscriber may miss a
// message. Current always returns the latest published message, so readers
// treat the cursor as level state and re-check it.
type Channel interface {
	// Publish stores msg as the current cursor and notifies subscribers
	Publish(ctx context.Context, msg model.CursorMessage) error
	// Current returns the latest message; ok is false before the first publish
	Current(ctx context.Context) (msg model.CursorMessage, ok bool, err error)
	// Subscribe delivers messages published after the call until ctx is done,
	// then closes the returned channel
	Subscribe(ctx context.Context) (<-chan model.CursorMessage, error)
	// Republish re-sends the current message to subscribers without storing
	// anything, so a concurrent Publish is never overwritten. It reports
	// whether there was a message to send.
	Republish(ctx context.Context) (bool, error)
	// Clear forgets the current message
	Clear(ctx context.Context) error
}

// Encode serializes a message for transport
func Encode(msg model.CursorMessage) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msgpack.Marshal(msg)
}

// Decode parses and validates a transported message
func Decode(data []byte) (model.CursorMessage, error) {
	var msg model.CursorMessage
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return model.CursorMessage{}, err
	}
	if err := msg.Validate(); err != nil {
		return model.CursorMessage{}, err
	}
	if !msg.PublishedAt.IsZero() {
		msg.PublishedAt = msg.PublishedAt.UTC()
	}
	return msg, nil
}
