package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/apl-auction/internal/cursor"
	"github.com/mcoot/apl-auction/internal/model"
)

// Relay forwards cursor messages to the hub as named events
type Relay struct {
	cursor cursor.Channel
	hub    *Hub
	logger *slog.Logger
}

// NewRelay creates a new Relay
func NewRelay(cursor cursor.Channel, hub *Hub, logger *slog.Logger) *Relay {
	return &Relay{
		cursor: cursor,
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-relay")),
	}
}

// Start subscribes to the cursor and relays in the background until ctx is
// cancelled. Messages published after Start returns are relayed.
func (r *Relay) Start(ctx context.Context) error {
	sub, err := r.cursor.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range sub {
			r.Forward(msg)
		}
		r.logger.Info("sse relay stopped")
	}()
	return nil
}

// Forward broadcasts a single cursor message
func (r *Relay) Forward(msg model.CursorMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("sse failed to encode cursor", slog.Any("error", err))
		return
	}
	r.hub.BroadcastEvent(string(model.EventForCursor(msg.Kind)), string(data))
}
