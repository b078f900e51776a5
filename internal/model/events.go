package model

// EventType names the server-sent events pushed to auction screens
type EventType string

const (
	EventConnected  EventType = "connected"
	EventPresenting EventType = "presenting"
	EventSold       EventType = "sold"
	EventAdvance    EventType = "advance"
	EventRefresh    EventType = "refresh"
)

// EventForCursor maps a cursor kind onto the SSE event announcing it
func EventForCursor(kind CursorKind) EventType {
	switch kind {
	case CursorPresenting:
		return EventPresenting
	case CursorSold:
		return EventSold
	case CursorAdvance:
		return EventAdvance
	}
	return EventRefresh
}
