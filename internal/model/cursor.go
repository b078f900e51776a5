package model

import "time"

// CursorKind identifies what a cursor message announces
type CursorKind string

const (
	// CursorPresenting is written by the display screen when a player goes on the block
	CursorPresenting CursorKind = "presenting"
	// CursorSold is written by the panel screen once a sale has been recorded
	CursorSold CursorKind = "sold"
	// CursorAdvance asks display screens to move on without a specific player
	CursorAdvance CursorKind = "advance"
)

// NextPlayerSentinel is the legacy player-id value meaning "advance"
const NextPlayerSentinel = "next-player"

// Valid reports whether k is a known kind
func (k CursorKind) Valid() bool {
	switch k {
	case CursorPresenting, CursorSold, CursorAdvance:
		return true
	}
	return false
}

// CursorMessage is the shared auction cursor exchanged between screens
type CursorMessage struct {
	PlayerID    PlayerID   `msgpack:"player_id" json:"player_id,omitempty"`
	TeamID      TeamID     `msgpack:"team_id" json:"team_id,omitempty"`
	Kind        CursorKind `msgpack:"kind" json:"kind"`
	PublishedAt time.Time  `msgpack:"published_at" json:"published_at"`
}

// Validate checks the message is internally consistent
func (m CursorMessage) Validate() error {
	switch m.Kind {
	case CursorPresenting:
		if m.PlayerID == "" {
			return ErrInvalidCursor
		}
	case CursorSold:
		if m.PlayerID == "" || m.TeamID == "" {
			return ErrInvalidCursor
		}
	case CursorAdvance:
		if m.PlayerID != "" {
			return ErrInvalidCursor
		}
	default:
		return ErrInvalidCursor
	}
	return nil
}

// CursorFromLegacy converts the two string keys used by older screens into a
// typed message. The sentinel player id maps to an advance.
func CursorFromLegacy(playerID, teamID string) (CursorMessage, error) {
	var msg CursorMessage
	switch {
	case playerID == NextPlayerSentinel:
		msg = CursorMessage{Kind: CursorAdvance}
	case teamID != "":
		msg = CursorMessage{PlayerID: PlayerID(playerID), TeamID: TeamID(teamID), Kind: CursorSold}
	default:
		msg = CursorMessage{PlayerID: PlayerID(playerID), Kind: CursorPresenting}
	}
	return msg, msg.Validate()
}
