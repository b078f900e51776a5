package auction

import (
	"net/url"

	"github.com/mcoot/apl-auction/internal/model"
)

// Web routes the display screen moves between
const (
	PathAuction = "/admin/auction"
	PathSold    = "/admin/auction/sold"
	PathFinish  = "/admin/auction/finish"
	PathPanel   = "/admin/auction/panel"
	PathAdmin   = "/admin"
)

// Navigation tells a display screen where to go next. An empty Location
// means stay.
type Navigation struct {
	Location string
}

// Stay reports whether the screen should remain where it is
func (n Navigation) Stay() bool {
	return n.Location == ""
}

// From suppresses a navigation to the page the screen is already on
func (n Navigation) From(current string) Navigation {
	if n.Location == current {
		return Navigation{}
	}
	return n
}

// PresentURL is the display page for a specific player
func PresentURL(id model.PlayerID) string {
	return PathAuction + "?" + url.Values{"id": {string(id)}}.Encode()
}

// SoldURL is the sold page for a player and the team that bought them
func SoldURL(player model.PlayerID, team model.TeamID) string {
	return PathSold + "?" + url.Values{"id": {string(player)}, "teamId": {string(team)}}.Encode()
}

// Observe decides where a screen showing displayed should go given the
// current cursor. It depends only on its inputs, so repeated calls with the
// same cursor give the same answer.
func Observe(displayed model.PlayerID, msg model.CursorMessage) Navigation {
	switch msg.Kind {
	case model.CursorSold:
		if msg.PlayerID != "" && msg.TeamID != "" {
			return Navigation{Location: SoldURL(msg.PlayerID, msg.TeamID)}
		}
	case model.CursorAdvance:
		return Navigation{Location: PathAuction}
	case model.CursorPresenting:
		if msg.PlayerID != "" && msg.PlayerID != displayed {
			return Navigation{Location: PresentURL(msg.PlayerID)}
		}
	}
	return Navigation{}
}
