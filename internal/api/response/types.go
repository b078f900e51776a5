package response

import (
	"time"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/auction"
	"github.com/mcoot/apl-auction/internal/services/auth"
)

// Ratings represents skill ratings in API responses
type Ratings struct {
	Batting  int `json:"batting"`
	Bowling  int `json:"bowling"`
	Fielding int `json:"fielding"`
}

// Stats represents career statistics in API responses
type Stats struct {
	Matches    int     `json:"matches"`
	Runs       int     `json:"runs"`
	StrikeRate float64 `json:"strike_rate"`
	Wickets    int     `json:"wickets"`
	Dismissals int     `json:"dismissals"`
	Catches    int     `json:"catches"`
}

// Player represents a player in API responses
type Player struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Mandal     string     `json:"mandal,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
	Role       string     `json:"role"`
	Ratings    Ratings    `json:"ratings"`
	Stats      Stats      `json:"stats"`
	Sold       bool       `json:"sold"`
	SoldAmount float64    `json:"sold_amount,omitempty"`
	TeamID     string     `json:"team_id,omitempty"`
	SoldAt     *time.Time `json:"sold_at,omitempty"`
	Paid       bool       `json:"paid"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	resp := Player{
		ID:       string(p.ID),
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Mandal:   p.Mandal,
		ImageURL: p.ImageURL,
		Role:     string(p.Role),
		Ratings: Ratings{
			Batting:  p.Ratings.Batting,
			Bowling:  p.Ratings.Bowling,
			Fielding: p.Ratings.Fielding,
		},
		Stats: Stats{
			Matches:    p.Stats.Matches,
			Runs:       p.Stats.Runs,
			StrikeRate: p.Stats.StrikeRate,
			Wickets:    p.Stats.Wickets,
			Dismissals: p.Stats.Dismissals,
			Catches:    p.Stats.Catches,
		},
		Sold:       p.Sold,
		SoldAmount: p.SoldAmount,
		TeamID:     string(p.TeamID),
		Paid:       p.Paid,
	}
	if p.Sold && !p.SoldAt.IsZero() {
		soldAt := p.SoldAt
		resp.SoldAt = &soldAt
	}
	return resp
}

// PlayersFromModel converts a slice of players
func PlayersFromModel(players []*model.Player) []Player {
	result := make([]Player, len(players))
	for i, p := range players {
		result[i] = PlayerFromModel(p)
	}
	return result
}

// Team represents a team in API responses
type Team struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// TeamFromModel converts a model.Team
func TeamFromModel(t *model.Team) Team {
	return Team{
		ID:       string(t.ID),
		Name:     t.Name,
		ImageURL: t.ImageURL,
	}
}

// TeamsFromModel converts a slice of teams
func TeamsFromModel(teams []*model.Team) []Team {
	result := make([]Team, len(teams))
	for i, t := range teams {
		result[i] = TeamFromModel(t)
	}
	return result
}

// TeamDetail is a team with every player attached to it
type TeamDetail struct {
	Team
	Players []Player `json:"players"`
}

// TeamDetailFromModel converts a model.TeamWithPlayers
func TeamDetailFromModel(t *model.TeamWithPlayers) TeamDetail {
	players := make([]Player, len(t.Players))
	for i := range t.Players {
		players[i] = PlayerFromModel(&t.Players[i])
	}
	return TeamDetail{
		Team:    TeamFromModel(&t.Team),
		Players: players,
	}
}

// Roster is a team's leaders and purchases with the total spent
type Roster struct {
	Team        Team     `json:"team"`
	Captain     Player   `json:"captain"`
	ViceCaptain Player   `json:"vice_captain"`
	Purchased   []Player `json:"purchased"`
	Spent       float64  `json:"spent"`
	Size        int      `json:"size"`
}

// RosterFromModel converts a model.Roster
func RosterFromModel(r *model.Roster) Roster {
	purchased := make([]Player, len(r.Purchased))
	for i := range r.Purchased {
		purchased[i] = PlayerFromModel(&r.Purchased[i])
	}
	return Roster{
		Team:        TeamFromModel(&r.Team),
		Captain:     PlayerFromModel(&r.Captain),
		ViceCaptain: PlayerFromModel(&r.ViceCaptain),
		Purchased:   purchased,
		Spent:       r.Spent(),
		Size:        r.Size(),
	}
}

// RostersFromModel converts a slice of rosters
func RostersFromModel(rosters []model.Roster) []Roster {
	result := make([]Roster, len(rosters))
	for i := range rosters {
		result[i] = RosterFromModel(&rosters[i])
	}
	return result
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Username:     s.Username,
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// NextResponse is the result of putting a player on the block
type NextResponse struct {
	Finished bool     `json:"finished"`
	Player   *Player  `json:"player,omitempty"`
	Location string   `json:"location"`
	Rosters  []Roster `json:"rosters,omitempty"`
}

// Cursor represents the shared auction cursor
type Cursor struct {
	Kind        string    `json:"kind"`
	PlayerID    string    `json:"player_id,omitempty"`
	TeamID      string    `json:"team_id,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// CursorResponse reports the current cursor, if any has been published
type CursorResponse struct {
	Present bool    `json:"present"`
	Cursor  *Cursor `json:"cursor,omitempty"`
}

// CursorResponseFromModel converts the result of a cursor read
func CursorResponseFromModel(msg model.CursorMessage, ok bool) CursorResponse {
	if !ok {
		return CursorResponse{}
	}
	return CursorResponse{
		Present: true,
		Cursor: &Cursor{
			Kind:        string(msg.Kind),
			PlayerID:    string(msg.PlayerID),
			TeamID:      string(msg.TeamID),
			PublishedAt: msg.PublishedAt,
		},
	}
}

// CheckResponse tells a screen where to go. An empty location means stay.
type CheckResponse struct {
	Location string `json:"location,omitempty"`
	Stay     bool   `json:"stay"`
}

// CheckResponseFromNavigation converts an auction.Navigation
func CheckResponseFromNavigation(n auction.Navigation) CheckResponse {
	return CheckResponse{Location: n.Location, Stay: n.Stay()}
}

// SoldResponse is the sold page content
type SoldResponse struct {
	Player  Player   `json:"player"`
	Team    Team     `json:"team"`
	Rosters []Roster `json:"rosters"`
}

// SoldResponseFromView converts an auction.SoldView
func SoldResponseFromView(v *auction.SoldView) SoldResponse {
	return SoldResponse{
		Player:  PlayerFromModel(v.Player),
		Team:    TeamFromModel(&v.Team),
		Rosters: RostersFromModel(v.Rosters),
	}
}

// FinishResponse reports whether the auction is over
type FinishResponse struct {
	Finished bool     `json:"finished"`
	Rosters  []Roster `json:"rosters,omitempty"`
}

// ResetResponse reports how many players were returned to the pool
type ResetResponse struct {
	Returned int `json:"returned"`
}
