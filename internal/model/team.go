package model

import "time"

// TeamID uniquely identifies a team
type TeamID string

// Team is a franchise that buys players during the auction
type Team struct {
	ID        TeamID
	Name      string
	ImageURL  string
	Roster    []PlayerID // purchased players in acquisition order
	CreatedAt time.Time
}

// HasPlayer reports whether the player was bought by this team
func (t *Team) HasPlayer(id PlayerID) bool {
	for _, pid := range t.Roster {
		if pid == id {
			return true
		}
	}
	return false
}

// TeamWithPlayers is a team together with every player attached to it,
// leaders included
type TeamWithPlayers struct {
	Team    Team
	Players []Player
}

// Roster is the display form of a team: leaders first, then purchases
type Roster struct {
	Team        Team
	Captain     Player
	ViceCaptain Player
	Purchased   []Player
}

// Size returns the number of players on the roster
func (r *Roster) Size() int {
	return 2 + len(r.Purchased)
}

// Spent returns the total paid for purchased players
func (r *Roster) Spent() float64 {
	var total float64
	for _, p := range r.Purchased {
		total += p.SoldAmount
	}
	return total
}
