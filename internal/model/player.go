package model

import "time"

// PlayerID uniquely identifies a registered player
type PlayerID string

// Role tags a player's position within a team
type Role string

const (
	RolePlayer      Role = "player"
	RoleCaptain     Role = "captain"
	RoleViceCaptain Role = "vice-captain"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleCaptain, RoleViceCaptain:
		return true
	}
	return false
}

// IsLeader reports whether the role is pre-assigned to a team before the auction
func (r Role) IsLeader() bool {
	return r == RoleCaptain || r == RoleViceCaptain
}

// Rating bounds for skill ratings
const (
	MinRating = 0
	MaxRating = 10
)

// Ratings holds the three self-assessed skill ratings
type Ratings struct {
	Batting  int
	Bowling  int
	Fielding int
}

// Valid reports whether every rating is within bounds
func (r Ratings) Valid() bool {
	for _, v := range []int{r.Batting, r.Bowling, r.Fielding} {
		if v < MinRating || v > MaxRating {
			return false
		}
	}
	return true
}

// Stats holds a player's career match statistics
type Stats struct {
	Matches    int
	Runs       int
	StrikeRate float64
	Wickets    int
	Dismissals int
	Catches    int
}

// Player represents a registered league player
type Player struct {
	ID       PlayerID
	Name     string
	Email    string
	Phone    string
	Mandal   string // home mandal (local chapter)
	ImageURL string
	Ratings  Ratings
	Stats    Stats
	Role     Role

	// Sale state. Sold, SoldAmount, TeamID and SoldAt change together.
	Sold       bool
	SoldAmount float64
	TeamID     TeamID // set at sale time, or pre-assigned for captains
	SoldAt     time.Time

	Paid      bool
	PaidAt    time.Time
	CreatedAt time.Time
}

// InPool reports whether the player can still be offered in the auction
func (p *Player) InPool() bool {
	return !p.Sold && !p.Role.IsLeader()
}

// Admin is an account allowed to run the auction
type Admin struct {
	Username     string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}
