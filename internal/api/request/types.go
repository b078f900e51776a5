package request

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Ratings are the self-assessed skill ratings, each 0 to 10
type Ratings struct {
	Batting  int `json:"batting"`
	Bowling  int `json:"bowling"`
	Fielding int `json:"fielding"`
}

// Stats are a player's career statistics
type Stats struct {
	Matches    int     `json:"matches"`
	Runs       int     `json:"runs"`
	StrikeRate float64 `json:"strike_rate"`
	Wickets    int     `json:"wickets"`
	Dismissals int     `json:"dismissals"`
	Catches    int     `json:"catches"`
}

// RegisterPlayerRequest is the request body for registering a player
type RegisterPlayerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Mandal   string  `json:"mandal,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	Ratings  Ratings `json:"ratings"`
	Stats    Stats   `json:"stats"`
}

// SellPlayerRequest is the request body for recording a sale.
// Amount is a pointer so a missing amount can be told apart from zero.
type SellPlayerRequest struct {
	TeamID string   `json:"team_id"`
	Amount *float64 `json:"amount"`
}

// CreateTeamRequest is the request body for creating a team
type CreateTeamRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// AssignLeaderRequest is the request body for naming a captain or vice-captain
type AssignLeaderRequest struct {
	PlayerID string `json:"player_id"`
	Role     string `json:"role"`
}

// NextPlayerRequest optionally names the player to present
type NextPlayerRequest struct {
	PlayerID string `json:"player_id,omitempty"`
}
