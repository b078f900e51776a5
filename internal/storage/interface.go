package storage

import (
	"context"
	"time"

	"github.com/mcoot/apl-auction/internal/model"
)

// Sale is a single sale to be recorded atomically
type Sale struct {
	PlayerID model.PlayerID
	TeamID   model.TeamID
	Amount   float64
	SoldAt   time.Time
}

// Storage defines the interface for league persistence.
//
// Implementations return copies: mutating a returned value never changes
// stored state without a Save call.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// ListPlayers returns every player ordered by creation time
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	// MarkPaid sets the paid flag and time without touching any other field.
	// A player already paid keeps the original time.
	MarkPaid(ctx context.Context, id model.PlayerID, at time.Time) (*model.Player, error)
	// AssignLeader makes a player the captain or vice-captain of a team, taking
	// them out of the pool. It fails with model.ErrPlayerAlreadySold for a sold
	// player and model.ErrAlreadyLeader for one leading elsewhere.
	AssignLeader(ctx context.Context, id model.PlayerID, teamID model.TeamID, role model.Role) (*model.Player, error)
	// UnsoldPlayerIDs returns the auction pool (unsold, non-leader players) sorted by id
	UnsoldPlayerIDs(ctx context.Context) ([]model.PlayerID, error)

	// Team operations
	SaveTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error)
	GetTeamByName(ctx context.Context, name string) (*model.Team, error)
	// ListTeams returns every team ordered by creation time
	ListTeams(ctx context.Context) ([]*model.Team, error)

	// RecordSale marks a player sold to a team and appends it to the team's
	// roster in one step. The first sale of a player wins; later attempts
	// fail with model.ErrPlayerAlreadySold and change nothing.
	RecordSale(ctx context.Context, sale Sale) (*model.Player, error)
	// ResetSales returns every sold player to the pool and empties all
	// rosters. It reports how many players were returned.
	ResetSales(ctx context.Context) (int, error)

	// Admin operations
	SaveAdmin(ctx context.Context, admin *model.Admin) error
	GetAdmin(ctx context.Context, username string) (*model.Admin, error)
}
