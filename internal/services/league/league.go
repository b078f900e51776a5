package league

import (
	"context"

	"github.com/mcoot/apl-auction/internal/model"
)

// Source is the part of the league the live auction runs against. It is
// implemented by the local Service and by the remote backend client.
type Source interface {
	// RandomUnsoldPlayer returns a uniformly random player from the pool,
	// or model.ErrNoUnsoldPlayers once the pool is empty.
	RandomUnsoldPlayer(ctx context.Context) (*model.Player, error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListTeams(ctx context.Context) ([]*model.Team, error)
	GetTeam(ctx context.Context, id model.TeamID) (*model.TeamWithPlayers, error)
	ListTeamsWithPlayers(ctx context.Context) ([]*model.TeamWithPlayers, error)
	// SellPlayer records a sale. The first sale of a player wins.
	SellPlayer(ctx context.Context, playerID model.PlayerID, teamID model.TeamID, amount float64) (*model.Player, error)
}

// Registry covers league administration outside the live auction.
// Backends that cannot support an operation return model.ErrNotSupported.
type Registry interface {
	RegisterPlayer(ctx context.Context, reg Registration) (*model.Player, error)
	MarkPaid(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListPlayers(ctx context.Context, filter PlayerFilter) ([]*model.Player, error)
	CreateTeam(ctx context.Context, name, imageURL string) (*model.Team, error)
	AssignLeader(ctx context.Context, teamID model.TeamID, playerID model.PlayerID, role model.Role) (*model.Player, error)
	// ResetAuction returns every purchased player to the pool
	ResetAuction(ctx context.Context) (int, error)
}

// League is the full league surface
type League interface {
	Source
	Registry
}

// PlayerStatus narrows a player listing
type PlayerStatus string

const (
	StatusAny    PlayerStatus = ""
	StatusSold   PlayerStatus = "sold"
	StatusUnsold PlayerStatus = "unsold"
	StatusUnpaid PlayerStatus = "unpaid"
)

// Valid reports whether s is a known status
func (s PlayerStatus) Valid() bool {
	switch s {
	case StatusAny, StatusSold, StatusUnsold, StatusUnpaid:
		return true
	}
	return false
}

// PlayerFilter selects players for ListPlayers. A non-empty Query ranks
// results by fuzzy name match.
type PlayerFilter struct {
	Query  string
	Status PlayerStatus
}

func (f PlayerFilter) matches(p *model.Player) bool {
	switch f.Status {
	case StatusSold:
		return p.Sold
	case StatusUnsold:
		return p.InPool()
	case StatusUnpaid:
		return !p.Paid
	}
	return true
}
