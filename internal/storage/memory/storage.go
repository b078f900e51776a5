package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players   map[model.PlayerID]model.Player
	teams     map[model.TeamID]model.Team
	teamNames map[string]model.TeamID
	admins    map[string]model.Admin
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:   make(map[model.PlayerID]model.Player),
		teams:     make(map[model.TeamID]model.Team),
		teamNames: make(map[string]model.TeamID),
		admins:    make(map[string]model.Admin),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = *player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		p := p
		players = append(players, &p)
	}
	storage.SortPlayers(players)
	return players, nil
}

func (s *Storage) MarkPaid(ctx context.Context, id model.PlayerID, at time.Time) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	if !player.Paid {
		player.Paid = true
		player.PaidAt = at
		s.players[id] = player
	}
	return &player, nil
}

func (s *Storage) AssignLeader(ctx context.Context, id model.PlayerID, teamID model.TeamID, role model.Role) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	if _, ok := s.teams[teamID]; !ok {
		return nil, model.ErrTeamNotFound
	}
	if err := storage.CheckLeaderAssignment(&player, teamID, role); err != nil {
		return nil, err
	}
	player.Role = role
	player.TeamID = teamID
	s.players[id] = player
	return &player, nil
}

func (s *Storage) UnsoldPlayerIDs(ctx context.Context) ([]model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]model.PlayerID, 0)
	for id, p := range s.players {
		if p.InPool() {
			ids = append(ids, id)
		}
	}
	storage.SortPlayerIDs(ids)
	return ids, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.teams[team.ID]; ok {
		delete(s.teamNames, storage.TeamNameKey(old.Name))
	}
	s.teams[team.ID] = copyTeam(*team)
	s.teamNames[storage.TeamNameKey(team.Name)] = team.ID
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	team = copyTeam(team)
	return &team, nil
}

func (s *Storage) GetTeamByName(ctx context.Context, name string) (*model.Team, error) {
	s.mu.RLock()
	id, ok := s.teamNames[storage.TeamNameKey(name)]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	return s.GetTeam(ctx, id)
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]*model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		t := copyTeam(t)
		teams = append(teams, &t)
	}
	storage.SortTeams(teams)
	return teams, nil
}

// Sale operations

func (s *Storage) RecordSale(ctx context.Context, sale storage.Sale) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[sale.PlayerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	team, ok := s.teams[sale.TeamID]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	if player.Sold {
		return nil, model.ErrPlayerAlreadySold
	}
	if player.Role.IsLeader() {
		return nil, model.ErrPlayerNotForSale
	}

	player.Sold = true
	player.SoldAmount = sale.Amount
	player.TeamID = sale.TeamID
	player.SoldAt = sale.SoldAt
	team.Roster = append(copyTeam(team).Roster, player.ID)

	s.players[player.ID] = player
	s.teams[team.ID] = team
	return &player, nil
}

func (s *Storage) ResetSales(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	returned := 0
	for id, p := range s.players {
		if !p.Sold {
			continue
		}
		p.Sold = false
		p.SoldAmount = 0
		p.SoldAt = time.Time{}
		if !p.Role.IsLeader() {
			p.TeamID = ""
		}
		s.players[id] = p
		returned++
	}
	for id, t := range s.teams {
		t.Roster = nil
		s.teams[id] = t
	}
	return returned, nil
}

// Admin operations

func (s *Storage) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[admin.Username] = *admin
	return nil
}

func (s *Storage) GetAdmin(ctx context.Context, username string) (*model.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[username]
	if !ok {
		return nil, model.ErrAdminNotFound
	}
	return &admin, nil
}

func copyTeam(t model.Team) model.Team {
	if t.Roster != nil {
		t.Roster = append([]model.PlayerID(nil), t.Roster...)
	}
	return t
}
