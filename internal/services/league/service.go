package league

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mcoot/apl-auction/internal/dependencies/clock"
	"github.com/mcoot/apl-auction/internal/dependencies/random"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
)

var _ League = (*Service)(nil)

// Service is the local league backed by storage.Storage
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	metrics metrics.Metrics
	logger  *slog.Logger
}

// New creates a new league Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	metrics metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		metrics: metrics,
		logger:  logger,
	}
}

// RandomUnsoldPlayer picks uniformly from the current pool. The pool is
// re-read on every call.
func (s *Service) RandomUnsoldPlayer(ctx context.Context) (*model.Player, error) {
	ids, err := s.storage.UnsoldPlayerIDs(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.SetUnsoldPlayers(len(ids))
	if len(ids) == 0 {
		return nil, model.ErrNoUnsoldPlayers
	}
	return s.storage.GetPlayer(ctx, ids[s.random.Intn(len(ids))])
}

func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if id == "" {
		return nil, model.ErrPlayerNotFound
	}
	return s.storage.GetPlayer(ctx, id)
}

func (s *Service) ListTeams(ctx context.Context) ([]*model.Team, error) {
	return s.storage.ListTeams(ctx)
}

// GetTeam returns the team with its leaders followed by its purchases in
// acquisition order
func (s *Service) GetTeam(ctx context.Context, id model.TeamID) (*model.TeamWithPlayers, error) {
	if id == "" {
		return nil, model.ErrTeamNotFound
	}
	team, err := s.storage.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return assemble(team, indexPlayers(players)), nil
}

func (s *Service) ListTeamsWithPlayers(ctx context.Context) ([]*model.TeamWithPlayers, error) {
	teams, err := s.storage.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexPlayers(players)
	result := make([]*model.TeamWithPlayers, 0, len(teams))
	for _, t := range teams {
		result = append(result, assemble(t, idx))
	}
	return result, nil
}

func (s *Service) SellPlayer(ctx context.Context, playerID model.PlayerID, teamID model.TeamID, amount float64) (*model.Player, error) {
	if playerID == "" {
		return nil, model.ErrPlayerNotFound
	}
	if teamID == "" {
		return nil, model.ErrTeamNotFound
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, model.ErrInvalidSaleAmount
	}

	player, err := s.storage.RecordSale(ctx, storage.Sale{
		PlayerID: playerID,
		TeamID:   teamID,
		Amount:   amount,
		SoldAt:   s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player sold",
		slog.String("player_id", string(playerID)),
		slog.String("team_id", string(teamID)),
		slog.Float64("amount", amount),
	)
	return player, nil
}

// RegisterPlayer validates and stores a new pool player
func (s *Service) RegisterPlayer(ctx context.Context, reg Registration) (*model.Player, error) {
	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:        model.PlayerID(uuid.NewString()),
		Name:      reg.Name,
		Email:     reg.Email,
		Phone:     reg.Phone,
		Mandal:    reg.Mandal,
		ImageURL:  reg.ImageURL,
		Ratings:   reg.Ratings,
		Stats:     reg.Stats,
		Role:      model.RolePlayer,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.String("mandal", player.Mandal),
	)
	return player, nil
}

// MarkPaid records a successful registration payment. Repeat calls keep the
// original payment time.
func (s *Service) MarkPaid(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if id == "" {
		return nil, model.ErrPlayerNotFound
	}
	return s.storage.MarkPaid(ctx, id, s.clock.Now())
}

func (s *Service) ListPlayers(ctx context.Context, filter PlayerFilter) ([]*model.Player, error) {
	all, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(all))
	for _, p := range all {
		if filter.matches(p) {
			players = append(players, p)
		}
	}

	query := strings.TrimSpace(filter.Query)
	if query == "" {
		return players, nil
	}

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	matched := make([]*model.Player, 0, len(ranks))
	for _, r := range ranks {
		matched = append(matched, players[r.OriginalIndex])
	}
	return matched, nil
}

func (s *Service) CreateTeam(ctx context.Context, name, imageURL string) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrInvalidTeam)
	}
	_, err := s.storage.GetTeamByName(ctx, name)
	if err == nil {
		return nil, model.ErrTeamNameExists
	}
	if !errors.Is(err, model.ErrTeamNotFound) {
		return nil, err
	}

	team := &model.Team{
		ID:        model.TeamID(uuid.NewString()),
		Name:      name,
		ImageURL:  strings.TrimSpace(imageURL),
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.SaveTeam(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info("team created",
		slog.String("team_id", string(team.ID)),
		slog.String("name", team.Name),
	)
	return team, nil
}

// AssignLeader makes an unsold player the captain or vice-captain of a team,
// which removes them from the auction pool
func (s *Service) AssignLeader(ctx context.Context, teamID model.TeamID, playerID model.PlayerID, role model.Role) (*model.Player, error) {
	if !role.IsLeader() {
		return nil, model.ErrInvalidRole
	}
	if _, err := s.storage.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	player, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if err := storage.CheckLeaderAssignment(player, teamID, role); err != nil {
		return nil, err
	}

	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if p.TeamID == teamID && p.Role == role && p.ID != playerID {
			return nil, model.ErrLeaderAssigned
		}
	}

	player, err = s.storage.AssignLeader(ctx, playerID, teamID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("team leader assigned",
		slog.String("team_id", string(teamID)),
		slog.String("player_id", string(playerID)),
		slog.String("role", string(role)),
	)
	return player, nil
}

func (s *Service) ResetAuction(ctx context.Context) (int, error) {
	n, err := s.storage.ResetSales(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Warn("auction reset", slog.Int("players_returned", n))
	return n, nil
}

func indexPlayers(players []*model.Player) map[model.PlayerID]*model.Player {
	idx := make(map[model.PlayerID]*model.Player, len(players))
	for _, p := range players {
		idx[p.ID] = p
	}
	return idx
}

// assemble joins a team to its leaders and roster. Leaders come first in
// creation order, then purchases in roster order.
func assemble(team *model.Team, players map[model.PlayerID]*model.Player) *model.TeamWithPlayers {
	var leaders []*model.Player
	for _, p := range players {
		if p.TeamID == team.ID && p.Role.IsLeader() {
			leaders = append(leaders, p)
		}
	}
	storage.SortPlayers(leaders)

	result := &model.TeamWithPlayers{Team: *team}
	for _, p := range leaders {
		result.Players = append(result.Players, *p)
	}
	for _, id := range team.Roster {
		if p, ok := players[id]; ok {
			result.Players = append(result.Players, *p)
		}
	}
	return result
}
