package league

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/apl-auction/internal/dependencies/mocks"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
	"github.com/mcoot/apl-auction/internal/storage/memory"
	"github.com/mcoot/apl-auction/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	metrics *metrics.Mock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 2, 19, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.metrics = metrics.NewMock()
	s.service = New(s.storage, s.clock, s.random, s.metrics, testutil.NopLogger())
	s.ctx = context.Background()
	s.Require().NoError(testutil.SeedLeague(s.ctx, s.storage))
}

// interleavedStorage lands a sale in the middle of another operation on the
// same player: right after it is read, or right before it is written
type interleavedStorage struct {
	*memory.Storage
	sale storage.Sale
	once sync.Once
}

func (i *interleavedStorage) sell(ctx context.Context) {
	i.once.Do(func() { _, _ = i.Storage.RecordSale(ctx, i.sale) })
}

func (i *interleavedStorage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	p, err := i.Storage.GetPlayer(ctx, id)
	if id == i.sale.PlayerID {
		i.sell(ctx)
	}
	return p, err
}

func (i *interleavedStorage) SavePlayer(ctx context.Context, p *model.Player) error {
	i.sell(ctx)
	return i.Storage.SavePlayer(ctx, p)
}

func (i *interleavedStorage) MarkPaid(ctx context.Context, id model.PlayerID, at time.Time) (*model.Player, error) {
	i.sell(ctx)
	return i.Storage.MarkPaid(ctx, id, at)
}

func (s *ServiceSuite) interleaveSale(player model.PlayerID, team model.TeamID) {
	store := &interleavedStorage{
		Storage: s.storage,
		sale:    storage.Sale{PlayerID: player, TeamID: team, Amount: 500, SoldAt: s.clock.Now()},
	}
	s.service = New(store, s.clock, s.random, s.metrics, testutil.NopLogger())
}

func (s *ServiceSuite) validRegistration() Registration {
	return Registration{
		Name:    "Vivek Trivedi",
		Email:   "vivek@example.com",
		Phone:   "(902) 555-0199",
		Mandal:  "Halifax",
		Ratings: model.Ratings{Batting: 8, Bowling: 3, Fielding: 6},
		Stats:   model.Stats{Matches: 4, Runs: 88, StrikeRate: 140},
	}
}

// RandomUnsoldPlayer tests

func (s *ServiceSuite) TestRandomUnsoldPlayerUsesRandomIndex() {
	s.random.QueueIntn(2)

	player, err := s.service.RandomUnsoldPlayer(s.ctx)
	s.Require().NoError(err)

	s.Equal(testutil.PoolPlayers[2], player.ID)
	s.Equal([]int{len(testutil.PoolPlayers)}, s.random.Calls())
	s.Equal(len(testutil.PoolPlayers), s.metrics.UnsoldPlayers())
}

func (s *ServiceSuite) TestRandomUnsoldPlayerNeverOffersLeaders() {
	for i := 0; i < 20; i++ {
		s.random.QueueIntn(i)
		player, err := s.service.RandomUnsoldPlayer(s.ctx)
		s.Require().NoError(err)
		s.False(player.Role.IsLeader())
	}
}

func (s *ServiceSuite) TestRandomUnsoldPlayerSkipsSoldPlayers() {
	_, err := s.service.SellPlayer(s.ctx, "p-1", testutil.TeamThunder, 100)
	s.Require().NoError(err)

	player, err := s.service.RandomUnsoldPlayer(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p-2"), player.ID)
	s.Equal([]int{3}, s.random.Calls())
}

func (s *ServiceSuite) TestRandomUnsoldPlayerExhausted() {
	for _, id := range testutil.PoolPlayers {
		_, err := s.service.SellPlayer(s.ctx, id, testutil.TeamLightning, 50)
		s.Require().NoError(err)
	}

	_, err := s.service.RandomUnsoldPlayer(s.ctx)
	s.ErrorIs(err, model.ErrNoUnsoldPlayers)
	s.Zero(s.metrics.UnsoldPlayers())
}

// Team tests

func (s *ServiceSuite) TestGetTeamOrdersLeadersThenPurchases() {
	_, err := s.service.SellPlayer(s.ctx, "p-3", testutil.TeamThunder, 200)
	s.Require().NoError(err)
	_, err = s.service.SellPlayer(s.ctx, "p-1", testutil.TeamThunder, 120)
	s.Require().NoError(err)

	team, err := s.service.GetTeam(s.ctx, testutil.TeamThunder)
	s.Require().NoError(err)

	var ids []model.PlayerID
	for _, p := range team.Players {
		ids = append(ids, p.ID)
	}
	s.Equal([]model.PlayerID{testutil.CaptainThunder, testutil.ViceCaptainThunder, "p-3", "p-1"}, ids)
}

func (s *ServiceSuite) TestGetTeamNotFound() {
	_, err := s.service.GetTeam(s.ctx, "nope")
	s.ErrorIs(err, model.ErrTeamNotFound)

	_, err = s.service.GetTeam(s.ctx, "")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *ServiceSuite) TestListTeamsWithPlayers() {
	teams, err := s.service.ListTeamsWithPlayers(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(teams, 2)
	s.Equal("Thunder", teams[0].Team.Name)
	s.Len(teams[0].Players, 2)
	s.Equal("Lightning", teams[1].Team.Name)
}

func (s *ServiceSuite) TestCreateTeam() {
	team, err := s.service.CreateTeam(s.ctx, "  Storm ", "/img/storm.png")
	s.Require().NoError(err)

	s.Equal("Storm", team.Name)
	s.NotEmpty(team.ID)
	s.Equal(s.clock.Now(), team.CreatedAt)

	stored, err := s.storage.GetTeam(s.ctx, team.ID)
	s.Require().NoError(err)
	s.Equal("Storm", stored.Name)
}

func (s *ServiceSuite) TestCreateTeamRejectsDuplicateName() {
	_, err := s.service.CreateTeam(s.ctx, "THUNDER", "")
	s.ErrorIs(err, model.ErrTeamNameExists)
}

func (s *ServiceSuite) TestCreateTeamRequiresName() {
	_, err := s.service.CreateTeam(s.ctx, "   ", "")
	s.ErrorIs(err, model.ErrInvalidTeam)
}

// SellPlayer tests

func (s *ServiceSuite) TestSellPlayerRecordsSale() {
	player, err := s.service.SellPlayer(s.ctx, "p-2", testutil.TeamLightning, 175)
	s.Require().NoError(err)

	s.True(player.Sold)
	s.Equal(175.0, player.SoldAmount)
	s.Equal(testutil.TeamLightning, player.TeamID)
	s.Equal(s.clock.Now(), player.SoldAt)

	team, err := s.storage.GetTeam(s.ctx, testutil.TeamLightning)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p-2"}, team.Roster)
}

func (s *ServiceSuite) TestSellPlayerTwiceFails() {
	_, err := s.service.SellPlayer(s.ctx, "p-2", testutil.TeamLightning, 175)
	s.Require().NoError(err)

	_, err = s.service.SellPlayer(s.ctx, "p-2", testutil.TeamThunder, 300)
	s.ErrorIs(err, model.ErrPlayerAlreadySold)

	player, err := s.storage.GetPlayer(s.ctx, "p-2")
	s.Require().NoError(err)
	s.Equal(testutil.TeamLightning, player.TeamID)
	s.Equal(175.0, player.SoldAmount)
}

func (s *ServiceSuite) TestSellPlayerValidation() {
	_, err := s.service.SellPlayer(s.ctx, "", testutil.TeamThunder, 10)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.service.SellPlayer(s.ctx, "p-1", "", 10)
	s.ErrorIs(err, model.ErrTeamNotFound)

	_, err = s.service.SellPlayer(s.ctx, "p-1", testutil.TeamThunder, -1)
	s.ErrorIs(err, model.ErrInvalidSaleAmount)

	_, err = s.service.SellPlayer(s.ctx, testutil.CaptainLightning, testutil.TeamThunder, 10)
	s.ErrorIs(err, model.ErrPlayerNotForSale)
}

// RegisterPlayer tests

func (s *ServiceSuite) TestRegisterPlayer() {
	player, err := s.service.RegisterPlayer(s.ctx, s.validRegistration())
	s.Require().NoError(err)

	s.NotEmpty(player.ID)
	s.Equal("9025550199", player.Phone)
	s.Equal(model.RolePlayer, player.Role)
	s.False(player.Paid)
	s.True(player.InPool())
}

func (s *ServiceSuite) TestRegisterPlayerValidation() {
	cases := map[string]func(r *Registration){
		"short name":      func(r *Registration) { r.Name = "V" },
		"bad email":       func(r *Registration) { r.Email = "vivek-at-example" },
		"short phone":     func(r *Registration) { r.Phone = "555-0199" },
		"letters phone":   func(r *Registration) { r.Phone = "90255501AB" },
		"wide digits":     func(r *Registration) { r.Phone = "\u0661\u0662\u0663\u0664\u0665" },
		"rating too high": func(r *Registration) { r.Ratings.Bowling = 11 },
		"negative rating": func(r *Registration) { r.Ratings.Batting = -1 },
		"negative stats":  func(r *Registration) { r.Stats.Runs = -3 },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			reg := s.validRegistration()
			mutate(&reg)
			_, err := s.service.RegisterPlayer(s.ctx, reg)
			s.ErrorIs(err, model.ErrInvalidPlayer)
		})
	}
}

// MarkPaid tests

func (s *ServiceSuite) TestMarkPaidKeepsFirstPaymentTime() {
	player, err := s.service.RegisterPlayer(s.ctx, s.validRegistration())
	s.Require().NoError(err)
	paidAt := s.clock.Now()

	player, err = s.service.MarkPaid(s.ctx, player.ID)
	s.Require().NoError(err)
	s.True(player.Paid)
	s.Equal(paidAt, player.PaidAt)

	s.clock.Advance(time.Hour)
	player, err = s.service.MarkPaid(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(paidAt, player.PaidAt)
}

func (s *ServiceSuite) TestMarkPaidUnknownPlayer() {
	_, err := s.service.MarkPaid(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestMarkPaidDuringSaleKeepsSale() {
	s.interleaveSale("p-1", testutil.TeamThunder)

	player, err := s.service.MarkPaid(s.ctx, "p-1")
	s.Require().NoError(err)
	s.True(player.Paid)
	s.True(player.Sold)
	s.Equal(testutil.TeamThunder, player.TeamID)
	s.Equal(500.0, player.SoldAmount)

	team, err := s.storage.GetTeam(s.ctx, testutil.TeamThunder)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p-1"}, team.Roster)

	ids, err := s.storage.UnsoldPlayerIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p-2", "p-3", "p-4"}, ids)
}

// ListPlayers tests

func (s *ServiceSuite) TestListPlayersFiltersByStatus() {
	_, err := s.service.SellPlayer(s.ctx, "p-4", testutil.TeamThunder, 90)
	s.Require().NoError(err)

	sold, err := s.service.ListPlayers(s.ctx, PlayerFilter{Status: StatusSold})
	s.Require().NoError(err)
	s.Require().Len(sold, 1)
	s.Equal(model.PlayerID("p-4"), sold[0].ID)

	unsold, err := s.service.ListPlayers(s.ctx, PlayerFilter{Status: StatusUnsold})
	s.Require().NoError(err)
	s.Len(unsold, 3)

	all, err := s.service.ListPlayers(s.ctx, PlayerFilter{})
	s.Require().NoError(err)
	s.Len(all, 8)
}

func (s *ServiceSuite) TestListPlayersFuzzySearch() {
	players, err := s.service.ListPlayers(s.ctx, PlayerFilter{Query: "chrg"})
	s.Require().NoError(err)

	s.Require().Len(players, 1)
	s.Equal("Chirag Desai", players[0].Name)
}

func (s *ServiceSuite) TestListPlayersSearchIgnoresCase() {
	players, err := s.service.ListPlayers(s.ctx, PlayerFilter{Query: "PATEL"})
	s.Require().NoError(err)

	s.Require().Len(players, 1)
	s.Equal(model.PlayerID("p-1"), players[0].ID)
}

// AssignLeader tests

func (s *ServiceSuite) TestAssignLeaderRemovesPlayerFromPool() {
	team, err := s.service.CreateTeam(s.ctx, "Storm", "")
	s.Require().NoError(err)

	player, err := s.service.AssignLeader(s.ctx, team.ID, "p-1", model.RoleCaptain)
	s.Require().NoError(err)
	s.Equal(team.ID, player.TeamID)

	ids, err := s.storage.UnsoldPlayerIDs(s.ctx)
	s.Require().NoError(err)
	s.NotContains(ids, model.PlayerID("p-1"))
}

func (s *ServiceSuite) TestAssignLeaderRejectsSecondCaptain() {
	_, err := s.service.AssignLeader(s.ctx, testutil.TeamThunder, "p-1", model.RoleCaptain)
	s.ErrorIs(err, model.ErrLeaderAssigned)
}

func (s *ServiceSuite) TestAssignLeaderRejectsPlainRole() {
	_, err := s.service.AssignLeader(s.ctx, testutil.TeamThunder, "p-1", model.RolePlayer)
	s.ErrorIs(err, model.ErrInvalidRole)
}

func (s *ServiceSuite) TestAssignLeaderRejectsSoldPlayer() {
	team, err := s.service.CreateTeam(s.ctx, "Storm", "")
	s.Require().NoError(err)
	_, err = s.service.SellPlayer(s.ctx, "p-1", testutil.TeamThunder, 10)
	s.Require().NoError(err)

	_, err = s.service.AssignLeader(s.ctx, team.ID, "p-1", model.RoleViceCaptain)
	s.ErrorIs(err, model.ErrPlayerAlreadySold)
}

func (s *ServiceSuite) TestAssignLeaderDuringSaleKeepsSale() {
	team, err := s.service.CreateTeam(s.ctx, "Storm", "")
	s.Require().NoError(err)
	s.interleaveSale("p-2", testutil.TeamLightning)

	_, err = s.service.AssignLeader(s.ctx, team.ID, "p-2", model.RoleCaptain)
	s.ErrorIs(err, model.ErrPlayerAlreadySold)

	player, err := s.storage.GetPlayer(s.ctx, "p-2")
	s.Require().NoError(err)
	s.True(player.Sold)
	s.Equal(model.RolePlayer, player.Role)
	s.Equal(testutil.TeamLightning, player.TeamID)
}

func (s *ServiceSuite) TestAssignLeaderRejectsMovingALeader() {
	team, err := s.service.CreateTeam(s.ctx, "Storm", "")
	s.Require().NoError(err)

	_, err = s.service.AssignLeader(s.ctx, team.ID, testutil.CaptainThunder, model.RoleCaptain)
	s.ErrorIs(err, model.ErrAlreadyLeader)
	_, err = s.service.AssignLeader(s.ctx, testutil.TeamThunder, testutil.CaptainThunder, model.RoleViceCaptain)
	s.ErrorIs(err, model.ErrAlreadyLeader)

	captain, err := s.storage.GetPlayer(s.ctx, testutil.CaptainThunder)
	s.Require().NoError(err)
	s.Equal(model.RoleCaptain, captain.Role)
	s.Equal(testutil.TeamThunder, captain.TeamID)
}

// ResetAuction tests

func (s *ServiceSuite) TestResetAuctionRefillsPool() {
	for _, id := range testutil.PoolPlayers {
		_, err := s.service.SellPlayer(s.ctx, id, testutil.TeamThunder, 10)
		s.Require().NoError(err)
	}

	n, err := s.service.ResetAuction(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(testutil.PoolPlayers), n)

	_, err = s.service.RandomUnsoldPlayer(s.ctx)
	s.NoError(err)

	team, err := s.service.GetTeam(s.ctx, testutil.TeamThunder)
	s.Require().NoError(err)
	s.Len(team.Players, 2)
}

// BuildRoster tests

func (s *ServiceSuite) TestBuildRoster() {
	_, err := s.service.SellPlayer(s.ctx, "p-2", testutil.TeamLightning, 60)
	s.Require().NoError(err)
	team, err := s.service.GetTeam(s.ctx, testutil.TeamLightning)
	s.Require().NoError(err)

	roster, err := BuildRoster(team)
	s.Require().NoError(err)

	s.Equal(testutil.CaptainLightning, roster.Captain.ID)
	s.Equal(testutil.ViceCaptainLightning, roster.ViceCaptain.ID)
	s.Require().Len(roster.Purchased, 1)
	s.Equal(model.PlayerID("p-2"), roster.Purchased[0].ID)
	s.Equal(3, roster.Size())
	s.Equal(60.0, roster.Spent())
}

func (s *ServiceSuite) TestBuildRosterMissingCaptain() {
	team, err := s.service.CreateTeam(s.ctx, "Storm", "")
	s.Require().NoError(err)
	_, err = s.service.AssignLeader(s.ctx, team.ID, "p-1", model.RoleViceCaptain)
	s.Require().NoError(err)

	full, err := s.service.GetTeam(s.ctx, team.ID)
	s.Require().NoError(err)

	_, err = BuildRoster(full)
	s.Require().Error(err)
	s.True(errors.Is(err, model.ErrMissingCaptain))
	s.Contains(err.Error(), "Storm")
}

func (s *ServiceSuite) TestBuildRosterMissingViceCaptain() {
	team, err := s.service.CreateTeam(s.ctx, "Storm", "")
	s.Require().NoError(err)
	_, err = s.service.AssignLeader(s.ctx, team.ID, "p-1", model.RoleCaptain)
	s.Require().NoError(err)

	full, err := s.service.GetTeam(s.ctx, team.ID)
	s.Require().NoError(err)

	_, err = BuildRoster(full)
	s.ErrorIs(err, model.ErrMissingViceCaptain)
}
