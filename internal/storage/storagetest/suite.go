// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
)

// Suite runs the storage contract against a backend. Backends embed it and
// set NewStorage in their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

// Player builds a pool player created i minutes after the base time
func Player(id string, i int) *model.Player {
	return &model.Player{
		ID:        model.PlayerID(id),
		Name:      "Player " + id,
		Email:     id + "@example.com",
		Phone:     "5551234567",
		Mandal:    "Toronto",
		Ratings:   model.Ratings{Batting: 7, Bowling: 5, Fielding: 6},
		Stats:     model.Stats{Matches: 12, Runs: 340, StrikeRate: 121.5, Wickets: 4, Catches: 3},
		Role:      model.RolePlayer,
		CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
	}
}

// Team builds a team created i minutes after the base time
func Team(id, name string, i int) *model.Team {
	return &model.Team{
		ID:        model.TeamID(id),
		Name:      name,
		ImageURL:  "/img/" + id + ".png",
		CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
	}
}

func (s *Suite) sale(player, team string, amount float64) storage.Sale {
	return storage.Sale{
		PlayerID: model.PlayerID(player),
		TeamID:   model.TeamID(team),
		Amount:   amount,
		SoldAt:   baseTime.Add(time.Hour),
	}
}

func (s *Suite) seed() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, Team("7", "Thunder", 0)))
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, Team("8", "Lightning", 1)))
	for i, id := range []string{"42", "43", "44"} {
		s.Require().NoError(s.Storage.SavePlayer(s.Ctx, Player(id, i)))
	}
	captain := Player("c7", 10)
	captain.Role = model.RoleCaptain
	captain.TeamID = "7"
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, captain))
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	p := Player("42", 0)
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, p))

	got, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.Equal(p.Name, got.Name)
	s.Equal(p.Email, got.Email)
	s.Equal(p.Ratings, got.Ratings)
	s.Equal(p.Stats, got.Stats)
	s.Equal(model.RolePlayer, got.Role)
	s.True(p.CreatedAt.Equal(got.CreatedAt))
	s.False(got.Sold)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestReturnedPlayerIsACopy() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, Player("42", 0)))

	got, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	got.Name = "Changed"

	again, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.Equal("Player 42", again.Name)
}

func (s *Suite) TestListPlayersOrderedByCreation() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, Player("b", 2)))
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, Player("a", 1)))
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, Player("c", 3)))

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(model.PlayerID("a"), players[0].ID)
	s.Equal(model.PlayerID("b"), players[1].ID)
	s.Equal(model.PlayerID("c"), players[2].ID)
}

func (s *Suite) TestUnsoldPlayerIDsExcludesLeaders() {
	s.seed()

	ids, err := s.Storage.UnsoldPlayerIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"42", "43", "44"}, ids)
}

func (s *Suite) TestMarkPaidSetsFlagOnce() {
	s.seed()

	paid, err := s.Storage.MarkPaid(s.Ctx, "42", baseTime)
	s.Require().NoError(err)
	s.True(paid.Paid)
	s.True(baseTime.Equal(paid.PaidAt))

	again, err := s.Storage.MarkPaid(s.Ctx, "42", baseTime.Add(time.Hour))
	s.Require().NoError(err)
	s.True(baseTime.Equal(again.PaidAt))
}

func (s *Suite) TestMarkPaidUnknownPlayer() {
	_, err := s.Storage.MarkPaid(s.Ctx, "missing", baseTime)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestMarkPaidKeepsSale() {
	s.seed()
	_, err := s.Storage.RecordSale(s.Ctx, s.sale("42", "7", 150))
	s.Require().NoError(err)

	paid, err := s.Storage.MarkPaid(s.Ctx, "42", baseTime)
	s.Require().NoError(err)
	s.True(paid.Paid)
	s.True(paid.Sold)

	stored, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.True(stored.Sold)
	s.Equal(model.TeamID("7"), stored.TeamID)
	s.Equal(150.0, stored.SoldAmount)

	ids, err := s.Storage.UnsoldPlayerIDs(s.Ctx)
	s.Require().NoError(err)
	s.NotContains(ids, model.PlayerID("42"))
}

func (s *Suite) TestMarkPaidConcurrentWithSale() {
	s.seed()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := s.Storage.MarkPaid(s.Ctx, "42", baseTime)
		s.NoError(err)
	}()
	go func() {
		defer wg.Done()
		_, err := s.Storage.RecordSale(s.Ctx, s.sale("42", "7", 150))
		s.NoError(err)
	}()
	wg.Wait()

	stored, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.True(stored.Paid)
	s.True(stored.Sold)
	s.Equal(model.TeamID("7"), stored.TeamID)

	ids, err := s.Storage.UnsoldPlayerIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"43", "44"}, ids)
}

func (s *Suite) TestAssignLeaderLeavesPool() {
	s.seed()

	leader, err := s.Storage.AssignLeader(s.Ctx, "43", "8", model.RoleViceCaptain)
	s.Require().NoError(err)
	s.Equal(model.RoleViceCaptain, leader.Role)
	s.Equal(model.TeamID("8"), leader.TeamID)

	stored, err := s.Storage.GetPlayer(s.Ctx, "43")
	s.Require().NoError(err)
	s.Equal(model.RoleViceCaptain, stored.Role)
	s.Equal(stored.Email, leader.Email)

	ids, err := s.Storage.UnsoldPlayerIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"42", "44"}, ids)
}

func (s *Suite) TestAssignLeaderRejectsSoldPlayer() {
	s.seed()
	_, err := s.Storage.RecordSale(s.Ctx, s.sale("42", "7", 150))
	s.Require().NoError(err)

	_, err = s.Storage.AssignLeader(s.Ctx, "42", "8", model.RoleCaptain)
	s.ErrorIs(err, model.ErrPlayerAlreadySold)

	stored, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.Equal(model.RolePlayer, stored.Role)
	s.Equal(model.TeamID("7"), stored.TeamID)
	s.True(stored.Sold)
}

func (s *Suite) TestAssignLeaderRejectsMovingALeader() {
	s.seed()

	_, err := s.Storage.AssignLeader(s.Ctx, "c7", "8", model.RoleCaptain)
	s.ErrorIs(err, model.ErrAlreadyLeader)
	_, err = s.Storage.AssignLeader(s.Ctx, "c7", "7", model.RoleViceCaptain)
	s.ErrorIs(err, model.ErrAlreadyLeader)

	captain, err := s.Storage.GetPlayer(s.Ctx, "c7")
	s.Require().NoError(err)
	s.Equal(model.RoleCaptain, captain.Role)
	s.Equal(model.TeamID("7"), captain.TeamID)

	again, err := s.Storage.AssignLeader(s.Ctx, "c7", "7", model.RoleCaptain)
	s.Require().NoError(err)
	s.Equal(model.RoleCaptain, again.Role)
}

func (s *Suite) TestAssignLeaderUnknownTeam() {
	s.seed()
	_, err := s.Storage.AssignLeader(s.Ctx, "42", "missing", model.RoleCaptain)
	s.ErrorIs(err, model.ErrTeamNotFound)
}

// Team tests

func (s *Suite) TestSaveAndGetTeam() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, Team("7", "Thunder", 0)))

	got, err := s.Storage.GetTeam(s.Ctx, "7")
	s.Require().NoError(err)
	s.Equal("Thunder", got.Name)
	s.Equal("/img/7.png", got.ImageURL)
	s.Empty(got.Roster)
}

func (s *Suite) TestGetTeamNotFound() {
	_, err := s.Storage.GetTeam(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *Suite) TestGetTeamByNameIgnoresCase() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, Team("7", "Thunder", 0)))

	got, err := s.Storage.GetTeamByName(s.Ctx, "  tHUNDER ")
	s.Require().NoError(err)
	s.Equal(model.TeamID("7"), got.ID)

	_, err = s.Storage.GetTeamByName(s.Ctx, "Lightning")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *Suite) TestListTeamsOrderedByCreation() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, Team("8", "Lightning", 1)))
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, Team("7", "Thunder", 0)))

	teams, err := s.Storage.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 2)
	s.Equal(model.TeamID("7"), teams[0].ID)
	s.Equal(model.TeamID("8"), teams[1].ID)
}

// Sale tests

func (s *Suite) TestRecordSaleUpdatesPlayerAndRoster() {
	s.seed()

	sold, err := s.Storage.RecordSale(s.Ctx, s.sale("42", "7", 150))
	s.Require().NoError(err)
	s.True(sold.Sold)
	s.Equal(150.0, sold.SoldAmount)
	s.Equal(model.TeamID("7"), sold.TeamID)

	stored, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.True(stored.Sold)
	s.Equal(150.0, stored.SoldAmount)
	s.Equal(model.TeamID("7"), stored.TeamID)
	s.True(baseTime.Add(time.Hour).Equal(stored.SoldAt))

	team, err := s.Storage.GetTeam(s.Ctx, "7")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"42"}, team.Roster)
}

func (s *Suite) TestRecordSaleKeepsAcquisitionOrder() {
	s.seed()

	_, err := s.Storage.RecordSale(s.Ctx, s.sale("44", "7", 10))
	s.Require().NoError(err)
	_, err = s.Storage.RecordSale(s.Ctx, s.sale("42", "7", 20))
	s.Require().NoError(err)

	team, err := s.Storage.GetTeam(s.Ctx, "7")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"44", "42"}, team.Roster)
}

func (s *Suite) TestRecordSaleShrinksPoolByOne() {
	s.seed()

	before, err := s.Storage.UnsoldPlayerIDs(s.Ctx)
	s.Require().NoError(err)

	_, err = s.Storage.RecordSale(s.Ctx, s.sale("43", "8", 75))
	s.Require().NoError(err)

	after, err := s.Storage.UnsoldPlayerIDs(s.Ctx)
	s.Require().NoError(err)
	s.Len(after, len(before)-1)
	s.NotContains(after, model.PlayerID("43"))
}

func (s *Suite) TestRecordSaleFirstWriterWins() {
	s.seed()

	_, err := s.Storage.RecordSale(s.Ctx, s.sale("42", "7", 150))
	s.Require().NoError(err)

	_, err = s.Storage.RecordSale(s.Ctx, s.sale("42", "8", 999))
	s.ErrorIs(err, model.ErrPlayerAlreadySold)

	stored, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.Equal(model.TeamID("7"), stored.TeamID)
	s.Equal(150.0, stored.SoldAmount)

	loser, err := s.Storage.GetTeam(s.Ctx, "8")
	s.Require().NoError(err)
	s.Empty(loser.Roster)
}

func (s *Suite) TestRecordSaleConcurrentSingleWinner() {
	s.seed()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		team := "7"
		if i%2 == 1 {
			team = "8"
		}
		wg.Add(1)
		go func(team string) {
			defer wg.Done()
			_, err := s.Storage.RecordSale(s.Ctx, s.sale("42", team, 100))
			errs <- err
		}(team)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		s.ErrorIs(err, model.ErrPlayerAlreadySold)
	}
	s.Equal(1, wins)

	t7, err := s.Storage.GetTeam(s.Ctx, "7")
	s.Require().NoError(err)
	t8, err := s.Storage.GetTeam(s.Ctx, "8")
	s.Require().NoError(err)
	s.Equal(1, len(t7.Roster)+len(t8.Roster))
}

func (s *Suite) TestRecordSaleUnknownPlayer() {
	s.seed()
	_, err := s.Storage.RecordSale(s.Ctx, s.sale("missing", "7", 10))
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestRecordSaleUnknownTeam() {
	s.seed()
	_, err := s.Storage.RecordSale(s.Ctx, s.sale("42", "missing", 10))
	s.ErrorIs(err, model.ErrTeamNotFound)

	stored, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.False(stored.Sold)
}

func (s *Suite) TestRecordSaleRejectsLeader() {
	s.seed()
	_, err := s.Storage.RecordSale(s.Ctx, s.sale("c7", "8", 10))
	s.ErrorIs(err, model.ErrPlayerNotForSale)
}

func (s *Suite) TestResetSalesReturnsPlayersToPool() {
	s.seed()
	_, err := s.Storage.RecordSale(s.Ctx, s.sale("42", "7", 10))
	s.Require().NoError(err)
	_, err = s.Storage.RecordSale(s.Ctx, s.sale("43", "8", 20))
	s.Require().NoError(err)

	n, err := s.Storage.ResetSales(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	ids, err := s.Storage.UnsoldPlayerIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"42", "43", "44"}, ids)

	p, err := s.Storage.GetPlayer(s.Ctx, "42")
	s.Require().NoError(err)
	s.False(p.Sold)
	s.Empty(p.TeamID)
	s.Zero(p.SoldAmount)

	captain, err := s.Storage.GetPlayer(s.Ctx, "c7")
	s.Require().NoError(err)
	s.Equal(model.TeamID("7"), captain.TeamID)

	team, err := s.Storage.GetTeam(s.Ctx, "7")
	s.Require().NoError(err)
	s.Empty(team.Roster)
}

// Admin tests

func (s *Suite) TestSaveAndGetAdmin() {
	admin := &model.Admin{Username: "host", PasswordHash: "hash", CreatedAt: baseTime}
	s.Require().NoError(s.Storage.SaveAdmin(s.Ctx, admin))

	got, err := s.Storage.GetAdmin(s.Ctx, "host")
	s.Require().NoError(err)
	s.Equal("hash", got.PasswordHash)
}

func (s *Suite) TestGetAdminNotFound() {
	_, err := s.Storage.GetAdmin(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrAdminNotFound)
}
