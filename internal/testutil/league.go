package testutil

import (
	"context"
	"time"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
)

// Fixture ids loaded by SeedLeague
const (
	TeamThunder   model.TeamID = "t-thunder"
	TeamLightning model.TeamID = "t-lightning"

	CaptainThunder       model.PlayerID = "c-thunder"
	ViceCaptainThunder   model.PlayerID = "vc-thunder"
	CaptainLightning     model.PlayerID = "c-lightning"
	ViceCaptainLightning model.PlayerID = "vc-lightning"
)

// PoolPlayers are the unsold fixture players, sorted by id
var PoolPlayers = []model.PlayerID{"p-1", "p-2", "p-3", "p-4"}

var poolNames = []string{"Arjun Patel", "Bhavik Shah", "Chirag Desai", "Dhruv Mehta"}

// FixtureTime is the creation time of the first fixture record
var FixtureTime = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

// SeedLeague stores two teams with both leaders assigned and four pool players
func SeedLeague(ctx context.Context, st storage.Storage) error {
	teams := []*model.Team{
		{ID: TeamThunder, Name: "Thunder", ImageURL: "/img/thunder.png", CreatedAt: FixtureTime},
		{ID: TeamLightning, Name: "Lightning", ImageURL: "/img/lightning.png", CreatedAt: FixtureTime.Add(time.Minute)},
	}
	for _, t := range teams {
		if err := st.SaveTeam(ctx, t); err != nil {
			return err
		}
	}

	leaders := []struct {
		id   model.PlayerID
		name string
		team model.TeamID
		role model.Role
	}{
		{CaptainThunder, "Kiran Joshi", TeamThunder, model.RoleCaptain},
		{ViceCaptainThunder, "Nikhil Rao", TeamThunder, model.RoleViceCaptain},
		{CaptainLightning, "Rahul Iyer", TeamLightning, model.RoleCaptain},
		{ViceCaptainLightning, "Sanjay Nair", TeamLightning, model.RoleViceCaptain},
	}
	for i, l := range leaders {
		p := fixturePlayer(l.id, l.name, i)
		p.Role = l.role
		p.TeamID = l.team
		if err := st.SavePlayer(ctx, p); err != nil {
			return err
		}
	}

	for i, id := range PoolPlayers {
		if err := st.SavePlayer(ctx, fixturePlayer(id, poolNames[i], len(leaders)+i)); err != nil {
			return err
		}
	}
	return nil
}

func fixturePlayer(id model.PlayerID, name string, i int) *model.Player {
	return &model.Player{
		ID:        id,
		Name:      name,
		Email:     string(id) + "@example.com",
		Phone:     "9025550100",
		Mandal:    "Charlottetown",
		Ratings:   model.Ratings{Batting: 6, Bowling: 5, Fielding: 7},
		Stats:     model.Stats{Matches: 10, Runs: 210, StrikeRate: 118.4, Wickets: 6, Catches: 4},
		Role:      model.RolePlayer,
		Paid:      true,
		PaidAt:    FixtureTime,
		CreatedAt: FixtureTime.Add(time.Duration(i) * time.Minute),
	}
}
