package storage

import (
	"sort"
	"strings"

	"github.com/mcoot/apl-auction/internal/model"
)

// SortPlayers orders players by creation time, then id
func SortPlayers(players []*model.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.Before(players[j].CreatedAt)
		}
		return players[i].ID < players[j].ID
	})
}

// SortTeams orders teams by creation time, then id
func SortTeams(teams []*model.Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		if !teams[i].CreatedAt.Equal(teams[j].CreatedAt) {
			return teams[i].CreatedAt.Before(teams[j].CreatedAt)
		}
		return teams[i].ID < teams[j].ID
	})
}

// SortPlayerIDs orders ids lexically so random selection is reproducible
func SortPlayerIDs(ids []model.PlayerID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// TeamNameKey normalizes a team name for uniqueness checks
func TeamNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
