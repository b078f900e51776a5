package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcoot/apl-auction/internal/model"
)

// exhaustedName is what the league API returns in place of a player once
// the pool is empty
const exhaustedName = "No unsold players available"

type playerDTO struct {
	ID               int         `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Phone            json.Number `json:"phone"`
	Mandal           string      `json:"mandal"`
	BattingRating    int         `json:"battingRating"`
	BowlingRating    int         `json:"bowlingRating"`
	FieldingRating   int         `json:"fieldingRating"`
	PlayerSold       bool        `json:"playerSold"`
	PlayerImageURL   string      `json:"playerImageUrl"`
	TeamID           int         `json:"teamId"`
	NoOfMatches      int         `json:"noOfMatches"`
	NoOfRuns         int         `json:"noOfRuns"`
	StrikeRate       float64     `json:"strikeRate"`
	NoOfWickets      int         `json:"noOfWickets"`
	NoOfDismissals   int         `json:"noOfDismissals"`
	NoOfCatches      int         `json:"noOfCatches"`
	TypeOf           string      `json:"typeof"`
	PlayerSoldAmount float64     `json:"playerSoldAmount"`
}

type teamDTO struct {
	ID           int         `json:"id"`
	TeamName     string      `json:"teamName"`
	TeamImageURL string      `json:"teamImageUrl"`
	Players      []playerDTO `json:"players"`
}

type sellRequestDTO struct {
	TeamID           int     `json:"teamId"`
	PlayerSoldAmount float64 `json:"playerSoldAmount"`
}

func (p playerDTO) exhausted() bool {
	return p.ID == 0 || p.Name == exhaustedName
}

func parseRole(s string) (model.Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "player":
		return model.RolePlayer, nil
	case "captain":
		return model.RoleCaptain, nil
	case "vice captain", "vice-captain", "vicecaptain":
		return model.RoleViceCaptain, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// toModel validates the payload and converts it. Failures wrap model.ErrRemote.
func (p playerDTO) toModel() (*model.Player, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: player %d: %s", model.ErrRemote, p.ID, fmt.Sprintf(format, args...))
	}

	if p.ID <= 0 {
		return nil, invalid("missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalid("missing name")
	}
	role, err := parseRole(p.TypeOf)
	if err != nil {
		return nil, invalid("%v", err)
	}
	ratings := model.Ratings{Batting: p.BattingRating, Bowling: p.BowlingRating, Fielding: p.FieldingRating}
	if !ratings.Valid() {
		return nil, invalid("ratings out of range")
	}
	stats := model.Stats{
		Matches:    p.NoOfMatches,
		Runs:       p.NoOfRuns,
		StrikeRate: p.StrikeRate,
		Wickets:    p.NoOfWickets,
		Dismissals: p.NoOfDismissals,
		Catches:    p.NoOfCatches,
	}
	if stats.Matches < 0 || stats.Runs < 0 || stats.StrikeRate < 0 || stats.Wickets < 0 || stats.Dismissals < 0 || stats.Catches < 0 {
		return nil, invalid("negative stats")
	}
	if p.PlayerSoldAmount < 0 {
		return nil, invalid("negative sale amount")
	}
	if p.PlayerSold && p.TeamID <= 0 {
		return nil, invalid("sold without a team")
	}

	player := &model.Player{
		ID:         playerID(p.ID),
		Name:       strings.TrimSpace(p.Name),
		Email:      p.Email,
		Phone:      p.Phone.String(),
		Mandal:     p.Mandal,
		ImageURL:   p.PlayerImageURL,
		Ratings:    ratings,
		Stats:      stats,
		Role:       role,
		Sold:       p.PlayerSold,
		SoldAmount: p.PlayerSoldAmount,
		Paid:       true,
	}
	if p.TeamID > 0 {
		player.TeamID = teamID(p.TeamID)
	}
	return player, nil
}

func (t teamDTO) toTeam() (*model.Team, error) {
	if t.ID <= 0 {
		return nil, fmt.Errorf("%w: team missing id", model.ErrRemote)
	}
	if strings.TrimSpace(t.TeamName) == "" {
		return nil, fmt.Errorf("%w: team %d: missing name", model.ErrRemote, t.ID)
	}
	return &model.Team{
		ID:       teamID(t.ID),
		Name:     strings.TrimSpace(t.TeamName),
		ImageURL: t.TeamImageURL,
	}, nil
}

// toModel converts a team and its players. Purchased players form the
// roster in the order the API lists them.
func (t teamDTO) toModel() (*model.TeamWithPlayers, error) {
	team, err := t.toTeam()
	if err != nil {
		return nil, err
	}
	result := &model.TeamWithPlayers{Team: *team}
	for _, dto := range t.Players {
		p, err := dto.toModel()
		if err != nil {
			return nil, err
		}
		if !p.Role.IsLeader() {
			result.Team.Roster = append(result.Team.Roster, p.ID)
		}
		result.Players = append(result.Players, *p)
	}
	return result, nil
}

func playerID(id int) model.PlayerID {
	return model.PlayerID(strconv.Itoa(id))
}

func teamID(id int) model.TeamID {
	return model.TeamID(strconv.Itoa(id))
}

// remoteID parses one of our string ids back into the API's integer form
func remoteID(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
