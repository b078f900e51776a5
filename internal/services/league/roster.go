package league

import (
	"fmt"

	"github.com/mcoot/apl-auction/internal/model"
)

// BuildRoster arranges a team's players for display: captain, vice-captain,
// then purchases in the order they were given. A team without both leaders
// is a setup error.
func BuildRoster(t *model.TeamWithPlayers) (model.Roster, error) {
	roster := model.Roster{Team: t.Team}
	var haveCaptain, haveVice bool
	for _, p := range t.Players {
		switch p.Role {
		case model.RoleCaptain:
			if !haveCaptain {
				roster.Captain = p
				haveCaptain = true
			}
		case model.RoleViceCaptain:
			if !haveVice {
				roster.ViceCaptain = p
				haveVice = true
			}
		default:
			roster.Purchased = append(roster.Purchased, p)
		}
	}
	if !haveCaptain {
		return model.Roster{}, fmt.Errorf("team %q: %w", t.Team.Name, model.ErrMissingCaptain)
	}
	if !haveVice {
		return model.Roster{}, fmt.Errorf("team %q: %w", t.Team.Name, model.ErrMissingViceCaptain)
	}
	return roster, nil
}
