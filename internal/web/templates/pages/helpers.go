package pages

import (
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/web/templates/components"
)

var statusOptions = []struct {
	value string
	label string
}{
	{"", "All"},
	{"unsold", "Unsold"},
	{"sold", "Sold"},
	{"unpaid", "Unpaid"},
}

func leaderName(t *model.TeamWithPlayers, role model.Role) string {
	for _, p := range t.Players {
		if p.Role == role {
			return p.Name
		}
	}
	return "unassigned"
}

func teamSpent(t *model.TeamWithPlayers) float64 {
	var spent float64
	for _, p := range t.Players {
		if p.Sold {
			spent += p.SoldAmount
		}
	}
	return spent
}

func playerStatus(p *model.Player) string {
	switch {
	case p.Role == model.RoleCaptain:
		return "Captain"
	case p.Role == model.RoleViceCaptain:
		return "Vice-captain"
	case p.Sold:
		return "Sold for " + components.Money(p.SoldAmount)
	}
	return "Unsold"
}
