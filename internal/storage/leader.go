package storage

import "github.com/mcoot/apl-auction/internal/model"

// CheckLeaderAssignment reports why p cannot take role on teamID. Assigning
// a leader the role and team they already hold is allowed.
func CheckLeaderAssignment(p *model.Player, teamID model.TeamID, role model.Role) error {
	if p.Sold {
		return model.ErrPlayerAlreadySold
	}
	if p.Role.IsLeader() && (p.TeamID != teamID || p.Role != role) {
		return model.ErrAlreadyLeader
	}
	return nil
}
