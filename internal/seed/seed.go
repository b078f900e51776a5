// Package seed loads a league definition from YAML into an empty league.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/league"
)

// File is the YAML league definition
type File struct {
	Teams   []Team   `yaml:"teams"`
	Players []Player `yaml:"players"`
}

// Team is a team with its pre-assigned leaders
type Team struct {
	Name        string `yaml:"name"`
	ImageURL    string `yaml:"image_url"`
	Captain     Player `yaml:"captain"`
	ViceCaptain Player `yaml:"vice_captain"`
}

// Player is one registration
type Player struct {
	Name     string        `yaml:"name"`
	Email    string        `yaml:"email"`
	Phone    string        `yaml:"phone"`
	Mandal   string        `yaml:"mandal"`
	ImageURL string        `yaml:"image_url"`
	Paid     *bool         `yaml:"paid"` // defaults to true
	Ratings  model.Ratings `yaml:"ratings"`
	Stats    Stats         `yaml:"stats"`
}

// Stats mirrors model.Stats with YAML keys
type Stats struct {
	Matches    int     `yaml:"matches"`
	Runs       int     `yaml:"runs"`
	StrikeRate float64 `yaml:"strike_rate"`
	Wickets    int     `yaml:"wickets"`
	Dismissals int     `yaml:"dismissals"`
	Catches    int     `yaml:"catches"`
}

// Summary reports what a load did
type Summary struct {
	Teams   int
	Players int
	Skipped bool // the league already had teams
}

// Parse decodes a league definition. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// LoadFile parses path and applies it with Apply
func LoadFile(ctx context.Context, path string, l league.League, logger *slog.Logger) (Summary, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer func() { _ = fh.Close() }()

	f, err := Parse(fh)
	if err != nil {
		return Summary{}, err
	}
	return Apply(ctx, f, l, logger)
}

// Apply registers every team, leader and pool player. A league that already
// has teams is left untouched so restarts against persistent storage do not
// duplicate players.
func Apply(ctx context.Context, f *File, l league.League, logger *slog.Logger) (Summary, error) {
	existing, err := l.ListTeams(ctx)
	if err != nil {
		return Summary{}, err
	}
	if len(existing) > 0 {
		logger.Info("league already seeded", slog.Int("teams", len(existing)))
		return Summary{Skipped: true}, nil
	}

	var sum Summary
	for _, t := range f.Teams {
		team, err := l.CreateTeam(ctx, t.Name, t.ImageURL)
		if err != nil {
			return sum, fmt.Errorf("team %q: %w", t.Name, err)
		}
		sum.Teams++

		leaders := []struct {
			p    Player
			role model.Role
		}{
			{t.Captain, model.RoleCaptain},
			{t.ViceCaptain, model.RoleViceCaptain},
		}
		for _, leader := range leaders {
			player, err := register(ctx, l, leader.p)
			if err != nil {
				return sum, fmt.Errorf("team %q %s: %w", t.Name, leader.role, err)
			}
			if _, err := l.AssignLeader(ctx, team.ID, player.ID, leader.role); err != nil {
				return sum, fmt.Errorf("team %q %s: %w", t.Name, leader.role, err)
			}
			sum.Players++
		}
	}

	for _, p := range f.Players {
		if _, err := register(ctx, l, p); err != nil {
			return sum, fmt.Errorf("player %q: %w", p.Name, err)
		}
		sum.Players++
	}

	logger.Info("league seeded",
		slog.Int("teams", sum.Teams),
		slog.Int("players", sum.Players),
	)
	return sum, nil
}

func register(ctx context.Context, l league.League, p Player) (*model.Player, error) {
	player, err := l.RegisterPlayer(ctx, league.Registration{
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Mandal:   p.Mandal,
		ImageURL: p.ImageURL,
		Ratings:  p.Ratings,
		Stats:    model.Stats(p.Stats),
	})
	if err != nil {
		return nil, err
	}
	if p.Paid == nil || *p.Paid {
		return l.MarkPaid(ctx, player.ID)
	}
	return player, nil
}
