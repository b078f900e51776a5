package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mcoot/apl-auction/internal/api/response"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == FormatJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == FormatJSON {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case []response.Player:
		o.printPlayers(v)
	case response.Team:
		fmt.Fprintf(o.w, "Team: %s (%s)\n", v.Name, v.ID)
	case []response.Team:
		for _, t := range v {
			fmt.Fprintf(o.w, "%-38s %s\n", t.ID, t.Name)
		}
	case response.TeamDetail:
		o.printTeamDetail(v)
	case response.AuthResponse:
		fmt.Fprintf(o.w, "Logged in as %s\n", v.Username)
		fmt.Fprintf(o.w, "Session expires: %s\n", v.ExpiresAt.Local().Format("2006-01-02 15:04"))
	case response.NextResponse:
		o.printNext(v)
	case response.CursorResponse:
		o.printCursor(v)
	case response.CheckResponse:
		if v.Stay {
			fmt.Fprintln(o.w, "Stay")
		} else {
			fmt.Fprintf(o.w, "Go to %s\n", v.Location)
		}
	case response.SoldResponse:
		fmt.Fprintf(o.w, "%s sold to %s for %s\n", v.Player.Name, v.Team.Name, money(v.Player.SoldAmount))
		o.printRosters(v.Rosters)
	case response.FinishResponse:
		if !v.Finished {
			fmt.Fprintln(o.w, "Auction in progress")
			return
		}
		fmt.Fprintln(o.w, "Auction complete")
		o.printRosters(v.Rosters)
	case response.ResetResponse:
		fmt.Fprintf(o.w, "Returned %d players to the pool\n", v.Returned)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult is the health endpoint response
type HealthResult struct {
	Status string `json:"status"`
}

func money(amount float64) string {
	if amount == math.Trunc(amount) {
		return "$" + humanize.Comma(int64(amount))
	}
	return "$" + humanize.CommafWithDigits(amount, 2)
}

func playerStatus(p response.Player) string {
	switch {
	case p.Role != "player":
		return p.Role
	case p.Sold:
		return "sold " + money(p.SoldAmount)
	default:
		return "unsold"
	}
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	if p.Mandal != "" {
		fmt.Fprintf(o.w, "Mandal: %s\n", p.Mandal)
	}
	fmt.Fprintf(o.w, "Ratings: batting %d, bowling %d, fielding %d\n",
		p.Ratings.Batting, p.Ratings.Bowling, p.Ratings.Fielding)
	fmt.Fprintf(o.w, "Status: %s\n", playerStatus(p))
	if p.TeamID != "" {
		fmt.Fprintf(o.w, "Team: %s\n", p.TeamID)
	}
	paid := "no"
	if p.Paid {
		paid = "yes"
	}
	fmt.Fprintf(o.w, "Paid: %s\n", paid)
}

func (o *Output) printPlayers(players []response.Player) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "No players")
		return
	}
	for _, p := range players {
		fmt.Fprintf(o.w, "%-38s %-24s %s\n", p.ID, p.Name, playerStatus(p))
	}
}

func (o *Output) printTeamDetail(t response.TeamDetail) {
	fmt.Fprintf(o.w, "Team: %s (%s)\n", t.Name, t.ID)
	for _, p := range t.Players {
		fmt.Fprintf(o.w, "  - %s (%s)\n", p.Name, playerStatus(p))
	}
}

func (o *Output) printNext(n response.NextResponse) {
	if n.Finished {
		fmt.Fprintln(o.w, "No unsold players left. Auction complete.")
		o.printRosters(n.Rosters)
		return
	}
	if n.Player != nil {
		fmt.Fprintf(o.w, "On the block: %s (%s)\n", n.Player.Name, n.Player.ID)
	}
}

func (o *Output) printCursor(c response.CursorResponse) {
	if !c.Present || c.Cursor == nil {
		fmt.Fprintln(o.w, "No cursor published")
		return
	}
	parts := []string{"Kind: " + c.Cursor.Kind}
	if c.Cursor.PlayerID != "" {
		parts = append(parts, "Player: "+c.Cursor.PlayerID)
	}
	if c.Cursor.TeamID != "" {
		parts = append(parts, "Team: "+c.Cursor.TeamID)
	}
	fmt.Fprintln(o.w, strings.Join(parts, ", "))
}

func (o *Output) printRosters(rosters []response.Roster) {
	for _, r := range rosters {
		fmt.Fprintf(o.w, "\n%s: %d players, %s spent\n", r.Team.Name, r.Size, money(r.Spent))
		fmt.Fprintf(o.w, "  Captain: %s\n", r.Captain.Name)
		fmt.Fprintf(o.w, "  Vice-captain: %s\n", r.ViceCaptain.Name)
		for _, p := range r.Purchased {
			fmt.Fprintf(o.w, "  - %s %s\n", p.Name, money(p.SoldAmount))
		}
	}
}
