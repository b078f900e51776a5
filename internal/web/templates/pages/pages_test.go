package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/web/templates/layout"
)

func renderDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

var panelTeams = []*model.Team{
	{ID: "t-thunder", Name: "Thunder"},
	{ID: "t-lightning", Name: "Lightning"},
}

func TestPanelKeepsRejectedValues(t *testing.T) {
	doc := renderDoc(t, Panel(PanelData{
		PageData:    layout.PageData{Title: "Panel"},
		Player:      &model.Player{ID: "p-1", Name: "Arjun Patel"},
		Teams:       panelTeams,
		TeamID:      "t-lightning",
		Amount:      "12abc",
		AmountError: "Enter an amount of zero or more, such as 1500",
	}))

	amount, _ := doc.Find("#sell-amount").Attr("value")
	assert.Equal(t, "12abc", amount)
	selected := doc.Find("#sell-team option[selected]")
	require.Equal(t, 1, selected.Length())
	assert.Equal(t, "Lightning", selected.Text())
	assert.Contains(t, doc.Find("#amount-field #amount-error").Text(), "Enter an amount")
	assert.Equal(t, 0, doc.Find("#team-error").Length())
}

func TestPanelStates(t *testing.T) {
	t.Run("empty block", func(t *testing.T) {
		doc := renderDoc(t, Panel(PanelData{Teams: panelTeams}))
		assert.Equal(t, 1, doc.Find("#panel-empty").Length())
		assert.Equal(t, 0, doc.Find("#sell-form").Length())
		assert.Equal(t, 1, doc.Find("#advance-form").Length())
	})

	t.Run("sold player", func(t *testing.T) {
		doc := renderDoc(t, Panel(PanelData{
			Player: &model.Player{ID: "p-1", Name: "Arjun Patel", Sold: true, SoldAmount: 1500, TeamID: "t-thunder"},
			Teams:  panelTeams,
			SoldTo: "Thunder",
		}))
		assert.Equal(t, "Arjun Patel sold to Thunder for $1,500", doc.Find("#panel-sold").Text())
		assert.Equal(t, 0, doc.Find("#sell-form").Length())
	})

	t.Run("fresh form", func(t *testing.T) {
		doc := renderDoc(t, Panel(PanelData{Player: &model.Player{ID: "p-1", Name: "Arjun Patel"}, Teams: panelTeams}))
		assert.Equal(t, 3, doc.Find("#sell-team option").Length())
		assert.Equal(t, 0, doc.Find("#sell-team option[selected]").Length())
		assert.Equal(t, 0, doc.Find(".field-error").Length())
	})
}

func TestPlayersMarkPaidAction(t *testing.T) {
	doc := renderDoc(t, Players(PlayersData{
		Players: []*model.Player{
			{ID: "p-1", Name: "Arjun Patel"},
			{ID: "p-2", Name: "Esha Kapoor", Paid: true, Sold: true, SoldAmount: 700},
			{ID: "c-1", Name: "Kiran Rao", Role: model.RoleCaptain},
		},
		Status: "unpaid",
	}))

	action, _ := doc.Find("tr[data-player-id='p-1'] form").Attr("action")
	assert.Equal(t, "/admin/players/p-1/paid", action)
	assert.Equal(t, "Yes", doc.Find("tr[data-player-id='p-2'] .paid").Text())
	assert.Equal(t, "Sold for $700", doc.Find("tr[data-player-id='p-2'] .status").Text())
	assert.Equal(t, "Captain", doc.Find("tr[data-player-id='c-1'] .status").Text())
	status, _ := doc.Find("#player-search option[selected]").Attr("value")
	assert.Equal(t, "unpaid", status)
}

func TestErrorPage(t *testing.T) {
	doc := renderDoc(t, ErrorPage(ErrorData{
		PageData: layout.PageData{Title: "Error"},
		Status:   500,
		Message:  "team Thunder has no captain",
	}))

	assert.Equal(t, "Error 500", doc.Find("#error h1").Text())
	assert.Equal(t, "team Thunder has no captain", doc.Find("#error .message").Text())
}
