package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/apl-auction/internal/dependencies/mocks"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/testutil"
)

const playerJSON = `{
	"id": 42, "name": "Arjun Patel", "email": "arjun@example.com", "phone": 9025550100,
	"mandal": "Charlottetown", "battingRating": 7, "bowlingRating": 4, "fieldingRating": 6,
	"playerSold": false, "playerImageUrl": "/img/42.png", "teamId": 0,
	"noOfMatches": 12, "noOfRuns": 340, "strikeRate": 121.5, "noOfWickets": 3,
	"noOfDismissals": 1, "noOfCatches": 5, "typeof": "player", "playerSoldAmount": 0
}`

const teamsJSON = `[{
	"id": 7, "teamName": "Thunder", "teamImageUrl": "/img/7.png",
	"players": [
		{"id": 3, "name": "Kiran Joshi", "typeof": "captain", "teamId": 7},
		{"id": 4, "name": "Nikhil Rao", "typeof": "vice captain", "teamId": 7},
		{"id": 42, "name": "Arjun Patel", "typeof": "player", "teamId": 7, "playerSold": true, "playerSoldAmount": 150}
	]
}]`

type ClientSuite struct {
	suite.Suite
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []*http.Request
	bodies   []string
	server   *httptest.Server
	clock    *mocks.MockClock
	metrics  *metrics.Mock
	client   *Client
	ctx      context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.handlers = make(map[string]http.HandlerFunc)
	s.requests = nil
	s.bodies = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, r)
		s.bodies = append(s.bodies, string(body))
		h, ok := s.handlers[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 2, 20, 0, 0, 0, time.UTC))
	s.metrics = metrics.NewMock()
	s.client = NewClient(Config{BaseURL: s.server.URL + "/"}, s.clock, s.metrics, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) handle(route string, status int, body string) {
	s.handlers[route] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// RandomUnsoldPlayer tests

func (s *ClientSuite) TestRandomUnsoldPlayerDecodes() {
	s.handle("GET /players/random", http.StatusOK, playerJSON)

	player, err := s.client.RandomUnsoldPlayer(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.PlayerID("42"), player.ID)
	s.Equal("Arjun Patel", player.Name)
	s.Equal("9025550100", player.Phone)
	s.Equal(model.Ratings{Batting: 7, Bowling: 4, Fielding: 6}, player.Ratings)
	s.Equal(121.5, player.Stats.StrikeRate)
	s.Equal(model.RolePlayer, player.Role)
	s.Empty(player.TeamID)
}

func (s *ClientSuite) TestRandomUnsoldPlayerExhaustedByID() {
	s.handle("GET /players/random", http.StatusOK, `{"id": 0, "name": ""}`)

	_, err := s.client.RandomUnsoldPlayer(s.ctx)
	s.ErrorIs(err, model.ErrNoUnsoldPlayers)
}

func (s *ClientSuite) TestRandomUnsoldPlayerExhaustedByName() {
	s.handle("GET /players/random", http.StatusOK, `{"id": -1, "name": "No unsold players available"}`)

	_, err := s.client.RandomUnsoldPlayer(s.ctx)
	s.ErrorIs(err, model.ErrNoUnsoldPlayers)
	s.Zero(s.metrics.RemoteFailures("random_player"))
}

func (s *ClientSuite) TestRandomUnsoldPlayerMissingRouteIsRemoteFailure() {
	_, err := s.client.RandomUnsoldPlayer(s.ctx)
	s.ErrorIs(err, model.ErrRemote)
	s.NotErrorIs(err, model.ErrNoUnsoldPlayers)
	s.Equal(1, s.metrics.RemoteFailures("random_player"))
}

func (s *ClientSuite) TestRandomUnsoldPlayerRejectsBadRatings() {
	s.handle("GET /players/random", http.StatusOK, `{"id": 9, "name": "X Y", "battingRating": 14}`)

	_, err := s.client.RandomUnsoldPlayer(s.ctx)
	s.ErrorIs(err, model.ErrRemote)
	s.Equal(1, s.metrics.RemoteFailures("random_player"))
}

func (s *ClientSuite) TestRandomUnsoldPlayerRejectsSoldPlayer() {
	s.handle("GET /players/random", http.StatusOK, `{"id": 9, "name": "X Y", "playerSold": true, "teamId": 7}`)

	_, err := s.client.RandomUnsoldPlayer(s.ctx)
	s.ErrorIs(err, model.ErrRemote)
}

func (s *ClientSuite) TestMalformedJSON() {
	s.handle("GET /players/random", http.StatusOK, `{"id": "forty-two"`)

	_, err := s.client.RandomUnsoldPlayer(s.ctx)
	s.ErrorIs(err, model.ErrRemote)
}

func (s *ClientSuite) TestServerErrorIsRemote() {
	s.handle("GET /players/random", http.StatusInternalServerError, `boom`)

	_, err := s.client.RandomUnsoldPlayer(s.ctx)
	s.ErrorIs(err, model.ErrRemote)
	s.Contains(err.Error(), "500")
	s.Equal(1, s.metrics.RemoteFailures("random_player"))
}

func (s *ClientSuite) TestUnreachableIsRemote() {
	s.server.Close()

	_, err := s.client.ListTeams(s.ctx)
	s.ErrorIs(err, model.ErrRemote)
}

// GetPlayer tests

func (s *ClientSuite) TestGetPlayer() {
	s.handle("GET /players/42", http.StatusOK, playerJSON)

	player, err := s.client.GetPlayer(s.ctx, "42")
	s.Require().NoError(err)
	s.Equal("Charlottetown", player.Mandal)
}

func (s *ClientSuite) TestGetPlayerNotFound() {
	_, err := s.client.GetPlayer(s.ctx, "43")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Zero(s.metrics.RemoteFailures("get_player"))
}

func (s *ClientSuite) TestGetPlayerNonNumericID() {
	_, err := s.client.GetPlayer(s.ctx, "p-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Empty(s.requests)
}

// Team tests

func (s *ClientSuite) TestListTeams() {
	s.handle("GET /teams", http.StatusOK, `[{"id": 7, "teamName": "Thunder"}, {"id": 8, "teamName": "Lightning"}]`)

	teams, err := s.client.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 2)
	s.Equal(model.TeamID("8"), teams[1].ID)
}

func (s *ClientSuite) TestListTeamsRejectsNamelessTeam() {
	s.handle("GET /teams", http.StatusOK, `[{"id": 7, "teamName": " "}]`)

	_, err := s.client.ListTeams(s.ctx)
	s.ErrorIs(err, model.ErrRemote)
}

func (s *ClientSuite) TestListTeamsWithPlayers() {
	s.handle("GET /teams/getallteams", http.StatusOK, teamsJSON)

	teams, err := s.client.ListTeamsWithPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 1)

	team := teams[0]
	s.Equal("Thunder", team.Team.Name)
	s.Equal([]model.PlayerID{"42"}, team.Team.Roster)
	s.Require().Len(team.Players, 3)
	s.Equal(model.RoleViceCaptain, team.Players[1].Role)
}

func (s *ClientSuite) TestGetTeam() {
	s.handle("GET /players/team/7", http.StatusOK, teamsJSON[1:len(teamsJSON)-1])

	team, err := s.client.GetTeam(s.ctx, "7")
	s.Require().NoError(err)
	s.Equal(model.TeamID("7"), team.Team.ID)
}

func (s *ClientSuite) TestUnknownRoleIsRemote() {
	s.handle("GET /teams/getallteams", http.StatusOK, `[{"id": 7, "teamName": "Thunder", "players": [{"id": 1, "name": "A B", "typeof": "coach"}]}]`)

	_, err := s.client.ListTeamsWithPlayers(s.ctx)
	s.ErrorIs(err, model.ErrRemote)
}

// SellPlayer tests

func (s *ClientSuite) TestSellPlayer() {
	s.handle("PUT /players/42", http.StatusOK, `{"id": 42, "name": "Arjun Patel", "playerSold": true, "teamId": 7, "playerSoldAmount": 150}`)

	player, err := s.client.SellPlayer(s.ctx, "42", "7", 150)
	s.Require().NoError(err)

	s.True(player.Sold)
	s.Equal(model.TeamID("7"), player.TeamID)
	s.Equal(s.clock.Now(), player.SoldAt)

	s.Require().Len(s.requests, 1)
	s.Equal("application/json", s.requests[0].Header.Get("Content-Type"))
	var body map[string]any
	s.Require().NoError(json.Unmarshal([]byte(s.bodies[0]), &body))
	s.Equal(map[string]any{"teamId": 7.0, "playerSoldAmount": 150.0}, body)
}

func (s *ClientSuite) TestSellPlayerConflict() {
	s.handle("PUT /players/42", http.StatusConflict, `{"message": "already sold"}`)

	_, err := s.client.SellPlayer(s.ctx, "42", "7", 150)
	s.ErrorIs(err, model.ErrPlayerAlreadySold)
}

func (s *ClientSuite) TestSellPlayerNotApplied() {
	s.handle("PUT /players/42", http.StatusOK, playerJSON)

	_, err := s.client.SellPlayer(s.ctx, "42", "7", 150)
	s.ErrorIs(err, model.ErrRemote)
	s.Equal(1, s.metrics.RemoteFailures("sell_player"))
}

func (s *ClientSuite) TestSellPlayerValidatesLocally() {
	_, err := s.client.SellPlayer(s.ctx, "42", "", 150)
	s.ErrorIs(err, model.ErrTeamNotFound)

	_, err = s.client.SellPlayer(s.ctx, "42", "7", -1)
	s.ErrorIs(err, model.ErrInvalidSaleAmount)

	s.Empty(s.requests)
}

func (s *ClientSuite) TestSellIsNotRetried() {
	s.handle("PUT /players/42", http.StatusBadGateway, ``)

	_, err := s.client.SellPlayer(s.ctx, "42", "7", 150)
	s.ErrorIs(err, model.ErrRemote)
	s.Len(s.requests, 1)
}

// Registry tests

func (s *ClientSuite) TestRegistryUnsupported() {
	_, err := s.client.ListPlayers(s.ctx, league.PlayerFilter{})
	s.ErrorIs(err, model.ErrNotSupported)

	_, err = s.client.ResetAuction(s.ctx)
	s.ErrorIs(err, model.ErrNotSupported)
}
