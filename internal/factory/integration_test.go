package factory

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/apl-auction/internal/backend"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/auction"
	"github.com/mcoot/apl-auction/internal/services/sale"
	redisstorage "github.com/mcoot/apl-auction/internal/storage/redis"
	"github.com/mcoot/apl-auction/internal/testutil"
	"github.com/mcoot/apl-auction/internal/web/sse"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(testutil.SeedLeague(s.ctx, s.app.MemStorage))
}

// Test: a whole auction from the first presentation to the final rosters
func (s *IntegrationSuite) TestCompleteAuctionFlow() {
	prices := []float64{1500, 800, 2250, 400}
	buyers := []model.TeamID{testutil.TeamThunder, testutil.TeamLightning, testutil.TeamThunder, testutil.TeamLightning}

	for i := range prices {
		// Display screen draws the first remaining player
		step, err := s.app.AuctionController.LoadNext(s.ctx, "")
		s.Require().NoError(err)
		s.Require().False(step.Finished)
		presented := step.Player.ID

		nav, err := s.app.AuctionController.Check(s.ctx, presented)
		s.Require().NoError(err)
		s.True(nav.Stay())

		// Panel sells the player
		sold, err := s.app.SaleService.Sell(s.ctx, sale.Request{PlayerID: presented, TeamID: buyers[i], Amount: prices[i]})
		s.Require().NoError(err)
		s.True(sold.Sold)

		// Display screen is sent to the sold page and stays there
		nav, err = s.app.AuctionController.Check(s.ctx, presented)
		s.Require().NoError(err)
		s.Equal(auction.SoldURL(presented, buyers[i]), nav.Location)
		s.True(nav.From(auction.SoldURL(presented, buyers[i])).Stay())

		view, err := s.app.AuctionController.Sold(s.ctx, presented, buyers[i])
		s.Require().NoError(err)
		s.Equal(buyers[i], view.Team.ID)

		// Operator advances
		s.Require().NoError(s.app.AuctionController.Advance(s.ctx))
		nav, err = s.app.AuctionController.Check(s.ctx, presented)
		s.Require().NoError(err)
		s.Equal(auction.PathAuction, nav.Location)
	}

	step, err := s.app.AuctionController.LoadNext(s.ctx, "")
	s.Require().NoError(err)
	s.True(step.Finished)

	result, err := s.app.FinishDetector.Check(s.ctx)
	s.Require().NoError(err)
	s.Require().True(result.Finished)
	s.Require().Len(result.Rosters, 2)

	thunder := result.Rosters[0]
	s.Equal(testutil.TeamThunder, thunder.Team.ID)
	s.Equal(testutil.CaptainThunder, thunder.Captain.ID)
	s.Equal(testutil.ViceCaptainThunder, thunder.ViceCaptain.ID)
	s.Len(thunder.Purchased, 2)
	s.InDelta(3750.0, thunder.Spent(), 0.001)

	s.Equal([]float64{1500, 800, 2250, 400}, s.app.MockMetrics.SaleAmounts())
	s.Equal(4, s.app.MockMetrics.PlayersPresented())
}

// Test: a sale is announced to SSE clients through the relay
func (s *IntegrationSuite) TestSaleReachesHub() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	s.Require().NoError(s.app.Start(ctx))
	defer func() { _ = s.app.Close() }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sse.ServeSSE(w, r, s.app.Hub)
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	s.Require().NoError(err)
	defer resp.Body.Close()

	lines := make(chan string, 32)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	s.Eventually(func() bool { return s.app.Hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err = s.app.SaleService.Sell(s.ctx, sale.Request{PlayerID: "p-1", TeamID: testutil.TeamLightning, Amount: 500})
	s.Require().NoError(err)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			s.Require().True(ok, "stream closed before the sold event")
			if line != "event: sold" {
				continue
			}
			data := <-lines
			s.True(strings.HasPrefix(data, "data: "))
			s.Contains(data, `"player_id":"p-1"`)
			return
		case <-timeout:
			s.FailNow("sold event not received")
		}
	}
}

// Test: the redis backend shares one client between storage and cursor
func (s *IntegrationSuite) TestNewWithRedis() {
	mr := miniredis.RunT(s.T())
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	app, err := New(s.ctx, Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	s.Require().NoError(err)
	defer func() { _ = app.Close() }()

	s.Require().NoError(testutil.SeedLeague(s.ctx, app.Storage))
	step, err := app.AuctionController.LoadNext(s.ctx, "p-3")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p-3"), step.Player.ID)

	msg, ok, err := app.Cursor.Current(s.ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(model.CursorPresenting, msg.Kind)
}

// Test: sqlite storage works in memory
func (s *IntegrationSuite) TestNewWithSQLite() {
	app, err := New(s.ctx, Config{StorageType: StorageTypeSQLite, SQLitePath: ":memory:"})
	s.Require().NoError(err)
	defer func() { _ = app.Close() }()

	s.Require().NoError(testutil.SeedLeague(s.ctx, app.Storage))
	teams, err := app.League.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Len(teams, 2)
	s.NotNil(app.LocalLeague)
}

func (s *IntegrationSuite) TestNewRejectsBadStorage() {
	_, err := New(s.ctx, Config{StorageType: "mongo"})
	s.Error(err)

	_, err = New(s.ctx, Config{StorageType: StorageTypeRedis})
	s.Error(err)

	_, err = New(s.ctx, Config{StorageType: StorageTypeSQLite})
	s.Error(err)
}

// Test: a backend URL swaps the league for the remote client
func (s *IntegrationSuite) TestNewWithRemoteBackend() {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer remote.Close()

	app, err := New(s.ctx, Config{Backend: &backend.Config{BaseURL: remote.URL}})
	s.Require().NoError(err)
	defer func() { _ = app.Close() }()

	s.Nil(app.LocalLeague)
	s.IsType(&backend.Client{}, app.League)

	teams, err := app.League.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Empty(teams)

	_, err = app.League.CreateTeam(s.ctx, "Storm", "")
	s.ErrorIs(err, model.ErrNotSupported)
}
