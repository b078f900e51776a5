package auction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	cursormemory "github.com/mcoot/apl-auction/internal/cursor/memory"
	"github.com/mcoot/apl-auction/internal/dependencies/mocks"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/finish"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/services/sale"
	"github.com/mcoot/apl-auction/internal/storage/memory"
	"github.com/mcoot/apl-auction/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	cursor     *cursormemory.Channel
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	metrics    *metrics.Mock
	league     *league.Service
	sales      *sale.Service
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.cursor = cursormemory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 2, 19, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.metrics = metrics.NewMock()
	logger := testutil.NopLogger()
	s.league = league.New(s.storage, s.clock, s.random, s.metrics, logger)
	s.sales = sale.New(s.league, s.cursor, s.clock, s.metrics, logger)
	detector := finish.New(s.league, s.metrics, logger)
	s.controller = NewController(s.league, s.cursor, detector, s.clock, s.metrics, logger)
	s.ctx = context.Background()
	s.Require().NoError(testutil.SeedLeague(s.ctx, s.storage))
}

func (s *ControllerSuite) current() model.CursorMessage {
	msg, ok, err := s.cursor.Current(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)
	return msg
}

// LoadNext tests

func (s *ControllerSuite) TestLoadNextPresentsRandomPlayer() {
	s.random.QueueIntn(1)

	step, err := s.controller.LoadNext(s.ctx, "")
	s.Require().NoError(err)

	s.False(step.Finished)
	s.Equal(model.PlayerID("p-2"), step.Player.ID)
	s.Equal(model.CursorMessage{PlayerID: "p-2", Kind: model.CursorPresenting, PublishedAt: s.clock.Now()}, s.current())
	s.Equal(1, s.metrics.PlayersPresented())
}

func (s *ControllerSuite) TestLoadNextSentinelDrawsRandomly() {
	step, err := s.controller.LoadNext(s.ctx, model.NextPlayerSentinel)
	s.Require().NoError(err)

	s.Equal(testutil.PoolPlayers[0], step.Player.ID)
	s.Len(s.random.Calls(), 1)
}

func (s *ControllerSuite) TestLoadNextExplicitPlayer() {
	step, err := s.controller.LoadNext(s.ctx, "p-4")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p-4"), step.Player.ID)
	s.Empty(s.random.Calls())
	s.Equal(model.PlayerID("p-4"), s.current().PlayerID)
}

func (s *ControllerSuite) TestLoadNextUnknownPlayer() {
	_, err := s.controller.LoadNext(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, ok, err := s.cursor.Current(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ControllerSuite) TestLoadNextFinishesWhenPoolEmpty() {
	for _, id := range testutil.PoolPlayers {
		_, err := s.league.SellPlayer(s.ctx, id, testutil.TeamThunder, 25)
		s.Require().NoError(err)
	}

	for i := 0; i < 3; i++ {
		step, err := s.controller.LoadNext(s.ctx, "")
		s.Require().NoError(err)
		s.True(step.Finished)
		s.Nil(step.Player)
	}
	s.Equal(3, s.metrics.AuctionsFinished())
}

// Check tests

func (s *ControllerSuite) TestCheckStaysWithoutCursor() {
	nav, err := s.controller.Check(s.ctx, "p-1")
	s.Require().NoError(err)
	s.True(nav.Stay())
}

func (s *ControllerSuite) TestCheckFollowsSale() {
	_, err := s.controller.LoadNext(s.ctx, "p-1")
	s.Require().NoError(err)

	nav, err := s.controller.Check(s.ctx, "p-1")
	s.Require().NoError(err)
	s.True(nav.Stay())

	_, err = s.sales.Sell(s.ctx, sale.Request{PlayerID: "p-1", TeamID: testutil.TeamLightning, Amount: 150})
	s.Require().NoError(err)

	for i := 0; i < 2; i++ {
		nav, err = s.controller.Check(s.ctx, "p-1")
		s.Require().NoError(err)
		s.Equal("/admin/auction/sold?id=p-1&teamId=t-lightning", nav.Location)
	}
}

func (s *ControllerSuite) TestAdvanceSendsDisplaysBack() {
	s.Require().NoError(s.controller.Advance(s.ctx))

	nav, err := s.controller.Check(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(PathAuction, nav.Location)
	s.Equal(model.CursorAdvance, s.current().Kind)
}

// Sold tests

func (s *ControllerSuite) TestSoldAssemblesView() {
	_, err := s.sales.Sell(s.ctx, sale.Request{PlayerID: "p-3", TeamID: testutil.TeamThunder, Amount: 210})
	s.Require().NoError(err)

	view, err := s.controller.Sold(s.ctx, "p-3", testutil.TeamThunder)
	s.Require().NoError(err)

	s.Equal("Thunder", view.Team.Name)
	s.Equal(210.0, view.Player.SoldAmount)
	s.Require().Len(view.Rosters, 2)
	s.Require().Len(view.Rosters[0].Purchased, 1)
	s.Equal(model.PlayerID("p-3"), view.Rosters[0].Purchased[0].ID)
}

func (s *ControllerSuite) TestSoldUsesRecordedTeam() {
	_, err := s.sales.Sell(s.ctx, sale.Request{PlayerID: "p-3", TeamID: testutil.TeamThunder, Amount: 210})
	s.Require().NoError(err)

	view, err := s.controller.Sold(s.ctx, "p-3", testutil.TeamLightning)
	s.Require().NoError(err)
	s.Equal(testutil.TeamThunder, view.Team.ID)
}

func (s *ControllerSuite) TestSoldRejectsUnsoldPlayer() {
	_, err := s.controller.Sold(s.ctx, "p-3", testutil.TeamThunder)
	s.ErrorIs(err, model.ErrPlayerNotSold)
}

// Rebroadcast tests

func (s *ControllerSuite) TestRebroadcastRepublishesCurrent() {
	sent, err := s.controller.Rebroadcast(s.ctx)
	s.Require().NoError(err)
	s.False(sent)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	_, err = s.controller.LoadNext(s.ctx, "p-2")
	s.Require().NoError(err)
	sub, err := s.cursor.Subscribe(ctx)
	s.Require().NoError(err)

	sent, err = s.controller.Rebroadcast(s.ctx)
	s.Require().NoError(err)
	s.True(sent)

	select {
	case msg := <-sub:
		s.Equal(model.PlayerID("p-2"), msg.PlayerID)
	case <-time.After(time.Second):
		s.Fail("rebroadcast not delivered")
	}
}

// saleMidRebroadcast publishes a sale the first time the cursor is read or
// re-sent, as if the panel sold the player while a rebroadcast was running
type saleMidRebroadcast struct {
	*cursormemory.Channel
	sale model.CursorMessage
	once sync.Once
}

func (c *saleMidRebroadcast) sell(ctx context.Context) {
	c.once.Do(func() { _ = c.Channel.Publish(ctx, c.sale) })
}

func (c *saleMidRebroadcast) Current(ctx context.Context) (model.CursorMessage, bool, error) {
	msg, ok, err := c.Channel.Current(ctx)
	c.sell(ctx)
	return msg, ok, err
}

func (c *saleMidRebroadcast) Republish(ctx context.Context) (bool, error) {
	c.sell(ctx)
	return c.Channel.Republish(ctx)
}

func (s *ControllerSuite) TestRebroadcastNeverOverwritesSale() {
	_, err := s.controller.LoadNext(s.ctx, "p-1")
	s.Require().NoError(err)

	channel := &saleMidRebroadcast{
		Channel: s.cursor,
		sale:    model.CursorMessage{PlayerID: "p-1", TeamID: testutil.TeamThunder, Kind: model.CursorSold, PublishedAt: s.clock.Now()},
	}
	detector := finish.New(s.league, s.metrics, testutil.NopLogger())
	controller := NewController(s.league, channel, detector, s.clock, s.metrics, testutil.NopLogger())

	sent, err := controller.Rebroadcast(s.ctx)
	s.Require().NoError(err)
	s.True(sent)

	s.Equal(model.CursorSold, s.current().Kind)
	nav, err := controller.Check(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Equal("/admin/auction/sold?id=p-1&teamId=t-thunder", nav.Location)
}

func (s *ControllerSuite) TestResetClearsCursor() {
	s.Require().NoError(s.controller.Advance(s.ctx))
	s.Require().NoError(s.controller.Reset(s.ctx))

	_, ok, err := s.cursor.Current(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
}
