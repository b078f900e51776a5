package seed

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/apl-auction/internal/dependencies/mocks"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/finish"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/storage/memory"
	"github.com/mcoot/apl-auction/internal/testutil"
)

type SeedSuite struct {
	suite.Suite
	storage *memory.Storage
	league  *league.Service
	ctx     context.Context
}

func TestSeedSuite(t *testing.T) {
	suite.Run(t, new(SeedSuite))
}

func (s *SeedSuite) SetupTest() {
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC))
	s.league = league.New(s.storage, clk, mocks.NewMockRandom(), metrics.NewMock(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *SeedSuite) TestLoadFile() {
	sum, err := LoadFile(s.ctx, filepath.Join("testdata", "league.yaml"), s.league, testutil.NopLogger())
	s.Require().NoError(err)

	s.Equal(Summary{Teams: 2, Players: 7}, sum)

	pool, err := s.storage.UnsoldPlayerIDs(s.ctx)
	s.Require().NoError(err)
	s.Len(pool, 3)

	unpaid, err := s.league.ListPlayers(s.ctx, league.PlayerFilter{Status: league.StatusUnpaid})
	s.Require().NoError(err)
	s.Require().Len(unpaid, 1)
	s.Equal("Chirag Desai", unpaid[0].Name)
}

func (s *SeedSuite) TestSeededTeamsHaveLeaders() {
	_, err := LoadFile(s.ctx, filepath.Join("testdata", "league.yaml"), s.league, testutil.NopLogger())
	s.Require().NoError(err)

	rosters, err := finish.New(s.league, metrics.NewMock(), testutil.NopLogger()).Rosters(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rosters, 2)

	byName := make(map[string]model.Roster)
	for _, r := range rosters {
		byName[r.Team.Name] = r
	}
	s.Equal("Kiran Joshi", byName["Thunder"].Captain.Name)
	s.Equal("Sanjay Nair", byName["Lightning"].ViceCaptain.Name)
}

func (s *SeedSuite) TestApplySkipsSeededLeague() {
	_, err := LoadFile(s.ctx, filepath.Join("testdata", "league.yaml"), s.league, testutil.NopLogger())
	s.Require().NoError(err)

	sum, err := LoadFile(s.ctx, filepath.Join("testdata", "league.yaml"), s.league, testutil.NopLogger())
	s.Require().NoError(err)
	s.True(sum.Skipped)

	players, err := s.league.ListPlayers(s.ctx, league.PlayerFilter{})
	s.Require().NoError(err)
	s.Len(players, 7)
}

func (s *SeedSuite) TestParseRejectsUnknownKeys() {
	_, err := Parse(strings.NewReader("teams: []\ncoaches: []\n"))
	s.Error(err)
}

func (s *SeedSuite) TestApplyStopsOnInvalidPlayer() {
	f, err := Parse(strings.NewReader(`
players:
  - name: Z
    email: z@example.com
    phone: "9025550000"
`))
	s.Require().NoError(err)

	_, err = Apply(s.ctx, f, s.league, testutil.NopLogger())
	s.ErrorIs(err, model.ErrInvalidPlayer)
}

func (s *SeedSuite) TestLoadFileMissing() {
	_, err := LoadFile(s.ctx, filepath.Join("testdata", "nope.yaml"), s.league, testutil.NopLogger())
	s.Error(err)
}
