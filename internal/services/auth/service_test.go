package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/apl-auction/internal/dependencies/mocks"
	"github.com/mcoot/apl-auction/internal/storage/memory"
	"github.com/mcoot/apl-auction/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger(), DefaultConfig())
	s.ctx = context.Background()
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, "auctioneer", "hunter2hunter2"))
}

// EnsureAdmin tests

func (s *ServiceSuite) TestEnsureAdminHashesPassword() {
	admin, err := s.storage.GetAdmin(s.ctx, "auctioneer")
	s.Require().NoError(err)

	s.NotEqual("hunter2hunter2", admin.PasswordHash)
	s.Equal(s.clock.Now(), admin.CreatedAt)
}

func (s *ServiceSuite) TestEnsureAdminResetsPassword() {
	s.clock.Advance(time.Hour)
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, "auctioneer", "new-password-1"))

	_, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Login(s.ctx, "auctioneer", "new-password-1")
	s.NoError(err)

	admin, err := s.storage.GetAdmin(s.ctx, "auctioneer")
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(-time.Hour), admin.CreatedAt)
}

func (s *ServiceSuite) TestEnsureAdminRejectsWeakPassword() {
	err := s.service.EnsureAdmin(s.ctx, "other", "short")
	s.ErrorIs(err, ErrWeakPassword)
}

func (s *ServiceSuite) TestEnsureAdminRequiresUsername() {
	err := s.service.EnsureAdmin(s.ctx, "  ", "long-enough-password")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	session, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("auctioneer", session.Username)
	s.Equal(s.clock.Now().Add(DefaultConfig().SessionDuration), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Login(s.ctx, "auctioneer", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "hunter2hunter2")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginIssuesDistinctTokens() {
	a, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.Require().NoError(err)
	b, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.Require().NoError(err)

	s.NotEqual(a.Token, b.Token)
	s.Equal(2, s.service.SessionCount())
}

// Session tests

func (s *ServiceSuite) TestValidateSession() {
	session, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.Require().NoError(err)

	validated, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal("auctioneer", validated.Username)
}

func (s *ServiceSuite) TestValidateSessionUnknownToken() {
	_, err := s.service.ValidateSession("not-a-token")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionExpired() {
	session, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().SessionDuration + time.Second)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
	s.Zero(s.service.SessionCount())
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.Require().NoError(err)

	s.service.InvalidateSession(session.Token)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	_, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.Require().NoError(err)
	s.clock.Advance(time.Hour)
	fresh, err := s.service.Login(s.ctx, "auctioneer", "hunter2hunter2")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().SessionDuration - 30*time.Minute)

	s.Equal(1, s.service.CleanExpiredSessions())
	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
