// Package backend talks to the external league API that owns players and
// teams when the service runs in remote mode.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/apl-auction/internal/dependencies/clock"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/league"
)

// maxBody bounds how much of a response is read
const maxBody = 4 << 20

// Config holds the remote league API settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		Timeout: 10 * time.Second,
	}
}

// Client implements league.League against the remote API. Calls are not
// retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clock.Clock
	metrics    metrics.Metrics
	logger     *slog.Logger
}

var _ league.League = (*Client)(nil)

// NewClient creates a new remote league client
func NewClient(cfg Config, clock clock.Clock, metrics metrics.Metrics, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// statusError maps a non-2xx status onto a sentinel. notFound is the
// sentinel for a 404 on this route.
func statusError(status int, notFound error, body []byte) error {
	switch status {
	case http.StatusNotFound:
		if notFound != nil {
			return notFound
		}
	case http.StatusConflict:
		return model.ErrPlayerAlreadySold
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return fmt.Errorf("%w: HTTP %d: %s", model.ErrRemote, status, msg)
}

// do performs one request and decodes a JSON response into result
func (c *Client) do(ctx context.Context, op, method, path string, body, result any, notFound error) error {
	err := c.roundTrip(ctx, method, path, body, result, notFound)
	if err != nil && !errors.Is(err, notFound) && !errors.Is(err, model.ErrPlayerAlreadySold) {
		c.metrics.IncRemoteFailures(op)
		c.logger.Error("league backend request failed",
			slog.String("operation", op),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, result any, notFound error) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrRemote, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", model.ErrRemote, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, notFound, respBody)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: malformed response: %v", model.ErrRemote, err)
	}
	return nil
}

func (c *Client) RandomUnsoldPlayer(ctx context.Context) (*model.Player, error) {
	var dto playerDTO
	if err := c.do(ctx, "random_player", http.MethodGet, "/players/random", nil, &dto, nil); err != nil {
		return nil, err
	}
	if dto.exhausted() {
		c.metrics.SetUnsoldPlayers(0)
		return nil, model.ErrNoUnsoldPlayers
	}
	player, err := dto.toModel()
	if err != nil {
		c.metrics.IncRemoteFailures("random_player")
		return nil, err
	}
	if !player.InPool() {
		c.metrics.IncRemoteFailures("random_player")
		return nil, fmt.Errorf("%w: random player %s is not in the pool", model.ErrRemote, player.ID)
	}
	return player, nil
}

func (c *Client) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	n, ok := remoteID(string(id))
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	var dto playerDTO
	if err := c.do(ctx, "get_player", http.MethodGet, fmt.Sprintf("/players/%d", n), nil, &dto, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	if dto.ID == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return dto.toModel()
}

func (c *Client) ListTeams(ctx context.Context) ([]*model.Team, error) {
	var dtos []teamDTO
	if err := c.do(ctx, "list_teams", http.MethodGet, "/teams", nil, &dtos, model.ErrTeamNotFound); err != nil {
		return nil, err
	}
	teams := make([]*model.Team, 0, len(dtos))
	for _, dto := range dtos {
		t, err := dto.toTeam()
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func (c *Client) GetTeam(ctx context.Context, id model.TeamID) (*model.TeamWithPlayers, error) {
	n, ok := remoteID(string(id))
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	var dto teamDTO
	if err := c.do(ctx, "get_team", http.MethodGet, fmt.Sprintf("/players/team/%d", n), nil, &dto, model.ErrTeamNotFound); err != nil {
		return nil, err
	}
	return dto.toModel()
}

func (c *Client) ListTeamsWithPlayers(ctx context.Context) ([]*model.TeamWithPlayers, error) {
	var dtos []teamDTO
	if err := c.do(ctx, "list_teams_with_players", http.MethodGet, "/teams/getallteams", nil, &dtos, model.ErrTeamNotFound); err != nil {
		return nil, err
	}
	teams := make([]*model.TeamWithPlayers, 0, len(dtos))
	for _, dto := range dtos {
		t, err := dto.toModel()
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// SellPlayer sends the sale to the API. The API is trusted to reject a
// second sale with 409.
func (c *Client) SellPlayer(ctx context.Context, playerID model.PlayerID, teamID model.TeamID, amount float64) (*model.Player, error) {
	pid, ok := remoteID(string(playerID))
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	tid, ok := remoteID(string(teamID))
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, model.ErrInvalidSaleAmount
	}

	var dto playerDTO
	body := sellRequestDTO{TeamID: tid, PlayerSoldAmount: amount}
	if err := c.do(ctx, "sell_player", http.MethodPut, fmt.Sprintf("/players/%d", pid), body, &dto, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	player, err := dto.toModel()
	if err != nil {
		c.metrics.IncRemoteFailures("sell_player")
		return nil, err
	}
	if !player.Sold || player.TeamID != teamID {
		c.metrics.IncRemoteFailures("sell_player")
		return nil, fmt.Errorf("%w: sale of player %s was not applied", model.ErrRemote, playerID)
	}
	player.SoldAt = c.clock.Now()

	c.logger.Info("player sold via league backend",
		slog.String("player_id", string(player.ID)),
		slog.String("team_id", string(player.TeamID)),
		slog.Float64("amount", player.SoldAmount),
	)
	return player, nil
}

func (c *Client) RegisterPlayer(context.Context, league.Registration) (*model.Player, error) {
	return nil, fmt.Errorf("register player: %w", model.ErrNotSupported)
}

func (c *Client) MarkPaid(context.Context, model.PlayerID) (*model.Player, error) {
	return nil, fmt.Errorf("mark paid: %w", model.ErrNotSupported)
}

func (c *Client) ListPlayers(context.Context, league.PlayerFilter) ([]*model.Player, error) {
	return nil, fmt.Errorf("list players: %w", model.ErrNotSupported)
}

func (c *Client) CreateTeam(context.Context, string, string) (*model.Team, error) {
	return nil, fmt.Errorf("create team: %w", model.ErrNotSupported)
}

func (c *Client) AssignLeader(context.Context, model.TeamID, model.PlayerID, model.Role) (*model.Player, error) {
	return nil, fmt.Errorf("assign leader: %w", model.ErrNotSupported)
}

func (c *Client) ResetAuction(context.Context) (int, error) {
	return 0, fmt.Errorf("reset auction: %w", model.ErrNotSupported)
}
