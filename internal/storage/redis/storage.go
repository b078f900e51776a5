package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	client, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, cfg), nil
}

// Connect opens and pings a client for cfg. The cursor channel reuses it.
func Connect(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	if cfg.SaleRetries <= 0 {
		cfg.SaleRetries = DefaultConfig().SaleRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: cfg.KeyPrefix},
	}
}

// Client exposes the underlying client
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	id := string(player.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keys.player(player.ID), data, 0)
		pipe.SAdd(ctx, s.keys.players(), id)
		if player.InPool() {
			pipe.SAdd(ctx, s.keys.unsold(), id)
		} else {
			pipe.SRem(ctx, s.keys.unsold(), id)
		}
		return nil
	})
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client, s.keys.player(id), model.ErrPlayerNotFound)
}

func (s *Storage) MarkPaid(ctx context.Context, id model.PlayerID, at time.Time) (*model.Player, error) {
	return s.updatePlayer(ctx, id, func(_ *redis.Tx, p *model.Player) (bool, error) {
		if p.Paid {
			return false, nil
		}
		p.Paid = true
		p.PaidAt = at
		return true, nil
	})
}

func (s *Storage) AssignLeader(ctx context.Context, id model.PlayerID, teamID model.TeamID, role model.Role) (*model.Player, error) {
	return s.updatePlayer(ctx, id, func(tx *redis.Tx, p *model.Player) (bool, error) {
		n, err := tx.Exists(ctx, s.keys.team(teamID)).Result()
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, model.ErrTeamNotFound
		}
		if err := storage.CheckLeaderAssignment(p, teamID, role); err != nil {
			return false, err
		}
		p.Role = role
		p.TeamID = teamID
		return true, nil
	})
}

// updatePlayer applies fn to the stored player under WATCH and writes it back
// when fn reports a change. A concurrent write to the player (a sale, say)
// aborts the EXEC and fn runs again on the fresh record.
func (s *Storage) updatePlayer(ctx context.Context, id model.PlayerID, fn func(tx *redis.Tx, p *model.Player) (bool, error)) (*model.Player, error) {
	playerKey := s.keys.player(id)

	var updated *model.Player
	txf := func(tx *redis.Tx) error {
		player, err := getJSON[model.Player](ctx, tx, playerKey, model.ErrPlayerNotFound)
		if err != nil {
			return err
		}
		changed, err := fn(tx, player)
		if err != nil {
			return err
		}
		if !changed {
			updated = player
			return nil
		}

		data, err := json.Marshal(player)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey, data, 0)
			if player.InPool() {
				pipe.SAdd(ctx, s.keys.unsold(), string(id))
			} else {
				pipe.SRem(ctx, s.keys.unsold(), string(id))
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = player
		return nil
	}

	for attempt := 0; attempt < s.cfg.SaleRetries; attempt++ {
		err := s.client.Watch(ctx, txf, playerKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update player %s: %w", id, redis.TxFailedErr)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, s.keys.players()).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.player(model.PlayerID(id))
	}
	players, err := mgetJSON[model.Player](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	storage.SortPlayers(players)
	return players, nil
}

func (s *Storage) UnsoldPlayerIDs(ctx context.Context) ([]model.PlayerID, error) {
	members, err := s.client.SMembers(ctx, s.keys.unsold()).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]model.PlayerID, len(members))
	for i, m := range members {
		ids[i] = model.PlayerID(m)
	}
	storage.SortPlayerIDs(ids)
	return ids, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return err
	}

	old, err := s.GetTeam(ctx, team.ID)
	if err != nil && !errors.Is(err, model.ErrTeamNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if old != nil && storage.TeamNameKey(old.Name) != storage.TeamNameKey(team.Name) {
			pipe.Del(ctx, s.keys.teamName(old.Name))
		}
		pipe.Set(ctx, s.keys.team(team.ID), data, 0)
		pipe.Set(ctx, s.keys.teamName(team.Name), string(team.ID), 0)
		pipe.SAdd(ctx, s.keys.teams(), string(team.ID))
		return nil
	})
	return err
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	return getJSON[model.Team](ctx, s.client, s.keys.team(id), model.ErrTeamNotFound)
}

func (s *Storage) GetTeamByName(ctx context.Context, name string) (*model.Team, error) {
	id, err := s.client.Get(ctx, s.keys.teamName(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTeamNotFound
		}
		return nil, err
	}
	return s.GetTeam(ctx, model.TeamID(id))
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	ids, err := s.client.SMembers(ctx, s.keys.teams()).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.team(model.TeamID(id))
	}
	teams, err := mgetJSON[model.Team](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	storage.SortTeams(teams)
	return teams, nil
}

// Sale operations

// RecordSale runs an optimistic WATCH/MULTI transaction over the player and
// team keys. A conflicting write aborts the EXEC and the sale is re-evaluated,
// so a racing second sale observes the first one and fails as already sold.
func (s *Storage) RecordSale(ctx context.Context, sale storage.Sale) (*model.Player, error) {
	playerKey := s.keys.player(sale.PlayerID)
	teamKey := s.keys.team(sale.TeamID)

	var sold *model.Player
	txf := func(tx *redis.Tx) error {
		player, err := getJSON[model.Player](ctx, tx, playerKey, model.ErrPlayerNotFound)
		if err != nil {
			return err
		}
		team, err := getJSON[model.Team](ctx, tx, teamKey, model.ErrTeamNotFound)
		if err != nil {
			return err
		}
		if player.Sold {
			return model.ErrPlayerAlreadySold
		}
		if player.Role.IsLeader() {
			return model.ErrPlayerNotForSale
		}

		player.Sold = true
		player.SoldAmount = sale.Amount
		player.TeamID = sale.TeamID
		player.SoldAt = sale.SoldAt
		team.Roster = append(team.Roster, player.ID)

		playerData, err := json.Marshal(player)
		if err != nil {
			return err
		}
		teamData, err := json.Marshal(team)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey, playerData, 0)
			pipe.Set(ctx, teamKey, teamData, 0)
			pipe.SRem(ctx, s.keys.unsold(), string(player.ID))
			return nil
		})
		if err != nil {
			return err
		}
		sold = player
		return nil
	}

	for attempt := 0; attempt < s.cfg.SaleRetries; attempt++ {
		err := s.client.Watch(ctx, txf, playerKey, teamKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return sold, nil
	}
	return nil, fmt.Errorf("record sale of %s: %w", sale.PlayerID, redis.TxFailedErr)
}

func (s *Storage) ResetSales(ctx context.Context) (int, error) {
	players, err := s.ListPlayers(ctx)
	if err != nil {
		return 0, err
	}
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return 0, err
	}

	returned := 0
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range players {
			if !p.Sold {
				continue
			}
			p.Sold = false
			p.SoldAmount = 0
			p.SoldAt = time.Time{}
			if !p.Role.IsLeader() {
				p.TeamID = ""
			}
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			pipe.Set(ctx, s.keys.player(p.ID), data, 0)
			if p.InPool() {
				pipe.SAdd(ctx, s.keys.unsold(), string(p.ID))
			}
			returned++
		}
		for _, t := range teams {
			t.Roster = nil
			data, err := json.Marshal(t)
			if err != nil {
				return err
			}
			pipe.Set(ctx, s.keys.team(t.ID), data, 0)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return returned, nil
}

// Admin operations

func (s *Storage) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	data, err := json.Marshal(admin)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keys.admin(admin.Username), data, 0).Err()
}

func (s *Storage) GetAdmin(ctx context.Context, username string) (*model.Admin, error) {
	return getJSON[model.Admin](ctx, s.client, s.keys.admin(username), model.ErrAdminNotFound)
}

// mgetJSON fetches and decodes several blobs, skipping keys that vanished
// between the index read and the MGET
func mgetJSON[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(str), &item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}
	return out, nil
}
