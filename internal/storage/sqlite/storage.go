package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens the database at path (":memory:" for a private in-memory
// database) and ensures the schema is up to date
func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

const playerColumns = `id, name, email, phone, mandal, image_url, batting, bowling, fielding,
    matches, runs, strike_rate, wickets, dismissals, catches, role, sold, sold_amount,
    team_id, sold_at, paid, paid_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*model.Player, error) {
	var (
		p                         model.Player
		role                      string
		teamID                    string
		sold, paid                bool
		soldAt, paidAt, createdAt int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Mandal, &p.ImageURL,
		&p.Ratings.Batting, &p.Ratings.Bowling, &p.Ratings.Fielding,
		&p.Stats.Matches, &p.Stats.Runs, &p.Stats.StrikeRate, &p.Stats.Wickets,
		&p.Stats.Dismissals, &p.Stats.Catches, &role, &sold, &p.SoldAmount,
		&teamID, &soldAt, &paid, &paidAt, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Role = model.Role(role)
	p.TeamID = model.TeamID(teamID)
	p.Sold = sold
	p.Paid = paid
	p.SoldAt = fromNanos(soldAt)
	p.PaidAt = fromNanos(paidAt)
	p.CreatedAt = fromNanos(createdAt)
	return &p, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, p *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO players (`+playerColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name, email = excluded.email, phone = excluded.phone,
    mandal = excluded.mandal, image_url = excluded.image_url,
    batting = excluded.batting, bowling = excluded.bowling, fielding = excluded.fielding,
    matches = excluded.matches, runs = excluded.runs, strike_rate = excluded.strike_rate,
    wickets = excluded.wickets, dismissals = excluded.dismissals, catches = excluded.catches,
    role = excluded.role, sold = excluded.sold, sold_amount = excluded.sold_amount,
    team_id = excluded.team_id, sold_at = excluded.sold_at, paid = excluded.paid,
    paid_at = excluded.paid_at, created_at = excluded.created_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Mandal, p.ImageURL,
		p.Ratings.Batting, p.Ratings.Bowling, p.Ratings.Fielding,
		p.Stats.Matches, p.Stats.Runs, p.Stats.StrikeRate, p.Stats.Wickets,
		p.Stats.Dismissals, p.Stats.Catches, string(p.Role), p.Sold, p.SoldAmount,
		string(p.TeamID), toNanos(p.SoldAt), p.Paid, toNanos(p.PaidAt), toNanos(p.CreatedAt))
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	return p, err
}

func (s *Storage) MarkPaid(ctx context.Context, id model.PlayerID, at time.Time) (*model.Player, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE players SET paid = 1, paid_at = ? WHERE id = ? AND paid = 0`, toNanos(at), id)
	if err != nil {
		return nil, err
	}
	return s.GetPlayer(ctx, id)
}

func (s *Storage) AssignLeader(ctx context.Context, id model.PlayerID, teamID model.TeamID, role model.Role) (*model.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	player, err := scanPlayer(tx.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	var teamExists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE id = ?`, teamID).Scan(&teamExists); err != nil {
		return nil, err
	}
	if teamExists == 0 {
		return nil, model.ErrTeamNotFound
	}
	if err := storage.CheckLeaderAssignment(player, teamID, role); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
UPDATE players SET role = ?, team_id = ?
WHERE id = ? AND sold = 0 AND (role = ? OR (role = ? AND team_id = ?))`,
		string(role), string(teamID), id, string(model.RolePlayer), string(role), string(teamID))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrPlayerAlreadySold
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	player.Role = role
	player.TeamID = teamID
	return player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	players := []*model.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Storage) UnsoldPlayerIDs(ctx context.Context) ([]model.PlayerID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM players WHERE sold = 0 AND role = ? ORDER BY id`, string(model.RolePlayer))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := []model.PlayerID{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, model.PlayerID(id))
	}
	return ids, rows.Err()
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO teams (id, name, name_key, image_url, created_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name, name_key = excluded.name_key,
    image_url = excluded.image_url, created_at = excluded.created_at`,
		team.ID, team.Name, storage.TeamNameKey(team.Name), team.ImageURL, toNanos(team.CreatedAt))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_entries WHERE team_id = ?`, team.ID); err != nil {
		return err
	}
	for i, pid := range team.Roster {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO roster_entries (team_id, player_id, position) VALUES (?, ?, ?)`,
			team.ID, pid, i+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	return s.getTeamWhere(ctx, `id = ?`, string(id))
}

func (s *Storage) GetTeamByName(ctx context.Context, name string) (*model.Team, error) {
	return s.getTeamWhere(ctx, `name_key = ?`, storage.TeamNameKey(name))
}

func (s *Storage) getTeamWhere(ctx context.Context, where string, arg string) (*model.Team, error) {
	var (
		t         model.Team
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, image_url, created_at FROM teams WHERE `+where, arg).
		Scan(&t.ID, &t.Name, &t.ImageURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	t.CreatedAt = fromNanos(createdAt)

	roster, err := s.roster(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Roster = roster
	return &t, nil
}

func (s *Storage) roster(ctx context.Context, teamID model.TeamID) ([]model.PlayerID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id FROM roster_entries WHERE team_id = ? ORDER BY position`, teamID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []model.PlayerID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, model.PlayerID(id))
	}
	return ids, rows.Err()
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM teams ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	var ids []model.TeamID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, model.TeamID(id))
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	teams := make([]*model.Team, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTeam(ctx, id)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// Sale operations

// RecordSale guards the update with "sold = 0" so only the first sale of a
// player changes a row
func (s *Storage) RecordSale(ctx context.Context, sale storage.Sale) (*model.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		sold bool
		role string
	)
	err = tx.QueryRowContext(ctx, `SELECT sold, role FROM players WHERE id = ?`, sale.PlayerID).Scan(&sold, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}

	var teamExists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE id = ?`, sale.TeamID).Scan(&teamExists); err != nil {
		return nil, err
	}
	if teamExists == 0 {
		return nil, model.ErrTeamNotFound
	}
	if model.Role(role).IsLeader() {
		return nil, model.ErrPlayerNotForSale
	}

	res, err := tx.ExecContext(ctx, `
UPDATE players SET sold = 1, sold_amount = ?, team_id = ?, sold_at = ?
WHERE id = ? AND sold = 0`,
		sale.Amount, sale.TeamID, toNanos(sale.SoldAt), sale.PlayerID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 || sold {
		return nil, model.ErrPlayerAlreadySold
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO roster_entries (team_id, player_id, position)
SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM roster_entries WHERE team_id = ?`,
		sale.TeamID, sale.PlayerID, sale.TeamID)
	if err != nil {
		return nil, err
	}

	player, err := scanPlayer(tx.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ?`, sale.PlayerID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *Storage) ResetSales(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
UPDATE players SET sold = 0, sold_amount = 0, sold_at = 0,
    team_id = CASE WHEN role = ? THEN '' ELSE team_id END
WHERE sold = 1`, string(model.RolePlayer))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_entries`); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Admin operations

func (s *Storage) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO admins (username, password_hash, created_at) VALUES (?, ?, ?)
ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash`,
		admin.Username, admin.PasswordHash, toNanos(admin.CreatedAt))
	return err
}

func (s *Storage) GetAdmin(ctx context.Context, username string) (*model.Admin, error) {
	var (
		a         model.Admin
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, created_at FROM admins WHERE username = ?`, username).
		Scan(&a.Username, &a.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	a.CreatedAt = fromNanos(createdAt)
	return &a, nil
}

// Times are stored as unix nanoseconds; 0 is the zero time

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
