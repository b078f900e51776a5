package redis

import (
	"fmt"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
)

// keys builds every Redis key under one prefix
type keys struct {
	prefix string
}

// player returns the key holding a Player blob
func (k keys) player(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// players returns the SET of all player ids
func (k keys) players() string {
	return fmt.Sprintf("%s:idx:players", k.prefix)
}

// unsold returns the SET of player ids still in the auction pool
func (k keys) unsold() string {
	return fmt.Sprintf("%s:idx:unsold", k.prefix)
}

// team returns the key holding a Team blob
func (k keys) team(id model.TeamID) string {
	return fmt.Sprintf("%s:team:%s", k.prefix, id)
}

// teams returns the SET of all team ids
func (k keys) teams() string {
	return fmt.Sprintf("%s:idx:teams", k.prefix)
}

// teamName returns the key mapping a normalized team name to its id
func (k keys) teamName(name string) string {
	return fmt.Sprintf("%s:idx:team_name:%s", k.prefix, storage.TeamNameKey(name))
}

// admin returns the key holding an Admin blob
func (k keys) admin(username string) string {
	return fmt.Sprintf("%s:admin:%s", k.prefix, username)
}
