package redis

import (
	"time"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/storage"
)

func storageSale(player, team string) storage.Sale {
	return storage.Sale{
		PlayerID: model.PlayerID(player),
		TeamID:   model.TeamID(team),
		Amount:   100,
		SoldAt:   time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
	}
}
