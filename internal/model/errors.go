package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidPlayer     = errors.New("invalid player")
	ErrInvalidRole       = errors.New("invalid role")
	ErrNoUnsoldPlayers   = errors.New("no unsold players available")
	ErrPlayerAlreadySold = errors.New("player has already been sold")
	ErrPlayerNotForSale  = errors.New("player is a team leader and cannot be sold")
	ErrPlayerNotSold     = errors.New("player has not been sold")

	// Sale errors
	ErrInvalidSaleAmount = errors.New("sale amount must be a non-negative number")

	// Team errors
	ErrTeamNotFound   = errors.New("team not found")
	ErrInvalidTeam    = errors.New("invalid team")
	ErrTeamNameExists = errors.New("team name already exists")
	ErrLeaderAssigned = errors.New("team already has a player in that role")
	ErrAlreadyLeader  = errors.New("player already leads a team in another role")

	// Setup errors, fatal for roster rendering
	ErrMissingCaptain     = errors.New("team has no captain assigned")
	ErrMissingViceCaptain = errors.New("team has no vice-captain assigned")

	// Cursor errors
	ErrInvalidCursor = errors.New("invalid cursor message")

	// Admin errors
	ErrAdminNotFound = errors.New("admin not found")

	// Remote backend errors
	ErrRemote       = errors.New("remote league backend error")
	ErrNotSupported = errors.New("operation not supported by this league backend")
)
