package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidPlayer      = "INVALID_PLAYER"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeInvalidTeam        = "INVALID_TEAM"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeTeamNotFound       = "TEAM_NOT_FOUND"
	CodeAlreadySold        = "ALREADY_SOLD"
	CodeNotForSale         = "NOT_FOR_SALE"
	CodeNotSold            = "NOT_SOLD"
	CodeNoUnsoldPlayers    = "NO_UNSOLD_PLAYERS"
	CodeTeamNameExists     = "TEAM_NAME_EXISTS"
	CodeLeaderAssigned     = "LEADER_ASSIGNED"
	CodeAlreadyLeader      = "ALREADY_LEADER"
	CodeIncompleteTeam     = "INCOMPLETE_TEAM"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotSupported       = "NOT_SUPPORTED"
	CodeBackendError       = "BACKEND_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status WriteError would use for err
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrTeamNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTeamNotFound, "Team not found"}}
	case errors.Is(err, model.ErrPlayerAlreadySold):
		return &httpError{http.StatusConflict, APIError{CodeAlreadySold, "Player has already been sold"}}
	case errors.Is(err, model.ErrPlayerNotForSale):
		return &httpError{http.StatusConflict, APIError{CodeNotForSale, "Team leaders cannot be sold"}}
	case errors.Is(err, model.ErrPlayerNotSold):
		return &httpError{http.StatusConflict, APIError{CodeNotSold, "Player has not been sold"}}
	case errors.Is(err, model.ErrNoUnsoldPlayers):
		return &httpError{http.StatusNotFound, APIError{CodeNoUnsoldPlayers, "No unsold players available"}}
	case errors.Is(err, model.ErrInvalidSaleAmount):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAmount, "Sale amount must be a non-negative number"}}
	case errors.Is(err, model.ErrInvalidPlayer):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayer, err.Error()}}
	case errors.Is(err, model.ErrInvalidRole):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRole, "Role must be captain or vice-captain"}}
	case errors.Is(err, model.ErrInvalidTeam):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTeam, err.Error()}}
	case errors.Is(err, model.ErrTeamNameExists):
		return &httpError{http.StatusConflict, APIError{CodeTeamNameExists, "Team name already exists"}}
	case errors.Is(err, model.ErrLeaderAssigned):
		return &httpError{http.StatusConflict, APIError{CodeLeaderAssigned, "Team already has a player in that role"}}
	case errors.Is(err, model.ErrAlreadyLeader):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyLeader, "Player already leads a team"}}
	case errors.Is(err, model.ErrMissingCaptain), errors.Is(err, model.ErrMissingViceCaptain):
		return &httpError{http.StatusConflict, APIError{CodeIncompleteTeam, err.Error()}}
	case errors.Is(err, model.ErrNotSupported):
		return &httpError{http.StatusNotImplemented, APIError{CodeNotSupported, "Not supported by the league backend"}}
	case errors.Is(err, model.ErrRemote):
		return &httpError{http.StatusBadGateway, APIError{CodeBackendError, "League backend request failed"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewNotFoundError creates an error for an unknown route
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
