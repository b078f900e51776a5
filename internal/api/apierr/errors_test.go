package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/apl-auction/internal/model"
	"github.com/mcoot/apl-auction/internal/services/auth"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"player not found", model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
		{"wrapped not found", fmt.Errorf("load player: %w", model.ErrPlayerNotFound), http.StatusNotFound, CodePlayerNotFound},
		{"already sold", model.ErrPlayerAlreadySold, http.StatusConflict, CodeAlreadySold},
		{"leader", model.ErrPlayerNotForSale, http.StatusConflict, CodeNotForSale},
		{"amount", model.ErrInvalidSaleAmount, http.StatusBadRequest, CodeInvalidAmount},
		{"already leading", model.ErrAlreadyLeader, http.StatusConflict, CodeAlreadyLeader},
		{"missing captain", model.ErrMissingCaptain, http.StatusConflict, CodeIncompleteTeam},
		{"not supported", model.ErrNotSupported, http.StatusNotImplemented, CodeNotSupported},
		{"remote", fmt.Errorf("%w: status 500", model.ErrRemote), http.StatusBadGateway, CodeBackendError},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"session", auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
		{"request", NewInvalidRequestError("team_id is required"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, fmt.Errorf("dial tcp 10.0.0.7:6379: connection refused"))

	assert.NotContains(t, rr.Body.String(), "10.0.0.7")
}
