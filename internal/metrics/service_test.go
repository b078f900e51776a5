package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}

func TestServiceCountsSales(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncPlayersSold(150)
	s.IncPlayersSold(75)
	s.IncSaleRejected("already_sold")

	body := scrape(t, reg)
	assert.Contains(t, body, "apl_auction_players_sold_total 2")
	assert.Contains(t, body, "apl_auction_sale_amount_dollars_sum 225")
	assert.Contains(t, body, `apl_auction_sales_rejected_total{reason="already_sold"} 1`)
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)
	s.IncCursorPublished("sold")
	s.SetUnsoldPlayers(12)

	body := scrape(t, reg)
	assert.Contains(t, body, `apl_auction_cursor_published_total{kind="sold"} 1`)
	assert.Contains(t, body, "apl_auction_unsold_players 12")
}

func TestMockRecords(t *testing.T) {
	m := NewMock()
	m.IncPlayersSold(10)
	m.IncRemoteFailures("sell")
	m.IncRemoteFailures("sell")

	assert.Equal(t, []float64{10}, m.SaleAmounts())
	assert.Equal(t, 2, m.RemoteFailures("sell"))
	assert.Zero(t, m.AuctionsFinished())
}
