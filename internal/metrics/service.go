package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service is the Prometheus-backed Metrics implementation
type Service struct {
	PlayersPresented prometheus.Counter
	PlayersSold      prometheus.Counter
	SaleAmounts      prometheus.Histogram
	SalesRejected    *prometheus.CounterVec
	CursorPublished  *prometheus.CounterVec
	RemoteFailures   *prometheus.CounterVec
	AuctionsFinished prometheus.Counter
	UnsoldPlayers    prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the auction metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PlayersPresented: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apl_auction_players_presented_total",
			Help: "Players put on the block by the display screen.",
		}),
		PlayersSold: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apl_auction_players_sold_total",
			Help: "Sales recorded successfully.",
		}),
		SaleAmounts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "apl_auction_sale_amount_dollars",
			Help:    "Distribution of recorded sale prices.",
			Buckets: []float64{0, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		SalesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apl_auction_sales_rejected_total",
			Help: "Sale attempts that changed nothing, by reason.",
		}, []string{"reason"}),
		CursorPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apl_auction_cursor_published_total",
			Help: "Cursor messages published, by kind.",
		}, []string{"kind"}),
		RemoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apl_league_remote_failures_total",
			Help: "Failed calls to the league backend, by operation.",
		}, []string{"operation"}),
		AuctionsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apl_auction_finished_total",
			Help: "Visits that found the player pool exhausted.",
		}),
		UnsoldPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "apl_auction_unsold_players",
			Help: "Players remaining in the pool at the last check.",
		}),
	}

	reg.MustRegister(
		s.PlayersPresented,
		s.PlayersSold,
		s.SaleAmounts,
		s.SalesRejected,
		s.CursorPublished,
		s.RemoteFailures,
		s.AuctionsFinished,
		s.UnsoldPlayers,
	)

	return s
}

func (s *Service) IncPlayersPresented() {
	s.PlayersPresented.Inc()
}

func (s *Service) IncPlayersSold(amount float64) {
	s.PlayersSold.Inc()
	s.SaleAmounts.Observe(amount)
}

func (s *Service) IncSaleRejected(reason string) {
	s.SalesRejected.WithLabelValues(reason).Inc()
}

func (s *Service) IncCursorPublished(kind string) {
	s.CursorPublished.WithLabelValues(kind).Inc()
}

func (s *Service) IncRemoteFailures(operation string) {
	s.RemoteFailures.WithLabelValues(operation).Inc()
}

func (s *Service) IncAuctionFinished() {
	s.AuctionsFinished.Inc()
}

func (s *Service) SetUnsoldPlayers(n int) {
	s.UnsoldPlayers.Set(float64(n))
}
