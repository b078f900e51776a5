package metrics

// Metrics records auction activity. Services depend on this interface so
// tests can use Mock instead of Prometheus.
type Metrics interface {
	IncPlayersPresented()
	IncPlayersSold(amount float64)
	IncSaleRejected(reason string)
	IncCursorPublished(kind string)
	IncRemoteFailures(operation string)
	IncAuctionFinished()
	SetUnsoldPlayers(n int)
}
