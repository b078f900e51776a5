package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	playersPresented int
	saleAmounts      []float64
	salesRejected    map[string]int
	cursorPublished  map[string]int
	remoteFailures   map[string]int
	auctionsFinished int
	unsoldPlayers    int
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		salesRejected:   make(map[string]int),
		cursorPublished: make(map[string]int),
		remoteFailures:  make(map[string]int),
	}
}

func (m *Mock) IncPlayersPresented() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersPresented++
}

func (m *Mock) IncPlayersSold(amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saleAmounts = append(m.saleAmounts, amount)
}

func (m *Mock) IncSaleRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salesRejected[reason]++
}

func (m *Mock) IncCursorPublished(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursorPublished[kind]++
}

func (m *Mock) IncRemoteFailures(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remoteFailures[operation]++
}

func (m *Mock) IncAuctionFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auctionsFinished++
}

func (m *Mock) SetUnsoldPlayers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsoldPlayers = n
}

// PlayersPresented returns how many players were presented
func (m *Mock) PlayersPresented() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersPresented
}

// SaleAmounts returns the amounts of recorded sales in order
func (m *Mock) SaleAmounts() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.saleAmounts...)
}

// SalesRejected returns the rejection count for reason
func (m *Mock) SalesRejected(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.salesRejected[reason]
}

// CursorPublished returns the publish count for kind
func (m *Mock) CursorPublished(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursorPublished[kind]
}

// RemoteFailures returns the failure count for operation
func (m *Mock) RemoteFailures(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remoteFailures[operation]
}

// AuctionsFinished returns how many finished checks were recorded
func (m *Mock) AuctionsFinished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auctionsFinished
}

// UnsoldPlayers returns the last gauge value
func (m *Mock) UnsoldPlayers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsoldPlayers
}
